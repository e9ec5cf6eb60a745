package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/vanderheijden86/relmap/pkg/config"
	"github.com/vanderheijden86/relmap/pkg/testutil"
	"github.com/vanderheijden86/relmap/pkg/viewer"
)

const samplePayload = `{
  "nodes": [
    {"id": "org-1", "name": "Acme", "nodeType": "organization", "interactionCount": 0},
    {"id": "p1", "name": "Ann", "nodeType": "person", "interactionCount": 8},
    {"id": "p2", "name": "Bob", "nodeType": "person", "interactionCount": 0},
    {"id": "p3", "name": "Cyd", "nodeType": "person", "interactionCount": 2},
    {"id": "x1", "name": "Eve", "nodeType": "external_person", "interactionCount": 4}
  ],
  "edges": [
    {"source": "p1", "target": "p3", "edgeType": "co_occurrence", "interactionCount": 3},
    {"source": "p1", "target": "p2", "edgeType": "co_occurrence"},
    {"source": "p1", "target": "x1", "edgeType": "cross_org"}
  ]
}`

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "graph.json")
	if err := os.WriteFile(path, []byte(samplePayload), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFileProvider_LoadGraph(t *testing.T) {
	p := NewFileProvider(writeSample(t), config.DefaultConfig())

	payload, err := p.LoadGraph(context.Background(), viewer.LoadParams{RootID: "org-1"})
	if err != nil {
		t.Fatalf("LoadGraph failed: %v", err)
	}
	// No filters: external dropped (ShowExternalNodes false), rest kept.
	if len(payload.Nodes) != 4 {
		t.Fatalf("expected 4 nodes, got %d", len(payload.Nodes))
	}
	// The cross_org edge to the dropped external node goes with it.
	if len(payload.Edges) != 2 {
		t.Fatalf("expected 2 edges, got %d", len(payload.Edges))
	}
}

func TestFileProvider_ShowExternalNodes(t *testing.T) {
	p := NewFileProvider(writeSample(t), config.DefaultConfig())

	payload, err := p.LoadGraph(context.Background(), viewer.LoadParams{ShowExternalNodes: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(payload.Nodes) != 5 {
		t.Fatalf("expected 5 nodes with externals shown, got %d", len(payload.Nodes))
	}
	if len(payload.Edges) != 3 {
		t.Fatalf("expected 3 edges with externals shown, got %d", len(payload.Edges))
	}
}

func TestFileProvider_HidePassiveAndThreshold(t *testing.T) {
	p := NewFileProvider(writeSample(t), config.DefaultConfig())

	payload, err := p.LoadGraph(context.Background(), viewer.LoadParams{
		HidePassiveNodes: true,
		MinInteractions:  3,
	})
	if err != nil {
		t.Fatal(err)
	}
	// p2 (0 interactions) and p3 (2 < 3) drop; org is not a person and stays.
	ids := map[string]bool{}
	for _, n := range payload.Nodes {
		ids[n.ID] = true
	}
	if !ids["org-1"] || !ids["p1"] {
		t.Errorf("expected org-1 and p1 kept, got %v", ids)
	}
	if ids["p2"] || ids["p3"] {
		t.Errorf("expected passive and low-interaction people dropped, got %v", ids)
	}
	if len(payload.Edges) != 0 {
		t.Errorf("expected edges to dropped nodes removed, got %d", len(payload.Edges))
	}
}

func TestFileProvider_OverridePersistsAcrossLoads(t *testing.T) {
	p := NewFileProvider(writeSample(t), config.DefaultConfig())
	ctx := context.Background()

	if err := p.OverrideClassification(ctx, "p1", "org-1", "Champion"); err != nil {
		t.Fatal(err)
	}

	payload, err := p.LoadGraph(ctx, viewer.LoadParams{})
	if err != nil {
		t.Fatal(err)
	}
	for _, n := range payload.Nodes {
		if n.ID == "p1" && n.Classification != "Champion" {
			t.Errorf("expected override applied on reload, got %q", n.Classification)
		}
	}
}

func TestFileProvider_GeneratedPayload(t *testing.T) {
	cfg := testutil.DefaultConfig()
	cfg.Communities = 6
	cfg.PeoplePer = 10
	cfg.ExternalPeople = 5
	fixture := testutil.NewGenerator(cfg).Payload()
	path := testutil.WritePayloadFile(t, t.TempDir(), fixture)

	p := NewFileProvider(path, config.DefaultConfig())
	payload, err := p.LoadGraph(context.Background(), viewer.LoadParams{ShowExternalNodes: true})
	if err != nil {
		t.Fatal(err)
	}

	testutil.AssertNoDuplicateIDs(t, payload)
	testutil.AssertEdgesResolve(t, payload)
	if len(payload.Nodes) != len(fixture.Nodes) {
		t.Errorf("filter dropped nodes it should keep: %d vs %d", len(payload.Nodes), len(fixture.Nodes))
	}
}

func TestFileProvider_MissingFile(t *testing.T) {
	p := NewFileProvider("/nonexistent/graph.json", config.DefaultConfig())
	if _, err := p.LoadGraph(context.Background(), viewer.LoadParams{}); err == nil {
		t.Fatal("expected error for missing payload file")
	}
}
