package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/relmap/pkg/model"
)

// AssertNoDuplicateIDs verifies every payload node id is unique.
func AssertNoDuplicateIDs(t *testing.T, p *model.GraphPayload) {
	t.Helper()
	seen := make(map[string]bool, len(p.Nodes))
	for _, n := range p.Nodes {
		if seen[n.ID] {
			t.Errorf("duplicate node id: %s", n.ID)
		}
		seen[n.ID] = true
	}
}

// AssertEdgesResolve verifies every edge endpoint names an existing node.
func AssertEdgesResolve(t *testing.T, p *model.GraphPayload) {
	t.Helper()
	ids := make(map[string]bool, len(p.Nodes))
	for _, n := range p.Nodes {
		ids[n.ID] = true
	}
	for _, e := range p.Edges {
		if !ids[e.Source] || !ids[e.Target] {
			t.Errorf("edge %s -> %s references a missing node", e.Source, e.Target)
		}
	}
}

// WritePayloadFile marshals a payload into dir and returns its path. The file
// lives in the test's temp dir and needs no cleanup.
func WritePayloadFile(t *testing.T, dir string, p *model.GraphPayload) string {
	t.Helper()
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		t.Fatalf("marshaling payload: %v", err)
	}
	path := filepath.Join(dir, "payload.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("writing payload file: %v", err)
	}
	return path
}
