package testutil

import (
	"testing"

	"github.com/vanderheijden86/relmap/pkg/graphdata"
)

func TestGenerator_Deterministic(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ExternalPeople = 2
	cfg.MovedFraction = 0.25
	cfg.RiskFraction = 0.25

	a := NewGenerator(cfg).Payload()
	b := NewGenerator(cfg).Payload()

	if len(a.Nodes) != len(b.Nodes) || len(a.Edges) != len(b.Edges) {
		t.Fatal("same seed produced different shapes")
	}
	for i := range a.Nodes {
		if a.Nodes[i] != b.Nodes[i] {
			t.Fatalf("node %d differs between runs", i)
		}
	}
}

func TestGenerator_WellFormed(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Communities = 5
	cfg.PeoplePer = 6
	cfg.ExternalPeople = 4
	cfg.MovedFraction = 0.1
	cfg.RiskFraction = 0.2

	p := NewGenerator(cfg).Payload()
	AssertNoDuplicateIDs(t, p)
	AssertEdgesResolve(t, p)

	if got := len(p.Nodes); got != 1+30+4 {
		t.Errorf("node count = %d", got)
	}
	if len(p.RiskAlerts) != 6 {
		t.Errorf("risk alerts = %d, want 6", len(p.RiskAlerts))
	}
}

// The generated communities must survive the real pipeline: one cluster per
// community after processing.
func TestGenerator_CommunitiesCluster(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Communities = 4
	cfg.PeoplePer = 5

	p := NewGenerator(cfg).Payload()
	g := graphdata.Process(p, graphdata.Options{Seed: 1})

	if len(g.Clusters) != 4 {
		t.Fatalf("expected 4 clusters, got %d", len(g.Clusters))
	}
	for _, c := range g.Clusters {
		if len(c.Members) != 5 {
			t.Errorf("cluster %d has %d members, want 5", c.ID, len(c.Members))
		}
	}
}
