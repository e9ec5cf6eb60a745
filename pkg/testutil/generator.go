// Package testutil generates deterministic graph payload fixtures: community
// topologies, churn (moved contacts), and risk alerts, at whatever scale a
// test or benchmark dataset needs.
package testutil

import (
	"fmt"
	"math/rand"

	"github.com/vanderheijden86/relmap/pkg/model"
)

// GeneratorConfig controls payload generation. The zero value is not useful;
// start from DefaultConfig.
type GeneratorConfig struct {
	// Seed drives every random choice. Fixed by default so fixtures are
	// reproducible run to run.
	Seed int64

	// Communities is the number of co-occurrence groups and PeoplePer their
	// size. Edge weights inside a community are distinct per edge so label
	// propagation converges to one community per group.
	Communities int
	PeoplePer   int

	// ExternalPeople adds contacts outside the organization, each linked to
	// one random insider.
	ExternalPeople int

	// MovedFraction of people are flagged as moved with a destination name.
	MovedFraction float64

	// RiskFraction of people get a risk alert, alternating severities.
	RiskFraction float64

	// Classified applies round-robin classifications to people.
	Classified bool
}

// DefaultConfig returns a small, fully deterministic fixture config.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Seed:        42,
		Communities: 3,
		PeoplePer:   4,
		Classified:  true,
	}
}

var classifications = []string{
	"Champion", "Decision Maker", "Influencer", "Gatekeeper", "Detractor", "Neutral",
}

// Generator builds payload fixtures.
type Generator struct {
	cfg GeneratorConfig
	rng *rand.Rand
}

// NewGenerator returns a generator for the given config.
func NewGenerator(cfg GeneratorConfig) *Generator {
	return &Generator{cfg: cfg, rng: rand.New(rand.NewSource(cfg.Seed))}
}

// Payload generates one complete payload: a primary organization, the
// configured communities, optional external people, churn, and risk alerts.
func (g *Generator) Payload() *model.GraphPayload {
	p := &model.GraphPayload{}

	p.Nodes = append(p.Nodes, model.PayloadNode{
		ID:   "org-root",
		Name: "Fixture Corp",
		Type: "organization",
	})

	var people []string
	for c := 0; c < g.cfg.Communities; c++ {
		var members []string
		for i := 0; i < g.cfg.PeoplePer; i++ {
			id := fmt.Sprintf("p-%d-%d", c, i)
			n := model.PayloadNode{
				ID:               id,
				Name:             fmt.Sprintf("Person %d-%d", c, i),
				Type:             "person",
				InteractionCount: 1 + g.rng.Intn(40),
			}
			if g.cfg.Classified {
				n.Classification = classifications[(c*g.cfg.PeoplePer+i)%len(classifications)]
				n.Confidence = 0.5 + g.rng.Float64()*0.5
			}
			p.Nodes = append(p.Nodes, n)
			members = append(members, id)
			people = append(people, id)

			p.Edges = append(p.Edges, model.PayloadEdge{
				Source: "org-root",
				Target: id,
				Type:   "org_relationship",
			})
		}

		// Chain plus one closing edge, with strictly decreasing weights so
		// every member has a unique strongest neighbor.
		w := g.cfg.PeoplePer + 2
		for i := 1; i < len(members); i++ {
			p.Edges = append(p.Edges, model.PayloadEdge{
				Source:           members[i-1],
				Target:           members[i],
				Type:             "co_occurrence",
				InteractionCount: w,
			})
			w--
		}
		if len(members) > 2 {
			p.Edges = append(p.Edges, model.PayloadEdge{
				Source:           members[0],
				Target:           members[len(members)-1],
				Type:             "co_occurrence",
				InteractionCount: 1,
			})
		}
	}

	for i := 0; i < g.cfg.ExternalPeople; i++ {
		id := fmt.Sprintf("ext-%d", i)
		p.Nodes = append(p.Nodes, model.PayloadNode{
			ID:               id,
			Name:             fmt.Sprintf("External %d", i),
			Type:             "external_person",
			InteractionCount: 1 + g.rng.Intn(10),
		})
		p.Edges = append(p.Edges, model.PayloadEdge{
			Source:           people[g.rng.Intn(len(people))],
			Target:           id,
			Type:             "cross_org",
			InteractionCount: 1 + g.rng.Intn(5),
		})
	}

	moved := int(float64(len(people)) * g.cfg.MovedFraction)
	for i := 0; i < moved; i++ {
		for j := range p.Nodes {
			if p.Nodes[j].ID == people[i] {
				p.Nodes[j].Moved = true
				p.Nodes[j].MovedToName = fmt.Sprintf("Elsewhere %d", i)
				break
			}
		}
	}

	risky := int(float64(len(people)) * g.cfg.RiskFraction)
	for i := 0; i < risky; i++ {
		sev := "medium"
		if i%2 == 0 {
			sev = "high"
		}
		p.RiskAlerts = append(p.RiskAlerts, model.RiskAlert{
			SubjectID: people[len(people)-1-i],
			Severity:  sev,
			Message:   fmt.Sprintf("fixture alert %d", i),
		})
	}

	return p
}
