// Package graphdata turns a raw provider payload into the render model:
// filtering, synthetic destination nodes, risk indexing, position seeding,
// and community detection. Processing is pure with respect to the payload;
// every load rebuilds the model wholesale.
package graphdata

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/vanderheijden86/relmap/pkg/cluster"
	"github.com/vanderheijden86/relmap/pkg/metrics"
	"github.com/vanderheijden86/relmap/pkg/model"
)

// Offset applied to a synthetic destination node relative to its source.
const (
	destOffsetX = 80.0
	destOffsetY = -60.0
)

// seedSpread is the radius of the pseudo-random scatter around the viewport
// center used when (re)seeding node positions.
const seedSpread = 120.0

// Options configures one processing run.
type Options struct {
	// Hierarchy re-introduces the primary organization node and
	// org-relationship edges.
	Hierarchy bool

	// CenterX/CenterY is the viewport center positions are seeded around.
	CenterX, CenterY float64

	// Seed drives position scatter and cluster visit order. Fixed in tests.
	Seed int64
}

// Process builds a render model from a raw payload. A nil payload or a
// missing node list yields an empty model; malformed entries are dropped,
// never reported as errors.
func Process(p *model.GraphPayload, opts Options) *model.Graph {
	defer metrics.Timer(metrics.GraphProcess)()

	g := &model.Graph{Risk: make(map[string]model.Severity)}
	if p == nil || len(p.Nodes) == 0 {
		return g
	}

	g.Truncated = p.IsTruncated
	g.TotalCount = p.TotalCount
	g.Warnings = p.Warnings

	rng := rand.New(rand.NewSource(opts.Seed))

	// Resolve and filter nodes. The primary organization (the one not
	// flagged as a hierarchy member) is excluded unless hierarchy mode
	// needs it as a layout anchor; its name is kept for cluster labeling.
	byID := make(map[string]*model.Node, len(p.Nodes))
	for i := range p.Nodes {
		pn := &p.Nodes[i]
		if pn.ID == "" {
			continue
		}
		t, ok := model.ParseNodeType(pn.Type)
		if !ok {
			continue
		}
		if _, dup := byID[pn.ID]; dup {
			continue
		}
		if t == model.NodeOrganization && !pn.HierarchyMember {
			if g.RootName == "" {
				g.RootName = pn.Name
			}
			if !opts.Hierarchy {
				continue
			}
		}
		n := &model.Node{
			ID:               pn.ID,
			Name:             pn.Name,
			Title:            pn.Title,
			Type:             t,
			Classification:   pn.Classification,
			Confidence:       pn.Confidence,
			InteractionCount: pn.InteractionCount,
			ClusterID:        -1,
			HierarchyMember:  pn.HierarchyMember,
			HierarchyParent:  pn.HierarchyParent,
			Moved:            pn.Moved,
			Left:             pn.Left,
			MovedToName:      pn.MovedToName,
		}
		n.Radius = radiusFor(t, pn.InteractionCount)
		seedPosition(n, opts, rng)
		byID[n.ID] = n
		g.Nodes = append(g.Nodes, n)
	}

	// Resolve edges. Org-relationship edges only survive in hierarchy mode;
	// dangling or self-referencing edges are dropped.
	for i := range p.Edges {
		pe := &p.Edges[i]
		t, ok := model.ParseEdgeType(pe.Type)
		if !ok {
			continue
		}
		if t == model.EdgeOrgRelationship && !opts.Hierarchy {
			continue
		}
		src, ok := byID[pe.Source]
		if !ok {
			continue
		}
		dst, ok := byID[pe.Target]
		if !ok || src == dst {
			continue
		}
		g.Edges = append(g.Edges, &model.Edge{
			Source:           src,
			Target:           dst,
			Type:             t,
			Strength:         pe.Strength,
			InteractionCount: pe.InteractionCount,
			Label:            pe.Label,
		})
	}

	synthesizeDestinations(g, p, byID)
	indexRisk(g, p.RiskAlerts)

	det := cluster.NewDetector(opts.Seed)
	g.Clusters = det.Detect(g.Nodes, g.Edges, g.RootName)

	return g
}

// synthesizeDestinations adds one destination node and one moved-to edge for
// every surviving node flagged as moved with a destination name, in strict
// 1:1 correspondence. The destination id is the provided one when free, else
// the next free id from a deterministic fallback sequence.
func synthesizeDestinations(g *model.Graph, p *model.GraphPayload, byID map[string]*model.Node) {
	fallbackSeq := 0
	done := make(map[*model.Node]bool)
	for i := range p.Nodes {
		pn := &p.Nodes[i]
		src, ok := byID[pn.ID]
		// The surviving node's flags decide, not the payload entry's: a
		// dropped duplicate entry must neither synthesize for its survivor
		// nor synthesize twice.
		if !ok || done[src] || !src.Moved || src.MovedToName == "" {
			continue
		}
		done[src] = true
		id := pn.MovedToID
		if _, taken := byID[id]; id == "" || taken {
			for {
				fallbackSeq++
				id = fmt.Sprintf("dest-%d", fallbackSeq)
				if _, taken := byID[id]; !taken {
					break
				}
			}
		}
		dest := &model.Node{
			ID:        id,
			Name:      pn.MovedToName,
			Type:      model.NodeDestination,
			ClusterID: -1,
			Radius:    radiusFor(model.NodeDestination, 0),
			X:         src.X + destOffsetX,
			Y:         src.Y + destOffsetY,
		}
		byID[id] = dest
		g.Nodes = append(g.Nodes, dest)
		g.Edges = append(g.Edges, &model.Edge{
			Source:   src,
			Target:   dest,
			Type:     model.EdgeMovedTo,
			Strength: 0.5,
			Label:    "moved to",
		})
	}
}

// indexRisk records the highest severity seen per subject; high beats medium
// on conflict. Alerts without a subject id only matter to the alert list,
// not to the ring overlay.
func indexRisk(g *model.Graph, alerts []model.RiskAlert) {
	for _, a := range alerts {
		if a.SubjectID == "" {
			continue
		}
		sev, ok := model.ParseSeverity(a.Severity)
		if !ok {
			continue
		}
		if cur, seen := g.Risk[a.SubjectID]; !seen || sev > cur {
			g.Risk[a.SubjectID] = sev
		}
	}
}

// radiusFor derives the drawn radius from node type and interaction volume.
func radiusFor(t model.NodeType, interactions int) float64 {
	var base float64
	switch t {
	case model.NodeOrganization:
		base = 14
	case model.NodeDeal:
		base = 11
	case model.NodeDestination:
		base = 9
	case model.NodePerson, model.NodeExternalPerson:
		base = 8
	}
	if interactions <= 0 {
		return base
	}
	return base + math.Min(8, math.Sqrt(float64(interactions))*1.2)
}

// seedPosition scatters a node pseudo-randomly around the viewport center.
func seedPosition(n *model.Node, opts Options, rng *rand.Rand) {
	angle := rng.Float64() * 2 * math.Pi
	dist := rng.Float64() * seedSpread
	n.X = opts.CenterX + math.Cos(angle)*dist
	n.Y = opts.CenterY + math.Sin(angle)*dist
	n.VX, n.VY = 0, 0
}
