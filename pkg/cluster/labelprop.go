// Package cluster groups person nodes into communities for visual grouping
// (convex-hull backgrounds) and for the layout's cohesion force.
//
// Detection is weighted label propagation restricted to co-occurrence edges:
// every person starts with a unique label, then repeatedly adopts the label
// with the largest weighted support among its neighbors. Ties keep the
// current label, so the algorithm cannot flap between equally supported
// labels. The visit order is randomized per pass; the resulting partition
// depends only on connectivity and weights, not on traversal order.
package cluster

import (
	"fmt"
	"image/color"
	"math/rand"

	"github.com/vanderheijden86/relmap/pkg/metrics"
	"github.com/vanderheijden86/relmap/pkg/model"
)

// maxPasses bounds propagation; well-formed graphs converge much earlier.
const maxPasses = 10

// Palette is the cyclic cluster color palette, indexed by cluster id modulo
// its length.
var Palette = []color.RGBA{
	{0x4e, 0x79, 0xa7, 0xff}, // blue
	{0xf2, 0x8e, 0x2b, 0xff}, // orange
	{0x59, 0xa1, 0x4f, 0xff}, // green
	{0xe1, 0x57, 0x59, 0xff}, // red
	{0xaf, 0x7a, 0xa1, 0xff}, // purple
	{0x76, 0xb7, 0xb2, 0xff}, // teal
	{0xed, 0xc9, 0x49, 0xff}, // yellow
	{0xff, 0x9d, 0xa7, 0xff}, // pink
}

// Color returns the palette color for a cluster id.
func Color(clusterID int) color.RGBA {
	if clusterID < 0 {
		return color.RGBA{0x99, 0x99, 0x99, 0xff}
	}
	return Palette[clusterID%len(Palette)]
}

// Detector runs label propagation. The zero value is not usable; construct
// with NewDetector. The random source drives per-pass visit order only.
type Detector struct {
	rng *rand.Rand
}

// NewDetector returns a Detector seeded from the given source. Tests pass a
// fixed seed; production callers typically seed from time.
func NewDetector(seed int64) *Detector {
	return &Detector{rng: rand.New(rand.NewSource(seed))}
}

// Detect assigns model.Node.ClusterID for person nodes reachable through
// co-occurrence edges and returns cluster metadata. Non-person nodes keep
// ClusterID -1. rootName, when non-empty, replaces the generated label of
// the largest cluster.
func (d *Detector) Detect(nodes []*model.Node, edges []*model.Edge, rootName string) []model.Cluster {
	defer metrics.Timer(metrics.ClusterDetect)()

	persons := make([]*model.Node, 0, len(nodes))
	index := make(map[string]int) // node id -> index into persons
	for _, n := range nodes {
		n.ClusterID = -1
		if n.Type == model.NodePerson {
			index[n.ID] = len(persons)
			persons = append(persons, n)
		}
	}
	if len(persons) == 0 {
		return nil
	}

	adj := buildAdjacency(persons, index, edges)
	labels := propagate(persons, adj, d.rng)

	// Re-map arbitrary labels to dense zero-based ids in first-seen order.
	dense := make(map[int]int)
	for i, n := range persons {
		id, ok := dense[labels[i]]
		if !ok {
			id = len(dense)
			dense[labels[i]] = id
		}
		n.ClusterID = id
	}

	clusters := make([]model.Cluster, len(dense))
	for i := range clusters {
		clusters[i].ID = i
	}
	for _, n := range persons {
		clusters[n.ClusterID].Members = append(clusters[n.ClusterID].Members, n)
	}
	for i := range clusters {
		clusters[i].Label = describe(clusters[i].Members)
	}

	// The single largest cluster carries the root entity's name when known.
	if rootName != "" {
		largest := 0
		for i := range clusters {
			if len(clusters[i].Members) > len(clusters[largest].Members) {
				largest = i
			}
		}
		clusters[largest].Label = rootName
	}

	return clusters
}

type neighbor struct {
	idx    int
	weight float64
}

// buildAdjacency restricts the graph to co-occurrence edges between person
// nodes. Edge weight is the interaction count, defaulting to 1 when unset or
// non-positive.
func buildAdjacency(persons []*model.Node, index map[string]int, edges []*model.Edge) [][]neighbor {
	adj := make([][]neighbor, len(persons))
	for _, e := range edges {
		if e.Type != model.EdgeCoOccurrence {
			continue
		}
		si, ok := index[e.Source.ID]
		if !ok {
			continue
		}
		ti, ok := index[e.Target.ID]
		if !ok || si == ti {
			continue
		}
		w := float64(e.InteractionCount)
		if w <= 0 {
			w = 1
		}
		adj[si] = append(adj[si], neighbor{ti, w})
		adj[ti] = append(adj[ti], neighbor{si, w})
	}
	return adj
}

// propagate runs the bounded label-propagation loop and returns the final
// label per person index.
func propagate(persons []*model.Node, adj [][]neighbor, rng *rand.Rand) []int {
	labels := make([]int, len(persons))
	for i := range labels {
		labels[i] = i
	}

	order := make([]int, len(persons))
	for i := range order {
		order[i] = i
	}

	support := make(map[int]float64)
	for pass := 0; pass < maxPasses; pass++ {
		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

		changed := false
		for _, i := range order {
			if len(adj[i]) == 0 {
				continue
			}
			clear(support)
			for _, nb := range adj[i] {
				support[labels[nb.idx]] += nb.weight
			}

			// Adopt only a strictly dominant label: anything short of a
			// unique maximum above the current label's support keeps the
			// current label, so membership never flaps on ties.
			cur := labels[i]
			best, bestW, unique := cur, support[cur], true
			for l, w := range support {
				if w > bestW {
					best, bestW, unique = l, w, true
				} else if w == bestW && l != best {
					unique = false
				}
			}
			if best != cur && unique {
				labels[i] = best
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	return labels
}

// describe builds a cluster label from the most frequent classification among
// members, e.g. "Champion group (3)". Unclassified clusters fall back to a
// plain group label.
func describe(members []*model.Node) string {
	counts := make(map[string]int)
	for _, n := range members {
		if n.Classification != "" {
			counts[n.Classification]++
		}
	}
	top, topN := "", 0
	for c, n := range counts {
		if n > topN || (n == topN && c < top) {
			top, topN = c, n
		}
	}
	if top == "" {
		return fmt.Sprintf("Group (%d)", len(members))
	}
	return fmt.Sprintf("%s group (%d)", top, len(members))
}
