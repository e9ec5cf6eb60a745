// Package model defines the relationship-graph data model: the raw payload
// shape delivered by the data provider, and the resolved render model the
// engine works on (typed nodes, resolved edges, clusters, view state).
package model

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// NodeType is the closed set of node kinds the engine renders. Filtering and
// drawing switch exhaustively over these; unknown wire strings are rejected
// at decode time rather than falling through silently.
type NodeType int

const (
	NodePerson NodeType = iota
	NodeOrganization
	NodeDeal
	NodeExternalPerson
	NodeDestination // synthetic "moved to" target, never present in payloads
)

// String returns the wire name of the node type.
func (t NodeType) String() string {
	switch t {
	case NodePerson:
		return "person"
	case NodeOrganization:
		return "organization"
	case NodeDeal:
		return "deal"
	case NodeExternalPerson:
		return "external_person"
	case NodeDestination:
		return "destination"
	default:
		return fmt.Sprintf("NodeType(%d)", int(t))
	}
}

// ParseNodeType maps a wire string to a NodeType.
func ParseNodeType(s string) (NodeType, bool) {
	switch s {
	case "person":
		return NodePerson, true
	case "organization":
		return NodeOrganization, true
	case "deal":
		return NodeDeal, true
	case "external_person":
		return NodeExternalPerson, true
	case "destination":
		return NodeDestination, true
	default:
		return 0, false
	}
}

// EdgeType is the closed set of edge kinds.
type EdgeType int

const (
	EdgeOrgRelationship EdgeType = iota
	EdgeDealRole
	EdgeCoOccurrence
	EdgeCrossOrg
	EdgeHierarchy
	EdgeMovedTo // synthetic, links a moved node to its destination
)

// String returns the wire name of the edge type.
func (t EdgeType) String() string {
	switch t {
	case EdgeOrgRelationship:
		return "org_relationship"
	case EdgeDealRole:
		return "deal_role"
	case EdgeCoOccurrence:
		return "co_occurrence"
	case EdgeCrossOrg:
		return "cross_org"
	case EdgeHierarchy:
		return "hierarchy"
	case EdgeMovedTo:
		return "moved_to"
	default:
		return fmt.Sprintf("EdgeType(%d)", int(t))
	}
}

// ParseEdgeType maps a wire string to an EdgeType.
func ParseEdgeType(s string) (EdgeType, bool) {
	switch s {
	case "org_relationship":
		return EdgeOrgRelationship, true
	case "deal_role":
		return EdgeDealRole, true
	case "co_occurrence":
		return EdgeCoOccurrence, true
	case "cross_org":
		return EdgeCrossOrg, true
	case "hierarchy":
		return EdgeHierarchy, true
	case "moved_to":
		return EdgeMovedTo, true
	default:
		return 0, false
	}
}

// Severity ranks risk alerts. Higher values take precedence when a subject
// carries multiple alerts.
type Severity int

const (
	SeverityMedium Severity = iota + 1
	SeverityHigh
)

func (s Severity) String() string {
	switch s {
	case SeverityHigh:
		return "high"
	case SeverityMedium:
		return "medium"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// ParseSeverity maps a wire string to a Severity.
func ParseSeverity(s string) (Severity, bool) {
	switch s {
	case "high":
		return SeverityHigh, true
	case "medium":
		return SeverityMedium, true
	default:
		return 0, false
	}
}

// PayloadNode is a node as delivered on the wire, before filtering and
// resolution. Type is a free string here; the processor drops entries whose
// type does not parse.
type PayloadNode struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Type             string  `json:"nodeType"`
	Title            string  `json:"title,omitempty"`
	Classification   string  `json:"classification,omitempty"`
	Confidence       float64 `json:"confidence,omitempty"`
	InteractionCount int     `json:"interactionCount"`
	HierarchyMember  bool    `json:"isHierarchyMember,omitempty"`
	HierarchyParent  bool    `json:"isHierarchyParent,omitempty"`
	Moved            bool    `json:"hasMoved,omitempty"`
	Left             bool    `json:"hasLeft,omitempty"`
	MovedToName      string  `json:"movedToName,omitempty"`
	MovedToID        string  `json:"movedToId,omitempty"`
}

// PayloadEdge is an edge as delivered on the wire, endpoints still raw ids.
type PayloadEdge struct {
	Source           string  `json:"source"`
	Target           string  `json:"target"`
	Type             string  `json:"edgeType"`
	Strength         float64 `json:"strength,omitempty"`
	InteractionCount int     `json:"interactionCount,omitempty"`
	Label            string  `json:"label,omitempty"`
}

// RiskAlert is a precomputed signal carried through unmodified; the engine
// only indexes it by subject for the ring overlay.
type RiskAlert struct {
	Severity    string `json:"severity"`
	RiskType    string `json:"riskType"`
	Message     string `json:"message"`
	SubjectID   string `json:"subjectId,omitempty"`
	SubjectName string `json:"subjectName,omitempty"`
}

// GraphPayload is the raw provider response. Nodes may be nil; the processor
// turns that into an empty model rather than an error.
type GraphPayload struct {
	Nodes       []PayloadNode `json:"nodes"`
	Edges       []PayloadEdge `json:"edges"`
	RiskAlerts  []RiskAlert   `json:"riskAlerts,omitempty"`
	IsTruncated bool          `json:"isTruncated,omitempty"`
	TotalCount  int           `json:"totalCount,omitempty"`
	Warnings    []string      `json:"warnings,omitempty"`
}

// DecodePayload parses a raw JSON payload.
func DecodePayload(data []byte) (*GraphPayload, error) {
	var p GraphPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decoding graph payload: %w", err)
	}
	return &p, nil
}

// Node is a resolved render-model node. Positional state is evolved by the
// layout engine; FX/FY pin the node when non-nil.
type Node struct {
	ID               string
	Name             string
	Title            string
	Type             NodeType
	Classification   string
	Confidence       float64
	InteractionCount int

	X, Y   float64
	VX, VY float64
	FX, FY *float64

	Radius float64

	// ClusterID is assigned only to person nodes that participate in
	// clustering; -1 otherwise.
	ClusterID int

	HierarchyMember bool
	HierarchyParent bool
	Moved           bool
	Left            bool
	MovedToName     string
}

// Pin fixes the node at (x, y) so the solver does not move it.
func (n *Node) Pin(x, y float64) {
	fx, fy := x, y
	n.FX, n.FY = &fx, &fy
}

// Unpin releases a pinned node back to the solver.
func (n *Node) Unpin() {
	n.FX, n.FY = nil, nil
}

// Pinned reports whether the node is currently pinned.
func (n *Node) Pinned() bool {
	return n.FX != nil && n.FY != nil
}

// Edge is a resolved render-model edge: endpoints are node references, not
// raw ids.
type Edge struct {
	Source           *Node
	Target           *Node
	Type             EdgeType
	Strength         float64
	InteractionCount int
	Label            string
}

// Cluster groups person nodes detected as a community. IDs are dense and
// zero-based; Label is descriptive ("Champion group (3)" or the root entity
// name for the largest cluster).
type Cluster struct {
	ID      int
	Members []*Node
	Label   string
}

// Graph is the render model produced by the processor for one load. It is
// rebuilt wholesale on every load or refresh; nothing patches it in place.
type Graph struct {
	Nodes    []*Node
	Edges    []*Edge
	Clusters []Cluster

	// Risk indexes subject id to the highest severity seen for it.
	Risk map[string]Severity

	// RootName is the primary organization's name, used for cluster labels.
	RootName string

	Truncated  bool
	TotalCount int
	Warnings   []string
}

// NodeByID returns the node with the given id, or nil.
func (g *Graph) NodeByID(id string) *Node {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n
		}
	}
	return nil
}

// View-transform scale bounds.
const (
	MinScale = 0.1
	MaxScale = 5.0
)

// ViewTransform is the pan/zoom state. World coordinates map to screen as
// screen = world*K + (X, Y).
type ViewTransform struct {
	X, Y float64
	K    float64
}

// NewViewTransform returns the identity transform.
func NewViewTransform() ViewTransform {
	return ViewTransform{K: 1}
}

// ToWorld converts a screen-space point to world space by inverting the
// transform.
func (t ViewTransform) ToWorld(sx, sy float64) (float64, float64) {
	return (sx - t.X) / t.K, (sy - t.Y) / t.K
}

// ToScreen converts a world-space point to screen space.
func (t ViewTransform) ToScreen(wx, wy float64) (float64, float64) {
	return wx*t.K + t.X, wy*t.K + t.Y
}

// ClampScale bounds k to the allowed zoom range.
func ClampScale(k float64) float64 {
	if k < MinScale {
		return MinScale
	}
	if k > MaxScale {
		return MaxScale
	}
	return k
}

// ToggleState is the per-root view configuration persisted between sessions.
type ToggleState struct {
	HidePassiveNodes  bool `json:"hide_passive_nodes" yaml:"hide_passive_nodes"`
	ShowExternalNodes bool `json:"show_external_nodes" yaml:"show_external_nodes"`
	ShowHierarchy     bool `json:"show_hierarchy" yaml:"show_hierarchy"`
	MinInteractions   int  `json:"min_interactions" yaml:"min_interactions"`
}
