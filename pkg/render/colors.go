package render

import (
	"fmt"
	"image/color"

	"github.com/vanderheijden86/relmap/pkg/model"
)

// Scene palette.
var (
	colorBackdrop = color.RGBA{0xf9, 0xfa, 0xfb, 0xff}
	colorText     = color.RGBA{0x11, 0x11, 0x11, 0xff}
	colorSubtle   = color.RGBA{0x66, 0x66, 0x66, 0xff}
	colorBorder   = color.RGBA{0xff, 0xff, 0xff, 0xff}
	colorDimmed   = color.RGBA{0xb0, 0xb5, 0xbb, 0xff}
	colorMoved    = color.RGBA{0x9e, 0x9e, 0x9e, 0xff}
	colorMovedAcc = color.RGBA{0xd9, 0x3a, 0x3a, 0xff}

	colorRiskHigh   = color.RGBA{0xd9, 0x3a, 0x3a, 0xff}
	colorRiskMedium = color.RGBA{0xf2, 0x8e, 0x2b, 0xff}

	colorTooltipBG = color.RGBA{0x2b, 0x2f, 0x36, 0xf0}
	colorTooltipFG = color.RGBA{0xf4, 0xf5, 0xf7, 0xff}

	colorLegendBG = color.RGBA{0xee, 0xee, 0xee, 0xff}
)

// Edge stroke colors by type.
var (
	colorEdgeCoOccur = color.RGBA{0x6b, 0x80, 0xbf, 0xff}
	colorEdgeDeal    = color.RGBA{0xcf, 0x9b, 0x2a, 0xff}
	colorEdgeCross   = color.RGBA{0x8e, 0x5e, 0xa2, 0xff}
	colorEdgeHier    = color.RGBA{0x4a, 0x4f, 0x57, 0xff}
	colorEdgeOrg     = color.RGBA{0x9a, 0xa0, 0xa8, 0xff}
)

// classificationColors is the fixed classification → color lookup. Anything
// outside it falls back to the node-type color.
var classificationColors = map[string]color.RGBA{
	"Champion":       {0x2e, 0x8b, 0x57, 0xff},
	"Decision Maker": {0x1f, 0x6f, 0xb2, 0xff},
	"Influencer":     {0x8e, 0x5e, 0xa2, 0xff},
	"Gatekeeper":     {0xcf, 0x9b, 0x2a, 0xff},
	"Detractor":      {0xd9, 0x3a, 0x3a, 0xff},
	"Neutral":        {0x7f, 0x8c, 0x8d, 0xff},
}

// nodeTypeColors is the fixed node-type → color lookup.
var nodeTypeColors = map[model.NodeType]color.RGBA{
	model.NodePerson:         {0x4e, 0x79, 0xa7, 0xff},
	model.NodeOrganization:   {0x37, 0x47, 0x5a, 0xff},
	model.NodeDeal:           {0x59, 0xa1, 0x4f, 0xff},
	model.NodeExternalPerson: {0x76, 0xb7, 0xb2, 0xff},
	model.NodeDestination:    {0x9e, 0x9e, 0x9e, 0xff},
}

// NodeColor derives a node's display color. Moved nodes are always gray.
// When the active classification filter set is non-empty and excludes the
// node's classification, the color dims to neutral gray; filter toggles
// therefore need a redraw but no re-layout.
func NodeColor(n *model.Node, filters map[string]bool) color.RGBA {
	if n.Moved || n.Left {
		return colorMoved
	}
	if len(filters) > 0 && !filters[n.Classification] {
		return colorDimmed
	}
	if c, ok := classificationColors[n.Classification]; ok {
		return c
	}
	if c, ok := nodeTypeColors[n.Type]; ok {
		return c
	}
	return colorDimmed
}

// edgeStyle is the stroke recipe for one edge type.
type edgeStyle struct {
	color color.RGBA
	width float64
	dash  []float64 // nil means solid
}

// edgeStyleFor selects color/width/dash per edge type.
func edgeStyleFor(t model.EdgeType) edgeStyle {
	switch t {
	case model.EdgeCoOccurrence:
		return edgeStyle{colorEdgeCoOccur, 1.5, nil}
	case model.EdgeDealRole:
		return edgeStyle{colorEdgeDeal, 1.5, nil}
	case model.EdgeCrossOrg:
		return edgeStyle{colorEdgeCross, 1.2, []float64{6, 4}}
	case model.EdgeHierarchy:
		return edgeStyle{colorEdgeHier, 2.5, nil}
	case model.EdgeOrgRelationship:
		return edgeStyle{colorEdgeOrg, 1.2, nil}
	case model.EdgeMovedTo:
		return edgeStyle{colorMovedAcc, 1.5, []float64{4, 4}}
	default:
		return edgeStyle{colorEdgeOrg, 1.0, nil}
	}
}

// riskColor maps severity to its ring color.
func riskColor(s model.Severity) color.RGBA {
	if s == model.SeverityHigh {
		return colorRiskHigh
	}
	return colorRiskMedium
}

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
