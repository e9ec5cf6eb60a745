// Package render draws the relationship graph. The pipeline is immediate
// mode: every tick or interaction redraws the whole scene from current node
// positions; there is no retained display list. Per-frame order under the
// view transform: cluster hulls, edges, nodes, hover overlay; the legend is
// drawn last in screen space.
package render

import (
	"fmt"
	"math"
	"sort"

	"git.sr.ht/~sbinet/gg"
	"github.com/mattn/go-runewidth"
	"golang.org/x/image/font/basicfont"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/vanderheijden86/relmap/pkg/cluster"
	"github.com/vanderheijden86/relmap/pkg/geom"
	"github.com/vanderheijden86/relmap/pkg/metrics"
	"github.com/vanderheijden86/relmap/pkg/model"
)

const (
	hullPad       = 24.0
	labelMaxWidth = 18 // display cells before ellipsis
	tooltipPad    = 8.0
	lineHeight    = 14.0
	arrowSize     = 8.0
)

// Frame is everything one redraw needs.
type Frame struct {
	Graph     *model.Graph
	Transform model.ViewTransform
	Hovered   *model.Node
	Selected  *model.Node

	// Filters is the active classification filter set; non-empty means
	// everything outside it renders dimmed.
	Filters map[string]bool

	Width, Height int
}

// Renderer draws frames onto a gg context.
type Renderer struct{}

// New returns a Renderer.
func New() *Renderer {
	return &Renderer{}
}

// Draw renders one full frame.
func (r *Renderer) Draw(dc *gg.Context, f Frame) {
	defer metrics.Timer(metrics.FrameRender)()

	dc.SetColor(colorBackdrop)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	if f.Graph == nil {
		return
	}

	dc.Push()
	dc.Translate(f.Transform.X, f.Transform.Y)
	dc.Scale(f.Transform.K, f.Transform.K)

	r.drawHulls(dc, f.Graph)
	for _, e := range f.Graph.Edges {
		r.drawEdge(dc, e)
	}
	for _, n := range f.Graph.Nodes {
		r.drawNode(dc, n, f)
	}
	if f.Hovered != nil {
		r.drawHover(dc, f.Hovered, f.Graph)
	}

	dc.Pop()

	r.drawLegend(dc, f)
}

// RenderPNG draws a frame into a fresh raster context and saves it. Used by
// the snapshot exporter once the layout has settled.
func (r *Renderer) RenderPNG(f Frame, path string) error {
	dc := gg.NewContext(f.Width, f.Height)
	r.Draw(dc, f)
	if err := dc.SavePNG(path); err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	return nil
}

// --- cluster hulls -----------------------------------------------------------

// drawHulls fills one padded convex hull per cluster with at least two
// members. The whole step is skipped when at most one cluster exists.
func (r *Renderer) drawHulls(dc *gg.Context, g *model.Graph) {
	if len(g.Clusters) <= 1 {
		return
	}
	for _, c := range g.Clusters {
		if len(c.Members) < 2 {
			continue
		}
		pts := make([]r2.Vec, 0, len(c.Members)+2)
		for _, n := range c.Members {
			pts = append(pts, r2.Vec{X: n.X, Y: n.Y})
		}
		if len(pts) == 2 {
			// Two points have a degenerate hull; widen the segment so the
			// expansion still produces a fillable polygon.
			mid := geom.Centroid(pts)
			pts = append(pts,
				r2.Vec{X: mid.X, Y: mid.Y + 1},
				r2.Vec{X: mid.X, Y: mid.Y - 1},
			)
		}
		hull := geom.ExpandFromCentroid(geom.ConvexHull(pts), hullPad)
		if len(hull) < 3 {
			continue
		}

		col := cluster.Color(c.ID)
		dc.NewSubPath()
		dc.MoveTo(hull[0].X, hull[0].Y)
		for _, p := range hull[1:] {
			dc.LineTo(p.X, p.Y)
		}
		dc.ClosePath()
		dc.SetRGBA255(int(col.R), int(col.G), int(col.B), 40)
		dc.FillPreserve()
		dc.SetRGBA255(int(col.R), int(col.G), int(col.B), 120)
		dc.SetLineWidth(1.5)
		dc.Stroke()

		// Label above the topmost hull point.
		top := hull[0]
		for _, p := range hull[1:] {
			if p.Y < top.Y {
				top = p
			}
		}
		dc.SetRGBA255(int(col.R), int(col.G), int(col.B), 255)
		dc.DrawStringAnchored(c.Label, top.X, top.Y-6, 0.5, 1)
	}
}

// --- edges -------------------------------------------------------------------

func (r *Renderer) drawEdge(dc *gg.Context, e *model.Edge) {
	st := edgeStyleFor(e.Type)
	dc.SetColor(st.color)
	dc.SetLineWidth(st.width)
	if st.dash != nil {
		dc.SetDash(st.dash...)
	}
	dc.DrawLine(e.Source.X, e.Source.Y, e.Target.X, e.Target.Y)
	dc.Stroke()
	if st.dash != nil {
		dc.SetDash()
	}

	if e.Type == model.EdgeMovedTo {
		r.drawArrowhead(dc, e, st)
		mx := (e.Source.X + e.Target.X) / 2
		my := (e.Source.Y + e.Target.Y) / 2
		dc.SetColor(st.color)
		dc.DrawStringAnchored("moved to", mx, my-4, 0.5, 0)
	}
}

// drawArrowhead draws a directional triangle at the target end of a moved-to
// edge, backed off by the target's radius so it sits on the node border.
func (r *Renderer) drawArrowhead(dc *gg.Context, e *model.Edge, st edgeStyle) {
	angle := math.Atan2(e.Target.Y-e.Source.Y, e.Target.X-e.Source.X)
	tipX := e.Target.X - math.Cos(angle)*e.Target.Radius
	tipY := e.Target.Y - math.Sin(angle)*e.Target.Radius

	left := angle + math.Pi - math.Pi/7
	right := angle + math.Pi + math.Pi/7
	dc.NewSubPath()
	dc.MoveTo(tipX, tipY)
	dc.LineTo(tipX+math.Cos(left)*arrowSize, tipY+math.Sin(left)*arrowSize)
	dc.LineTo(tipX+math.Cos(right)*arrowSize, tipY+math.Sin(right)*arrowSize)
	dc.ClosePath()
	dc.SetColor(st.color)
	dc.Fill()
}

// --- nodes -------------------------------------------------------------------

func (r *Renderer) drawNode(dc *gg.Context, n *model.Node, f Frame) {
	fill := NodeColor(n, f.Filters)

	tracePath(dc, n)
	dc.SetColor(fill)
	dc.Fill()

	// Border per state: white default, red dashed for moved/left nodes,
	// thicker for hierarchy parents.
	switch {
	case n.Moved || n.Left:
		dc.SetColor(colorMovedAcc)
		dc.SetLineWidth(1.5)
		dc.SetDash(3, 3)
		tracePath(dc, n)
		dc.Stroke()
		dc.SetDash()
	case n.HierarchyParent:
		dc.SetColor(colorBorder)
		dc.SetLineWidth(3)
		tracePath(dc, n)
		dc.Stroke()
	default:
		dc.SetColor(colorBorder)
		dc.SetLineWidth(1.5)
		tracePath(dc, n)
		dc.Stroke()
	}

	// Dashed risk ring for nodes present in the risk index.
	if sev, ok := f.Graph.Risk[n.ID]; ok {
		dc.SetColor(riskColor(sev))
		dc.SetLineWidth(2)
		dc.SetDash(4, 3)
		dc.DrawCircle(n.X, n.Y, n.Radius+4)
		dc.Stroke()
		dc.SetDash()
	}

	if f.Selected == n {
		dc.SetColor(colorText)
		dc.SetLineWidth(2)
		dc.DrawCircle(n.X, n.Y, n.Radius+7)
		dc.Stroke()
	}

	dc.SetColor(colorText)
	dc.DrawStringAnchored(truncateLabel(n.Name), n.X, n.Y+n.Radius+10, 0.5, 0.5)
}

// tracePath outlines the node's shape without filling or stroking: diamond
// for organizations and destinations, circle for people, square for deals,
// hexagon for external people.
func tracePath(dc *gg.Context, n *model.Node) {
	switch n.Type {
	case model.NodeOrganization, model.NodeDestination:
		dc.DrawRegularPolygon(4, n.X, n.Y, n.Radius, 0)
	case model.NodeDeal:
		dc.DrawRegularPolygon(4, n.X, n.Y, n.Radius, math.Pi/4)
	case model.NodeExternalPerson:
		dc.DrawRegularPolygon(6, n.X, n.Y, n.Radius, 0)
	case model.NodePerson:
		dc.DrawCircle(n.X, n.Y, n.Radius)
	default:
		dc.DrawCircle(n.X, n.Y, n.Radius)
	}
}

// --- hover overlay -----------------------------------------------------------

// drawHover draws the highlight ring and a tooltip box beside the hovered
// node, sized to its longest line.
func (r *Renderer) drawHover(dc *gg.Context, n *model.Node, g *model.Graph) {
	dc.SetColor(colorText)
	dc.SetLineWidth(2)
	dc.DrawCircle(n.X, n.Y, n.Radius+5)
	dc.Stroke()

	lines := tooltipLines(n, g)
	var maxW float64
	for _, l := range lines {
		if w, _ := dc.MeasureString(l); w > maxW {
			maxW = w
		}
	}
	boxW := maxW + 2*tooltipPad
	boxH := float64(len(lines))*lineHeight + 2*tooltipPad
	x := n.X + n.Radius + 12
	y := n.Y - boxH/2

	dc.SetColor(colorTooltipBG)
	dc.DrawRoundedRectangle(x, y, boxW, boxH, 6)
	dc.Fill()
	dc.SetColor(colorTooltipFG)
	for i, l := range lines {
		dc.DrawStringAnchored(l, x+tooltipPad, y+tooltipPad+float64(i)*lineHeight+lineHeight/2, 0, 0.5)
	}
}

// tooltipLines assembles the hover text: name, title, classification with
// confidence, interaction count, and any moved annotation.
func tooltipLines(n *model.Node, g *model.Graph) []string {
	lines := []string{n.Name}
	if n.Title != "" {
		lines = append(lines, n.Title)
	}
	if n.Classification != "" {
		lines = append(lines, fmt.Sprintf("%s (%.0f%%)", n.Classification, n.Confidence*100))
	}
	lines = append(lines, fmt.Sprintf("%d interactions", n.InteractionCount))
	if n.Moved && n.MovedToName != "" {
		lines = append(lines, fmt.Sprintf("Moved to %s", n.MovedToName))
	} else if n.Left {
		lines = append(lines, "Left the organization")
	}
	if sev, ok := g.Risk[n.ID]; ok {
		lines = append(lines, fmt.Sprintf("Risk: %s", sev))
	}
	return lines
}

// --- legend ------------------------------------------------------------------

type legendRow struct {
	label string
	draw  func(dc *gg.Context, x, y float64)
}

// drawLegend renders the overlay legend in screen space, outside the view
// transform. Only overlay kinds actually present in the data appear; an
// empty legend renders nothing.
func (r *Renderer) drawLegend(dc *gg.Context, f Frame) {
	rows := legendRows(f.Graph)
	if len(rows) == 0 {
		return
	}

	boxW := 190.0
	boxH := float64(len(rows))*18 + 28
	x := float64(f.Width) - boxW - 16
	y := 16.0

	dc.SetColor(colorLegendBG)
	dc.DrawRoundedRectangle(x, y, boxW, boxH, 8)
	dc.Fill()
	dc.SetColor(colorSubtle)
	dc.DrawRoundedRectangle(x, y, boxW, boxH, 8)
	dc.Stroke()

	dc.SetColor(colorText)
	dc.DrawStringAnchored("Legend", x+10, y+14, 0, 0.5)
	for i, row := range rows {
		ry := y + 30 + float64(i)*18
		row.draw(dc, x+16, ry)
		dc.SetColor(colorSubtle)
		dc.DrawStringAnchored(row.label, x+30, ry, 0, 0.5)
	}
}

// legendRows selects the overlay kinds present in the current data.
func legendRows(g *model.Graph) []legendRow {
	if g == nil {
		return nil
	}
	var rows []legendRow
	if len(g.Risk) > 0 {
		rows = append(rows, legendRow{"Risk alert", func(dc *gg.Context, x, y float64) {
			dc.SetColor(colorRiskHigh)
			dc.SetLineWidth(2)
			dc.SetDash(3, 2)
			dc.DrawCircle(x, y, 6)
			dc.Stroke()
			dc.SetDash()
		}})
	}
	hasMoved, hasMovedTo := false, false
	for _, n := range g.Nodes {
		if n.Moved || n.Left {
			hasMoved = true
		}
	}
	for _, e := range g.Edges {
		if e.Type == model.EdgeMovedTo {
			hasMovedTo = true
		}
	}
	if hasMoved {
		rows = append(rows, legendRow{"Moved / left", func(dc *gg.Context, x, y float64) {
			dc.SetColor(colorMovedAcc)
			dc.SetLineWidth(1.5)
			dc.SetDash(3, 3)
			dc.DrawCircle(x, y, 6)
			dc.Stroke()
			dc.SetDash()
		}})
	}
	if hasMovedTo {
		rows = append(rows, legendRow{"Moved-to arrow", func(dc *gg.Context, x, y float64) {
			dc.SetColor(colorMovedAcc)
			dc.SetLineWidth(1.5)
			dc.DrawLine(x-7, y, x+4, y)
			dc.Stroke()
			dc.NewSubPath()
			dc.MoveTo(x+7, y)
			dc.LineTo(x+2, y-3)
			dc.LineTo(x+2, y+3)
			dc.ClosePath()
			dc.Fill()
		}})
	}
	return rows
}

// --- helpers -----------------------------------------------------------------

// truncateLabel shortens a node label to the fixed display budget, measured
// in terminal cells so wide runes count double.
func truncateLabel(s string) string {
	return runewidth.Truncate(s, labelMaxWidth, "…")
}

// SortedClassifications returns the classifications present in the graph in
// stable order, for filter badge rendering in the terminal UI.
func SortedClassifications(g *model.Graph) []string {
	if g == nil {
		return nil
	}
	seen := make(map[string]bool)
	var out []string
	for _, n := range g.Nodes {
		if n.Classification != "" && !seen[n.Classification] {
			seen[n.Classification] = true
			out = append(out, n.Classification)
		}
	}
	sort.Strings(out)
	return out
}
