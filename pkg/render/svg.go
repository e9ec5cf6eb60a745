package render

import (
	"fmt"
	"io"
	"math"

	svg "github.com/ajstarks/svgo"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/vanderheijden86/relmap/pkg/cluster"
	"github.com/vanderheijden86/relmap/pkg/geom"
	"github.com/vanderheijden86/relmap/pkg/model"
)

// WriteSVG renders a static snapshot of the frame as SVG. The same scene
// order as the raster pipeline applies; interactive overlays (hover ring,
// tooltip) are omitted since a static export has no pointer.
func (r *Renderer) WriteSVG(w io.Writer, f Frame) error {
	if f.Graph == nil {
		return fmt.Errorf("no graph to export")
	}

	canvas := svg.New(w)
	canvas.Start(f.Width, f.Height)
	canvas.Rect(0, 0, f.Width, f.Height, fmt.Sprintf("fill:%s", css(colorBackdrop)))

	canvas.Gtransform(fmt.Sprintf("translate(%.2f,%.2f) scale(%.3f)", f.Transform.X, f.Transform.Y, f.Transform.K))

	svgHulls(canvas, f.Graph)
	for _, e := range f.Graph.Edges {
		svgEdge(canvas, e)
	}
	for _, n := range f.Graph.Nodes {
		svgNode(canvas, n, f)
	}

	canvas.Gend()
	canvas.End()
	return nil
}

func svgHulls(canvas *svg.SVG, g *model.Graph) {
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
		xs := make([]int, len(hull))
		ys := make([]int, len(hull))
		top := hull[0]
		for i, p := range hull {
			xs[i], ys[i] = int(p.X), int(p.Y)
			if p.Y < top.Y {
				top = p
			}
		}
		col := cluster.Color(c.ID)
		canvas.Polygon(xs, ys, fmt.Sprintf("fill:%s;fill-opacity:0.16;stroke:%s;stroke-opacity:0.5", css(col), css(col)))
		canvas.Text(int(top.X), int(top.Y)-6, c.Label,
			fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace;text-anchor:middle", css(col)))
	}
}

func svgEdge(canvas *svg.SVG, e *model.Edge) {
	st := edgeStyleFor(e.Type)
	style := fmt.Sprintf("stroke:%s;stroke-width:%.1f", css(st.color), st.width)
	if st.dash != nil {
		style += fmt.Sprintf(";stroke-dasharray:%.0f,%.0f", st.dash[0], st.dash[1])
	}
	canvas.Line(int(e.Source.X), int(e.Source.Y), int(e.Target.X), int(e.Target.Y), style)

	if e.Type == model.EdgeMovedTo {
		angle := math.Atan2(e.Target.Y-e.Source.Y, e.Target.X-e.Source.X)
		tipX := e.Target.X - math.Cos(angle)*e.Target.Radius
		tipY := e.Target.Y - math.Sin(angle)*e.Target.Radius
		left := angle + math.Pi - math.Pi/7
		right := angle + math.Pi + math.Pi/7
		canvas.Polygon(
			[]int{int(tipX), int(tipX + math.Cos(left)*arrowSize), int(tipX + math.Cos(right)*arrowSize)},
			[]int{int(tipY), int(tipY + math.Sin(left)*arrowSize), int(tipY + math.Sin(right)*arrowSize)},
			fmt.Sprintf("fill:%s", css(st.color)),
		)
		mx := int((e.Source.X + e.Target.X) / 2)
		my := int((e.Source.Y+e.Target.Y)/2) - 4
		canvas.Text(mx, my, "moved to",
			fmt.Sprintf("fill:%s;font-size:10px;font-family:monospace;text-anchor:middle", css(st.color)))
	}
}

func svgNode(canvas *svg.SVG, n *model.Node, f Frame) {
	fill := NodeColor(n, f.Filters)

	border := fmt.Sprintf("stroke:%s;stroke-width:1.5", css(colorBorder))
	switch {
	case n.Moved || n.Left:
		border = fmt.Sprintf("stroke:%s;stroke-width:1.5;stroke-dasharray:3,3", css(colorMovedAcc))
	case n.HierarchyParent:
		border = fmt.Sprintf("stroke:%s;stroke-width:3", css(colorBorder))
	}
	style := fmt.Sprintf("fill:%s;%s", css(fill), border)

	switch n.Type {
	case model.NodePerson:
		canvas.Circle(int(n.X), int(n.Y), int(n.Radius), style)
	default:
		xs, ys := shapePoints(n)
		canvas.Polygon(xs, ys, style)
	}

	if sev, ok := f.Graph.Risk[n.ID]; ok {
		canvas.Circle(int(n.X), int(n.Y), int(n.Radius+4),
			fmt.Sprintf("fill:none;stroke:%s;stroke-width:2;stroke-dasharray:4,3", css(riskColor(sev))))
	}

	canvas.Text(int(n.X), int(n.Y+n.Radius+12), truncateLabel(n.Name),
		fmt.Sprintf("fill:%s;font-size:11px;font-family:monospace;text-anchor:middle", css(colorText)))
}

// shapePoints returns the polygon vertices matching the raster shapes:
// diamond for organizations and destinations, square for deals, hexagon for
// external people.
func shapePoints(n *model.Node) ([]int, []int) {
	var sides int
	var rot float64
	switch n.Type {
	case model.NodeDeal:
		sides, rot = 4, math.Pi/4
	case model.NodeExternalPerson:
		sides, rot = 6, 0
	default:
		sides, rot = 4, 0
	}
	xs := make([]int, sides)
	ys := make([]int, sides)
	for i := 0; i < sides; i++ {
		a := rot + 2*math.Pi*float64(i)/float64(sides) - math.Pi/2
		xs[i] = int(n.X + math.Cos(a)*n.Radius)
		ys[i] = int(n.Y + math.Sin(a)*n.Radius)
	}
	return xs, ys
}
