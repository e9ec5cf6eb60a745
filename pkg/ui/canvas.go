package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/relmap/pkg/interaction"
	"github.com/vanderheijden86/relmap/pkg/model"
)

// Terminal cells are not square. The world/screen space uses pixel-like
// units; each cell covers CellWidthPx x CellHeightPx of it, so circular
// layouts stay roughly circular on screen.
const (
	CellWidthPx  = 8.0
	CellHeightPx = 16.0
)

// Node glyphs by type, mirroring the raster shapes (circle, diamond, square,
// hexagon, hollow diamond).
var nodeGlyphs = map[model.NodeType]rune{
	model.NodePerson:         '●',
	model.NodeOrganization:   '◆',
	model.NodeDeal:           '■',
	model.NodeExternalPerson: '⬡',
	model.NodeDestination:    '◇',
}

type cell struct {
	r     rune
	style lipgloss.Style
	set   bool
}

// Canvas projects the world-space graph onto a rune grid through the current
// view transform. It is rebuilt every frame; there is no retained state.
type Canvas struct {
	cols, rows int
	cells      []cell
}

// NewCanvas returns a canvas with the given cell dimensions.
func NewCanvas(cols, rows int) *Canvas {
	return &Canvas{cols: cols, rows: rows, cells: make([]cell, cols*rows)}
}

// Resize adjusts the grid, dropping the old frame.
func (c *Canvas) Resize(cols, rows int) {
	c.cols, c.rows = cols, rows
	c.cells = make([]cell, cols*rows)
}

// ScreenSize returns the pixel-like surface size the grid covers.
func (c *Canvas) ScreenSize() (w, h float64) {
	return float64(c.cols) * CellWidthPx, float64(c.rows) * CellHeightPx
}

// CellToScreen maps a terminal cell to the center of its screen-space patch.
// Mouse events arrive in cells and hit testing runs in screen space.
func CellToScreen(col, row int) (sx, sy float64) {
	return (float64(col) + 0.5) * CellWidthPx, (float64(row) + 0.5) * CellHeightPx
}

func (c *Canvas) put(col, row int, r rune, st lipgloss.Style) {
	if col < 0 || col >= c.cols || row < 0 || row >= c.rows {
		return
	}
	c.cells[row*c.cols+col] = cell{r: r, style: st, set: true}
}

func (c *Canvas) putSoft(col, row int, r rune, st lipgloss.Style) {
	if col < 0 || col >= c.cols || row < 0 || row >= c.rows {
		return
	}
	if c.cells[row*c.cols+col].set {
		return
	}
	c.cells[row*c.cols+col] = cell{r: r, style: st, set: true}
}

func (c *Canvas) clear() {
	for i := range c.cells {
		c.cells[i] = cell{}
	}
}

// Render draws one frame: cluster labels, then edges, then nodes, then the
// label of the hovered or selected node.
func (c *Canvas) Render(g *model.Graph, s interaction.State) string {
	c.clear()
	if g != nil {
		if len(g.Clusters) > 1 {
			c.drawClusterLabels(g, s.Transform)
		}
		for _, e := range g.Edges {
			c.drawEdge(e, s.Transform)
		}
		for _, n := range g.Nodes {
			c.drawNode(n, g, s)
		}
		if n := s.Hovered; n != nil {
			c.drawNodeLabel(n, s.Transform)
		} else if n := s.Selected; n != nil {
			c.drawNodeLabel(n, s.Transform)
		}
	}
	return c.String()
}

// String flattens the grid into styled terminal lines.
func (c *Canvas) String() string {
	var b strings.Builder
	for row := 0; row < c.rows; row++ {
		for col := 0; col < c.cols; col++ {
			cl := c.cells[row*c.cols+col]
			if !cl.set {
				b.WriteByte(' ')
				continue
			}
			b.WriteString(cl.style.Render(string(cl.r)))
		}
		if row < c.rows-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func (c *Canvas) nodeCell(n *model.Node, t model.ViewTransform) (col, row int) {
	sx, sy := t.ToScreen(n.X, n.Y)
	return int(sx / CellWidthPx), int(sy / CellHeightPx)
}

func (c *Canvas) drawClusterLabels(g *model.Graph, t model.ViewTransform) {
	for _, cl := range g.Clusters {
		if len(cl.Members) < 2 {
			continue
		}
		// Label sits above the topmost member.
		top := cl.Members[0]
		var cx float64
		for _, n := range cl.Members {
			cx += n.X
			if n.Y < top.Y {
				top = n
			}
		}
		cx /= float64(len(cl.Members))
		sx, sy := t.ToScreen(cx, top.Y)
		col := int(sx/CellWidthPx) - runewidth.StringWidth(cl.Label)/2
		row := int(sy/CellHeightPx) - 1
		i := 0
		for _, r := range cl.Label {
			c.putSoft(col+i, row, r, clusterLabelStyle)
			i++
		}
	}
}

// drawEdge steps along the segment in cell space. MovedTo edges use a
// distinct rune so churn is visible even without color.
func (c *Canvas) drawEdge(e *model.Edge, t model.ViewTransform) {
	r := '·'
	st := edgeRuneStyle
	if e.Type == model.EdgeMovedTo {
		r = '»'
		st = riskStyle
	}

	x0, y0 := c.nodeCell(e.Source, t)
	x1, y1 := c.nodeCell(e.Target, t)

	dx, dy := x1-x0, y1-y0
	steps := max(abs(dx), abs(dy))
	if steps == 0 {
		return
	}
	for i := 1; i < steps; i++ {
		col := x0 + dx*i/steps
		row := y0 + dy*i/steps
		c.putSoft(col, row, r, st)
	}
}

func (c *Canvas) drawNode(n *model.Node, g *model.Graph, s interaction.State) {
	col, row := c.nodeCell(n, s.Transform)

	glyph, ok := nodeGlyphs[n.Type]
	if !ok {
		glyph = '●'
	}

	st := lipgloss.NewStyle().Foreground(nodeTermColor(n, s.Filters))
	switch {
	case n == s.Selected:
		st = selectedStyle
	case n == s.Hovered:
		st = hoveredStyle
	case g.Risk[n.ID] == model.SeverityHigh:
		st = riskStyle
	}

	c.put(col, row, glyph, st)
	if _, risky := g.Risk[n.ID]; risky {
		c.putSoft(col+1, row, '!', riskStyle)
	}
}

func (c *Canvas) drawNodeLabel(n *model.Node, t model.ViewTransform) {
	col, row := c.nodeCell(n, t)
	label := runewidth.Truncate(n.Name, 24, "…")
	i := 0
	for _, r := range label {
		c.put(col+2+i, row, r, hoveredStyle)
		i++
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
