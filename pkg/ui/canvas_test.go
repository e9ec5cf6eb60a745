package ui

import (
	"strings"
	"testing"

	"github.com/vanderheijden86/relmap/pkg/interaction"
	"github.com/vanderheijden86/relmap/pkg/model"
)

func (c *Canvas) runeAt(col, row int) rune {
	cl := c.cells[row*c.cols+col]
	if !cl.set {
		return ' '
	}
	return cl.r
}

func TestCellToScreen(t *testing.T) {
	sx, sy := CellToScreen(0, 0)
	if sx != CellWidthPx/2 || sy != CellHeightPx/2 {
		t.Errorf("cell (0,0) center = (%f,%f)", sx, sy)
	}
	sx, sy = CellToScreen(10, 5)
	if sx != 84 || sy != 88 {
		t.Errorf("cell (10,5) center = (%f,%f), want (84,88)", sx, sy)
	}
}

func TestCanvas_ScreenSize(t *testing.T) {
	c := NewCanvas(80, 24)
	w, h := c.ScreenSize()
	if w != 640 || h != 384 {
		t.Errorf("screen size = (%f,%f), want (640,384)", w, h)
	}

	c.Resize(100, 30)
	w, h = c.ScreenSize()
	if w != 800 || h != 480 {
		t.Errorf("after resize = (%f,%f), want (800,480)", w, h)
	}
}

func TestCanvas_RenderPlacesGlyphs(t *testing.T) {
	c := NewCanvas(40, 20)
	g := &model.Graph{
		Nodes: []*model.Node{
			{ID: "p", Name: "Ann", Type: model.NodePerson, X: 100, Y: 100, Radius: 8},
			{ID: "o", Name: "Acme", Type: model.NodeOrganization, X: 200, Y: 200, Radius: 14},
		},
		Risk: map[string]model.Severity{},
	}
	s := interaction.NewState(320, 320)

	c.Render(g, s)

	// World (100,100) with the identity transform lands in cell (12,6).
	if r := c.runeAt(12, 6); r != '●' {
		t.Errorf("person cell holds %q", r)
	}
	if r := c.runeAt(25, 12); r != '◆' {
		t.Errorf("organization cell holds %q", r)
	}
}

func TestCanvas_RenderRespectsTransform(t *testing.T) {
	c := NewCanvas(40, 20)
	g := &model.Graph{
		Nodes: []*model.Node{
			{ID: "p", Name: "Ann", Type: model.NodePerson, X: 100, Y: 100, Radius: 8},
		},
		Risk: map[string]model.Severity{},
	}
	s := interaction.NewState(320, 320)
	s.Transform.K = 2 // screen = world*2

	c.Render(g, s)
	if r := c.runeAt(25, 12); r != '●' {
		t.Errorf("scaled node cell holds %q", r)
	}
	if r := c.runeAt(12, 6); r != ' ' {
		t.Errorf("unscaled cell unexpectedly holds %q", r)
	}
}

func TestCanvas_DrawEdge(t *testing.T) {
	c := NewCanvas(40, 20)
	a := &model.Node{ID: "a", Name: "A", Type: model.NodePerson, X: 40, Y: 104, Radius: 8}   // cell (5,6)
	b := &model.Node{ID: "b", Name: "B", Type: model.NodePerson, X: 160, Y: 104, Radius: 8} // cell (20,6)
	g := &model.Graph{
		Nodes: []*model.Node{a, b},
		Edges: []*model.Edge{{Source: a, Target: b, Type: model.EdgeCoOccurrence}},
		Risk:  map[string]model.Severity{},
	}

	c.Render(g, interaction.NewState(320, 320))

	for col := 6; col < 20; col++ {
		if r := c.runeAt(col, 6); r != '·' {
			t.Fatalf("edge cell (%d,6) holds %q", col, r)
		}
	}
	// Endpoints keep their node glyphs.
	if c.runeAt(5, 6) != '●' || c.runeAt(20, 6) != '●' {
		t.Error("edge overwrote its endpoints")
	}
}

func TestCanvas_MovedToEdgeRune(t *testing.T) {
	c := NewCanvas(40, 20)
	a := &model.Node{ID: "a", Name: "A", Type: model.NodePerson, X: 40, Y: 104, Radius: 8}
	d := &model.Node{ID: "d", Name: "Globex", Type: model.NodeDestination, X: 160, Y: 104, Radius: 9}
	g := &model.Graph{
		Nodes: []*model.Node{a, d},
		Edges: []*model.Edge{{Source: a, Target: d, Type: model.EdgeMovedTo}},
		Risk:  map[string]model.Severity{},
	}

	c.Render(g, interaction.NewState(320, 320))

	if r := c.runeAt(10, 6); r != '»' {
		t.Errorf("moved-to edge cell holds %q", r)
	}
	if r := c.runeAt(20, 6); r != '◇' {
		t.Errorf("destination cell holds %q", r)
	}
}

func TestCanvas_RiskMarker(t *testing.T) {
	c := NewCanvas(40, 20)
	n := &model.Node{ID: "p", Name: "Ann", Type: model.NodePerson, X: 100, Y: 100, Radius: 8}
	g := &model.Graph{
		Nodes: []*model.Node{n},
		Risk:  map[string]model.Severity{"p": model.SeverityHigh},
	}

	c.Render(g, interaction.NewState(320, 320))

	if r := c.runeAt(13, 6); r != '!' {
		t.Errorf("risk marker cell holds %q", r)
	}
}

func TestCanvas_HoverLabel(t *testing.T) {
	c := NewCanvas(40, 20)
	n := &model.Node{ID: "p", Name: "Ann", Type: model.NodePerson, X: 100, Y: 100, Radius: 8}
	g := &model.Graph{Nodes: []*model.Node{n}, Risk: map[string]model.Severity{}}
	s := interaction.NewState(320, 320)
	s.Hovered = n

	out := c.Render(g, s)
	if !strings.Contains(out, "Ann") {
		t.Error("hovered node label missing from the frame")
	}
	if c.runeAt(14, 6) != 'A' || c.runeAt(15, 6) != 'n' || c.runeAt(16, 6) != 'n' {
		t.Error("label not placed beside the node")
	}
}

func TestCanvas_ClusterLabelsNeedTwoClusters(t *testing.T) {
	a := &model.Node{ID: "a", Name: "A", Type: model.NodePerson, X: 64, Y: 160, Radius: 8, ClusterID: 0}
	b := &model.Node{ID: "b", Name: "B", Type: model.NodePerson, X: 96, Y: 160, Radius: 8, ClusterID: 0}
	g := &model.Graph{
		Nodes: []*model.Node{a, b},
		Clusters: []model.Cluster{
			{ID: 0, Label: "Group (2)", Members: []*model.Node{a, b}},
		},
		Risk: map[string]model.Severity{},
	}

	c := NewCanvas(40, 20)
	out := c.Render(g, interaction.NewState(320, 320))
	if strings.Contains(out, "Group (2)") {
		t.Error("single cluster must not draw a label")
	}

	cnode := &model.Node{ID: "c", Name: "C", Type: model.NodePerson, X: 160, Y: 256, Radius: 8, ClusterID: 1}
	dnode := &model.Node{ID: "d", Name: "D", Type: model.NodePerson, X: 192, Y: 256, Radius: 8, ClusterID: 1}
	g.Nodes = append(g.Nodes, cnode, dnode)
	g.Clusters = append(g.Clusters, model.Cluster{ID: 1, Label: "Champions (2)", Members: []*model.Node{cnode, dnode}})

	out = c.Render(g, interaction.NewState(320, 320))
	if !strings.Contains(out, "Group (2)") || !strings.Contains(out, "Champions (2)") {
		t.Error("cluster labels missing with two clusters")
	}
}

func TestCanvas_NilGraph(t *testing.T) {
	c := NewCanvas(10, 3)
	out := c.Render(nil, interaction.NewState(80, 48))
	if lines := strings.Split(out, "\n"); len(lines) != 3 {
		t.Errorf("empty frame has %d lines, want 3", len(lines))
	}
	if strings.TrimSpace(out) != "" {
		t.Error("nil graph should render a blank frame")
	}
}

func TestCanvas_PutSoftDoesNotOverwrite(t *testing.T) {
	c := NewCanvas(10, 3)
	c.put(2, 1, '●', selectedStyle)
	c.putSoft(2, 1, '·', edgeRuneStyle)
	if c.runeAt(2, 1) != '●' {
		t.Error("putSoft overwrote a set cell")
	}

	// Out of bounds is silently ignored.
	c.put(-1, 0, 'x', selectedStyle)
	c.put(10, 0, 'x', selectedStyle)
	c.put(0, 3, 'x', selectedStyle)
}
