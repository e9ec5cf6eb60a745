// Package interaction turns pointer, wheel, and control events into view
// state transitions. The reducer is pure: it takes an event and the current
// state and returns the next state plus the side effects the host must carry
// out (pinning, reheating, redrawing, navigation, reload scheduling). No
// pointer surface or canvas is touched here, which keeps drag, pan, zoom, and
// selection logic testable with synthetic events.
package interaction

import (
	"github.com/vanderheijden86/relmap/pkg/geom"
	"github.com/vanderheijden86/relmap/pkg/layout"
	"github.com/vanderheijden86/relmap/pkg/model"
)

// ZoomStep is the scale factor applied per wheel notch or zoom button press.
const ZoomStep = 1.2

// dragSlop is the screen-space distance in pixels a pointer must travel
// before a press counts as a drag instead of a click.
const dragSlop = 3.0

// State is the mutable interaction state threaded through the reducer.
type State struct {
	Transform model.ViewTransform

	Hovered  *model.Node
	Dragged  *model.Node
	Selected *model.Node
	Panning  bool

	// Filters is the active classification filter set. Empty means no
	// filtering; a non-empty set dims every node outside it.
	Filters map[string]bool

	// Anchor is the hierarchy anchor node, pinned at the viewport center.
	// Releasing a drag on it re-pins it instead of freeing it.
	Anchor           *model.Node
	CenterX, CenterY float64

	// Press bookkeeping to tell clicks from drags.
	downX, downY float64
	moved        bool
}

// NewState returns the initial state for a viewport of the given size.
func NewState(width, height float64) State {
	return State{
		Transform: model.NewViewTransform(),
		Filters:   map[string]bool{},
		CenterX:   width / 2,
		CenterY:   height / 2,
	}
}

// Event is a synthetic input event. Coordinates are screen space throughout;
// the reducer converts to world space where needed.
type Event interface{ isEvent() }

type (
	// PointerDown starts a drag on a hit node or a pan on empty space.
	PointerDown struct{ X, Y float64 }
	// PointerMove updates the drag pin, the pan offset, or the hover target.
	PointerMove struct{ X, Y float64 }
	// PointerUp ends a drag or pan; a press that never moved is a click.
	PointerUp struct{ X, Y float64 }
	// Wheel zooms around the pointer position. DeltaY < 0 zooms in.
	Wheel struct{ X, Y, DeltaY float64 }
	// ZoomIn, ZoomOut, and ZoomReset are the discrete zoom controls, pivoting
	// on the viewport center.
	ZoomIn    struct{}
	ZoomOut   struct{}
	ZoomReset struct{}
	// DoubleClick requests navigation to the hit node's record.
	DoubleClick struct{ X, Y float64 }
	// ToggleFilter flips one classification in or out of the filter set.
	ToggleFilter struct{ Classification string }
	// ThresholdChange carries a new minimum-interactions value. Reloads are
	// debounced by the host so slider drags do not reload per step.
	ThresholdChange struct{ MinInteractions int }
)

func (PointerDown) isEvent()     {}
func (PointerMove) isEvent()     {}
func (PointerUp) isEvent()       {}
func (Wheel) isEvent()           {}
func (ZoomIn) isEvent()          {}
func (ZoomOut) isEvent()         {}
func (ZoomReset) isEvent()       {}
func (DoubleClick) isEvent()     {}
func (ToggleFilter) isEvent()    {}
func (ThresholdChange) isEvent() {}

// Effect is a side effect the host must perform after a reduction.
type Effect interface{ isEffect() }

type (
	// Pin fixes a node at a world position in the solver.
	Pin struct {
		Node *model.Node
		X, Y float64
	}
	// Unpin releases a node back to the solver.
	Unpin struct{ Node *model.Node }
	// Reheat sets the solver's temperature target.
	Reheat struct{ Target float64 }
	// Redraw requests a repaint without relayout.
	Redraw struct{}
	// Navigate asks the host application to open an entity record.
	Navigate struct{ ID string }
	// ScheduleReload asks the host to reload data after its debounce delay,
	// with the new threshold applied.
	ScheduleReload struct{ MinInteractions int }
)

func (Pin) isEffect()            {}
func (Unpin) isEffect()          {}
func (Reheat) isEffect()         {}
func (Redraw) isEffect()         {}
func (Navigate) isEffect()       {}
func (ScheduleReload) isEffect() {}

// HitTest returns the topmost node under the given screen position, or nil.
// Nodes later in the slice draw on top, so iteration runs in reverse. The hit
// bound is the node's circle regardless of drawn shape; the difference is at
// most a few pixels and not worth per-shape containment math.
func HitTest(g *model.Graph, t model.ViewTransform, sx, sy float64) *model.Node {
	if g == nil {
		return nil
	}
	wx, wy := t.ToWorld(sx, sy)
	for i := len(g.Nodes) - 1; i >= 0; i-- {
		n := g.Nodes[i]
		if geom.DistSq(wx, wy, n.X, n.Y) <= n.Radius*n.Radius {
			return n
		}
	}
	return nil
}

// Reduce applies one event to the state and returns the next state plus the
// effects the host must run, in order.
func Reduce(s State, g *model.Graph, ev Event) (State, []Effect) {
	switch e := ev.(type) {
	case PointerDown:
		return reducePointerDown(s, g, e)
	case PointerMove:
		return reducePointerMove(s, g, e)
	case PointerUp:
		return reducePointerUp(s, e)
	case Wheel:
		factor := ZoomStep
		if e.DeltaY > 0 {
			factor = 1 / ZoomStep
		}
		s.Transform = zoomAt(s.Transform, e.X, e.Y, factor)
		return s, []Effect{Redraw{}}
	case ZoomIn:
		s.Transform = zoomAt(s.Transform, s.CenterX, s.CenterY, ZoomStep)
		return s, []Effect{Redraw{}}
	case ZoomOut:
		s.Transform = zoomAt(s.Transform, s.CenterX, s.CenterY, 1/ZoomStep)
		return s, []Effect{Redraw{}}
	case ZoomReset:
		s.Transform = model.NewViewTransform()
		return s, []Effect{Redraw{}}
	case DoubleClick:
		if n := HitTest(g, s.Transform, e.X, e.Y); n != nil {
			return s, []Effect{Navigate{ID: n.ID}}
		}
		return s, nil
	case ToggleFilter:
		if s.Filters[e.Classification] {
			delete(s.Filters, e.Classification)
		} else {
			s.Filters[e.Classification] = true
		}
		return s, []Effect{Redraw{}}
	case ThresholdChange:
		return s, []Effect{ScheduleReload{MinInteractions: e.MinInteractions}}
	default:
		return s, nil
	}
}

func reducePointerDown(s State, g *model.Graph, e PointerDown) (State, []Effect) {
	s.downX, s.downY = e.X, e.Y
	s.moved = false

	if n := HitTest(g, s.Transform, e.X, e.Y); n != nil {
		s.Dragged = n
		wx, wy := s.Transform.ToWorld(e.X, e.Y)
		return s, []Effect{
			Pin{Node: n, X: wx, Y: wy},
			Reheat{Target: layout.DragAlphaTarget},
		}
	}

	s.Panning = true
	return s, nil
}

func reducePointerMove(s State, g *model.Graph, e PointerMove) (State, []Effect) {
	if geom.DistSq(e.X, e.Y, s.downX, s.downY) > dragSlop*dragSlop {
		s.moved = true
	}

	if s.Dragged != nil {
		wx, wy := s.Transform.ToWorld(e.X, e.Y)
		return s, []Effect{Pin{Node: s.Dragged, X: wx, Y: wy}}
	}

	if s.Panning {
		// Pan deltas are screen space; translation is not divided by scale.
		s.Transform.X += e.X - s.downX
		s.Transform.Y += e.Y - s.downY
		s.downX, s.downY = e.X, e.Y
		return s, []Effect{Redraw{}}
	}

	prev := s.Hovered
	s.Hovered = HitTest(g, s.Transform, e.X, e.Y)
	if s.Hovered != prev {
		return s, []Effect{Redraw{}}
	}
	return s, nil
}

func reducePointerUp(s State, e PointerUp) (State, []Effect) {
	var effects []Effect

	if n := s.Dragged; n != nil {
		s.Dragged = nil
		if n == s.Anchor && s.Anchor != nil {
			effects = append(effects, Pin{Node: n, X: s.CenterX, Y: s.CenterY})
		} else {
			effects = append(effects, Unpin{Node: n})
		}
		effects = append(effects, Reheat{Target: 0})
		if !s.moved {
			s.Selected = n
			effects = append(effects, Redraw{})
		}
		return s, effects
	}

	if s.Panning {
		s.Panning = false
		if !s.moved && s.Selected != nil {
			s.Selected = nil
			effects = append(effects, Redraw{})
		}
	}
	return s, effects
}

// zoomAt rescales around a fixed screen-space pivot so the world point under
// the pivot stays put, clamping the resulting scale.
func zoomAt(t model.ViewTransform, px, py, factor float64) model.ViewTransform {
	newK := model.ClampScale(t.K * factor)
	if newK == t.K {
		return t
	}
	ratio := newK / t.K
	t.X = px - (px-t.X)*ratio
	t.Y = py - (py-t.Y)*ratio
	t.K = newK
	return t
}
