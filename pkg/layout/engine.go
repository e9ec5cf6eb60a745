// Package layout evolves node positions with a force-directed solver. The
// engine owns per-tick position updates and pinning only; it never draws.
// Each settle tick invokes a render callback supplied by the caller.
package layout

import (
	"sync"

	"github.com/vanderheijden86/relmap/pkg/metrics"
	"github.com/vanderheijden86/relmap/pkg/model"
)

// Solver is the small surface the rest of the engine depends on, so the
// physics implementation stays swappable and mockable.
type Solver interface {
	// Restart replaces the simulated node/edge/cluster sets and resets the
	// temperature to its initial value.
	Restart(nodes []*model.Node, edges []*model.Edge, clusters []model.Cluster)
	// Stop freezes the simulation; Step becomes a no-op until Restart.
	Stop()
	// Step advances one tick and invokes the tick callback. It reports
	// whether the simulation is still active (temperature above rest).
	Step() bool
	// Reheat raises or lowers the temperature target, keeping the layout
	// responsive during a drag and letting it settle afterwards.
	Reheat(target float64)
	// Pin fixes a node at a world position; Unpin releases it.
	Pin(n *model.Node, x, y float64)
	Unpin(n *model.Node)
	// Alpha exposes the current temperature, which scales the cluster
	// cohesion force and tells callers how settled the layout is.
	Alpha() float64
}

// Solver temperature parameters, following the usual force-simulation
// convention: alpha decays toward its target each tick and the simulation
// rests below alphaMin.
const (
	alphaInitial  = 1.0
	alphaMin      = 0.003
	alphaDecay    = 0.028
	velocityDecay = 0.6

	// DragAlphaTarget is the temperature target while a node is dragged.
	DragAlphaTarget = 0.3
)

// Engine is the concrete force-directed Solver. It is safe for concurrent
// use: the render loop steps it while reloads restart it from other
// goroutines, so a mutex serializes Step against Restart and the pinning
// methods.
type Engine struct {
	mu sync.Mutex

	nodes    []*model.Node
	edges    []*model.Edge
	clusters []model.Cluster

	width, height float64

	alpha       float64
	alphaTarget float64
	stopped     bool

	// OnTick is invoked after every Step with updated positions. May be nil.
	OnTick func()
}

// New returns an engine simulating inside a width x height viewport.
func New(width, height float64) *Engine {
	return &Engine{width: width, height: height, alpha: alphaInitial, stopped: true}
}

// Resize updates the viewport bounds without restarting the simulation;
// positions persist across surface resizes.
func (e *Engine) Resize(width, height float64) {
	e.mu.Lock()
	e.width, e.height = width, height
	e.mu.Unlock()
}

// Restart implements Solver.
func (e *Engine) Restart(nodes []*model.Node, edges []*model.Edge, clusters []model.Cluster) {
	e.mu.Lock()
	e.nodes = nodes
	e.edges = edges
	e.clusters = clusters
	e.alpha = alphaInitial
	e.alphaTarget = 0
	e.stopped = false
	e.mu.Unlock()
}

// Stop implements Solver.
func (e *Engine) Stop() {
	e.mu.Lock()
	e.stopped = true
	e.mu.Unlock()
}

// Reheat implements Solver.
func (e *Engine) Reheat(target float64) {
	e.mu.Lock()
	e.alphaTarget = target
	if target > e.alpha {
		e.alpha = target
	}
	e.mu.Unlock()
}

// Pin implements Solver.
func (e *Engine) Pin(n *model.Node, x, y float64) {
	e.mu.Lock()
	n.Pin(x, y)
	e.mu.Unlock()
}

// Unpin implements Solver.
func (e *Engine) Unpin(n *model.Node) {
	e.mu.Lock()
	n.Unpin()
	e.mu.Unlock()
}

// Alpha implements Solver.
func (e *Engine) Alpha() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.alpha
}

// Active reports whether stepping still moves the layout.
func (e *Engine) Active() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active()
}

func (e *Engine) active() bool {
	return !e.stopped && (e.alpha >= alphaMin || e.alphaTarget > 0)
}

// Step implements Solver: apply every force once, integrate, decay, notify.
// OnTick runs outside the lock so the callback may call back into the engine.
func (e *Engine) Step() bool {
	e.mu.Lock()
	if e.stopped || len(e.nodes) == 0 {
		e.mu.Unlock()
		return false
	}
	stop := metrics.Timer(metrics.LayoutStep)

	e.alpha += (e.alphaTarget - e.alpha) * alphaDecay

	applyLinkForce(e.edges, e.alpha)
	applyRepulsion(e.nodes, e.alpha)
	applyCentering(e.nodes, e.width/2, e.height/2, e.alpha)
	applyCollision(e.nodes)
	applyClusterCohesion(e.clusters, e.alpha)
	applyBoundary(e.nodes, e.width, e.height)

	for _, n := range e.nodes {
		if n.Pinned() {
			n.X, n.Y = *n.FX, *n.FY
			n.VX, n.VY = 0, 0
			continue
		}
		n.VX *= velocityDecay
		n.VY *= velocityDecay
		n.X += n.VX
		n.Y += n.VY
	}

	active := e.active()
	e.mu.Unlock()
	stop()

	if e.OnTick != nil {
		e.OnTick()
	}
	return active
}

// Settle runs at most maxSteps ticks and returns the number taken. Used by
// headless export, where no frame timer drives the engine.
func (e *Engine) Settle(maxSteps int) int {
	steps := 0
	for steps < maxSteps && e.Step() {
		steps++
	}
	return steps
}
