// Package viewer wires the pipeline together: it loads payloads from a data
// provider, rebuilds the render model, drives the layout solver, and routes
// interaction effects to their sinks. All collaborators are injected as small
// interfaces so the whole orchestration runs under test with fakes.
package viewer

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/vanderheijden86/relmap/pkg/config"
	"github.com/vanderheijden86/relmap/pkg/debug"
	"github.com/vanderheijden86/relmap/pkg/graphdata"
	"github.com/vanderheijden86/relmap/pkg/interaction"
	"github.com/vanderheijden86/relmap/pkg/layout"
	"github.com/vanderheijden86/relmap/pkg/model"
	"github.com/vanderheijden86/relmap/pkg/viewstate"
)

// Level grades a notification.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarning
	LevelError
)

// Notifier receives user-facing messages. Every external-call failure turns
// into exactly one notification; nothing propagates as a panic.
type Notifier interface {
	Notify(level Level, message string)
}

// Navigator opens an entity record in the host application.
type Navigator interface {
	OpenRecord(id string)
}

// LoadParams is the full parameter set for a graph load or refresh.
type LoadParams struct {
	RootID                string
	HidePassiveNodes      bool
	MinInteractions       int
	ActivityThresholdDays int
	ShowExternalNodes     bool
	ShowHierarchy         bool
}

// DataProvider is the external source of graph payloads and configuration.
type DataProvider interface {
	LoadGraph(ctx context.Context, p LoadParams) (*model.GraphPayload, error)
	Refresh(ctx context.Context, p LoadParams) (*model.GraphPayload, error)
	OverrideClassification(ctx context.Context, subjectID, rootID, classification string) error
	GetConfig(ctx context.Context) (config.Config, error)
}

// Options configures a Viewer. Provider is required; nil sinks are replaced
// with no-ops.
type Options struct {
	Provider  DataProvider
	Notifier  Notifier
	Navigator Navigator
	States    viewstate.Store

	RootID        string
	Width, Height float64
	Config        config.Config
}

// Viewer owns the render model and interaction state for one root entity.
// Mutating methods are serialized by an internal mutex; provider calls run
// outside the lock so a slow backend never blocks event handling.
type Viewer struct {
	provider  DataProvider
	notifier  Notifier
	navigator Navigator
	states    viewstate.Store

	mu      sync.Mutex
	cfg     config.Config
	rootID  string
	toggles model.ToggleState
	graph   *model.Graph
	state   interaction.State
	solver  *layout.Engine

	width, height float64

	// generation orders loads: a result only applies if no newer load was
	// issued while it was in flight.
	generation atomic.Int64

	debounce *interaction.Debouncer
	closed   atomic.Bool

	// OnRedraw is invoked whenever the scene needs repainting. May be nil.
	OnRedraw func()
}

type nopNotifier struct{}

func (nopNotifier) Notify(Level, string) {}

type nopNavigator struct{}

func (nopNavigator) OpenRecord(string) {}

// New builds a Viewer. The solver starts stopped; Load starts it.
func New(opts Options) *Viewer {
	if opts.Notifier == nil {
		opts.Notifier = nopNotifier{}
	}
	if opts.Navigator == nil {
		opts.Navigator = nopNavigator{}
	}
	if opts.States == nil {
		opts.States = viewstate.NewMemoryStore()
	}
	v := &Viewer{
		provider:  opts.Provider,
		notifier:  opts.Notifier,
		navigator: opts.Navigator,
		states:    opts.States,
		cfg:       opts.Config,
		rootID:    opts.RootID,
		width:     opts.Width,
		height:    opts.Height,
		solver:    layout.New(opts.Width, opts.Height),
		state:     interaction.NewState(opts.Width, opts.Height),
		debounce:  interaction.NewDebouncer(interaction.ReloadDebounceDelay),
	}
	v.toggles = model.ToggleState{MinInteractions: v.cfg.MinInteractions}
	return v
}

// SetNotifier replaces the notification sink. Used when the sink (a TUI
// model, typically) is constructed around the viewer itself.
func (v *Viewer) SetNotifier(n Notifier) {
	if n == nil {
		n = nopNotifier{}
	}
	v.mu.Lock()
	v.notifier = n
	v.mu.Unlock()
}

// Init fetches remote configuration and saved toggles. Config failure is
// non-fatal: the built-in defaults stay in effect and the failure is logged,
// not surfaced, because the visualization must still render.
func (v *Viewer) Init(ctx context.Context) {
	remote, err := v.provider.GetConfig(ctx)
	if err != nil {
		debug.Log("config fetch failed, using defaults: %v", err)
	} else {
		v.mu.Lock()
		v.cfg = remote
		if v.toggles.MinInteractions == 0 {
			v.toggles.MinInteractions = remote.MinInteractions
		}
		v.mu.Unlock()
	}

	if saved, ok, err := v.states.Get(v.rootID); err != nil {
		debug.Log("view state load failed: %v", err)
	} else if ok {
		v.mu.Lock()
		v.toggles = saved
		v.mu.Unlock()
	}
}

// Toggles returns the current view toggles.
func (v *Viewer) Toggles() model.ToggleState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.toggles
}

// SetToggles replaces the toggles, persists them, and reloads the graph.
func (v *Viewer) SetToggles(ctx context.Context, ts model.ToggleState) {
	v.mu.Lock()
	v.toggles = ts
	v.mu.Unlock()
	if err := v.states.Put(v.rootID, ts); err != nil {
		debug.Log("view state save failed: %v", err)
	}
	v.Load(ctx)
}

// Graph returns the current render model. Nil before the first load.
func (v *Viewer) Graph() *model.Graph {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.graph
}

// State returns a copy of the current interaction state.
func (v *Viewer) State() interaction.State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Solver exposes the layout engine for the render loop to step.
func (v *Viewer) Solver() *layout.Engine {
	return v.solver
}

func (v *Viewer) loadParams() LoadParams {
	return LoadParams{
		RootID:                v.rootID,
		HidePassiveNodes:      v.toggles.HidePassiveNodes,
		MinInteractions:       v.toggles.MinInteractions,
		ActivityThresholdDays: v.cfg.ActivityThresholdDays,
		ShowExternalNodes:     v.toggles.ShowExternalNodes,
		ShowHierarchy:         v.toggles.ShowHierarchy,
	}
}

// Load fetches and applies a fresh payload. If a newer load is issued while
// this one is in flight, this result is discarded: the latest request wins.
func (v *Viewer) Load(ctx context.Context) {
	gen := v.generation.Add(1)
	v.mu.Lock()
	params := v.loadParams()
	v.mu.Unlock()

	payload, err := v.provider.LoadGraph(ctx, params)
	if err != nil {
		v.notifier.Notify(LevelError, fmt.Sprintf("Failed to load graph: %s", ErrorMessage(err)))
		return
	}
	v.apply(gen, payload)
}

// Refresh re-fetches with the same parameters, bypassing provider caches.
func (v *Viewer) Refresh(ctx context.Context) {
	gen := v.generation.Add(1)
	v.mu.Lock()
	params := v.loadParams()
	v.mu.Unlock()

	payload, err := v.provider.Refresh(ctx, params)
	if err != nil {
		v.notifier.Notify(LevelError, fmt.Sprintf("Failed to refresh graph: %s", ErrorMessage(err)))
		return
	}
	if v.apply(gen, payload) {
		v.notifier.Notify(LevelSuccess, "Graph refreshed")
	}
}

// apply replaces the render model wholesale if gen is still the newest load.
// Returns whether the payload was applied.
func (v *Viewer) apply(gen int64, payload *model.GraphPayload) bool {
	v.mu.Lock()
	if v.closed.Load() || gen != v.generation.Load() {
		v.mu.Unlock()
		return false
	}

	g := graphdata.Process(payload, graphdata.Options{
		Hierarchy: v.toggles.ShowHierarchy,
		CenterX:   v.width / 2,
		CenterY:   v.height / 2,
		Seed:      v.cfg.LayoutSeed,
	})
	v.graph = g

	v.solver.Restart(g.Nodes, g.Edges, g.Clusters)

	// In hierarchy mode the primary organization anchors the layout at the
	// viewport center for its whole lifetime.
	v.state.Anchor = nil
	if v.toggles.ShowHierarchy {
		if anchor := primaryOrganization(g); anchor != nil {
			v.state.Anchor = anchor
			v.solver.Pin(anchor, v.width/2, v.height/2)
		}
	}
	v.mu.Unlock()

	if g.Truncated {
		v.notifier.Notify(LevelWarning,
			fmt.Sprintf("Showing %d of %d nodes", len(g.Nodes), g.TotalCount))
	}
	for _, w := range g.Warnings {
		v.notifier.Notify(LevelWarning, w)
	}

	v.redraw()
	return true
}

// primaryOrganization finds the root organization node, if present.
func primaryOrganization(g *model.Graph) *model.Node {
	for _, n := range g.Nodes {
		if n.Type == model.NodeOrganization && !n.HierarchyMember {
			return n
		}
	}
	return nil
}

// HandleEvent runs one interaction event through the reducer and carries out
// the resulting effects.
func (v *Viewer) HandleEvent(ctx context.Context, ev interaction.Event) {
	v.mu.Lock()
	next, effects := interaction.Reduce(v.state, v.graph, ev)
	v.state = next
	v.mu.Unlock()

	for _, eff := range effects {
		switch e := eff.(type) {
		case interaction.Pin:
			v.solver.Pin(e.Node, e.X, e.Y)
		case interaction.Unpin:
			v.solver.Unpin(e.Node)
		case interaction.Reheat:
			v.solver.Reheat(e.Target)
		case interaction.Redraw:
			v.redraw()
		case interaction.Navigate:
			v.navigator.OpenRecord(e.ID)
		case interaction.ScheduleReload:
			v.scheduleReload(ctx, e.MinInteractions)
		}
	}
}

func (v *Viewer) scheduleReload(ctx context.Context, minInteractions int) {
	v.mu.Lock()
	v.toggles.MinInteractions = minInteractions
	ts := v.toggles
	v.mu.Unlock()
	if err := v.states.Put(v.rootID, ts); err != nil {
		debug.Log("view state save failed: %v", err)
	}
	v.debounce.Call(func() {
		if v.closed.Load() {
			return
		}
		v.Load(ctx)
	})
}

// OverrideClassification asks the provider to reclassify the selected node.
// On success the node updates locally; no full reload happens.
func (v *Viewer) OverrideClassification(ctx context.Context, classification string) {
	v.mu.Lock()
	selected := v.state.Selected
	v.mu.Unlock()
	if selected == nil {
		return
	}

	if err := v.provider.OverrideClassification(ctx, selected.ID, v.rootID, classification); err != nil {
		v.notifier.Notify(LevelError, fmt.Sprintf("Failed to update classification: %s", ErrorMessage(err)))
		return
	}

	v.mu.Lock()
	selected.Classification = classification
	v.mu.Unlock()
	v.notifier.Notify(LevelSuccess, fmt.Sprintf("%s reclassified as %s", selected.Name, classification))
	v.redraw()
}

// Resize updates the drawing surface size. Positions persist: the solver is
// resized, not restarted, and the hierarchy anchor moves to the new center.
func (v *Viewer) Resize(width, height float64) {
	v.mu.Lock()
	v.width, v.height = width, height
	v.state.CenterX, v.state.CenterY = width/2, height/2
	anchor := v.state.Anchor
	v.mu.Unlock()

	v.solver.Resize(width, height)
	if anchor != nil {
		v.solver.Pin(anchor, width/2, height/2)
	}
	v.redraw()
}

// Close tears the viewer down: pending debounced reloads are cancelled, the
// solver stops, and any in-flight load result is discarded on arrival.
func (v *Viewer) Close() {
	v.closed.Store(true)
	v.generation.Add(1)
	v.debounce.Cancel()
	v.solver.Stop()
}

func (v *Viewer) redraw() {
	if v.OnRedraw != nil {
		v.OnRedraw()
	}
}
