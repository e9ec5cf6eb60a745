package viewer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/vanderheijden86/relmap/pkg/config"
	"github.com/vanderheijden86/relmap/pkg/interaction"
	"github.com/vanderheijden86/relmap/pkg/model"
)

// fakeProvider is a scriptable DataProvider. Setting block makes the next
// LoadGraph wait until the channel closes, to exercise in-flight ordering.
type fakeProvider struct {
	mu          sync.Mutex
	payload     *model.GraphPayload
	loadErr     error
	refreshErr  error
	overrideErr error
	cfg         config.Config
	cfgErr      error

	loads      int
	refreshes  int
	overrides  []string
	lastParams LoadParams

	block   chan struct{}
	entered chan struct{}
}

func (f *fakeProvider) LoadGraph(ctx context.Context, p LoadParams) (*model.GraphPayload, error) {
	f.mu.Lock()
	f.loads++
	f.lastParams = p
	payload, err := f.payload, f.loadErr
	block, entered := f.block, f.entered
	f.block, f.entered = nil, nil
	f.mu.Unlock()

	if entered != nil {
		close(entered)
	}
	if block != nil {
		<-block
	}
	return payload, err
}

func (f *fakeProvider) Refresh(ctx context.Context, p LoadParams) (*model.GraphPayload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshes++
	return f.payload, f.refreshErr
}

func (f *fakeProvider) OverrideClassification(ctx context.Context, subjectID, rootID, classification string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.overrides = append(f.overrides, subjectID+"="+classification)
	return f.overrideErr
}

func (f *fakeProvider) GetConfig(ctx context.Context) (config.Config, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cfg, f.cfgErr
}

func (f *fakeProvider) loadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loads
}

type notification struct {
	level Level
	text  string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []notification
}

func (f *fakeNotifier) Notify(level Level, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, notification{level, message})
}

func (f *fakeNotifier) all() []notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]notification(nil), f.sent...)
}

type fakeNavigator struct {
	mu     sync.Mutex
	opened []string
}

func (f *fakeNavigator) OpenRecord(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opened = append(f.opened, id)
}

func smallPayload() *model.GraphPayload {
	return &model.GraphPayload{
		Nodes: []model.PayloadNode{
			{ID: "org", Name: "Acme", Type: "organization"},
			{ID: "p1", Name: "Ann", Type: "person", Classification: "Champion"},
			{ID: "p2", Name: "Bob", Type: "person"},
		},
		Edges: []model.PayloadEdge{
			{Source: "p1", Target: "p2", Type: "co_occurrence", InteractionCount: 3},
		},
	}
}

func newTestViewer(p *fakeProvider, n *fakeNotifier) *Viewer {
	return New(Options{
		Provider: p,
		Notifier: n,
		RootID:   "acct-1",
		Width:    800,
		Height:   600,
		Config:   config.DefaultConfig(),
	})
}

func TestViewer_Load(t *testing.T) {
	p := &fakeProvider{payload: smallPayload()}
	n := &fakeNotifier{}
	v := newTestViewer(p, n)
	defer v.Close()

	redraws := 0
	v.OnRedraw = func() { redraws++ }

	v.Load(context.Background())

	g := v.Graph()
	if g == nil {
		t.Fatal("no graph after load")
	}
	if len(g.Nodes) != 2 {
		t.Errorf("graph has %d nodes, want 2", len(g.Nodes))
	}
	if !v.Solver().Active() {
		t.Error("solver should run after a load")
	}
	if redraws == 0 {
		t.Error("load must request a redraw")
	}
	if len(n.all()) != 0 {
		t.Errorf("clean load produced notifications: %v", n.all())
	}
}

func TestViewer_LoadFailureNotifies(t *testing.T) {
	p := &fakeProvider{loadErr: &ProviderError{StatusCode: 500, Message: "backend down"}}
	n := &fakeNotifier{}
	v := newTestViewer(p, n)
	defer v.Close()

	v.Load(context.Background())

	if v.Graph() != nil {
		t.Error("failed load must not install a graph")
	}
	sent := n.all()
	if len(sent) != 1 || sent[0].level != LevelError {
		t.Fatalf("notifications = %v", sent)
	}
	if sent[0].text != "Failed to load graph: backend down" {
		t.Errorf("message = %q", sent[0].text)
	}
}

func TestViewer_StaleLoadDiscarded(t *testing.T) {
	stale := &model.GraphPayload{Nodes: []model.PayloadNode{
		{ID: "old", Name: "Old", Type: "person"},
	}}
	p := &fakeProvider{
		payload: stale,
		block:   make(chan struct{}),
		entered: make(chan struct{}),
	}
	n := &fakeNotifier{}
	v := newTestViewer(p, n)
	defer v.Close()

	block := p.block
	entered := p.entered

	done := make(chan struct{})
	go func() {
		defer close(done)
		v.Load(context.Background())
	}()
	<-entered

	// A newer load completes while the first is still in flight.
	p.mu.Lock()
	p.payload = smallPayload()
	p.mu.Unlock()
	v.Load(context.Background())

	close(block)
	<-done

	g := v.Graph()
	if g == nil {
		t.Fatal("no graph installed")
	}
	if g.NodeByID("old") != nil {
		t.Error("stale in-flight result overwrote the newer load")
	}
	if g.NodeByID("p1") == nil {
		t.Error("newest load missing from the model")
	}
}

func TestViewer_CloseDiscardsInFlight(t *testing.T) {
	p := &fakeProvider{
		payload: smallPayload(),
		block:   make(chan struct{}),
		entered: make(chan struct{}),
	}
	v := newTestViewer(p, &fakeNotifier{})

	block := p.block
	entered := p.entered

	done := make(chan struct{})
	go func() {
		defer close(done)
		v.Load(context.Background())
	}()
	<-entered

	v.Close()
	close(block)
	<-done

	if v.Graph() != nil {
		t.Error("load applied after close")
	}
}

func TestViewer_RefreshNotifiesSuccess(t *testing.T) {
	p := &fakeProvider{payload: smallPayload()}
	n := &fakeNotifier{}
	v := newTestViewer(p, n)
	defer v.Close()

	v.Refresh(context.Background())

	sent := n.all()
	if len(sent) != 1 || sent[0].level != LevelSuccess || sent[0].text != "Graph refreshed" {
		t.Errorf("notifications = %v", sent)
	}

	p.refreshErr = errors.New("conn reset")
	v.Refresh(context.Background())
	sent = n.all()
	last := sent[len(sent)-1]
	if last.level != LevelError || last.text != "Failed to refresh graph: conn reset" {
		t.Errorf("failure notification = %v", last)
	}
}

func TestViewer_TruncationAndWarnings(t *testing.T) {
	payload := smallPayload()
	payload.IsTruncated = true
	payload.TotalCount = 250
	payload.Warnings = []string{"interaction data is 3 days old"}

	p := &fakeProvider{payload: payload}
	n := &fakeNotifier{}
	v := newTestViewer(p, n)
	defer v.Close()

	v.Load(context.Background())

	sent := n.all()
	if len(sent) != 2 {
		t.Fatalf("expected 2 warnings, got %v", sent)
	}
	if sent[0].level != LevelWarning || sent[0].text != "Showing 2 of 250 nodes" {
		t.Errorf("truncation warning = %v", sent[0])
	}
	if sent[1].text != "interaction data is 3 days old" {
		t.Errorf("payload warning = %v", sent[1])
	}
}

func TestViewer_HierarchyAnchor(t *testing.T) {
	p := &fakeProvider{payload: smallPayload()}
	v := newTestViewer(p, &fakeNotifier{})
	defer v.Close()

	ts := v.Toggles()
	ts.ShowHierarchy = true
	v.SetToggles(context.Background(), ts)

	st := v.State()
	if st.Anchor == nil || st.Anchor.ID != "org" {
		t.Fatalf("anchor = %v, want the primary organization", st.Anchor)
	}
	if !st.Anchor.Pinned() {
		t.Error("anchor must be pinned")
	}
	if *st.Anchor.FX != 400 || *st.Anchor.FY != 300 {
		t.Errorf("anchor pinned at (%f,%f), want viewport center", *st.Anchor.FX, *st.Anchor.FY)
	}

	// Resizing moves the anchor to the new center without a restart.
	v.Resize(1000, 400)
	if *st.Anchor.FX != 500 || *st.Anchor.FY != 200 {
		t.Errorf("anchor after resize at (%f,%f)", *st.Anchor.FX, *st.Anchor.FY)
	}

	if !p.lastParams.ShowHierarchy {
		t.Error("provider did not receive the hierarchy toggle")
	}
}

func TestViewer_InitRestoresSavedToggles(t *testing.T) {
	p := &fakeProvider{payload: smallPayload(), cfg: config.DefaultConfig()}
	n := &fakeNotifier{}
	v := newTestViewer(p, n)
	defer v.Close()

	saved := model.ToggleState{HidePassiveNodes: true, MinInteractions: 5}
	v.states.Put("acct-1", saved)

	v.Init(context.Background())
	if got := v.Toggles(); got != saved {
		t.Errorf("toggles = %+v, want %+v", got, saved)
	}
}

func TestViewer_InitConfigFailureIsSilent(t *testing.T) {
	p := &fakeProvider{payload: smallPayload(), cfgErr: errors.New("offline")}
	n := &fakeNotifier{}
	v := newTestViewer(p, n)
	defer v.Close()

	v.Init(context.Background())
	if len(n.all()) != 0 {
		t.Errorf("config failure surfaced to the user: %v", n.all())
	}
	if v.Toggles().MinInteractions != config.DefaultConfig().MinInteractions {
		t.Error("defaults not in effect after config failure")
	}
}

func TestViewer_OverrideClassification(t *testing.T) {
	p := &fakeProvider{payload: smallPayload()}
	n := &fakeNotifier{}
	v := newTestViewer(p, n)
	defer v.Close()

	ctx := context.Background()
	v.Load(ctx)

	// Nothing selected: no provider call, no notification.
	v.OverrideClassification(ctx, "Detractor")
	if len(p.overrides) != 0 {
		t.Fatal("override issued without a selection")
	}

	// The last node always wins the hit test, so clicking its center is
	// unambiguous even if the seeded positions overlap.
	node := v.Graph().NodeByID("p2")
	v.HandleEvent(ctx, interaction.PointerDown{X: node.X, Y: node.Y})
	v.HandleEvent(ctx, interaction.PointerUp{X: node.X, Y: node.Y})
	if v.State().Selected != node {
		t.Fatal("click did not select the node")
	}

	v.OverrideClassification(ctx, "Detractor")
	if len(p.overrides) != 1 || p.overrides[0] != "p2=Detractor" {
		t.Errorf("overrides = %v", p.overrides)
	}
	if node.Classification != "Detractor" {
		t.Errorf("local classification = %q", node.Classification)
	}
	sent := n.all()
	last := sent[len(sent)-1]
	if last.level != LevelSuccess || last.text != "Bob reclassified as Detractor" {
		t.Errorf("notification = %v", last)
	}

	// Provider failure leaves the node untouched.
	p.overrideErr = &ProviderError{Message: "forbidden"}
	v.OverrideClassification(ctx, "Neutral")
	if node.Classification != "Detractor" {
		t.Error("failed override changed the node")
	}
	sent = n.all()
	if last = sent[len(sent)-1]; last.level != LevelError {
		t.Errorf("failure notification = %v", last)
	}
}

func TestViewer_NavigateEffect(t *testing.T) {
	p := &fakeProvider{payload: smallPayload()}
	nav := &fakeNavigator{}
	v := New(Options{
		Provider:  p,
		Navigator: nav,
		RootID:    "acct-1",
		Width:     800,
		Height:    600,
		Config:    config.DefaultConfig(),
	})
	defer v.Close()

	ctx := context.Background()
	v.Load(ctx)
	node := v.Graph().NodeByID("p2")

	v.HandleEvent(ctx, interaction.DoubleClick{X: node.X, Y: node.Y})
	if len(nav.opened) != 1 || nav.opened[0] != "p2" {
		t.Errorf("opened = %v", nav.opened)
	}
}

func TestViewer_ThresholdReloadDebounced(t *testing.T) {
	p := &fakeProvider{payload: smallPayload()}
	v := newTestViewer(p, &fakeNotifier{})
	defer v.Close()

	ctx := context.Background()
	v.Load(ctx)
	base := p.loadCount()

	// A burst of threshold changes coalesces into one reload.
	for _, min := range []int{2, 3, 4} {
		v.HandleEvent(ctx, interaction.ThresholdChange{MinInteractions: min})
	}
	if p.loadCount() != base {
		t.Fatal("reload fired before the debounce delay")
	}
	if v.Toggles().MinInteractions != 4 {
		t.Errorf("threshold = %d, want the last value", v.Toggles().MinInteractions)
	}

	deadline := time.Now().Add(3 * interaction.ReloadDebounceDelay)
	for p.loadCount() == base && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if got := p.loadCount(); got != base+1 {
		t.Errorf("loads after burst = %d, want %d", got, base+1)
	}
	if p.lastParams.MinInteractions != 4 {
		t.Errorf("reload used threshold %d", p.lastParams.MinInteractions)
	}
}

func TestViewer_CloseCancelsPendingReload(t *testing.T) {
	p := &fakeProvider{payload: smallPayload()}
	v := newTestViewer(p, &fakeNotifier{})

	ctx := context.Background()
	v.Load(ctx)
	base := p.loadCount()

	v.HandleEvent(ctx, interaction.ThresholdChange{MinInteractions: 9})
	v.Close()

	time.Sleep(interaction.ReloadDebounceDelay + 100*time.Millisecond)
	if got := p.loadCount(); got != base {
		t.Errorf("reload fired after close: %d loads, want %d", got, base)
	}
}

// The TUI steps the solver on its event loop while refreshes and toggle
// reloads restart it from command goroutines. Run that wiring concurrently so
// the race detector covers the apply path.
func TestViewer_RefreshWhileStepping(t *testing.T) {
	p := &fakeProvider{payload: smallPayload()}
	v := newTestViewer(p, &fakeNotifier{})
	defer v.Close()

	ctx := context.Background()
	v.Load(ctx)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 300; i++ {
			v.Solver().Step()
			v.HandleEvent(ctx, interaction.PointerMove{X: float64(i % 50), Y: 10})
		}
	}()

	for i := 0; i < 20; i++ {
		v.Refresh(ctx)
		ts := v.Toggles()
		ts.ShowExternalNodes = !ts.ShowExternalNodes
		v.SetToggles(ctx, ts)
	}
	<-done

	if v.Graph() == nil {
		t.Fatal("graph lost during concurrent refreshes")
	}
	if len(v.Graph().Nodes) != 2 {
		t.Errorf("graph has %d nodes after refreshes, want 2", len(v.Graph().Nodes))
	}
}
