// Package ui is the interactive terminal front end. It projects the
// force-directed layout onto a rune grid, translates terminal mouse and key
// events into interaction events, and steps the physics solver from a frame
// tick. All graph semantics live in the viewer; this package only adapts
// them to a terminal.
package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/relmap/pkg/config"
	"github.com/vanderheijden86/relmap/pkg/interaction"
	"github.com/vanderheijden86/relmap/pkg/model"
	"github.com/vanderheijden86/relmap/pkg/viewer"
)

// tickInterval drives the solver and repaint loop, roughly 30 fps.
const tickInterval = 33 * time.Millisecond

// doubleClickWindow is the max delay between two presses on the same cell to
// count as a double click.
const doubleClickWindow = 400 * time.Millisecond

const panelWidth = 34

type (
	tickMsg   time.Time
	notifyMsg struct {
		level viewer.Level
		text  string
	}
	reloadedMsg struct{}
)

// Model is the bubbletea model wrapping a Viewer.
type Model struct {
	viewer *viewer.Viewer
	cfg    config.Config
	keys   KeyMap
	canvas *Canvas

	width, height int

	status     string
	statusTime time.Time

	showHelp bool
	helpText string

	form       *huh.Form
	reclassify string

	notifyCh chan notifyMsg

	lastClickTime time.Time
	lastClickX    int
	lastClickY    int

	navigator viewer.Navigator
}

// NewModel builds the TUI model around a viewer. The returned model's
// Notifier should be passed to the viewer's options before the first load.
func NewModel(v *viewer.Viewer, cfg config.Config, nav viewer.Navigator) *Model {
	m := &Model{
		viewer:    v,
		cfg:       cfg,
		keys:      DefaultKeyMap(),
		canvas:    NewCanvas(80, 24),
		notifyCh:  make(chan notifyMsg, 16),
		navigator: nav,
	}
	m.helpText = renderHelp()
	return m
}

// Notify implements viewer.Notifier by forwarding into the update loop.
func (m *Model) Notify(level viewer.Level, message string) {
	select {
	case m.notifyCh <- notifyMsg{level: level, text: message}:
	default:
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(tick(), m.waitForNotify())
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) waitForNotify() tea.Cmd {
	return func() tea.Msg {
		return <-m.notifyCh
	}
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// The reclassify form, while open, consumes every message.
	if m.form != nil {
		form, cmd := m.form.Update(msg)
		if f, ok := form.(*huh.Form); ok {
			m.form = f
		}
		if m.form.State == huh.StateCompleted {
			classification := m.form.GetString("classification")
			m.form = nil
			return m, m.overrideCmd(classification)
		}
		if m.form.State == huh.StateAborted {
			m.form = nil
			return m, nil
		}
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		rows := msg.Height - 1 // status bar
		if rows < 1 {
			rows = 1
		}
		m.canvas.Resize(msg.Width, rows)
		w, h := m.canvas.ScreenSize()
		m.viewer.Resize(w, h)
		return m, nil

	case tickMsg:
		m.viewer.Solver().Step()
		return m, tick()

	case notifyMsg:
		m.status = notifyStyles[msg.level].Render(msg.text)
		m.statusTime = time.Now()
		return m, m.waitForNotify()

	case reloadedMsg:
		return m, nil

	case tea.MouseMsg:
		return m, m.handleMouse(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	sx, sy := CellToScreen(msg.X, msg.Y)
	ctx := context.Background()

	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		m.viewer.HandleEvent(ctx, interaction.Wheel{X: sx, Y: sy, DeltaY: -1})
	case msg.Button == tea.MouseButtonWheelDown:
		m.viewer.HandleEvent(ctx, interaction.Wheel{X: sx, Y: sy, DeltaY: 1})

	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		now := time.Now()
		if now.Sub(m.lastClickTime) < doubleClickWindow &&
			abs(msg.X-m.lastClickX) <= 1 && abs(msg.Y-m.lastClickY) <= 1 {
			m.viewer.HandleEvent(ctx, interaction.DoubleClick{X: sx, Y: sy})
			m.lastClickTime = time.Time{}
		} else {
			m.viewer.HandleEvent(ctx, interaction.PointerDown{X: sx, Y: sy})
			m.lastClickTime = now
			m.lastClickX, m.lastClickY = msg.X, msg.Y
		}

	case msg.Action == tea.MouseActionMotion:
		m.viewer.HandleEvent(ctx, interaction.PointerMove{X: sx, Y: sy})

	case msg.Action == tea.MouseActionRelease:
		m.viewer.HandleEvent(ctx, interaction.PointerUp{X: sx, Y: sy})
	}
	return nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ctx := context.Background()

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.viewer.Close()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		return m, nil

	case key.Matches(msg, m.keys.ZoomIn):
		m.viewer.HandleEvent(ctx, interaction.ZoomIn{})
	case key.Matches(msg, m.keys.ZoomOut):
		m.viewer.HandleEvent(ctx, interaction.ZoomOut{})
	case key.Matches(msg, m.keys.ZoomReset):
		m.viewer.HandleEvent(ctx, interaction.ZoomReset{})

	case key.Matches(msg, m.keys.Refresh):
		return m, m.refreshCmd()

	case key.Matches(msg, m.keys.Hierarchy):
		ts := m.viewer.Toggles()
		ts.ShowHierarchy = !ts.ShowHierarchy
		return m, m.setTogglesCmd(ts)
	case key.Matches(msg, m.keys.External):
		ts := m.viewer.Toggles()
		ts.ShowExternalNodes = !ts.ShowExternalNodes
		return m, m.setTogglesCmd(ts)
	case key.Matches(msg, m.keys.Passive):
		ts := m.viewer.Toggles()
		ts.HidePassiveNodes = !ts.HidePassiveNodes
		return m, m.setTogglesCmd(ts)

	case key.Matches(msg, m.keys.Yank):
		if n := m.viewer.State().Selected; n != nil {
			if err := clipboard.WriteAll(n.ID); err != nil {
				m.Notify(viewer.LevelError, "Clipboard unavailable")
			} else {
				m.Notify(viewer.LevelSuccess, fmt.Sprintf("Copied %s", n.ID))
			}
		}

	case key.Matches(msg, m.keys.OpenRecord):
		if n := m.viewer.State().Selected; n != nil && m.navigator != nil {
			m.navigator.OpenRecord(n.ID)
		}

	case key.Matches(msg, m.keys.ClearSelect):
		// A click on empty space clears selection; esc is the keyboard way.
		m.viewer.HandleEvent(ctx, interaction.PointerDown{X: -1, Y: -1})
		m.viewer.HandleEvent(ctx, interaction.PointerUp{X: -1, Y: -1})

	case key.Matches(msg, m.keys.Reclassify):
		if m.viewer.State().Selected != nil {
			m.openReclassifyForm()
			return m, m.form.Init()
		}
	}

	return m, nil
}

func (m *Model) openReclassifyForm() {
	opts := make([]huh.Option[string], 0, len(m.cfg.Classifications))
	for _, c := range m.cfg.Classifications {
		opts = append(opts, huh.NewOption(c, c))
	}
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("classification").
				Title("Reclassify contact").
				Options(opts...),
		),
	)
}

func (m *Model) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		m.viewer.Refresh(context.Background())
		return reloadedMsg{}
	}
}

func (m *Model) setTogglesCmd(ts model.ToggleState) tea.Cmd {
	return func() tea.Msg {
		m.viewer.SetToggles(context.Background(), ts)
		return reloadedMsg{}
	}
}

func (m *Model) overrideCmd(classification string) tea.Cmd {
	return func() tea.Msg {
		m.viewer.OverrideClassification(context.Background(), classification)
		return reloadedMsg{}
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.showHelp {
		return m.helpText
	}
	if m.form != nil {
		return m.form.View()
	}

	g := m.viewer.Graph()
	state := m.viewer.State()
	frame := m.canvas.Render(g, state)

	if n := state.Selected; n != nil {
		frame = overlayPanel(frame, m.detailPanel(n, g), m.width)
	}

	return frame + "\n" + m.statusBar(g, state)
}

func (m *Model) statusBar(g *model.Graph, s interaction.State) string {
	var parts []string
	if g != nil {
		parts = append(parts, fmt.Sprintf("%d nodes / %d edges", len(g.Nodes), len(g.Edges)))
		if g.Truncated {
			parts = append(parts, notifyStyles[viewer.LevelWarning].Render(
				fmt.Sprintf("showing %d of %d", len(g.Nodes), g.TotalCount)))
		}
	}
	parts = append(parts, fmt.Sprintf("zoom %.0f%%", s.Transform.K*100))

	ts := m.viewer.Toggles()
	var toggles []string
	if ts.ShowHierarchy {
		toggles = append(toggles, "hier")
	}
	if ts.ShowExternalNodes {
		toggles = append(toggles, "ext")
	}
	if ts.HidePassiveNodes {
		toggles = append(toggles, "no-passive")
	}
	if len(toggles) > 0 {
		parts = append(parts, strings.Join(toggles, "+"))
	}

	if m.status != "" && time.Since(m.statusTime) < 5*time.Second {
		parts = append(parts, m.status)
	}
	parts = append(parts, "? help")

	return statusBarStyle.Render(strings.Join(parts, "  │  "))
}

func (m *Model) detailPanel(n *model.Node, g *model.Graph) string {
	var b strings.Builder
	b.WriteString(panelTitleStyle.Render(n.Name) + "\n")
	if n.Title != "" {
		b.WriteString(n.Title + "\n")
	}
	if n.Classification != "" {
		b.WriteString(fmt.Sprintf("%s (%.0f%%)\n", n.Classification, n.Confidence*100))
	}
	b.WriteString(fmt.Sprintf("%d interactions\n", n.InteractionCount))
	if n.Moved && n.MovedToName != "" {
		b.WriteString(riskStyle.Render(fmt.Sprintf("Moved to %s", n.MovedToName)) + "\n")
	} else if n.Left {
		b.WriteString(riskStyle.Render("Left company") + "\n")
	}
	if sev, ok := g.Risk[n.ID]; ok {
		b.WriteString(riskStyle.Render(fmt.Sprintf("Risk: %s", sev)) + "\n")
	}
	b.WriteString("\n" + statusBarStyle.Render("enter open · c reclassify · y copy"))
	return panelStyle.Width(panelWidth - 4).Render(strings.TrimRight(b.String(), "\n"))
}

// overlayPanel splices the detail panel into the top-right corner of the
// frame, line by line.
func overlayPanel(frame, panel string, width int) string {
	frameLines := strings.Split(frame, "\n")
	panelLines := strings.Split(panel, "\n")
	for i, pl := range panelLines {
		if i >= len(frameLines) {
			break
		}
		fl := frameLines[i]
		cut := width - lipgloss.Width(pl) - 1
		if cut < 0 {
			cut = 0
		}
		frameLines[i] = truncateANSI(fl, cut) + " " + pl
	}
	return strings.Join(frameLines, "\n")
}

// truncateANSI cuts a styled line to a visible width without splitting
// escape sequences.
func truncateANSI(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	var b strings.Builder
	visible := 0
	inEscape := false
	for _, r := range s {
		if inEscape {
			b.WriteRune(r)
			if r == 'm' {
				inEscape = false
			}
			continue
		}
		if r == '\x1b' {
			b.WriteRune(r)
			inEscape = true
			continue
		}
		if visible >= width {
			break
		}
		b.WriteRune(r)
		visible++
	}
	return b.String()
}

const helpMarkdown = `# relmap

An interactive relationship graph. Drag nodes to rearrange, scroll to zoom,
click to inspect.

## Mouse

- **drag node**: reposition (the layout keeps simulating around it)
- **drag empty space**: pan
- **wheel**: zoom at pointer
- **click**: select a node, **double click**: open its record

## Keys

| Key | Action |
| --- | ------ |
| + / - / 0 | zoom in / out / reset |
| r | refresh data |
| h | toggle hierarchy mode |
| e | toggle external contacts |
| p | hide passive contacts |
| c | reclassify selected contact |
| y | copy selected node id |
| enter | open selected record |
| esc | clear selection |
| ? | toggle this help |
| q | quit |
`

func renderHelp() string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(72),
	)
	if err != nil {
		return helpMarkdown
	}
	out, err := r.Render(helpMarkdown)
	if err != nil {
		return helpMarkdown
	}
	return out
}
