// Command relmap renders an interactive relationship graph in the terminal,
// or exports a static PNG/SVG snapshot of it.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/vanderheijden86/relmap/pkg/config"
	"github.com/vanderheijden86/relmap/pkg/debug"
	"github.com/vanderheijden86/relmap/pkg/loader"
	"github.com/vanderheijden86/relmap/pkg/metrics"
	"github.com/vanderheijden86/relmap/pkg/model"
	"github.com/vanderheijden86/relmap/pkg/render"
	"github.com/vanderheijden86/relmap/pkg/ui"
	"github.com/vanderheijden86/relmap/pkg/version"
	"github.com/vanderheijden86/relmap/pkg/viewer"
	"github.com/vanderheijden86/relmap/pkg/viewstate"
	"github.com/vanderheijden86/relmap/pkg/watcher"
)

// settleSteps bounds the headless layout run before a snapshot export.
const settleSteps = 300

func main() {
	payloadPath := flag.String("payload", "", "Path to a graph payload JSON file (required)")
	rootID := flag.String("root", "", "Root entity id (defaults to payload file name)")
	configPath := flag.String("config", "", "Config file path (default: XDG config dir)")
	snapshot := flag.String("snapshot", "", "Export a static snapshot (.png or .svg) and exit")
	hierarchy := flag.Bool("hierarchy", false, "Start in hierarchy mode")
	watch := flag.Bool("watch", false, "Reload when the payload file changes")
	help := flag.Bool("help", false, "Show help")
	versionFlag := flag.Bool("version", false, "Show version")
	flag.Parse()

	if *help {
		fmt.Println("Usage: relmap --payload graph.json [options]")
		fmt.Println("\nAn interactive force-directed relationship graph viewer.")
		flag.PrintDefaults()
		os.Exit(0)
	}

	if *versionFlag {
		fmt.Printf("relmap %s\n", version.Version)
		os.Exit(0)
	}

	if *payloadPath == "" {
		fmt.Fprintln(os.Stderr, "relmap: --payload is required")
		flag.PrintDefaults()
		os.Exit(2)
	}

	root := *rootID
	if root == "" {
		root = strings.TrimSuffix(filepath.Base(*payloadPath), filepath.Ext(*payloadPath))
	}

	// Config and view-state store load concurrently; neither failure is
	// fatal to rendering.
	var (
		cfg    config.Config
		states viewstate.Store
	)
	g, _ := errgroup.WithContext(context.Background())
	g.Go(func() error {
		var err error
		if *configPath != "" {
			cfg, err = config.LoadFrom(*configPath)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "relmap: config load failed, using defaults: %v\n", err)
			cfg = config.DefaultConfig()
		}
		return nil
	})
	g.Go(func() error {
		dir := config.StateDir()
		if dir == "" {
			states = viewstate.NewMemoryStore()
			return nil
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			states = viewstate.NewMemoryStore()
			return nil
		}
		store, err := viewstate.OpenSQLite(filepath.Join(dir, "viewstate.db"))
		if err != nil {
			states = viewstate.NewMemoryStore()
			return nil
		}
		states = store
		return nil
	})
	g.Wait()
	defer states.Close()

	provider := loader.NewFileProvider(*payloadPath, cfg)

	if *snapshot != "" {
		if err := exportSnapshot(provider, cfg, root, *hierarchy, *snapshot); err != nil {
			fmt.Fprintf(os.Stderr, "relmap: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s\n", *snapshot)
		return
	}

	runTUI(provider, cfg, states, root, *hierarchy, *watch, *payloadPath)
}

// exportSnapshot loads, lays out headlessly, and writes a PNG or SVG.
func exportSnapshot(provider viewer.DataProvider, cfg config.Config, root string, hierarchy bool, outPath string) error {
	defer metrics.Timer(metrics.SnapshotExport)()

	width := float64(cfg.Canvas.Width)
	height := float64(cfg.Canvas.Height)

	v := viewer.New(viewer.Options{
		Provider: provider,
		RootID:   root,
		Width:    width,
		Height:   height,
		Config:   cfg,
	})
	defer v.Close()

	ts := v.Toggles()
	ts.ShowHierarchy = hierarchy
	v.SetToggles(context.Background(), ts)

	graph := v.Graph()
	if graph == nil {
		return fmt.Errorf("no graph loaded")
	}
	v.Solver().Settle(settleSteps)

	r := render.New()
	frame := render.Frame{
		Graph:     graph,
		Transform: model.NewViewTransform(),
		Width:     cfg.Canvas.Width,
		Height:    cfg.Canvas.Height,
	}

	switch strings.ToLower(filepath.Ext(outPath)) {
	case ".png":
		return r.RenderPNG(frame, outPath)
	case ".svg":
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("creating snapshot file: %w", err)
		}
		defer f.Close()
		return r.WriteSVG(f, frame)
	default:
		return fmt.Errorf("unsupported snapshot format %q (use .png or .svg)", filepath.Ext(outPath))
	}
}

func runTUI(provider viewer.DataProvider, cfg config.Config, states viewstate.Store, root string, hierarchy, watch bool, payloadPath string) {
	// Initial surface size from the terminal; bubbletea resizes it after.
	cols, rows := 80, 24
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 && h > 0 {
		cols, rows = w, h
	}
	screenW := float64(cols) * ui.CellWidthPx
	screenH := float64(rows-1) * ui.CellHeightPx

	v := viewer.New(viewer.Options{
		Provider:  provider,
		Navigator: stderrNavigator{},
		States:    states,
		RootID:    root,
		Width:     screenW,
		Height:    screenH,
		Config:    cfg,
	})
	defer v.Close()

	// The model is also the notification sink, so it wires in after both
	// exist.
	m := ui.NewModel(v, cfg, stderrNavigator{})
	v.SetNotifier(m)

	ctx := context.Background()
	v.Init(ctx)
	if hierarchy {
		ts := v.Toggles()
		ts.ShowHierarchy = true
		v.SetToggles(ctx, ts)
	} else {
		v.Load(ctx)
	}

	var w *watcher.Watcher
	if watch {
		var err error
		w, err = watcher.New(payloadPath, watcher.WithOnChange(func() {
			v.Refresh(context.Background())
		}))
		if err == nil {
			if err := w.Start(); err != nil {
				fmt.Fprintf(os.Stderr, "relmap: watch failed: %v\n", err)
			}
			defer w.Stop()
		}
	}

	if err := runTUIProgram(m); err != nil {
		fmt.Fprintf(os.Stderr, "Error running relmap: %v\n", err)
		os.Exit(1)
	}

	if debug.Enabled() {
		for _, s := range metrics.AllTimingStats() {
			debug.Log("%s: n=%d avg=%.2fms max=%.2fms", s.Name, s.Count, s.AvgMs, s.MaxMs)
		}
	}
}

func runTUIProgram(m *ui.Model) error {
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithoutSignalHandler(),
	)

	runDone := make(chan struct{})
	defer close(runDone)

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}

		p.Quit()

		select {
		case <-runDone:
			return
		case <-sigCh:
		case <-time.After(5 * time.Second):
		}

		p.Kill()
	}()

	_, err := p.Run()
	return err
}

// stderrNavigator is the navigation sink for a standalone terminal run:
// there is no host application, so record opens are printed for the user to
// follow up on.
type stderrNavigator struct{}

func (stderrNavigator) OpenRecord(id string) {
	fmt.Fprintf(os.Stderr, "open record: %s\n", id)
}
