// Package loader implements a file-backed data provider: graph payloads are
// read from a JSON file and filtered locally the way a live backend would
// filter them server-side. It backs the CLI and tests; a network provider
// satisfies the same interface in hosted deployments.
package loader

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/vanderheijden86/relmap/pkg/config"
	"github.com/vanderheijden86/relmap/pkg/metrics"
	"github.com/vanderheijden86/relmap/pkg/model"
	"github.com/vanderheijden86/relmap/pkg/viewer"
)

// FileProvider serves payloads from a single JSON file. Classification
// overrides are kept in memory and reapplied to every subsequent load, so
// the file itself stays untouched.
type FileProvider struct {
	path string
	cfg  config.Config

	mu        sync.Mutex
	overrides map[string]string // subject id -> classification
}

// NewFileProvider creates a provider reading payloads from path.
func NewFileProvider(path string, cfg config.Config) *FileProvider {
	return &FileProvider{
		path:      path,
		cfg:       cfg,
		overrides: make(map[string]string),
	}
}

// LoadGraph implements viewer.DataProvider.
func (f *FileProvider) LoadGraph(ctx context.Context, p viewer.LoadParams) (*model.GraphPayload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("reading payload file: %w", err)
	}
	decode := metrics.Timer(metrics.PayloadDecode)
	payload, err := model.DecodePayload(data)
	decode()
	if err != nil {
		return nil, err
	}

	f.filter(payload, p)
	f.applyOverrides(payload)
	return payload, nil
}

// Refresh implements viewer.DataProvider. A file has no cache to bypass, so
// refresh is a plain reload.
func (f *FileProvider) Refresh(ctx context.Context, p viewer.LoadParams) (*model.GraphPayload, error) {
	return f.LoadGraph(ctx, p)
}

// OverrideClassification implements viewer.DataProvider.
func (f *FileProvider) OverrideClassification(ctx context.Context, subjectID, rootID, classification string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	f.overrides[subjectID] = classification
	f.mu.Unlock()
	return nil
}

// GetConfig implements viewer.DataProvider by reading the local config file.
func (f *FileProvider) GetConfig(ctx context.Context) (config.Config, error) {
	if err := ctx.Err(); err != nil {
		return config.Config{}, err
	}
	return f.cfg, nil
}

// filter applies the load parameters the way the backend would: passive and
// low-interaction people drop out, external people drop out unless requested.
// Organization relationship filtering stays with the processor since it
// depends on hierarchy mode at render time.
func (f *FileProvider) filter(p *model.GraphPayload, params viewer.LoadParams) {
	kept := p.Nodes[:0]
	dropped := make(map[string]bool)
	for _, n := range p.Nodes {
		drop := false
		if params.HidePassiveNodes && n.Type == "person" && n.InteractionCount == 0 {
			drop = true
		}
		if n.Type == "person" && n.InteractionCount < params.MinInteractions {
			drop = true
		}
		if !params.ShowExternalNodes && n.Type == "external_person" {
			drop = true
		}
		if drop {
			dropped[n.ID] = true
			continue
		}
		kept = append(kept, n)
	}
	p.Nodes = kept

	edges := p.Edges[:0]
	for _, e := range p.Edges {
		if dropped[e.Source] || dropped[e.Target] {
			continue
		}
		edges = append(edges, e)
	}
	p.Edges = edges
}

func (f *FileProvider) applyOverrides(p *model.GraphPayload) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.overrides) == 0 {
		return
	}
	for i := range p.Nodes {
		if c, ok := f.overrides[p.Nodes[i].ID]; ok {
			p.Nodes[i].Classification = c
		}
	}
}
