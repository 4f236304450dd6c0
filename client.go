package manager

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog"

	"github.com/fraytools/manager/internal/github"
	"github.com/fraytools/manager/internal/scan"
	"github.com/fraytools/manager/pkg/assets"
	"github.com/fraytools/manager/pkg/cache"
	"github.com/fraytools/manager/pkg/errors"
	"github.com/fraytools/manager/pkg/lifecycle"
	"github.com/fraytools/manager/pkg/logging"
	"github.com/fraytools/manager/pkg/paths"
	"github.com/fraytools/manager/pkg/reconcile"
	"github.com/fraytools/manager/pkg/sources"
)

// manager is the internal implementation of the Manager interface.
type manager struct {
	mu sync.RWMutex

	layout    *paths.Layout
	registry  *sources.Registry
	cache     *cache.Cache
	scanner   *scan.Scanner
	engine    *reconcile.Engine
	fetcher   Fetcher
	lifecycle *lifecycle.Manager
	log       *zerolog.Logger

	// Rebuilt on every Reload/rebuild; read under mu.
	entries   map[assets.Kind][]*assets.Entry
	manifests map[assets.Kind]map[string]assets.Manifest
}

// New creates a Manager, ensures the disk layout exists, and performs
// an initial Reload. With no sources.json on disk the built-in starter
// catalog is written first.
func New(opts ...Option) (Manager, error) {
	cfg := &config{}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("applying options: %w", err)
		}
	}

	layout := cfg.layout
	if layout == nil {
		var err error
		layout, err = paths.Default()
		if err != nil {
			return nil, err
		}
	}
	if err := layout.Ensure(); err != nil {
		return nil, err
	}

	log := cfg.logger
	if log == nil {
		log = logging.Default()
	}

	fetcher := cfg.fetcher
	if fetcher == nil {
		var ghOpts []github.Option
		if cfg.httpClient != nil {
			ghOpts = append(ghOpts, github.WithHTTPClient(cfg.httpClient))
		}
		if cfg.githubToken != "" {
			ghOpts = append(ghOpts, github.WithToken(cfg.githubToken))
		}
		fetcher = github.New(ghOpts...)
	}

	lcOpts := []lifecycle.Option{lifecycle.WithLogger(log)}
	if cfg.httpClient != nil {
		lcOpts = append(lcOpts, lifecycle.WithHTTPClient(cfg.httpClient))
	}

	m := &manager{
		layout:    layout,
		cache:     cache.New(layout.CacheFile()),
		scanner:   scan.New(log),
		engine:    reconcile.New(layout),
		fetcher:   fetcher,
		lifecycle: lifecycle.New(layout, lcOpts...),
		log:       log,
	}

	if err := m.Reload(); err != nil {
		return nil, err
	}
	return m, nil
}

// Reload implements Manager.
func (m *manager) Reload() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reload()
}

// reload reads both persisted documents and rescans the install roots.
// Caller holds mu.
func (m *manager) reload() error {
	registry, err := m.loadRegistry()
	if err != nil {
		return err
	}
	m.registry = registry

	if err := m.cache.Read(); err != nil {
		if !errors.IsInvalid(err) {
			return err
		}
		// Unreadable cache content is not fatal: start empty and let the
		// next refresh rewrite it.
		m.log.Warn().Err(err).Msg("Discarding unreadable metadata cache")
		m.cache.Clear()
	}

	m.rebuild()
	return nil
}

// loadRegistry reads sources.json, writing the starter catalog first
// when the document does not exist yet.
func (m *manager) loadRegistry() (*sources.Registry, error) {
	path := m.layout.ConfigFile()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		registry := sources.Default(path)
		if err := registry.Save(); err != nil {
			return nil, err
		}
		m.log.Info().Str("path", path).Msg("Wrote default source config")
		return registry, nil
	}
	return sources.Load(path)
}

// rebuild rescans the install roots and reconciles entries for both
// kinds from the in-memory registry and cache. Caller holds mu.
func (m *manager) rebuild() {
	m.entries = make(map[assets.Kind][]*assets.Entry, len(assets.Kinds))
	m.manifests = make(map[assets.Kind]map[string]assets.Manifest, len(assets.Kinds))

	for _, kind := range assets.Kinds {
		manifests := m.scanner.Scan(kind, m.layout.InstallRoot(kind))
		configs := m.registry.List(kind)

		remote := make(map[string]*assets.RemoteAsset, len(configs))
		for _, src := range configs {
			if asset, err := m.cache.Get(kind, src.ID); err == nil {
				remote[src.ID] = asset
			}
		}

		m.entries[kind] = m.engine.BuildEntries(kind, manifests, configs, remote)
		m.manifests[kind] = m.scanner.Map(manifests)
	}
}

// Refresh implements Manager.
func (m *manager) Refresh(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for _, kind := range assets.Kinds {
		for _, src := range m.registry.List(kind) {
			asset, err := m.fetcher.ListVersions(ctx, src, kind)
			if err != nil {
				m.log.Warn().Err(err).Str("repo", src.Repository()).Msg("Release listing failed")
				errs = append(errs, err)
				continue
			}
			m.cache.Add(asset)
		}
	}

	if err := m.cache.Write(); err != nil {
		errs = append(errs, err)
	}
	m.rebuild()
	return stderrors.Join(errs...)
}

// RefreshAsset implements Manager.
func (m *manager) RefreshAsset(ctx context.Context, kind assets.Kind, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	src, ok := m.registry.Lookup(kind, id)
	if !ok {
		return errors.NewNotFoundError("source", id)
	}
	asset, err := m.fetcher.ListVersions(ctx, src, kind)
	if err != nil {
		return err
	}
	m.cache.Add(asset)
	if err := m.cache.Write(); err != nil {
		return err
	}
	m.rebuild()
	return nil
}

// Entries implements Manager.
func (m *manager) Entries(kind assets.Kind) []*assets.Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entries := make([]*assets.Entry, len(m.entries[kind]))
	copy(entries, m.entries[kind])
	return entries
}

// Entry implements Manager.
func (m *manager) Entry(kind assets.Kind, id string) (*assets.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.entry(kind, id)
}

// entry looks an entry up by asset id. Caller holds mu.
func (m *manager) entry(kind assets.Kind, id string) (*assets.Entry, error) {
	for _, e := range m.entries[kind] {
		if e.ID() == id {
			return e, nil
		}
	}
	return nil, errors.NewNotFoundError(kind.String(), id)
}

// Sources implements Manager.
func (m *manager) Sources(kind assets.Kind) []assets.Source {
	m.mu.RLock()
	defer m.mu.RUnlock()
	list := m.registry.List(kind)
	out := make([]assets.Source, len(list))
	copy(out, list)
	return out
}

// Status implements Manager.
func (m *manager) Status(entry *assets.Entry, tag string) reconcile.Status {
	return m.engine.Status(entry, tag)
}

// Layout implements Manager.
func (m *manager) Layout() *paths.Layout {
	return m.layout
}
