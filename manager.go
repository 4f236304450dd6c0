// Package manager is the entry point for the FrayTools content manager:
// a catalog of pluggable FrayTools assets (plugins and templates) that
// reconciles three independently-changing views of the same identity
// space (the configured sources, the assets installed on disk, and the
// release metadata published on GitHub) into one consistent entry list
// per asset kind, and drives the download/install/uninstall lifecycle
// from it.
//
// Example usage:
//
//	m, err := manager.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Refresh release metadata for every configured source.
//	if err := m.Refresh(ctx); err != nil {
//	    log.Printf("refresh incomplete: %v", err)
//	}
//
//	for _, entry := range m.Entries(assets.KindPlugin) {
//	    fmt.Println(entry.DisplayName())
//	}
//
//	// Download and install the latest release of a plugin.
//	if err := m.Download(ctx, assets.KindPlugin, id, ""); err != nil {
//	    log.Fatal(err)
//	}
//	if err := m.Install(assets.KindPlugin, id, ""); err != nil {
//	    log.Fatal(err)
//	}
package manager

import (
	"context"

	"github.com/fraytools/manager/pkg/assets"
	"github.com/fraytools/manager/pkg/paths"
	"github.com/fraytools/manager/pkg/reconcile"
)

// Fetcher lists the published release versions of a configured source.
// The default implementation talks to the GitHub REST API; tests inject
// fakes through WithFetcher.
type Fetcher interface {
	ListVersions(ctx context.Context, src assets.Source, kind assets.Kind) (*assets.RemoteAsset, error)
}

// Manager reconciles configured sources, installed assets, and cached
// release metadata, and executes asset lifecycle operations.
type Manager interface {
	// Reload rebuilds the entry lists from disk: the source config, the
	// metadata cache, and a fresh scan of both install roots.
	Reload() error

	// Refresh fetches release metadata for every configured source,
	// persists what it got, and rebuilds the entry lists. Per-source
	// fetch failures are collected; successes are kept regardless.
	Refresh(ctx context.Context) error

	// RefreshAsset fetches release metadata for a single configured
	// source, persists it, and rebuilds the entry lists.
	RefreshAsset(ctx context.Context, kind assets.Kind, id string) error

	// Entries returns the reconciled entries for a kind: installed
	// assets first in scan order, then configured-but-not-installed
	// sources in config order.
	Entries(kind assets.Kind) []*assets.Entry

	// Entry returns the reconciled entry with the given asset id.
	Entry(kind assets.Kind, id string) (*assets.Entry, error)

	// Sources returns the configured sources for a kind in config order.
	Sources(kind assets.Kind) []assets.Source

	// AddSource registers a new source entry and persists the config.
	AddSource(kind assets.Kind, owner, repo, id string) error

	// EditSource replaces the source entry matching existingID, drops
	// the stale cache record, and persists both documents.
	EditSource(kind assets.Kind, existingID, owner, repo, id string) error

	// RemoveSource removes a source entry and its cache record. The
	// installed copy, if any, stays on disk.
	RemoveSource(kind assets.Kind, id string) error

	// RestoreDefaults replaces the source config with the built-in
	// starter catalog. The metadata cache is left alone.
	RestoreDefaults() error

	// ClearCache empties the metadata cache document.
	ClearCache() error

	// ClearDownloads deletes every downloaded archive, keeping the
	// metadata cache document.
	ClearDownloads() error

	// Download streams the release archive for (id, tag) to the download
	// cache. An empty tag selects the newest version. At most one
	// transfer per (id, tag) pair runs at a time.
	Download(ctx context.Context, kind assets.Kind, id, tag string) error

	// Install extracts the downloaded archive for (id, tag) into the
	// asset's install directory and records the installed tag. An empty
	// tag selects the newest version.
	Install(kind assets.Kind, id, tag string) error

	// Uninstall deletes the installed asset's directory.
	Uninstall(kind assets.Kind, id string) error

	// Changelog returns the release notes for (id, tag). An empty tag
	// selects the newest version.
	Changelog(kind assets.Kind, id, tag string) (string, error)

	// Status evaluates the affordance predicates for an entry at the
	// selected version tag.
	Status(entry *assets.Entry, tag string) reconcile.Status

	// Layout returns the disk layout the manager operates on.
	Layout() *paths.Layout
}
