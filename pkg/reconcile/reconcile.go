// Package reconcile merges the three independently-mutable views of the
// asset identity space (configured sources, installed manifests, and
// remote release metadata) into a single consistent entry per asset,
// and derives the install/download affordances from that merge.
package reconcile

import (
	"github.com/fraytools/manager/pkg/assets"
	"github.com/fraytools/manager/pkg/paths"
)

// Engine builds reconciled entries and evaluates their affordance
// predicates against the disk layout.
type Engine struct {
	layout *paths.Layout
}

// New creates an engine bound to a disk layout.
func New(layout *paths.Layout) *Engine {
	return &Engine{layout: layout}
}

// BuildEntries merges the three views for one kind into an entry list.
// Manifests are taken in scan order and configs in config order; a
// duplicate manifest id keeps the first position but the last manifest
// (last wins). Installed entries come first, then configured-but-not-
// installed entries; ordering within each group is stable. The result
// is a pure function of its inputs.
func (e *Engine) BuildEntries(
	kind assets.Kind,
	manifests []assets.Manifest,
	configs []assets.Source,
	remote map[string]*assets.RemoteAsset,
) []*assets.Entry {
	// Deduplicate manifests by id: first-seen position, last-seen value.
	order := make([]string, 0, len(manifests))
	byID := make(map[string]assets.Manifest, len(manifests))
	for _, m := range manifests {
		id := m.ManifestID()
		if _, seen := byID[id]; !seen {
			order = append(order, id)
		}
		byID[id] = m
	}

	configMap := make(map[string]assets.Source, len(configs))
	for _, c := range configs {
		configMap[c.ID] = c
	}

	entries := make([]*assets.Entry, 0, len(order)+len(configs))

	// Installed assets first, in scan order.
	for _, id := range order {
		entry := &assets.Entry{Kind: kind, Manifest: byID[id]}
		if cfg, ok := configMap[id]; ok {
			c := cfg
			entry.Config = &c
		}
		if rem, ok := remote[id]; ok {
			entry.Remote = rem
		}
		entries = append(entries, entry)
	}

	// Then configured sources with no manifest, in config order.
	for _, cfg := range configs {
		if _, installed := byID[cfg.ID]; installed {
			continue
		}
		c := cfg
		entry := &assets.Entry{Kind: kind, Config: &c}
		if rem, ok := remote[cfg.ID]; ok {
			entry.Remote = rem
		}
		entries = append(entries, entry)
	}

	return entries
}

// Installed reports whether the entry is installed at the selected
// version tag. An installed asset with no remote record or no
// configured source has nothing to compare against and counts as
// installed regardless of the selection. Plugins additionally match on
// their manifest version field; templates rely solely on the install
// marker written at install time.
func (e *Engine) Installed(entry *assets.Entry, tag string) bool {
	if entry.Manifest == nil {
		return false
	}

	if tag != "" {
		if installed, ok := paths.InstalledTag(entry.Manifest.Dir()); ok && installed == tag {
			return true
		}
	}

	// Orphaned local install: nothing to compare against.
	if entry.Remote == nil || entry.Config == nil {
		return true
	}

	if pm, ok := entry.Manifest.(*assets.PluginManifest); ok && tag != "" && pm.Version == tag {
		return true
	}
	return false
}

// CanDownload reports whether the selected version's archive can be
// downloaded: a version is selected, the asset has a configured source
// and remote metadata, the selection is not installed, and no archive
// for it exists at the deterministic download path.
func (e *Engine) CanDownload(entry *assets.Entry, tag string) bool {
	if tag == "" || entry.Config == nil || entry.Remote == nil {
		return false
	}
	if e.Installed(entry, tag) {
		return false
	}
	return !e.layout.ArchiveExists(entry.Kind, entry.Remote.ID, tag)
}

// CanInstall reports whether the selected version can be installed: a
// version is selected, the asset has a configured source, its archive
// is already on disk, and the selection is neither downloadable nor
// already installed.
func (e *Engine) CanInstall(entry *assets.Entry, tag string) bool {
	if tag == "" || entry.Config == nil {
		return false
	}
	return e.layout.ArchiveExists(entry.Kind, entry.Config.ID, tag) &&
		!e.CanDownload(entry, tag) &&
		!e.Installed(entry, tag)
}

// CanUninstall reports whether the entry can be uninstalled, which is
// exactly the installed predicate.
func (e *Engine) CanUninstall(entry *assets.Entry, tag string) bool {
	return e.Installed(entry, tag)
}

// Status bundles all four affordance predicates for one entry at one
// selected version tag.
type Status struct {
	Installed    bool
	CanDownload  bool
	CanInstall   bool
	CanUninstall bool
}

// Status evaluates every predicate for the entry at the selected tag.
func (e *Engine) Status(entry *assets.Entry, tag string) Status {
	return Status{
		Installed:    e.Installed(entry, tag),
		CanDownload:  e.CanDownload(entry, tag),
		CanInstall:   e.CanInstall(entry, tag),
		CanUninstall: e.CanUninstall(entry, tag),
	}
}
