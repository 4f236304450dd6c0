package output

import (
	"github.com/fraytools/manager/pkg/assets"
	"github.com/fraytools/manager/pkg/paths"
	"github.com/fraytools/manager/pkg/reconcile"
)

// EntryRow is the flattened per-asset view rendered by list commands.
type EntryRow struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	Installed string `json:"installed"`
	Latest    string `json:"latest"`
	State     string `json:"state"`
}

// SourceRow is the flattened source config view rendered by source list.
type SourceRow struct {
	Kind  string `json:"kind"`
	ID    string `json:"id"`
	Owner string `json:"owner"`
	Repo  string `json:"repo"`
}

// StatusFunc evaluates the affordance predicates for an entry at a tag.
type StatusFunc func(entry *assets.Entry, tag string) reconcile.Status

// EntryRows flattens reconciled entries for rendering. Each entry's
// state is evaluated against its newest known version.
func EntryRows(entries []*assets.Entry, status StatusFunc) []EntryRow {
	rows := make([]EntryRow, 0, len(entries))
	for _, entry := range entries {
		latest := ""
		if tags := entry.Tags(); len(tags) > 0 {
			latest = tags[0]
		}
		rows = append(rows, EntryRow{
			ID:        entry.ID(),
			Name:      entry.DisplayName(),
			Kind:      entry.Kind.String(),
			Installed: installedVersion(entry),
			Latest:    latest,
			State:     entryState(entry, latest, status),
		})
	}
	return rows
}

// SourceRows flattens configured sources for rendering.
func SourceRows(kind assets.Kind, srcs []assets.Source) []SourceRow {
	rows := make([]SourceRow, 0, len(srcs))
	for _, src := range srcs {
		rows = append(rows, SourceRow{
			Kind:  kind.String(),
			ID:    src.ID,
			Owner: src.Owner,
			Repo:  src.Repo,
		})
	}
	return rows
}

// installedVersion reports the installed version of an entry: the
// install marker when present, the manifest version field for plugins
// installed by other means, or "?" for an install of unknown version.
func installedVersion(entry *assets.Entry) string {
	if entry.Manifest == nil {
		return ""
	}
	if tag, ok := paths.InstalledTag(entry.Manifest.Dir()); ok && tag != "" {
		return tag
	}
	if pm, ok := entry.Manifest.(*assets.PluginManifest); ok && pm.Version != "" {
		return pm.Version
	}
	return "?"
}

// entryState summarizes an entry relative to its newest known version.
func entryState(entry *assets.Entry, latest string, status StatusFunc) string {
	st := status(entry, latest)
	switch {
	case entry.Manifest != nil && st.Installed:
		return "installed"
	case entry.Manifest != nil:
		return "update available"
	case st.CanInstall:
		return "downloaded"
	case entry.Remote != nil && latest != "":
		return "available"
	default:
		return "not fetched"
	}
}
