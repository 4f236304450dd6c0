// Package paths owns the on-disk layout: the application directory with
// the sources config and metadata cache, the per-kind install roots,
// and the deterministic download cache paths. Every path an operation
// touches is derived here so existence checks stay plain path checks.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/fraytools/manager/pkg/assets"
)

const (
	// SourcesFile is the source configuration document name.
	SourcesFile = "sources.json"

	// CacheFile is the metadata cache document name, stored under the
	// cache directory.
	CacheFile = "sources-lock.json"

	// MarkerFile records the installed tag inside an asset's install
	// directory. Templates have no version field in their manifest, so
	// this is the only installed-version signal for them.
	MarkerFile = ".fraytools-manager-version"
)

// Layout resolves every path the manager reads or writes.
type Layout struct {
	// AppDir holds sources.json and the cache directory.
	AppDir string
	// PluginDir is the install root for plugins.
	PluginDir string
	// TemplateDir is the install root for templates.
	TemplateDir string
}

// Default returns the platform layout: FrayToolsManager under the home
// directory on Windows, under ~/.config elsewhere, with install roots
// in ~/FrayToolsData.
func Default() (*Layout, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolving home directory: %w", err)
	}

	appDir := filepath.Join(home, ".config", "FrayToolsManager")
	if runtime.GOOS == "windows" {
		appDir = filepath.Join(home, "FrayToolsManager")
	}

	return &Layout{
		AppDir:      appDir,
		PluginDir:   filepath.Join(home, "FrayToolsData", "plugins"),
		TemplateDir: filepath.Join(home, "FrayToolsData", "templates"),
	}, nil
}

// Ensure creates the application directory, cache directory, and both
// install roots if absent.
func (l *Layout) Ensure() error {
	for _, dir := range []string{l.AppDir, l.CacheDir(), l.PluginDir, l.TemplateDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return nil
}

// ConfigFile returns the path of the source configuration document.
func (l *Layout) ConfigFile() string {
	return filepath.Join(l.AppDir, SourcesFile)
}

// CacheDir returns the download/metadata cache directory.
func (l *Layout) CacheDir() string {
	return filepath.Join(l.AppDir, "cache")
}

// CacheFile returns the path of the metadata cache document.
func (l *Layout) CacheFile() string {
	return filepath.Join(l.CacheDir(), CacheFile)
}

// InstallRoot returns the install root for the given kind.
func (l *Layout) InstallRoot(kind assets.Kind) string {
	if kind == assets.KindTemplate {
		return l.TemplateDir
	}
	return l.PluginDir
}

// DownloadDir returns the directory holding an asset's downloaded
// archives, partitioned by kind.
func (l *Layout) DownloadDir(kind assets.Kind, id string) string {
	partition := "plugins"
	if kind == assets.KindTemplate {
		partition = "templates"
	}
	return filepath.Join(l.CacheDir(), partition, id)
}

// ArchivePath returns the deterministic path of a downloaded release
// archive for (id, tag, kind).
func (l *Layout) ArchivePath(kind assets.Kind, id, tag string) string {
	return filepath.Join(l.DownloadDir(kind, id), id+"-"+tag+".zip")
}

// ArchiveExists reports whether the archive for (id, tag, kind) has
// already been downloaded.
func (l *Layout) ArchiveExists(kind assets.Kind, id, tag string) bool {
	info, err := os.Stat(l.ArchivePath(kind, id, tag))
	return err == nil && !info.IsDir()
}

// MarkerPath returns the install marker path inside an install directory.
func MarkerPath(dir string) string {
	return filepath.Join(dir, MarkerFile)
}

// InstalledTag reads the install marker inside an install directory.
// It returns false when the marker is missing or unreadable.
func InstalledTag(dir string) (string, bool) {
	data, err := os.ReadFile(MarkerPath(dir))
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(string(data)), true
}

// WriteMarker records the installed tag inside an install directory.
func WriteMarker(dir, tag string) error {
	return os.WriteFile(MarkerPath(dir), []byte(tag), 0o644)
}
