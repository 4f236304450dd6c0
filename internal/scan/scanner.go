// Package scan discovers installed assets by walking the per-kind
// install roots and parsing the manifests found there. Discovery is
// best effort: a directory without a readable manifest is skipped, not
// an error, since it may be partially installed or foreign content.
package scan

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/fraytools/manager/pkg/assets"
	"github.com/fraytools/manager/pkg/logging"
)

const (
	// pluginManifest sits directly inside a plugin's install directory.
	pluginManifest = "manifest.json"
	// templateManifestDir nests the template manifest one level deeper.
	templateManifestDir = "library"
)

// Scanner walks install roots and parses installed-asset manifests.
type Scanner struct {
	log *zerolog.Logger
}

// New creates a scanner. A nil logger falls back to the default.
func New(log *zerolog.Logger) *Scanner {
	if log == nil {
		log = logging.Default()
	}
	return &Scanner{log: log}
}

// Plugins scans the plugin install root. Each immediate subdirectory
// with a parseable manifest.json yields a manifest, in directory walk
// order.
func (s *Scanner) Plugins(root string) []assets.Manifest {
	var found []assets.Manifest
	for _, dir := range s.subdirs(root) {
		manifestPath := filepath.Join(dir, pluginManifest)
		var m assets.PluginManifest
		if !s.parseManifest(manifestPath, &m) {
			continue
		}
		if m.ID == "" {
			s.log.Warn().Str("path", manifestPath).Msg("Plugin manifest missing id, skipping")
			continue
		}
		m.Path = dir
		found = append(found, &m)
	}
	return found
}

// Templates scans the template install root. Each immediate
// subdirectory with a parseable library/manifest.json yields a
// manifest; only the resource identifier is read.
func (s *Scanner) Templates(root string) []assets.Manifest {
	var found []assets.Manifest
	for _, dir := range s.subdirs(root) {
		manifestPath := filepath.Join(dir, templateManifestDir, pluginManifest)
		var m assets.TemplateManifest
		if !s.parseManifest(manifestPath, &m) {
			continue
		}
		if m.ID == "" {
			s.log.Warn().Str("path", manifestPath).Msg("Template manifest missing resourceId, skipping")
			continue
		}
		m.Path = dir
		found = append(found, &m)
	}
	return found
}

// Scan dispatches to the kind's scanner.
func (s *Scanner) Scan(kind assets.Kind, root string) []assets.Manifest {
	if kind == assets.KindTemplate {
		return s.Templates(root)
	}
	return s.Plugins(root)
}

// Map converts a scan result into a map keyed by id, logging when a
// duplicate id makes a later directory shadow an earlier one.
func (s *Scanner) Map(manifests []assets.Manifest) map[string]assets.Manifest {
	m := make(map[string]assets.Manifest, len(manifests))
	for _, manifest := range manifests {
		if prev, ok := m[manifest.ManifestID()]; ok {
			s.log.Warn().
				Str("id", manifest.ManifestID()).
				Str("kept", manifest.Dir()).
				Str("shadowed", prev.Dir()).
				Msg("Duplicate asset id across install directories")
		}
		m[manifest.ManifestID()] = manifest
	}
	return m
}

// subdirs lists the immediate subdirectories of root in walk order. A
// missing root yields nothing.
func (s *Scanner) subdirs(root string) []string {
	entries, err := os.ReadDir(root)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn().Err(err).Str("root", root).Msg("Cannot read install root")
		}
		return nil
	}

	var dirs []string
	for _, entry := range entries {
		if entry.IsDir() {
			dirs = append(dirs, filepath.Join(root, entry.Name()))
		}
	}
	return dirs
}

// parseManifest reads and decodes a manifest file, reporting success.
// Missing and malformed files are both skip conditions.
func (s *Scanner) parseManifest(path string, into any) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	if err := json.Unmarshal(data, into); err != nil {
		s.log.Debug().Err(err).Str("path", path).Msg("Skipping malformed manifest")
		return false
	}
	return true
}
