package assets

// Manifest describes an asset as installed on local disk. Plugins and
// templates carry different manifest shapes; the interface exposes the
// fields common to both. Manifests are produced by scanning and are
// never mutated in place: a rescan yields a fresh set.
type Manifest interface {
	// ManifestID returns the asset id recorded in the manifest.
	ManifestID() string
	// Dir returns the asset's install directory.
	Dir() string
	// ManifestKind returns the asset kind this manifest belongs to.
	ManifestKind() Kind
}

// PluginManifest is the manifest.json of an installed plugin.
type PluginManifest struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	ID          string `json:"id"`
	Version     string `json:"version"`
	Description string `json:"description"`
	Path        string `json:"-"`
}

// ManifestID returns the plugin id.
func (m *PluginManifest) ManifestID() string { return m.ID }

// Dir returns the plugin's install directory.
func (m *PluginManifest) Dir() string { return m.Path }

// ManifestKind returns KindPlugin.
func (m *PluginManifest) ManifestKind() Kind { return KindPlugin }

// TemplateManifest is the nested library/manifest.json of an installed
// template. Templates carry no version field; installed state is
// tracked through the install marker file instead.
type TemplateManifest struct {
	ID   string `json:"resourceId"`
	Path string `json:"-"`
}

// ManifestID returns the template's resource id.
func (m *TemplateManifest) ManifestID() string { return m.ID }

// Dir returns the template's install directory.
func (m *TemplateManifest) Dir() string { return m.Path }

// ManifestKind returns KindTemplate.
func (m *TemplateManifest) ManifestKind() Kind { return KindTemplate }

// ManifestMap converts a scan-ordered manifest list into a map keyed by
// asset id. A later manifest with a duplicate id overwrites an earlier
// one (last wins).
func ManifestMap(manifests []Manifest) map[string]Manifest {
	m := make(map[string]Manifest, len(manifests))
	for _, manifest := range manifests {
		m[manifest.ManifestID()] = manifest
	}
	return m
}
