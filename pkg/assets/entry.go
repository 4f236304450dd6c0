package assets

// Entry is the reconciled, per-asset view combining an installed
// manifest, a configured source, and a remote record. At least one of
// the three is non-nil. Kind is fixed at construction.
type Entry struct {
	Kind     Kind
	Manifest Manifest     // nil when the asset is not installed
	Config   *Source      // nil when no source is configured for the id
	Remote   *RemoteAsset // nil when no remote metadata is known
}

// ID returns the asset id, preferring the manifest, then the remote
// record, then the configured source.
func (e *Entry) ID() string {
	switch {
	case e.Manifest != nil:
		return e.Manifest.ManifestID()
	case e.Remote != nil:
		return e.Remote.ID
	case e.Config != nil:
		return e.Config.ID
	}
	return ""
}

// DisplayName returns a human-readable label for the entry. Plugins
// show their manifest name alongside the id; everything else falls back
// to the bare id.
func (e *Entry) DisplayName() string {
	if pm, ok := e.Manifest.(*PluginManifest); ok && pm.Name != "" {
		return pm.Name + " (" + pm.ID + ")"
	}
	if id := e.ID(); id != "" {
		return id
	}
	return "unknown asset"
}

// Tags returns the selectable version tags for the entry, or nil when
// no remote metadata is known.
func (e *Entry) Tags() []string {
	if e.Remote == nil {
		return nil
	}
	return e.Remote.Tags()
}
