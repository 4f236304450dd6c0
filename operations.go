package manager

import (
	"context"

	"github.com/fraytools/manager/pkg/assets"
	"github.com/fraytools/manager/pkg/errors"
	"github.com/fraytools/manager/pkg/sources"
)

// resolveVersion picks the version index for a tag against an entry's
// remote metadata. An empty tag selects the newest version (index 0).
func resolveVersion(entry *assets.Entry, tag string) (int, error) {
	if entry.Remote == nil || len(entry.Remote.Versions) == 0 {
		return 0, errors.NewNotFoundError("release metadata for", entry.ID())
	}
	if tag == "" {
		return 0, nil
	}
	index := entry.Remote.VersionIndex(tag)
	if index < 0 {
		return 0, errors.NewNotFoundError("version", tag)
	}
	return index, nil
}

// Download implements Manager.
func (m *manager) Download(ctx context.Context, kind assets.Kind, id, tag string) error {
	m.mu.RLock()
	entry, err := m.entry(kind, id)
	var index int
	if err == nil {
		index, err = resolveVersion(entry, tag)
	}
	m.mu.RUnlock()
	if err != nil {
		return err
	}

	// The transfer runs outside the lock; the per-(id, tag) in-flight
	// set in the lifecycle manager prevents duplicate transfers.
	return m.lifecycle.Download(ctx, entry.Remote, index)
}

// Install implements Manager.
func (m *manager) Install(kind assets.Kind, id, tag string) error {
	m.mu.RLock()
	entry, err := m.entry(kind, id)
	var index int
	if err == nil {
		index, err = resolveVersion(entry, tag)
	}
	manifests := m.manifests[kind]
	m.mu.RUnlock()
	if err != nil {
		return err
	}

	if err := m.lifecycle.Install(entry.Remote, index, kind, manifests); err != nil {
		return err
	}
	return m.Reload()
}

// Uninstall implements Manager.
func (m *manager) Uninstall(kind assets.Kind, id string) error {
	m.mu.RLock()
	entry, err := m.entry(kind, id)
	m.mu.RUnlock()
	if err != nil {
		return err
	}
	if entry.Manifest == nil {
		return errors.NewNotFoundError("installed "+kind.String(), id)
	}

	if err := m.lifecycle.Uninstall(entry.Manifest); err != nil {
		return err
	}
	return m.Reload()
}

// Changelog implements Manager.
func (m *manager) Changelog(kind assets.Kind, id, tag string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, err := m.entry(kind, id)
	if err != nil {
		return "", err
	}
	index, err := resolveVersion(entry, tag)
	if err != nil {
		return "", err
	}
	return entry.Remote.Versions[index].Changelog, nil
}

// AddSource implements Manager.
func (m *manager) AddSource(kind assets.Kind, owner, repo, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.registry.Add(kind, owner, repo, id); err != nil {
		return err
	}
	m.rebuild()
	return nil
}

// EditSource implements Manager.
func (m *manager) EditSource(kind assets.Kind, existingID, owner, repo, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.registry.Edit(kind, existingID, owner, repo, id); err != nil {
		return err
	}
	// The cached releases belong to the old repository; drop them so the
	// next refresh fetches from the edited one.
	m.cache.Delete(kind, existingID)
	if err := m.cache.Write(); err != nil {
		return err
	}
	m.rebuild()
	return nil
}

// RemoveSource implements Manager.
func (m *manager) RemoveSource(kind assets.Kind, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.registry.Lookup(kind, id); !ok {
		return errors.NewNotFoundError("source", id)
	}

	m.cache.Delete(kind, id)
	if err := m.cache.Write(); err != nil {
		return err
	}
	m.registry.Remove(kind, id)
	if err := m.registry.Save(); err != nil {
		return err
	}
	m.rebuild()
	return nil
}

// RestoreDefaults implements Manager.
func (m *manager) RestoreDefaults() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	registry := sources.Default(m.layout.ConfigFile())
	if err := registry.Save(); err != nil {
		return err
	}
	m.registry = registry
	m.rebuild()
	return nil
}

// ClearCache implements Manager.
func (m *manager) ClearCache() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cache.Clear()
	if err := m.cache.Write(); err != nil {
		return err
	}
	m.rebuild()
	return nil
}

// ClearDownloads implements Manager.
func (m *manager) ClearDownloads() error {
	return m.lifecycle.ClearDownloads()
}
