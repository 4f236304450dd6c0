// Package lifecycle executes the mutating asset operations: streaming
// release archives to the download cache, installing them with
// root-stripped extraction, and uninstalling installed assets. All
// operations are synchronous blocking calls; the per-(id, tag)
// in-flight set is the only mutual-exclusion mechanism.
package lifecycle

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/fraytools/manager/pkg/assets"
	"github.com/fraytools/manager/pkg/errors"
	"github.com/fraytools/manager/pkg/logging"
	"github.com/fraytools/manager/pkg/paths"
)

const downloadTimeout = 10 * time.Minute

// downloadKey identifies one in-flight transfer. Scoped per (id, tag):
// two different versions of the same asset may download concurrently.
type downloadKey struct {
	id  string
	tag string
}

// Manager performs downloads, installs, and uninstalls against a layout.
type Manager struct {
	layout *paths.Layout
	http   *http.Client
	log    *zerolog.Logger

	mu       sync.Mutex
	inflight map[downloadKey]struct{}
}

// Option configures a Manager.
type Option func(*Manager)

// WithHTTPClient overrides the HTTP client used for downloads.
func WithHTTPClient(c *http.Client) Option {
	return func(m *Manager) {
		if c != nil {
			m.http = c
		}
	}
}

// WithLogger overrides the manager's logger.
func WithLogger(log *zerolog.Logger) Option {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}

// New creates a lifecycle manager bound to a disk layout.
func New(layout *paths.Layout, opts ...Option) *Manager {
	m := &Manager{
		layout:   layout,
		http:     &http.Client{Timeout: downloadTimeout},
		log:      logging.Default(),
		inflight: make(map[downloadKey]struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Downloading reports whether a transfer for (id, tag) is in flight.
func (m *Manager) Downloading(id, tag string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.inflight[downloadKey{id: id, tag: tag}]
	return ok
}

// Download streams the version at the given index of the asset's
// version list to the deterministic archive path. A request for a
// (id, tag) pair that is already in flight is rejected without starting
// a second transfer. A failed download removes the partial file; the
// destination is either complete or absent.
func (m *Manager) Download(ctx context.Context, asset *assets.RemoteAsset, index int) error {
	if index < 0 || index >= len(asset.Versions) {
		return errors.NewLifecycleError("download", asset.ID, "", fmt.Errorf("no version at index %d", index))
	}
	version := asset.Versions[index]

	key := downloadKey{id: asset.ID, tag: version.Tag}
	m.mu.Lock()
	if _, busy := m.inflight[key]; busy {
		m.mu.Unlock()
		return errors.NewLifecycleError("download", asset.ID, "", fmt.Errorf("%s %w: download in flight", version.Tag, errors.ErrAlreadyExists))
	}
	m.inflight[key] = struct{}{}
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		delete(m.inflight, key)
		m.mu.Unlock()
	}()

	dest := m.layout.ArchivePath(asset.Kind, asset.ID, version.Tag)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return errors.NewLifecycleError("download", asset.ID, dest, err)
	}

	m.log.Info().
		Str("asset", asset.ID).
		Str("tag", version.Tag).
		Str("url", version.URL).
		Msg("Starting download")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, version.URL, nil)
	if err != nil {
		return errors.NewLifecycleError("download", asset.ID, dest, err)
	}
	resp, err := m.http.Do(req)
	if err != nil {
		return errors.NewLifecycleError("download", asset.ID, dest, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return errors.NewLifecycleError("download", asset.ID, dest,
			fmt.Errorf("unexpected status %d from %s", resp.StatusCode, version.URL))
	}

	out, err := os.Create(dest)
	if err != nil {
		return errors.NewLifecycleError("download", asset.ID, dest, err)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		_ = out.Close()
		_ = os.Remove(dest)
		return errors.NewLifecycleError("download", asset.ID, dest, err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dest)
		return errors.NewLifecycleError("download", asset.ID, dest, err)
	}

	m.log.Info().Str("asset", asset.ID).Str("tag", version.Tag).Msg("Finished download")
	return nil
}

// Install extracts the previously downloaded archive for the version at
// the given index. When an installed manifest for the asset id already
// exists, extraction happens in place into its directory (upgrade);
// otherwise a fresh directory named by the asset id is created under
// the kind's install root, cleared of any pre-existing contents first.
// After extraction the install marker records the installed tag.
func (m *Manager) Install(asset *assets.RemoteAsset, index int, kind assets.Kind, manifests map[string]assets.Manifest) error {
	if index < 0 || index >= len(asset.Versions) {
		return errors.NewLifecycleError("install", asset.ID, "", fmt.Errorf("no version at index %d", index))
	}
	tag := asset.Versions[index].Tag

	archive := m.layout.ArchivePath(kind, asset.ID, tag)
	if _, err := os.Stat(archive); err != nil {
		return errors.NewLifecycleError("install", asset.ID, archive,
			fmt.Errorf("archive %w: download it first", errors.ErrNotFound))
	}

	dest := ""
	if manifest, ok := manifests[asset.ID]; ok {
		dest = manifest.Dir()
	} else {
		dest = filepath.Join(m.layout.InstallRoot(kind), asset.ID)
		if err := os.MkdirAll(dest, 0o755); err != nil {
			return errors.NewLifecycleError("install", asset.ID, dest, err)
		}
		if err := clearDir(dest); err != nil {
			return errors.NewLifecycleError("install", asset.ID, dest, err)
		}
	}

	m.log.Info().
		Str("asset", asset.ID).
		Str("tag", tag).
		Str("dest", dest).
		Msg("Installing")

	if err := extractArchive(archive, dest); err != nil {
		return errors.NewLifecycleError("install", asset.ID, dest, err)
	}
	if err := paths.WriteMarker(dest, tag); err != nil {
		return errors.NewLifecycleError("install", asset.ID, dest, err)
	}

	m.log.Info().Str("asset", asset.ID).Str("tag", tag).Msg("Install complete")
	return nil
}

// Uninstall recursively deletes an installed asset's directory. The
// caller must rescan and rebuild entries afterward.
func (m *Manager) Uninstall(manifest assets.Manifest) error {
	dir := manifest.Dir()
	m.log.Info().Str("asset", manifest.ManifestID()).Str("dir", dir).Msg("Uninstalling")
	if err := os.RemoveAll(dir); err != nil {
		return errors.NewLifecycleError("uninstall", manifest.ManifestID(), dir, err)
	}
	return nil
}

// RemoveDownload deletes the downloaded archive for (id, tag, kind).
// A missing archive is not an error.
func (m *Manager) RemoveDownload(kind assets.Kind, id, tag string) error {
	path := m.layout.ArchivePath(kind, id, tag)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.NewLifecycleError("download", id, path, err)
	}
	return nil
}

// RemoveDownloads deletes every downloaded archive of one asset.
func (m *Manager) RemoveDownloads(kind assets.Kind, id string) error {
	dir := m.layout.DownloadDir(kind, id)
	if err := os.RemoveAll(dir); err != nil {
		return errors.NewLifecycleError("download", id, dir, err)
	}
	return nil
}

// ClearDownloads deletes the whole download cache, leaving the metadata
// cache document untouched.
func (m *Manager) ClearDownloads() error {
	entries, err := os.ReadDir(m.layout.CacheDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.WrapLifecycle("download", "", m.layout.CacheDir(), err)
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		path := filepath.Join(m.layout.CacheDir(), entry.Name())
		if err := os.RemoveAll(path); err != nil {
			return errors.WrapLifecycle("download", "", path, err)
		}
	}
	return nil
}

// clearDir removes the contents of dir without removing dir itself.
func clearDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(dir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}
