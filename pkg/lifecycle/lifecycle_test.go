package lifecycle

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/fraytools/manager/pkg/assets"
	"github.com/fraytools/manager/pkg/errors"
	"github.com/fraytools/manager/pkg/logging"
	"github.com/fraytools/manager/pkg/paths"
)

func testLayout(t *testing.T) *paths.Layout {
	t.Helper()
	root := t.TempDir()
	layout := &paths.Layout{
		AppDir:      filepath.Join(root, "app"),
		PluginDir:   filepath.Join(root, "plugins"),
		TemplateDir: filepath.Join(root, "templates"),
	}
	if err := layout.Ensure(); err != nil {
		t.Fatal(err)
	}
	return layout
}

func zipBytes(t *testing.T, members map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range members {
		entry, err := w.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := entry.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func pluginAsset(url string) *assets.RemoteAsset {
	return &assets.RemoteAsset{
		ID:   "com.example.plugin",
		Kind: assets.KindPlugin,
		Versions: []assets.Version{
			{Tag: "2.0", URL: url},
		},
	}
}

func TestDownload(t *testing.T) {
	payload := zipBytes(t, map[string]string{"root/manifest.json": `{"id": "com.example.plugin"}`})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(payload)
	}))
	defer server.Close()

	layout := testLayout(t)
	m := New(layout, WithLogger(logging.NewNopLogger()))
	asset := pluginAsset(server.URL)

	if err := m.Download(context.Background(), asset, 0); err != nil {
		t.Fatalf("Download: %v", err)
	}

	got, err := os.ReadFile(layout.ArchivePath(assets.KindPlugin, asset.ID, "2.0"))
	if err != nil {
		t.Fatalf("archive not written: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Error("archive content mismatch")
	}
}

func TestDownloadBadStatusLeavesNoFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	layout := testLayout(t)
	m := New(layout, WithLogger(logging.NewNopLogger()))
	asset := pluginAsset(server.URL)

	if err := m.Download(context.Background(), asset, 0); err == nil {
		t.Fatal("expected an error for a 404 response")
	}
	if layout.ArchiveExists(assets.KindPlugin, asset.ID, "2.0") {
		t.Error("failed download must not leave a destination file")
	}
}

func TestDownloadInvalidIndex(t *testing.T) {
	layout := testLayout(t)
	m := New(layout, WithLogger(logging.NewNopLogger()))

	if err := m.Download(context.Background(), pluginAsset("http://unused"), 5); err == nil {
		t.Fatal("expected an error for an out-of-range version index")
	}
}

func TestDownloadInFlightGuard(t *testing.T) {
	var requests atomic.Int32
	release := make(chan struct{})
	entered := make(chan struct{})

	payload := zipBytes(t, map[string]string{"a.txt": "x"})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests.Add(1)
		close(entered)
		<-release
		_, _ = w.Write(payload)
	}))
	defer server.Close()

	layout := testLayout(t)
	m := New(layout, WithLogger(logging.NewNopLogger()))
	asset := pluginAsset(server.URL)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := m.Download(context.Background(), asset, 0); err != nil {
			t.Errorf("first download failed: %v", err)
		}
	}()

	<-entered
	if !m.Downloading(asset.ID, "2.0") {
		t.Error("transfer should be marked in flight")
	}

	// Second request for the same (id, tag) must be rejected without a
	// second transfer.
	err := m.Download(context.Background(), asset, 0)
	if err == nil {
		t.Fatal("expected the duplicate download to be rejected")
	}
	if !errors.IsDuplicate(err) {
		t.Errorf("expected an already-exists error, got %v", err)
	}

	close(release)
	wg.Wait()

	if got := requests.Load(); got != 1 {
		t.Errorf("expected exactly 1 transfer, got %d", got)
	}
	if m.Downloading(asset.ID, "2.0") {
		t.Error("in-flight marker should be released")
	}
}

func placeArchive(t *testing.T, layout *paths.Layout, kind assets.Kind, id, tag string, payload []byte) {
	t.Helper()
	path := layout.ArchivePath(kind, id, tag)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestInstallFreshDirectory(t *testing.T) {
	layout := testLayout(t)
	m := New(layout, WithLogger(logging.NewNopLogger()))
	asset := pluginAsset("http://unused")

	payload := zipBytes(t, map[string]string{
		"wrapper/manifest.json": `{"id": "com.example.plugin"}`,
		"wrapper/code/main.js":  "code",
	})
	placeArchive(t, layout, assets.KindPlugin, asset.ID, "2.0", payload)

	// Pre-existing leftovers in the target directory get cleared.
	leftovers := filepath.Join(layout.PluginDir, asset.ID)
	if err := os.MkdirAll(leftovers, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(leftovers, "stale.txt"), []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := m.Install(asset, 0, assets.KindPlugin, nil); err != nil {
		t.Fatalf("Install: %v", err)
	}

	dest := filepath.Join(layout.PluginDir, asset.ID)
	if _, err := os.Stat(filepath.Join(dest, "manifest.json")); err != nil {
		t.Errorf("manifest.json missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dest, "code", "main.js")); err != nil {
		t.Errorf("code/main.js missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dest, "stale.txt")); !os.IsNotExist(err) {
		t.Error("stale contents should be cleared before a fresh install")
	}

	tag, ok := paths.InstalledTag(dest)
	if !ok || tag != "2.0" {
		t.Errorf("marker = %q, %v; want 2.0, true", tag, ok)
	}
}

func TestInstallInPlaceUpgrade(t *testing.T) {
	layout := testLayout(t)
	m := New(layout, WithLogger(logging.NewNopLogger()))
	asset := pluginAsset("http://unused")

	// Installed under a directory name that differs from the asset id.
	existing := filepath.Join(layout.PluginDir, "custom-dir-name")
	if err := os.MkdirAll(existing, 0o755); err != nil {
		t.Fatal(err)
	}
	manifests := assets.ManifestMap([]assets.Manifest{
		&assets.PluginManifest{ID: asset.ID, Version: "1.0", Path: existing},
	})

	payload := zipBytes(t, map[string]string{"wrapper/manifest.json": `{"id": "com.example.plugin", "version": "2.0"}`})
	placeArchive(t, layout, assets.KindPlugin, asset.ID, "2.0", payload)

	if err := m.Install(asset, 0, assets.KindPlugin, manifests); err != nil {
		t.Fatalf("Install: %v", err)
	}

	if _, err := os.Stat(filepath.Join(existing, "manifest.json")); err != nil {
		t.Errorf("expected in-place upgrade into %s: %v", existing, err)
	}
	if _, err := os.Stat(filepath.Join(layout.PluginDir, asset.ID)); !os.IsNotExist(err) {
		t.Error("no fresh directory should be created for an in-place upgrade")
	}
	tag, ok := paths.InstalledTag(existing)
	if !ok || tag != "2.0" {
		t.Errorf("marker = %q, %v; want 2.0, true", tag, ok)
	}
}

func TestInstallMissingArchive(t *testing.T) {
	layout := testLayout(t)
	m := New(layout, WithLogger(logging.NewNopLogger()))

	err := m.Install(pluginAsset("http://unused"), 0, assets.KindPlugin, nil)
	if err == nil {
		t.Fatal("expected an error without a downloaded archive")
	}
	if !errors.IsNotFound(err) {
		t.Errorf("expected a not-found error, got %v", err)
	}
}

func TestUninstall(t *testing.T) {
	layout := testLayout(t)
	m := New(layout, WithLogger(logging.NewNopLogger()))

	dir := filepath.Join(layout.PluginDir, "doomed")
	if err := os.MkdirAll(filepath.Join(dir, "nested"), 0o755); err != nil {
		t.Fatal(err)
	}
	manifest := &assets.PluginManifest{ID: "doomed", Path: dir}

	if err := m.Uninstall(manifest); err != nil {
		t.Fatalf("Uninstall: %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Error("install directory should be gone")
	}
}

func TestClearDownloadsKeepsCacheDocument(t *testing.T) {
	layout := testLayout(t)
	m := New(layout, WithLogger(logging.NewNopLogger()))

	placeArchive(t, layout, assets.KindPlugin, "a", "1.0", []byte("zip"))
	placeArchive(t, layout, assets.KindTemplate, "b", "2.0", []byte("zip"))
	if err := os.WriteFile(layout.CacheFile(), []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := m.ClearDownloads(); err != nil {
		t.Fatalf("ClearDownloads: %v", err)
	}

	if layout.ArchiveExists(assets.KindPlugin, "a", "1.0") {
		t.Error("plugin archive should be deleted")
	}
	if layout.ArchiveExists(assets.KindTemplate, "b", "2.0") {
		t.Error("template archive should be deleted")
	}
	if _, err := os.Stat(layout.CacheFile()); err != nil {
		t.Error("metadata cache document must survive")
	}
}

func TestRemoveDownload(t *testing.T) {
	layout := testLayout(t)
	m := New(layout, WithLogger(logging.NewNopLogger()))

	placeArchive(t, layout, assets.KindPlugin, "a", "1.0", []byte("zip"))
	if err := m.RemoveDownload(assets.KindPlugin, "a", "1.0"); err != nil {
		t.Fatalf("RemoveDownload: %v", err)
	}
	if layout.ArchiveExists(assets.KindPlugin, "a", "1.0") {
		t.Error("archive should be deleted")
	}

	// Removing an absent archive is not an error.
	if err := m.RemoveDownload(assets.KindPlugin, "a", "1.0"); err != nil {
		t.Errorf("second remove: %v", err)
	}
}
