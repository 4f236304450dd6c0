package paths

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fraytools/manager/pkg/assets"
)

func testLayout(t *testing.T) *Layout {
	t.Helper()
	root := t.TempDir()
	return &Layout{
		AppDir:      filepath.Join(root, "app"),
		PluginDir:   filepath.Join(root, "plugins"),
		TemplateDir: filepath.Join(root, "templates"),
	}
}

func TestEnsureCreatesLayout(t *testing.T) {
	layout := testLayout(t)
	if err := layout.Ensure(); err != nil {
		t.Fatalf("Ensure: %v", err)
	}

	for _, dir := range []string{layout.AppDir, layout.CacheDir(), layout.PluginDir, layout.TemplateDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Errorf("expected %s to exist: %v", dir, err)
			continue
		}
		if !info.IsDir() {
			t.Errorf("expected %s to be a directory", dir)
		}
	}
}

func TestArchivePath(t *testing.T) {
	layout := testLayout(t)

	got := layout.ArchivePath(assets.KindPlugin, "com.example.plugin", "1.2.0")
	want := filepath.Join(layout.CacheDir(), "plugins", "com.example.plugin", "com.example.plugin-1.2.0.zip")
	if got != want {
		t.Errorf("ArchivePath = %s, want %s", got, want)
	}

	got = layout.ArchivePath(assets.KindTemplate, "stagetemplate", "0.9")
	want = filepath.Join(layout.CacheDir(), "templates", "stagetemplate", "stagetemplate-0.9.zip")
	if got != want {
		t.Errorf("ArchivePath = %s, want %s", got, want)
	}
}

func TestArchiveExists(t *testing.T) {
	layout := testLayout(t)
	if layout.ArchiveExists(assets.KindPlugin, "id", "1.0") {
		t.Fatal("archive should not exist yet")
	}

	path := layout.ArchivePath(assets.KindPlugin, "id", "1.0")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("zip"), 0o644); err != nil {
		t.Fatal(err)
	}

	if !layout.ArchiveExists(assets.KindPlugin, "id", "1.0") {
		t.Error("archive should exist")
	}
	if layout.ArchiveExists(assets.KindPlugin, "id", "2.0") {
		t.Error("different tag should not exist")
	}
}

func TestInstallMarker(t *testing.T) {
	dir := t.TempDir()

	if _, ok := InstalledTag(dir); ok {
		t.Fatal("marker should be absent")
	}

	if err := WriteMarker(dir, "1.4.2"); err != nil {
		t.Fatalf("WriteMarker: %v", err)
	}
	tag, ok := InstalledTag(dir)
	if !ok || tag != "1.4.2" {
		t.Errorf("InstalledTag = %q, %v; want 1.4.2, true", tag, ok)
	}
}

func TestInstalledTagTrimsWhitespace(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(MarkerPath(dir), []byte("2.0.0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	tag, ok := InstalledTag(dir)
	if !ok || tag != "2.0.0" {
		t.Errorf("InstalledTag = %q, %v; want 2.0.0, true", tag, ok)
	}
}
