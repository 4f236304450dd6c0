package scan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fraytools/manager/pkg/assets"
	"github.com/fraytools/manager/pkg/logging"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestPlugins(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "exporter", "manifest.json"),
		`{"name": "Exporter", "type": "export", "id": "com.example.exporter", "version": "1.2.0", "description": "Exports things"}`)
	writeFile(t, filepath.Join(root, "broken", "manifest.json"), `{oops`)
	writeFile(t, filepath.Join(root, "anonymous", "manifest.json"), `{"name": "No ID"}`)
	// A directory without any manifest at all.
	if err := os.MkdirAll(filepath.Join(root, "empty"), 0o755); err != nil {
		t.Fatal(err)
	}
	// A stray file at the root is not a plugin directory.
	writeFile(t, filepath.Join(root, "notes.txt"), "hello")

	scanner := New(logging.NewNopLogger())
	found := scanner.Plugins(root)

	if len(found) != 1 {
		t.Fatalf("expected 1 manifest, got %d", len(found))
	}
	pm, ok := found[0].(*assets.PluginManifest)
	if !ok {
		t.Fatalf("expected *PluginManifest, got %T", found[0])
	}
	if pm.ID != "com.example.exporter" || pm.Version != "1.2.0" || pm.Name != "Exporter" {
		t.Errorf("unexpected manifest: %+v", pm)
	}
	if pm.Dir() != filepath.Join(root, "exporter") {
		t.Errorf("Dir() = %s", pm.Dir())
	}
}

func TestTemplates(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "stage", "library", "manifest.json"), `{"resourceId": "stagetemplate"}`)
	// Manifest at the wrong depth is not a template.
	writeFile(t, filepath.Join(root, "misplaced", "manifest.json"), `{"resourceId": "misplaced"}`)
	writeFile(t, filepath.Join(root, "blank", "library", "manifest.json"), `{}`)

	scanner := New(logging.NewNopLogger())
	found := scanner.Templates(root)

	if len(found) != 1 {
		t.Fatalf("expected 1 manifest, got %d", len(found))
	}
	if found[0].ManifestID() != "stagetemplate" {
		t.Errorf("ManifestID = %s", found[0].ManifestID())
	}
	if found[0].ManifestKind() != assets.KindTemplate {
		t.Errorf("ManifestKind = %s", found[0].ManifestKind())
	}
}

func TestScanMissingRoot(t *testing.T) {
	scanner := New(logging.NewNopLogger())
	if found := scanner.Scan(assets.KindPlugin, filepath.Join(t.TempDir(), "nope")); found != nil {
		t.Errorf("expected nil for missing root, got %v", found)
	}
}

func TestScanOrderIsDirectoryOrder(t *testing.T) {
	root := t.TempDir()
	for _, dir := range []string{"alpha", "beta", "gamma"} {
		writeFile(t, filepath.Join(root, dir, "manifest.json"), `{"id": "com.example.`+dir+`"}`)
	}

	scanner := New(logging.NewNopLogger())
	found := scanner.Plugins(root)
	if len(found) != 3 {
		t.Fatalf("expected 3 manifests, got %d", len(found))
	}
	want := []string{"com.example.alpha", "com.example.beta", "com.example.gamma"}
	for i, m := range found {
		if m.ManifestID() != want[i] {
			t.Errorf("position %d: got %s, want %s", i, m.ManifestID(), want[i])
		}
	}
}

func TestMapLogsDuplicates(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "first", "manifest.json"), `{"id": "dup"}`)
	writeFile(t, filepath.Join(root, "second", "manifest.json"), `{"id": "dup"}`)

	log := logging.NewTestLogger(t)
	scanner := New(log.Logger)
	m := scanner.Map(scanner.Plugins(root))

	if len(m) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(m))
	}
	// Later directory wins.
	if m["dup"].Dir() != filepath.Join(root, "second") {
		t.Errorf("expected second to win, got %s", m["dup"].Dir())
	}
	if !log.Contains("Duplicate asset id") {
		t.Error("expected a duplicate warning in the log")
	}
}
