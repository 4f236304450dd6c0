package assets

import (
	"testing"
)

func TestParseKind(t *testing.T) {
	cases := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"plugin", KindPlugin, false},
		{"plugins", KindPlugin, false},
		{"Template", KindTemplate, false},
		{" templates ", KindTemplate, false},
		{"widget", "", true},
		{"", "", true},
	}
	for _, tc := range cases {
		got, err := ParseKind(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseKind(%q): expected error, got %q", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseKind(%q): unexpected error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseKind(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestVersionIndex(t *testing.T) {
	asset := &RemoteAsset{
		ID:   "com.example.plugin",
		Kind: KindPlugin,
		Versions: []Version{
			{Tag: "2.0.0", URL: "https://example.com/v2.zip"},
			{Tag: "1.0.0", URL: "https://example.com/v1.zip"},
		},
	}

	if got := asset.VersionIndex("1.0.0"); got != 1 {
		t.Errorf("VersionIndex(1.0.0) = %d, want 1", got)
	}
	if got := asset.VersionIndex("3.0.0"); got != -1 {
		t.Errorf("VersionIndex(3.0.0) = %d, want -1", got)
	}

	tags := asset.Tags()
	if len(tags) != 2 || tags[0] != "2.0.0" || tags[1] != "1.0.0" {
		t.Errorf("Tags() = %v, want [2.0.0 1.0.0]", tags)
	}
}

func TestEntryID(t *testing.T) {
	t.Run("PrefersManifest", func(t *testing.T) {
		entry := &Entry{
			Kind:     KindPlugin,
			Manifest: &PluginManifest{ID: "from-manifest"},
			Remote:   &RemoteAsset{ID: "from-remote"},
			Config:   &Source{ID: "from-config"},
		}
		if got := entry.ID(); got != "from-manifest" {
			t.Errorf("ID() = %q, want from-manifest", got)
		}
	})

	t.Run("FallsBackToRemoteThenConfig", func(t *testing.T) {
		entry := &Entry{Kind: KindPlugin, Remote: &RemoteAsset{ID: "from-remote"}}
		if got := entry.ID(); got != "from-remote" {
			t.Errorf("ID() = %q, want from-remote", got)
		}
		entry = &Entry{Kind: KindPlugin, Config: &Source{ID: "from-config"}}
		if got := entry.ID(); got != "from-config" {
			t.Errorf("ID() = %q, want from-config", got)
		}
	})
}

func TestEntryDisplayName(t *testing.T) {
	entry := &Entry{
		Kind:     KindPlugin,
		Manifest: &PluginManifest{ID: "com.example.exporter", Name: "Exporter"},
	}
	if got := entry.DisplayName(); got != "Exporter (com.example.exporter)" {
		t.Errorf("DisplayName() = %q", got)
	}

	entry = &Entry{Kind: KindTemplate, Manifest: &TemplateManifest{ID: "charactertemplate"}}
	if got := entry.DisplayName(); got != "charactertemplate" {
		t.Errorf("DisplayName() = %q", got)
	}
}

func TestManifestMapLastWins(t *testing.T) {
	first := &PluginManifest{ID: "dup", Path: "/a"}
	second := &PluginManifest{ID: "dup", Path: "/b"}
	m := ManifestMap([]Manifest{first, second})

	if len(m) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(m))
	}
	if m["dup"].Dir() != "/b" {
		t.Errorf("expected later manifest to win, got %s", m["dup"].Dir())
	}
}
