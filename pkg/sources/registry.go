// Package sources manages the configured asset sources: the sources.json
// document mapping asset ids to the repositories that publish them.
package sources

import (
	"encoding/json"
	"os"

	"github.com/fraytools/manager/pkg/assets"
	"github.com/fraytools/manager/pkg/errors"
)

// document is the on-disk shape of sources.json.
type document struct {
	Plugins   []assets.Source `json:"plugins"`
	Templates []assets.Source `json:"templates"`
}

// Registry holds the configured sources for both asset kinds and
// persists them to a sources.json document. Config order is preserved:
// it is the ordering contract for uninstalled entries.
type Registry struct {
	path      string
	plugins   []assets.Source
	templates []assets.Source
}

// Load reads and validates a sources.json document.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewSourceError("load", path, err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.NewSourceError("load", path, err)
	}

	r := &Registry{path: path, plugins: doc.Plugins, templates: doc.Templates}
	if r.ContainsDuplicates() {
		return nil, &errors.InvalidSourceError{Path: path, Message: "duplicate source entries"}
	}
	return r, nil
}

// Default returns the starter catalog used when no sources.json exists yet.
func Default(path string) *Registry {
	return &Registry{
		path: path,
		plugins: []assets.Source{
			{Owner: "Fraymakers", Repo: "metadata-plugin", ID: "com.fraymakers.FraymakersMetadata"},
			{Owner: "Fraymakers", Repo: "api-types-plugin", ID: "com.fraymakers.FraymakersTypes"},
			{Owner: "Fraymakers", Repo: "content-exporter-plugin", ID: "com.fraymakers.ContentExporter"},
		},
		templates: []assets.Source{
			{Owner: "Fraymakers", Repo: "character-template", ID: "charactertemplate"},
			{Owner: "Fraymakers", Repo: "assist-template", ID: "assisttemplate"},
			{Owner: "Fraymakers", Repo: "stage-template", ID: "stagetemplate"},
			{Owner: "Fraymakers", Repo: "music-template", ID: "musictemplate"},
		},
	}
}

// Path returns the backing document path.
func (r *Registry) Path() string {
	return r.path
}

// Save serializes the registry and overwrites the backing document.
func (r *Registry) Save() error {
	doc := document{Plugins: r.plugins, Templates: r.templates}
	if doc.Plugins == nil {
		doc.Plugins = []assets.Source{}
	}
	if doc.Templates == nil {
		doc.Templates = []assets.Source{}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.NewSourceError("save", r.path, err)
	}
	if err := os.WriteFile(r.path, data, 0o644); err != nil {
		return errors.NewSourceError("save", r.path, err)
	}
	return nil
}

// List returns the configured sources for a kind in config order.
func (r *Registry) List(kind assets.Kind) []assets.Source {
	if kind == assets.KindTemplate {
		return r.templates
	}
	return r.plugins
}

// Lookup returns the configured source with the given id.
func (r *Registry) Lookup(kind assets.Kind, id string) (assets.Source, bool) {
	for _, s := range r.List(kind) {
		if s.ID == id {
			return s, true
		}
	}
	return assets.Source{}, false
}

// Map returns the configured sources for a kind keyed by id.
func (r *Registry) Map(kind assets.Kind) map[string]assets.Source {
	list := r.List(kind)
	m := make(map[string]assets.Source, len(list))
	for _, s := range list {
		m[s.ID] = s
	}
	return m
}

// Add appends a source entry to a kind's list and persists the
// document. It rejects entries whose (owner, repo) or id collides with
// an existing entry in that kind.
func (r *Registry) Add(kind assets.Kind, owner, repo, id string) error {
	for _, existing := range r.List(kind) {
		if existing.Owner == owner && existing.Repo == repo {
			return &errors.DuplicateSourceError{Kind: kind.String(), Field: "repository", Value: owner + "/" + repo}
		}
		if existing.ID == id {
			return &errors.DuplicateSourceError{Kind: kind.String(), Field: "id", Value: id}
		}
	}

	entry := assets.Source{Owner: owner, Repo: repo, ID: id}
	if kind == assets.KindTemplate {
		r.templates = append(r.templates, entry)
	} else {
		r.plugins = append(r.plugins, entry)
	}
	return r.Save()
}

// Edit replaces the entry matching existingID in place and persists the
// document. Edits are not validated against the entry being replaced.
func (r *Registry) Edit(kind assets.Kind, existingID, owner, repo, id string) error {
	list := r.List(kind)
	found := false
	for i := range list {
		if list[i].ID == existingID {
			list[i] = assets.Source{Owner: owner, Repo: repo, ID: id}
			found = true
		}
	}
	if !found {
		return errors.NewNotFoundError("source", existingID)
	}
	return r.Save()
}

// Remove filters the entry with the given id out of a kind's list. The
// caller decides when to persist; Remove itself does not save.
func (r *Registry) Remove(kind assets.Kind, id string) {
	filter := func(list []assets.Source) []assets.Source {
		out := list[:0]
		for _, s := range list {
			if s.ID != id {
				out = append(out, s)
			}
		}
		return out
	}
	if kind == assets.KindTemplate {
		r.templates = filter(r.templates)
	} else {
		r.plugins = filter(r.plugins)
	}
}

// ContainsDuplicates reports whether any two entries within the same
// kind share a (owner, repo) pair or an id.
func (r *Registry) ContainsDuplicates() bool {
	return containsDuplicates(r.plugins) || containsDuplicates(r.templates)
}

func containsDuplicates(list []assets.Source) bool {
	repos := make(map[[2]string]struct{}, len(list))
	ids := make(map[string]struct{}, len(list))
	for _, s := range list {
		repo := [2]string{s.Owner, s.Repo}
		if _, ok := repos[repo]; ok {
			return true
		}
		repos[repo] = struct{}{}
		if _, ok := ids[s.ID]; ok {
			return true
		}
		ids[s.ID] = struct{}{}
	}
	return false
}
