// Package cache persists previously fetched release metadata so assets
// remain browsable offline. The cache is a single JSON document with
// one partition per asset kind, keyed by asset id, rewritten wholesale
// on every write. Staleness is bounded only by user-triggered refresh;
// there is no expiry policy.
package cache

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/fraytools/manager/pkg/assets"
	"github.com/fraytools/manager/pkg/errors"
)

// schemaVersion is the current cache document schema. Version 0 (field
// absent) is the legacy shape and is accepted on read; anything newer
// is rejected rather than coerced.
const schemaVersion = 1

// Record is the on-disk serializable form of a remote asset. Kind is
// omitted: it is reconstructed from the partition the record lives in.
type Record struct {
	ID       string           `json:"id"`
	Owner    string           `json:"owner"`
	Repo     string           `json:"repo"`
	Versions []assets.Version `json:"versions"`
}

// document is the on-disk shape of sources-lock.json.
type document struct {
	Version   int               `json:"version,omitempty"`
	Plugins   map[string]Record `json:"plugins"`
	Templates map[string]Record `json:"templates"`
}

// Cache is the in-memory metadata cache backed by a JSON document.
type Cache struct {
	path      string
	plugins   map[string]Record
	templates map[string]Record
}

// New creates an empty cache backed by the given file path.
func New(path string) *Cache {
	return &Cache{
		path:      path,
		plugins:   make(map[string]Record),
		templates: make(map[string]Record),
	}
}

// Path returns the backing file path.
func (c *Cache) Path() string {
	return c.path
}

// Read replaces the entire in-memory state with the backing file's
// content. A missing file is not an error; it yields an empty cache.
func (c *Cache) Read() error {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			c.Clear()
			return nil
		}
		return errors.NewCacheError("read", c.path, err)
	}

	var doc document
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return &errors.InvalidCacheError{Path: c.path, Message: "malformed cache document", Err: err}
	}
	if doc.Version != 0 && doc.Version != schemaVersion {
		return &errors.InvalidCacheError{
			Path:    c.path,
			Message: fmt.Sprintf("unsupported cache schema version %d", doc.Version),
		}
	}

	c.plugins = doc.Plugins
	c.templates = doc.Templates
	if c.plugins == nil {
		c.plugins = make(map[string]Record)
	}
	if c.templates == nil {
		c.templates = make(map[string]Record)
	}
	return nil
}

// Write serializes the full in-memory state and overwrites the backing
// file. The file is read-then-fully-rewritten with no locking: if two
// operations both mutate and persist without an intervening Read, the
// later write wins.
func (c *Cache) Write() error {
	doc := document{Version: schemaVersion, Plugins: c.plugins, Templates: c.templates}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return &errors.InvalidCacheError{Path: c.path, Message: "cache state not serializable", Err: err}
	}
	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		return errors.NewCacheError("write", c.path, err)
	}
	return nil
}

// Exists reports whether a record for the id is present in the kind's
// partition.
func (c *Cache) Exists(kind assets.Kind, id string) bool {
	_, ok := c.partition(kind)[id]
	return ok
}

// Get returns the remote asset reconstructed from the kind's partition.
func (c *Cache) Get(kind assets.Kind, id string) (*assets.RemoteAsset, error) {
	rec, ok := c.partition(kind)[id]
	if !ok {
		return nil, errors.NewNotFoundError("cache record", id)
	}
	return &assets.RemoteAsset{
		ID:       rec.ID,
		Owner:    rec.Owner,
		Repo:     rec.Repo,
		Kind:     kind,
		Versions: rec.Versions,
	}, nil
}

// Add upserts a remote asset into its kind's partition.
func (c *Cache) Add(asset *assets.RemoteAsset) {
	c.partition(asset.Kind)[asset.ID] = Record{
		ID:       asset.ID,
		Owner:    asset.Owner,
		Repo:     asset.Repo,
		Versions: asset.Versions,
	}
}

// Delete removes a record from the kind's partition.
func (c *Cache) Delete(kind assets.Kind, id string) {
	delete(c.partition(kind), id)
}

// Clear resets both partitions to empty.
func (c *Cache) Clear() {
	c.plugins = make(map[string]Record)
	c.templates = make(map[string]Record)
}

// Len returns the number of records in the kind's partition.
func (c *Cache) Len(kind assets.Kind) int {
	return len(c.partition(kind))
}

func (c *Cache) partition(kind assets.Kind) map[string]Record {
	if kind == assets.KindTemplate {
		return c.templates
	}
	return c.plugins
}
