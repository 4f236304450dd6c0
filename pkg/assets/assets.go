// Package assets defines the core data model shared by every component:
// asset kinds, configured sources, installed manifests, remote release
// metadata, and the reconciled entry that ties the three views together.
package assets

import (
	"fmt"
	"strings"

	"github.com/fraytools/manager/pkg/errors"
)

// Kind partitions every asset into one of two namespaces with separate
// install roots, manifest shapes, and cache partitions.
type Kind string

// Asset kinds.
const (
	KindPlugin   Kind = "plugin"
	KindTemplate Kind = "template"
)

// Kinds lists all asset kinds in a stable order.
var Kinds = []Kind{KindPlugin, KindTemplate}

// String returns the kind as a string.
func (k Kind) String() string {
	return string(k)
}

// Valid reports whether the kind is a known asset kind.
func (k Kind) Valid() bool {
	return k == KindPlugin || k == KindTemplate
}

// ParseKind converts a string to a Kind, accepting singular and plural forms.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "plugin", "plugins":
		return KindPlugin, nil
	case "template", "templates":
		return KindTemplate, nil
	default:
		return "", fmt.Errorf("%w: unknown asset kind %q", errors.ErrInvalidInput, s)
	}
}

// Source is a user-declared mapping from an asset id to the repository
// that publishes its releases.
type Source struct {
	Owner string `json:"owner"`
	Repo  string `json:"repo"`
	ID    string `json:"id"`
}

// Repository returns the owner/repo slug for display and logging.
func (s Source) Repository() string {
	return s.Owner + "/" + s.Repo
}

// Version is one published release of an asset, newest first in a
// RemoteAsset's version list.
type Version struct {
	URL       string `json:"url"`
	Tag       string `json:"tag"`
	Changelog string `json:"changelog,omitempty"`
}

// RemoteAsset is the list of published versions for an asset, either
// freshly fetched or reconstructed from the metadata cache.
type RemoteAsset struct {
	ID       string
	Owner    string
	Repo     string
	Kind     Kind
	Versions []Version
}

// Tags returns the version tags in release order.
func (a *RemoteAsset) Tags() []string {
	tags := make([]string, len(a.Versions))
	for i, v := range a.Versions {
		tags[i] = v.Tag
	}
	return tags
}

// VersionIndex returns the index of the version with the given tag,
// or -1 if the asset has no such version.
func (a *RemoteAsset) VersionIndex(tag string) int {
	for i, v := range a.Versions {
		if v.Tag == tag {
			return i
		}
	}
	return -1
}
