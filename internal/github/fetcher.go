// Package github lists published release metadata for configured asset
// sources through the GitHub REST API. It is the only remote boundary
// of the manager: given an owner/repo pair it returns ordered versions,
// each with a download URL, a tag, and optional changelog text.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fraytools/manager/pkg/assets"
	"github.com/fraytools/manager/pkg/errors"
	"github.com/fraytools/manager/pkg/logging"
)

const (
	defaultBaseURL = "https://api.github.com"
	defaultTimeout = 30 * time.Second
	apiVersion     = "2022-11-28"
)

// release is the subset of the GitHub release object the manager reads.
type release struct {
	Name       string         `json:"name"`
	TagName    string         `json:"tag_name"`
	Body       string         `json:"body"`
	ZipballURL string         `json:"zipball_url"`
	Assets     []releaseAsset `json:"assets"`
}

type releaseAsset struct {
	BrowserDownloadURL string `json:"browser_download_url"`
}

// Fetcher lists releases for a repository.
type Fetcher struct {
	http    *http.Client
	baseURL string
	token   string
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		if c != nil {
			f.http = c
		}
	}
}

// WithBaseURL overrides the API base URL, primarily for tests.
func WithBaseURL(url string) Option {
	return func(f *Fetcher) {
		if url != "" {
			f.baseURL = url
		}
	}
}

// WithToken sets an optional bearer token to raise the API rate limit.
func WithToken(token string) Option {
	return func(f *Fetcher) {
		f.token = token
	}
}

// New creates a release fetcher.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		http:    &http.Client{Timeout: defaultTimeout},
		baseURL: defaultBaseURL,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ListVersions fetches the releases of src's repository and maps them
// to a remote asset, newest first as returned by the API. A release
// contributes the first attached asset's download URL; templates fall
// back to the source zipball when a release has no attached asset.
// Releases with neither are skipped.
func (f *Fetcher) ListVersions(ctx context.Context, src assets.Source, kind assets.Kind) (*assets.RemoteAsset, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/releases?per_page=100", f.baseURL, src.Owner, src.Repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.NewFetchError(src.Owner, src.Repo, 0, "building request", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", apiVersion)
	if f.token != "" {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}

	logging.FromContext(ctx).Debug().
		Str("repo", src.Repository()).
		Str("kind", kind.String()).
		Msg("Listing releases")

	resp, err := f.http.Do(req)
	if err != nil {
		return nil, errors.NewFetchError(src.Owner, src.Repo, 0, "request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		msg := http.StatusText(resp.StatusCode)
		if len(body) > 0 {
			msg = string(body)
		}
		return nil, errors.NewFetchError(src.Owner, src.Repo, resp.StatusCode, msg, nil)
	}

	var releases []release
	if err := json.NewDecoder(resp.Body).Decode(&releases); err != nil {
		return nil, errors.NewFetchError(src.Owner, src.Repo, 0, "decoding response", err)
	}

	asset := &assets.RemoteAsset{
		ID:    src.ID,
		Owner: src.Owner,
		Repo:  src.Repo,
		Kind:  kind,
	}
	for _, rel := range releases {
		var url string
		switch {
		case len(rel.Assets) > 0 && rel.Assets[0].BrowserDownloadURL != "":
			url = rel.Assets[0].BrowserDownloadURL
		case kind == assets.KindTemplate && rel.ZipballURL != "":
			url = rel.ZipballURL
		default:
			continue
		}

		tag := rel.Name
		if tag == "" {
			tag = rel.TagName
		}
		asset.Versions = append(asset.Versions, assets.Version{
			URL:       url,
			Tag:       tag,
			Changelog: rel.Body,
		})
	}
	return asset, nil
}
