package manager

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/fraytools/manager/pkg/paths"
)

// config collects the options applied at construction time.
type config struct {
	layout      *paths.Layout
	fetcher     Fetcher
	httpClient  *http.Client
	logger      *zerolog.Logger
	githubToken string
}

// Option is a function that configures a Manager instance.
type Option func(*config) error

// WithLayout overrides the disk layout. Tests point this at a temp
// directory instead of the user's home.
func WithLayout(layout *paths.Layout) Option {
	return func(c *config) error {
		c.layout = layout
		return nil
	}
}

// WithFetcher overrides the release metadata fetcher.
func WithFetcher(f Fetcher) Option {
	return func(c *config) error {
		c.fetcher = f
		return nil
	}
}

// WithHTTPClient overrides the HTTP client used for release listing and
// archive downloads.
func WithHTTPClient(client *http.Client) Option {
	return func(c *config) error {
		c.httpClient = client
		return nil
	}
}

// WithLogger overrides the manager's logger.
func WithLogger(log *zerolog.Logger) Option {
	return func(c *config) error {
		c.logger = log
		return nil
	}
}

// WithGitHubToken sets an optional bearer token for the GitHub API to
// raise the unauthenticated rate limit.
func WithGitHubToken(token string) Option {
	return func(c *config) error {
		c.githubToken = token
		return nil
	}
}
