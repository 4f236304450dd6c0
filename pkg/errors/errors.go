// Package errors provides the typed errors used across the manager.
// Every failure surfaced to callers is one of the types below, so callers
// can match on error kind with errors.Is/errors.As instead of catching
// broad classes.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Is reports whether any error in err's chain matches target.
// It's an alias for the standard library errors.Is for convenience.
var Is = errors.Is

// As finds the first error in err's chain that matches target.
// It's an alias for the standard library errors.As for convenience.
var As = errors.As

// Sentinel errors for programmatic checks.
var (
	// ErrNotFound indicates that a requested asset, source, or cache
	// record was not found.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates that a resource already exists, such as
	// a duplicate source entry or an in-flight download.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates that provided input or parsed content was invalid.
	ErrInvalidInput = errors.New("invalid input")

	// ErrRateLimited indicates that the remote API rate limit has been exceeded.
	ErrRateLimited = errors.New("rate limited")
)

// SourceError represents an I/O failure while loading or saving the
// source configuration document.
type SourceError struct {
	Op   string // "load" or "save"
	Path string
	Err  error
}

// Error implements the error interface.
func (e *SourceError) Error() string {
	return fmt.Sprintf("source config %s failed for %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap implements errors.Unwrap.
func (e *SourceError) Unwrap() error {
	return e.Err
}

// NewSourceError creates a new SourceError.
func NewSourceError(op, path string, err error) *SourceError {
	return &SourceError{Op: op, Path: path, Err: err}
}

// InvalidSourceError represents a source configuration document that
// parsed but failed validation.
type InvalidSourceError struct {
	Path    string
	Message string
}

// Error implements the error interface.
func (e *InvalidSourceError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("invalid source config %s: %s", e.Path, e.Message)
	}
	return fmt.Sprintf("invalid source config: %s", e.Message)
}

// Is implements errors.Is support.
func (e *InvalidSourceError) Is(target error) bool {
	return target == ErrInvalidInput
}

// DuplicateSourceError represents an attempt to register a source entry
// that collides with an existing one in the same kind.
type DuplicateSourceError struct {
	Kind  string
	Field string // "id" or "repository"
	Value string
}

// Error implements the error interface.
func (e *DuplicateSourceError) Error() string {
	return fmt.Sprintf("duplicate %s source with %s %q", e.Kind, e.Field, e.Value)
}

// Is implements errors.Is support.
func (e *DuplicateSourceError) Is(target error) bool {
	return target == ErrAlreadyExists
}

// CacheError represents an I/O failure while reading or writing the
// metadata cache file.
type CacheError struct {
	Op   string // "read" or "write"
	Path string
	Err  error
}

// Error implements the error interface.
func (e *CacheError) Error() string {
	return fmt.Sprintf("cache %s failed for %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap implements errors.Unwrap.
func (e *CacheError) Unwrap() error {
	return e.Err
}

// NewCacheError creates a new CacheError.
func NewCacheError(op, path string, err error) *CacheError {
	return &CacheError{Op: op, Path: path, Err: err}
}

// InvalidCacheError represents cache content that could not be accepted:
// malformed JSON or an unknown schema version.
type InvalidCacheError struct {
	Path    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *InvalidCacheError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("invalid cache content in %s: %s", e.Path, e.Message)
	}
	return fmt.Sprintf("invalid cache content: %s", e.Message)
}

// Unwrap implements errors.Unwrap.
func (e *InvalidCacheError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support.
func (e *InvalidCacheError) Is(target error) bool {
	return target == ErrInvalidInput
}

// FetchError represents a transport or API failure while listing
// releases for a repository. A 403 or 429 status marks it rate limited.
type FetchError struct {
	Owner      string
	Repo       string
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch failed for %s/%s (status %d): %s", e.Owner, e.Repo, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("fetch failed for %s/%s: %s", e.Owner, e.Repo, e.Message)
}

// Unwrap implements errors.Unwrap.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support.
func (e *FetchError) Is(target error) bool {
	if e.StatusCode == 403 || e.StatusCode == 429 {
		return target == ErrRateLimited
	}
	return false
}

// NewFetchError creates a new FetchError.
func NewFetchError(owner, repo string, statusCode int, message string, err error) *FetchError {
	return &FetchError{
		Owner:      owner,
		Repo:       repo,
		StatusCode: statusCode,
		Message:    message,
		Err:        err,
	}
}

// LifecycleError represents an I/O failure during a download, install,
// or uninstall operation.
type LifecycleError struct {
	Op      string // "download", "install", "uninstall"
	AssetID string
	Path    string
	Err     error
}

// Error implements the error interface.
func (e *LifecycleError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s failed for %s at %s: %v", e.Op, e.AssetID, e.Path, e.Err)
	}
	return fmt.Sprintf("%s failed for %s: %v", e.Op, e.AssetID, e.Err)
}

// Unwrap implements errors.Unwrap.
func (e *LifecycleError) Unwrap() error {
	return e.Err
}

// NewLifecycleError creates a new LifecycleError.
func NewLifecycleError(op, assetID, path string, err error) *LifecycleError {
	return &LifecycleError{Op: op, AssetID: assetID, Path: path, Err: err}
}

// NotFoundError represents a missing asset, source, version, or cache record.
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// Is implements errors.Is support.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// Helper functions for error checking.

// IsNotFound checks if an error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicate checks if an error is a duplicate/already-exists error.
func IsDuplicate(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsInvalid checks if an error is a validation error.
func IsInvalid(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsRateLimited checks if an error is a rate limit error.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// Helper wrapping functions for common patterns.

// WrapCache wraps an error as a CacheError, passing nil through.
func WrapCache(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewCacheError(op, path, err)
}

// WrapSource wraps an error as a SourceError, passing nil through.
func WrapSource(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewSourceError(op, path, err)
}

// WrapLifecycle wraps an error as a LifecycleError, passing nil through.
func WrapLifecycle(op, assetID, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewLifecycleError(op, assetID, path, err)
}
