package errors

import (
	"fmt"
	"testing"
)

func TestNotFoundError(t *testing.T) {
	err := NewNotFoundError("source", "com.example.plugin")
	if !IsNotFound(err) {
		t.Error("expected IsNotFound")
	}
	if IsDuplicate(err) || IsInvalid(err) || IsRateLimited(err) {
		t.Error("unexpected cross-kind match")
	}
	want := "source com.example.plugin not found"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestDuplicateSourceError(t *testing.T) {
	err := &DuplicateSourceError{Kind: "plugin", Field: "id", Value: "com.example.plugin"}
	if !IsDuplicate(err) {
		t.Error("expected IsDuplicate")
	}
	if IsNotFound(err) {
		t.Error("unexpected not-found match")
	}
}

func TestInvalidCacheError(t *testing.T) {
	err := &InvalidCacheError{Path: "/tmp/sources-lock.json", Message: "unsupported cache schema version 9"}
	if !IsInvalid(err) {
		t.Error("expected IsInvalid")
	}
}

func TestFetchErrorRateLimit(t *testing.T) {
	cases := []struct {
		status  int
		limited bool
	}{
		{403, true},
		{429, true},
		{500, false},
		{404, false},
		{0, false},
	}
	for _, tc := range cases {
		err := NewFetchError("owner", "repo", tc.status, "msg", nil)
		if got := IsRateLimited(err); got != tc.limited {
			t.Errorf("status %d: IsRateLimited = %v, want %v", tc.status, got, tc.limited)
		}
	}
}

func TestLifecycleErrorUnwrap(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := NewLifecycleError("install", "com.example.plugin", "/tmp/dest", cause)
	if !Is(err, cause) {
		t.Error("expected the cause to be reachable through Unwrap")
	}

	var lcErr *LifecycleError
	if !As(err, &lcErr) {
		t.Fatal("expected As to match *LifecycleError")
	}
	if lcErr.Op != "install" {
		t.Errorf("Op = %q", lcErr.Op)
	}
}

func TestWrapHelpersPassNilThrough(t *testing.T) {
	if WrapCache("read", "/p", nil) != nil {
		t.Error("WrapCache(nil) should be nil")
	}
	if WrapSource("load", "/p", nil) != nil {
		t.Error("WrapSource(nil) should be nil")
	}
	if WrapLifecycle("download", "id", "/p", nil) != nil {
		t.Error("WrapLifecycle(nil) should be nil")
	}
	if WrapCache("read", "/p", New("boom")) == nil {
		t.Error("WrapCache(err) should wrap")
	}
}
