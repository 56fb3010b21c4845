// Package objectstore adapts key-value blob services to the small contract
// the timers document needs: fetch by key, write with an optional
// previous-version check, and list keys by prefix.
//
// Version checks are best-effort: whether a stale PreviousVersion is
// rejected depends on the backend (see each implementation).
package objectstore

import (
	"context"
)

// Object is a fetched blob and the version token it was read at.
type Object struct {
	Key     string
	Data    []byte
	Version string
}

// WriteOptions controls how a blob is stored.
type WriteOptions struct {
	PublicRead  bool
	ContentType string
	// PreviousVersion, when set, asks the backend to reject the write with
	// common.ErrVersionConflict if the stored version is no longer this one.
	PreviousVersion string
	// IfAbsent makes the write create-only: it fails with
	// common.ErrVersionConflict when the key already exists.
	IfAbsent bool
}

// WriteResult describes the stored blob.
type WriteResult struct {
	Location string
	Version  string
}

// Store is implemented by every backend.
//
// Fetch returns common.ErrNotFound for a missing key and wraps transport
// failures with common.ErrStoreUnavailable.
type Store interface {
	Fetch(ctx context.Context, key string) (*Object, error)
	Write(ctx context.Context, key string, data []byte, opts WriteOptions) (*WriteResult, error)
	List(ctx context.Context, prefix string) ([]string, error)
}
