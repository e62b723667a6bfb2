// Package store provides the durable key-value storage the session core
// depends on. The authorization flow crosses a process restart (the browser
// is opened, the process may exit, a later invocation finishes the
// exchange), so anything the flow needs afterwards must be written here
// before navigating away.
//
// Keys and values are strings; reads and writes are latest-wins. The store
// is a single keyed namespace and the core assumes no other writer touches
// the same keys.
package store

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get when no value exists for a key.
var ErrNotFound = errors.New("key not found")

// Store is an asynchronous persistent map surviving process restarts.
type Store interface {
	// Get returns the value for key, or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set writes key to value, overwriting any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Keys lists all keys currently present.
	Keys(ctx context.Context) ([]string, error)

	// Close releases any resources held by the backend.
	Close() error
}

// Backend names accepted in configuration.
const (
	BackendFile    = "file"
	BackendKeyring = "keyring"
	BackendSQLite  = "sqlite"
	BackendMemory  = "memory"
)

// Open creates a store for the named backend. dir is the state directory
// for backends that keep files.
func Open(backend, dir string) (Store, error) {
	switch backend {
	case BackendFile, "":
		return NewFileStore(dir)
	case BackendKeyring:
		return NewKeyringStore(DefaultKeyringService), nil
	case BackendSQLite:
		return NewSQLiteStore(dir)
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}
