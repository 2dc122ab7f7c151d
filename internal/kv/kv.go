// Package kv provides the string key-value storage the mock stores persist
// into. It plays the role browser local storage plays for the web client: a
// single flat namespace of string keys holding JSON text.
package kv

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mesh-intelligence/taskflow/pkg/types"
)

// ErrClosed is returned by operations on a closed storage.
var ErrClosed = errors.New("storage is closed")

// Storage is a flat string key-value namespace.
type Storage interface {
	// Get returns the value for key. ok is false when the key is absent.
	Get(key string) (value string, ok bool, err error)

	// Set writes value under key, replacing any existing value.
	Set(key, value string) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(key string) error

	// Keys returns all keys in ascending order.
	Keys() ([]string, error)

	// Close releases resources. Idempotent.
	Close() error
}

// Open creates the storage named by cfg.Backend. DataDir is required for the
// sqlite and file backends.
func Open(cfg types.Config) (Storage, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Backend {
	case types.BackendMemory:
		return NewMemory(), nil
	case types.BackendSQLite:
		return OpenSQLite(filepath.Join(cfg.DataDir, "taskflow.db"))
	case types.BackendFile:
		return OpenDir(cfg.DataDir)
	default:
		return nil, types.ErrBackendUnknown
	}
}

// RemovePrefix deletes every key starting with prefix and returns how many
// were removed.
func RemovePrefix(s Storage, prefix string) (int, error) {
	keys, err := s.Keys()
	if err != nil {
		return 0, fmt.Errorf("listing keys: %w", err)
	}
	removed := 0
	for _, k := range keys {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		if err := s.Remove(k); err != nil {
			return removed, fmt.Errorf("removing %s: %w", k, err)
		}
		removed++
	}
	return removed, nil
}
