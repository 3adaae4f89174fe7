// Package kvstore defines the string-keyed blob store the catalog persists into.
package kvstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key holds no value.
var ErrNotFound = errors.New("key not found")

// Store is a persistent string-keyed store of string values.
type Store interface {
	// Get returns the value under key, or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error
	Close() error
}

// Op is a single write applied as part of a batch.
type Op struct {
	Key    string
	Value  string
	Delete bool
}

// SetOp builds a write of value under key.
func SetOp(key, value string) Op {
	return Op{Key: key, Value: value}
}

// RemoveOp builds a deletion of key.
func RemoveOp(key string) Op {
	return Op{Key: key, Delete: true}
}

// Batcher is implemented by stores that can apply several writes atomically:
// either every op is applied or none is.
type Batcher interface {
	Apply(ctx context.Context, ops ...Op) error
}
