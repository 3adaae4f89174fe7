package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/iyhunko/hifi-storefront/internal/kvstore"
	"github.com/iyhunko/hifi-storefront/internal/repository"
)

type record interface {
	Validate() error
}

// collection is a JSON array of records stored under a single key.
type collection[T record] struct {
	store   kvstore.Store
	key     string
	lenient bool
}

func newCollection[T record](store kvstore.Store, key string, lenient bool) collection[T] {
	return collection[T]{store: store, key: key, lenient: lenient}
}

// load returns the stored records. A missing key reads as an empty collection.
func (c collection[T]) load(ctx context.Context) ([]T, error) {
	raw, err := c.store.Get(ctx, c.key)
	if errors.Is(err, kvstore.ErrNotFound) {
		return []T{}, nil
	}
	if err != nil {
		return nil, &repository.StorageError{Op: "read", Key: c.key, Err: err}
	}

	var items []T
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return c.corrupt(err)
	}
	for i, item := range items {
		if err := item.Validate(); err != nil {
			return c.corrupt(fmt.Errorf("record %d: %w", i, err))
		}
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func (c collection[T]) corrupt(cause error) ([]T, error) {
	if c.lenient {
		slog.Warn("discarding malformed collection", slog.String("key", c.key), slog.Any("err", cause))
		return []T{}, nil
	}
	return nil, &repository.StorageError{
		Op:  "decode",
		Key: c.key,
		Err: fmt.Errorf("%w: %w", repository.ErrCorruptData, cause),
	}
}

func (c collection[T]) encode(items []T) (string, error) {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "", &repository.StorageError{Op: "encode", Key: c.key, Err: err}
	}
	return string(data), nil
}

// setOp encodes items into a write of the whole collection.
func (c collection[T]) setOp(items []T) (kvstore.Op, error) {
	value, err := c.encode(items)
	if err != nil {
		return kvstore.Op{}, err
	}
	return kvstore.SetOp(c.key, value), nil
}

func (c collection[T]) save(ctx context.Context, items []T) error {
	value, err := c.encode(items)
	if err != nil {
		return err
	}
	if err := c.store.Set(ctx, c.key, value); err != nil {
		return &repository.StorageError{Op: "write", Key: c.key, Err: err}
	}
	return nil
}
