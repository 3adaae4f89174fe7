// Package bolt stores catalog blobs in a single-file bbolt database on the device.
package bolt

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/iyhunko/hifi-storefront/internal/kvstore"
	bolt "go.etcd.io/bbolt"
)

const (
	defaultBucket = "storefront"
	openTimeout   = time.Second
)

// Store implements kvstore.Store and kvstore.Batcher on top of bbolt.
type Store struct {
	db     *bolt.DB
	bucket []byte
}

// Open opens (or creates) the database file at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database %s: %w", path, err)
	}

	s := &Store{db: db, bucket: []byte(defaultBucket)}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(s.bucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	slog.Info("bolt store opened", slog.String("path", path))
	return s, nil
}

func (s *Store) Get(_ context.Context, key string) (string, error) {
	var (
		value string
		found bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(s.bucket).Get([]byte(key))
		if v != nil {
			// v is only valid inside the transaction
			value, found = string(v), true
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to read key %s: %w", key, err)
	}
	if !found {
		return "", kvstore.ErrNotFound
	}
	return value, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	return s.Apply(ctx, kvstore.SetOp(key, value))
}

func (s *Store) Remove(ctx context.Context, key string) error {
	return s.Apply(ctx, kvstore.RemoveOp(key))
}

// Apply runs every op in one read-write transaction.
func (s *Store) Apply(_ context.Context, ops ...kvstore.Op) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		for _, op := range ops {
			if op.Delete {
				if err := b.Delete([]byte(op.Key)); err != nil {
					return fmt.Errorf("failed to delete key %s: %w", op.Key, err)
				}
				continue
			}
			if err := b.Put([]byte(op.Key), []byte(op.Value)); err != nil {
				return fmt.Errorf("failed to put key %s: %w", op.Key, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to apply bolt transaction: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
