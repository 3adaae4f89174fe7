// Package sql stores catalog blobs in a PostgreSQL kv_entries table.
package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iyhunko/hifi-storefront/internal/kvstore"
)

const (
	selectValueQuery = `SELECT value FROM kv_entries WHERE key = $1`
	upsertValueQuery = `INSERT INTO kv_entries (key, value, updated_at) VALUES ($1, $2, $3)
	                    ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`
	deleteValueQuery = `DELETE FROM kv_entries WHERE key = $1`
)

// Store implements kvstore.Store and kvstore.Batcher on a *sql.DB.
type Store struct {
	db  *sql.DB
	txn *sql.Tx
}

// NewStore creates a new Store instance.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// getExecutor returns the active executor (transaction if exists, otherwise db)
func (s *Store) getExecutor() dbExecutor {
	if s.txn != nil {
		return s.txn
	}
	return s.db
}

// WithinTransaction executes fn with a store bound to a single database transaction.
func (s *Store) WithinTransaction(ctx context.Context, fn func(store *Store) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	txStore := &Store{
		db:  s.db,
		txn: tx,
	}

	if err := fn(txStore); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("failed to rollback transaction: %w (original error: %v)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	stmt, err := s.getExecutor().PrepareContext(ctx, selectValueQuery)
	if err != nil {
		return "", fmt.Errorf("failed to prepare select statement: %w", err)
	}
	defer stmt.Close()

	var value string
	err = stmt.QueryRowContext(ctx, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", kvstore.ErrNotFound
		}
		return "", fmt.Errorf("failed to query key %s: %w", key, err)
	}

	return value, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	stmt, err := s.getExecutor().PrepareContext(ctx, upsertValueQuery)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert statement: %w", err)
	}
	defer stmt.Close()

	if _, err = stmt.ExecContext(ctx, key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to upsert key %s: %w", key, err)
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, key string) error {
	stmt, err := s.getExecutor().PrepareContext(ctx, deleteValueQuery)
	if err != nil {
		return fmt.Errorf("failed to prepare delete statement: %w", err)
	}
	defer stmt.Close()

	if _, err = stmt.ExecContext(ctx, key); err != nil {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}

// Apply runs every op in one transaction.
func (s *Store) Apply(ctx context.Context, ops ...kvstore.Op) error {
	return s.WithinTransaction(ctx, func(tx *Store) error {
		for _, op := range ops {
			var err error
			if op.Delete {
				err = tx.Remove(ctx, op.Key)
			} else {
				err = tx.Set(ctx, op.Key, op.Value)
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
