package kv_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/iyhunko/hifi-storefront/internal/kvstore"
	"github.com/iyhunko/hifi-storefront/internal/repository/kv"
)

var fixedNow = time.Date(2024, time.March, 5, 10, 30, 0, 0, time.UTC)

func fixedClock() time.Time {
	return fixedNow
}

func newRepos(store kvstore.Store, opts ...kv.Option) *kv.Repositories {
	return kv.New(store, append([]kv.Option{kv.WithClock(fixedClock)}, opts...)...)
}

// plainStore hides the Batcher of the wrapped store and can fail writes.
type plainStore struct {
	kvstore.Store

	mu      sync.Mutex
	failSet func(key string) error
	getErr  error
}

func (s *plainStore) Get(ctx context.Context, key string) (string, error) {
	if s.getErr != nil {
		return "", s.getErr
	}
	return s.Store.Get(ctx, key)
}

func (s *plainStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	fail := s.failSet
	s.mu.Unlock()
	if fail != nil {
		if err := fail(key); err != nil {
			return err
		}
	}
	return s.Store.Set(ctx, key, value)
}

var errDiskFull = errors.New("disk full")
