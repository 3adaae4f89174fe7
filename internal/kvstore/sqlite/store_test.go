package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/iyhunko/hifi-storefront/internal/kvstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initTestStore(t *testing.T) *Store {
	store, err := Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open in-memory db: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_GetSetRemove(t *testing.T) {
	ctx := context.Background()
	store := initTestStore(t)

	_, err := store.Get(ctx, "products")
	require.ErrorIs(t, err, kvstore.ErrNotFound)

	require.NoError(t, store.Set(ctx, "products", "[]"))
	require.NoError(t, store.Set(ctx, "products", `[{"id":1}]`))

	v, err := store.Get(ctx, "products")
	require.NoError(t, err)
	require.Equal(t, `[{"id":1}]`, v)

	var count int64
	require.NoError(t, store.db.Model(&Entry{}).Count(&count).Error)
	require.Equal(t, int64(1), count)

	require.NoError(t, store.Remove(ctx, "products"))
	_, err = store.Get(ctx, "products")
	require.ErrorIs(t, err, kvstore.ErrNotFound)
}

func TestStore_Apply(t *testing.T) {
	ctx := context.Background()
	store := initTestStore(t)

	require.NoError(t, store.Set(ctx, "token", "abc"))

	err := store.Apply(ctx,
		kvstore.SetOp("products", "[]"),
		kvstore.SetOp("orders", "[]"),
		kvstore.RemoveOp("token"),
	)
	require.NoError(t, err)

	v, err := store.Get(ctx, "orders")
	require.NoError(t, err)
	assert.Equal(t, "[]", v)
	_, err = store.Get(ctx, "token")
	assert.ErrorIs(t, err, kvstore.ErrNotFound)
}

func TestStore_FilePersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "storefront.sqlite")

	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, "token", "abc"))
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	v, err := reopened.Get(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, "abc", v)
}
