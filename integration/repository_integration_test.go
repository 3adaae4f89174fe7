//go:build integration

package integration

import (
	"context"
	"testing"

	"github.com/iyhunko/hifi-storefront/internal/kvstore"
	kvredis "github.com/iyhunko/hifi-storefront/internal/kvstore/redis"
	kvsql "github.com/iyhunko/hifi-storefront/internal/kvstore/sql"
	"github.com/iyhunko/hifi-storefront/internal/model"
	"github.com/iyhunko/hifi-storefront/internal/repository"
	"github.com/iyhunko/hifi-storefront/internal/repository/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepositories_Integration(t *testing.T) {
	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)
	testRedis := SetupTestRedis(t)
	defer testRedis.Cleanup(t)

	stores := []struct {
		name  string
		reset func(t *testing.T)
		store kvstore.Store
	}{
		{
			name:  "postgres",
			reset: testDB.TruncateTables,
			store: kvsql.NewStore(testDB.DB),
		},
		{
			name: "redis",
			reset: func(t *testing.T) {
				require.NoError(t, testRedis.Client.FlushDB(context.Background()).Err())
			},
			store: kvredis.New(testRedis.Client, kvredis.DefaultPrefix),
		},
	}

	for _, s := range stores {
		t.Run(s.name, func(t *testing.T) {
			ctx := context.Background()

			t.Run("duplicate names are rejected", func(t *testing.T) {
				s.reset(t)
				repos := kv.New(s.store)

				_, err := repos.Products.Add(ctx, model.ProductCandidate{Name: "Amp", Price: "100", ImageURI: "file://a"})
				require.NoError(t, err)
				_, err = repos.Products.Add(ctx, model.ProductCandidate{Name: "amp", Price: "50", ImageURI: "file://b"})
				assert.ErrorIs(t, err, repository.ErrDuplicateName)

				products, err := repos.Products.List(ctx)
				require.NoError(t, err)
				require.Len(t, products, 1)
				assert.Equal(t, model.Price("100"), products[0].Price)
			})

			t.Run("delete cascades to orders", func(t *testing.T) {
				s.reset(t)
				repos := kv.New(s.store)

				amp, err := repos.Products.Add(ctx, model.ProductCandidate{Name: "Amp", Price: "100", ImageURI: "file://a"})
				require.NoError(t, err)
				speaker, err := repos.Products.Add(ctx, model.ProductCandidate{Name: "Speaker", Price: "80", ImageURI: "file://b"})
				require.NoError(t, err)
				_, err = repos.Orders.Add(ctx, *amp)
				require.NoError(t, err)
				kept, err := repos.Orders.Add(ctx, *speaker)
				require.NoError(t, err)

				require.NoError(t, repos.Products.Delete(ctx, amp.ID))

				products, err := repos.Products.List(ctx)
				require.NoError(t, err)
				assert.Equal(t, []model.Product{*speaker}, products)
				orders, err := repos.Orders.List(ctx)
				require.NoError(t, err)
				assert.Equal(t, []model.Order{*kept}, orders)
			})

			t.Run("data survives a new repository", func(t *testing.T) {
				s.reset(t)

				added, err := kv.New(s.store).Products.Add(ctx, model.ProductCandidate{Name: "Turntable", Price: "300", ImageURI: "file://t"})
				require.NoError(t, err)

				found, err := kv.New(s.store).Products.FindByID(ctx, added.ID)
				require.NoError(t, err)
				assert.Equal(t, added, found)
			})

			t.Run("corrupt data is reported", func(t *testing.T) {
				s.reset(t)
				require.NoError(t, s.store.Set(ctx, kv.OrdersKey, "not json"))

				_, err := kv.New(s.store).Orders.List(ctx)
				assert.ErrorIs(t, err, repository.ErrCorruptData)
			})
		})
	}
}
