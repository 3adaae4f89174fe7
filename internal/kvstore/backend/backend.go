// Package backend opens the key-value store selected in the configuration.
package backend

import (
	"context"
	"fmt"

	"github.com/iyhunko/hifi-storefront/internal/config"
	"github.com/iyhunko/hifi-storefront/internal/kvstore"
	"github.com/iyhunko/hifi-storefront/internal/kvstore/bolt"
	kvredis "github.com/iyhunko/hifi-storefront/internal/kvstore/redis"
	kvsql "github.com/iyhunko/hifi-storefront/internal/kvstore/sql"
	"github.com/iyhunko/hifi-storefront/internal/kvstore/sqlite"
	"github.com/redis/go-redis/v9"
)

// Open opens the backend named by conf.Driver.
func Open(ctx context.Context, conf config.Store) (kvstore.Store, error) {
	switch conf.Driver {
	case config.DriverMemory:
		return kvstore.NewMemoryStore(), nil
	case config.DriverBolt:
		store, err := bolt.Open(conf.BoltPath)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.DriverSQLite:
		store, err := sqlite.Open(conf.SQLitePath)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.DriverPostgres:
		db, err := kvsql.StartDB(ctx, conf.Database)
		if err != nil {
			return nil, err
		}
		return kvsql.NewStore(db), nil
	case config.DriverRedis:
		store, err := kvredis.Open(ctx, &redis.Options{
			Addr:     conf.Redis.Addr,
			Password: conf.Redis.Password,
			DB:       conf.Redis.DB,
		}, conf.Redis.Prefix)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownDriver, conf.Driver)
	}
}
