//go:build integration

package integration

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"testing"
	"time"

	kvsql "github.com/iyhunko/hifi-storefront/internal/kvstore/sql"
	_ "github.com/lib/pq"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"
)

// TestDB holds the test database connection and cleanup function
type TestDB struct {
	DB       *sql.DB
	Pool     *dockertest.Pool
	Resource *dockertest.Resource
}

// SetupTestDB sets up a PostgreSQL container using dockertest and runs migrations
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	pool := newPool(t)

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16",
		Env: []string{
			"POSTGRES_PASSWORD=secret",
			"POSTGRES_USER=testuser",
			"POSTGRES_DB=testdb",
			"listen_addresses='*'",
		},
	}, autoRemove)
	if err != nil {
		t.Fatalf("Could not start resource: %s", err)
	}

	// Set container to expire after 2 minutes to avoid orphaned containers
	if err := resource.Expire(120); err != nil {
		t.Fatalf("Could not set expiration: %s", err)
	}

	hostAndPort := resource.GetHostPort("5432/tcp")
	databaseURL := fmt.Sprintf("postgres://testuser:secret@%s/testdb?sslmode=disable", hostAndPort)

	log.Println("Connecting to database on url: ", databaseURL)

	var db *sql.DB
	if err = pool.Retry(func() error {
		var err error
		db, err = sql.Open("postgres", databaseURL)
		if err != nil {
			return err
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("Could not connect to docker: %s", err)
	}

	if err := kvsql.RunMigrations(db); err != nil {
		t.Fatalf("Could not run migrations: %s", err)
	}

	return &TestDB{
		DB:       db,
		Pool:     pool,
		Resource: resource,
	}
}

// Cleanup closes the database connection and purges the Docker container
func (tdb *TestDB) Cleanup(t *testing.T) {
	t.Helper()

	if tdb.DB != nil {
		if err := tdb.DB.Close(); err != nil {
			t.Errorf("Could not close database: %s", err)
		}
	}
	purge(t, tdb.Pool, tdb.Resource)
}

// TruncateTables empties the key-value table
func (tdb *TestDB) TruncateTables(t *testing.T) {
	t.Helper()

	if _, err := tdb.DB.ExecContext(context.Background(), "TRUNCATE TABLE kv_entries"); err != nil {
		t.Fatalf("Could not truncate table kv_entries: %s", err)
	}
}

// TestRedis holds a client connected to a Redis container
type TestRedis struct {
	Client   *redis.Client
	Pool     *dockertest.Pool
	Resource *dockertest.Resource
}

// SetupTestRedis starts a Redis container using dockertest
func SetupTestRedis(t *testing.T) *TestRedis {
	t.Helper()

	pool := newPool(t)

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "redis",
		Tag:        "7-alpine",
	}, autoRemove)
	if err != nil {
		t.Fatalf("Could not start resource: %s", err)
	}
	if err := resource.Expire(120); err != nil {
		t.Fatalf("Could not set expiration: %s", err)
	}

	client := redis.NewClient(&redis.Options{Addr: resource.GetHostPort("6379/tcp")})
	if err = pool.Retry(func() error {
		return client.Ping(context.Background()).Err()
	}); err != nil {
		t.Fatalf("Could not connect to redis: %s", err)
	}

	return &TestRedis{
		Client:   client,
		Pool:     pool,
		Resource: resource,
	}
}

// Cleanup closes the client and purges the Docker container
func (tr *TestRedis) Cleanup(t *testing.T) {
	t.Helper()

	if tr.Client != nil {
		if err := tr.Client.Close(); err != nil {
			t.Errorf("Could not close redis client: %s", err)
		}
	}
	purge(t, tr.Pool, tr.Resource)
}

func newPool(t *testing.T) *dockertest.Pool {
	t.Helper()

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("Could not connect to docker: %s", err)
	}
	pool.MaxWait = 120 * time.Second
	return pool
}

func autoRemove(config *docker.HostConfig) {
	config.AutoRemove = true
	config.RestartPolicy = docker.RestartPolicy{Name: "no"}
}

func purge(t *testing.T, pool *dockertest.Pool, resource *dockertest.Resource) {
	t.Helper()

	if pool != nil && resource != nil {
		if err := pool.Purge(resource); err != nil {
			t.Errorf("Could not purge resource: %s", err)
		}
	}
}
