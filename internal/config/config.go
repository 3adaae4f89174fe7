package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	// DebugModeEnv is the environment variable for debug mode.
	DebugModeEnv = "DEBUG_MODE"

	// HTTPServerPortEnv is the environment variable for HTTP server port.
	HTTPServerPortEnv = "HTTP_SERVER_PORT"

	// MetricsServerPortEnv is the environment variable for metrics server port.
	MetricsServerPortEnv = "METRICS_SERVER_PORT"

	// StoreDriverEnv selects the key-value backend: bolt, sqlite, postgres, redis or memory.
	StoreDriverEnv = "STORE_DRIVER"

	// StoreLenientDecodeEnv makes unreadable stored collections read as empty instead of failing.
	StoreLenientDecodeEnv = "STORE_LENIENT_DECODE"

	// BoltPathEnv is the environment variable for the bolt database file.
	BoltPathEnv = "BOLT_PATH"

	// SQLitePathEnv is the environment variable for the SQLite database file.
	SQLitePathEnv = "SQLITE_PATH"

	// DBHostEnv is the environment variable for database host.
	DBHostEnv = "DB_HOST"

	// DBPortEnv is the environment variable for database port.
	DBPortEnv = "DB_PORT"

	// DBUserEnv is the environment variable for database user.
	DBUserEnv = "DB_USER"

	// DBPassEnv is the environment variable for database password.
	DBPassEnv = "DB_PASS"

	// DBNameEnv is the environment variable for database name.
	DBNameEnv = "DB_NAME"

	// RedisAddrEnv is the environment variable for the Redis address.
	RedisAddrEnv = "REDIS_ADDR"

	// RedisPasswordEnv is the environment variable for the Redis password.
	RedisPasswordEnv = "REDIS_PASSWORD"

	// RedisDBEnv is the environment variable for the Redis database number.
	RedisDBEnv = "REDIS_DB"

	// RedisPrefixEnv is the environment variable for the Redis key prefix.
	RedisPrefixEnv = "REDIS_PREFIX"

	// AuthURLEnv is the environment variable for the remote login endpoint.
	AuthURLEnv = "AUTH_URL"

	// AuthAPIKeyEnv is the environment variable for the optional x-api-key header.
	AuthAPIKeyEnv = "AUTH_API_KEY"

	// AuthTimeoutEnv is the environment variable for the login request timeout in seconds.
	AuthTimeoutEnv = "AUTH_TIMEOUT_SECONDS"

	// ImageDirEnv is the environment variable for the directory uploaded images are kept in.
	ImageDirEnv = "IMAGE_DIR"

	// AWSRegionEnv is the environment variable for AWS region.
	AWSRegionEnv = "AWS_REGION"

	// AWSEndpointEnv is the environment variable for AWS endpoint.
	AWSEndpointEnv = "AWS_ENDPOINT"

	// SQSQueueURLEnv is the environment variable for SQS queue URL.
	SQSQueueURLEnv = "SQS_QUEUE_URL"

	// OutboxIntervalEnv is the environment variable for the outbox polling interval in seconds.
	OutboxIntervalEnv = "OUTBOX_INTERVAL_SECONDS"

	// EnvFilePath is the environment variable for .env file path (only for local/test environment).
	EnvFilePath = "ENV_PATH"

	// DefaultEnvFilePath is the default path to the .env file.
	DefaultEnvFilePath = ".env"
)

// Store drivers.
const (
	DriverBolt     = "bolt"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverMemory   = "memory"
)

const (
	defaultHTTPPort       = "8080"
	defaultMetricsPort    = "9090"
	defaultBoltPath       = "storefront.db"
	defaultSQLitePath     = "storefront.sqlite"
	defaultAuthURL        = "https://reqres.in/api/login"
	defaultAuthTimeout    = 10
	defaultImageDir       = "images"
	defaultOutboxInterval = 2
)

var (
	// ErrMissingConfig is returned when required configuration values are missing.
	ErrMissingConfig = errors.New("missing config data")

	// ErrUnknownDriver is returned when STORE_DRIVER names no known backend.
	ErrUnknownDriver = errors.New("unknown store driver")
)

// Config represents the application configuration.
type Config struct {
	DebugMode     bool
	HTTPServer    Server
	MetricsServer Server
	Store         Store
	Auth          Auth
	ImageDir      string
	AWS           AWSConfig
}

// Store represents the key-value backend settings.
type Store struct {
	Driver        string
	LenientDecode bool
	BoltPath      string
	SQLitePath    string
	Database      DB
	Redis         Redis
}

// DB represents database configuration settings.
type DB struct {
	Host     string
	User     string
	Password string
	Name     string
	Port     string
}

// Redis represents Redis connection settings.
type Redis struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// Auth represents the remote authenticator settings.
type Auth struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

// AWSConfig represents AWS-specific configuration settings.
type AWSConfig struct {
	Region         string
	Endpoint       string
	SQSQueueURL    string
	OutboxInterval time.Duration
}

// Server represents server configuration settings.
type Server struct {
	Port string
}

// EventsEnabled reports whether catalog events should be published.
func (c *Config) EventsEnabled() bool {
	return c.AWS.SQSQueueURL != ""
}

func allNonEmpty(keyValues map[string]string) error {
	for key, value := range keyValues {
		if value == "" {
			slog.Error("configuration validation failed", slog.String("key", key), slog.String("error", "value is empty"))
			return fmt.Errorf("%w for key: %s", ErrMissingConfig, key)
		}
	}
	return nil
}

func allNumbers(keyValues map[string]string) error {
	for key, value := range keyValues {
		_, err := strconv.Atoi(value)
		if err != nil {
			slog.Error("configuration validation failed", slog.String("key", key), slog.String("value", value), slog.String("error", err.Error()))
			return fmt.Errorf("invalid number for key %s: %w", key, err)
		}
	}
	return nil
}

func (c *Config) validate() error {
	// Validate server ports
	if err := allNumbers(map[string]string{
		HTTPServerPortEnv:    c.HTTPServer.Port,
		MetricsServerPortEnv: c.MetricsServer.Port,
	}); err != nil {
		return fmt.Errorf("invalid port number: %w", err)
	}

	if err := c.Store.validate(); err != nil {
		return fmt.Errorf("store configuration incomplete: %w", err)
	}

	if err := allNonEmpty(map[string]string{
		AuthURLEnv:  c.Auth.URL,
		ImageDirEnv: c.ImageDir,
	}); err != nil {
		return fmt.Errorf("auth configuration incomplete: %w", err)
	}

	if c.EventsEnabled() {
		return c.RequireSQS()
	}
	return nil
}

func (s *Store) validate() error {
	switch s.Driver {
	case DriverMemory:
		return nil
	case DriverBolt:
		return allNonEmpty(map[string]string{BoltPathEnv: s.BoltPath})
	case DriverSQLite:
		return allNonEmpty(map[string]string{SQLitePathEnv: s.SQLitePath})
	case DriverRedis:
		return allNonEmpty(map[string]string{RedisAddrEnv: s.Redis.Addr})
	case DriverPostgres:
		if err := allNonEmpty(map[string]string{
			DBHostEnv: s.Database.Host,
			DBUserEnv: s.Database.User,
			DBNameEnv: s.Database.Name,
		}); err != nil {
			return err
		}
		return allNumbers(map[string]string{DBPortEnv: s.Database.Port})
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDriver, s.Driver)
	}
}

func getEnv(name, defaultValue string) string {
	if val := os.Getenv(name); val != "" {
		return val
	}
	return defaultValue
}

func getEnvAsBool(name string, defaultValue bool) bool {
	if val, err := strconv.ParseBool(os.Getenv(name)); err == nil {
		return val
	}
	return defaultValue
}

func getEnvAsInt(name string, defaultValue int) int {
	if val, err := strconv.Atoi(os.Getenv(name)); err == nil {
		return val
	}
	return defaultValue
}

func getEnvAsSeconds(name string, defaultValue int) time.Duration {
	seconds := getEnvAsInt(name, defaultValue)
	if seconds <= 0 {
		seconds = defaultValue
	}
	return time.Duration(seconds) * time.Second
}

// ApplyEnvFile loads environment variables from the specified .env files.
func ApplyEnvFile(files ...string) error {
	err := godotenv.Load(files...)
	if err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// LoadFromEnv loads configuration from environment variables and validates it.
func LoadFromEnv() (*Config, error) {
	envPath := os.Getenv(EnvFilePath)
	if envPath == "" {
		envPath = DefaultEnvFilePath
	}
	err := ApplyEnvFile(envPath)
	if err != nil {
		// just log the error, maybe all envs are set in another way
		slog.Info("failed to load from .env", slog.Any("err", err))
	}

	conf := &Config{
		DebugMode: getEnvAsBool(DebugModeEnv, false),
		HTTPServer: Server{
			Port: getEnv(HTTPServerPortEnv, defaultHTTPPort),
		},
		MetricsServer: Server{
			Port: getEnv(MetricsServerPortEnv, defaultMetricsPort),
		},
		Store: Store{
			Driver:        getEnv(StoreDriverEnv, DriverBolt),
			LenientDecode: getEnvAsBool(StoreLenientDecodeEnv, false),
			BoltPath:      getEnv(BoltPathEnv, defaultBoltPath),
			SQLitePath:    getEnv(SQLitePathEnv, defaultSQLitePath),
			Database: DB{
				Host:     os.Getenv(DBHostEnv),
				User:     os.Getenv(DBUserEnv),
				Password: os.Getenv(DBPassEnv),
				Name:     os.Getenv(DBNameEnv),
				Port:     getEnv(DBPortEnv, "5432"),
			},
			Redis: Redis{
				Addr:     os.Getenv(RedisAddrEnv),
				Password: os.Getenv(RedisPasswordEnv),
				DB:       getEnvAsInt(RedisDBEnv, 0),
				Prefix:   os.Getenv(RedisPrefixEnv),
			},
		},
		Auth: Auth{
			URL:     getEnv(AuthURLEnv, defaultAuthURL),
			APIKey:  os.Getenv(AuthAPIKeyEnv),
			Timeout: getEnvAsSeconds(AuthTimeoutEnv, defaultAuthTimeout),
		},
		ImageDir: getEnv(ImageDirEnv, defaultImageDir),
		AWS: AWSConfig{
			Region:         os.Getenv(AWSRegionEnv),
			Endpoint:       os.Getenv(AWSEndpointEnv),
			SQSQueueURL:    os.Getenv(SQSQueueURLEnv),
			OutboxInterval: getEnvAsSeconds(OutboxIntervalEnv, defaultOutboxInterval),
		},
	}

	if err := conf.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return conf, nil
}

// RequireSQS checks the settings a queue consumer cannot run without.
func (c *Config) RequireSQS() error {
	if err := allNonEmpty(map[string]string{
		SQSQueueURLEnv: c.AWS.SQSQueueURL,
		AWSRegionEnv:   c.AWS.Region,
	}); err != nil {
		return fmt.Errorf("AWS configuration incomplete: %w", err)
	}
	return nil
}
