package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "STOREFRONT"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	StorageDriverMemory = "memory"
	StorageDriverRedis  = "redis"
	StorageDriverSQL    = "sql"
	StorageDriverMongo  = "mongo"

	DBDriverSQLite   = "sqlite"
	DBDriverPostgres = "postgres"
)

const (
	EnvAppEnv          = "STOREFRONT_APP_ENV"
	EnvPort            = "STOREFRONT_APP_PORT"
	EnvLogLevel        = "STOREFRONT_LOG_LEVEL"
	EnvStorageDriver   = "STOREFRONT_STORAGE_DRIVER"
	EnvStorageNS       = "STOREFRONT_STORAGE_NAMESPACE"
	EnvSeedOnStart     = "STOREFRONT_SEED_ON_START"
	EnvDBDriver        = "STOREFRONT_DB_DRIVER"
	EnvDBDSN           = "STOREFRONT_DB_DSN"
	EnvDBAutoMigrate   = "STOREFRONT_DB_AUTO_MIGRATE"
	EnvRedisURL        = "STOREFRONT_REDIS_URL"
	EnvRedisAddr       = "STOREFRONT_REDIS_ADDR"
	EnvMongoURI        = "STOREFRONT_MONGO_URI"
	EnvMongoDatabase   = "STOREFRONT_MONGO_DATABASE"
	EnvEventsSSEBuffer = "STOREFRONT_EVENTS_SSE_BUFFER"
)

type Config struct {
	App     AppConfig
	Storage StorageConfig
	DB      DBConfig
	Redis   RedisConfig
	Mongo   MongoConfig
	Events  EventsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"STOREFRONT_APP_ENV" default:"dev"`
	Port         string `envconfig:"STOREFRONT_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"STOREFRONT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STOREFRONT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

// StorageConfig selects the key-value backend that holds the three collections.
type StorageConfig struct {
	Driver      string `envconfig:"STOREFRONT_STORAGE_DRIVER" default:"memory"`
	Namespace   string `envconfig:"STOREFRONT_STORAGE_NAMESPACE" default:"machzaulmart"`
	SeedOnStart bool   `envconfig:"STOREFRONT_SEED_ON_START" default:"true"`
}

type DBConfig struct {
	Driver      string `envconfig:"STOREFRONT_DB_DRIVER" default:"sqlite"`
	DSN         string `envconfig:"STOREFRONT_DB_DSN" default:"storefront.db"`
	AutoMigrate bool   `envconfig:"STOREFRONT_DB_AUTO_MIGRATE" default:"true"`

	MaxOpenConns    int           `envconfig:"STOREFRONT_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"STOREFRONT_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"STOREFRONT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STOREFRONT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, DBDriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"STOREFRONT_REDIS_URL"`
	Address      string        `envconfig:"STOREFRONT_REDIS_ADDR"`
	Password     string        `envconfig:"STOREFRONT_REDIS_PASSWORD"`
	DB           int           `envconfig:"STOREFRONT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STOREFRONT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STOREFRONT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STOREFRONT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// MongoConfig points the mongo storage driver at a database; each
// collection key becomes one document in Collection.
type MongoConfig struct {
	URI        string        `envconfig:"STOREFRONT_MONGO_URI" default:"mongodb://localhost:27017"`
	Database   string        `envconfig:"STOREFRONT_MONGO_DATABASE" default:"storefront"`
	Collection string        `envconfig:"STOREFRONT_MONGO_COLLECTION" default:"kv_entries"`
	Timeout    time.Duration `envconfig:"STOREFRONT_MONGO_TIMEOUT" default:"10s"`
}

// EventsConfig tunes the server-sent events stream.
type EventsConfig struct {
	SSEBuffer    int           `envconfig:"STOREFRONT_EVENTS_SSE_BUFFER" default:"16"`
	SSEHeartbeat time.Duration `envconfig:"STOREFRONT_EVENTS_SSE_HEARTBEAT" default:"15s"`
}

func (c *Config) validate() error {
	driver := strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	switch driver {
	case StorageDriverMemory, StorageDriverSQL:
	case StorageDriverRedis:
		if c.Redis.URL == "" && c.Redis.Address == "" {
			return fmt.Errorf("either %s or %s is required for the redis storage driver", EnvRedisURL, EnvRedisAddr)
		}
	case StorageDriverMongo:
		if c.Mongo.URI == "" || c.Mongo.Database == "" {
			return fmt.Errorf("%s and %s are required for the mongo storage driver", EnvMongoURI, EnvMongoDatabase)
		}
	default:
		return fmt.Errorf("unsupported %s %q", EnvStorageDriver, c.Storage.Driver)
	}
	c.Storage.Driver = driver

	if driver == StorageDriverSQL {
		switch strings.ToLower(c.DB.Driver) {
		case DBDriverSQLite, DBDriverPostgres:
		default:
			return fmt.Errorf("unsupported %s %q", EnvDBDriver, c.DB.Driver)
		}
		if c.DB.DSN == "" {
			return fmt.Errorf("%s is required for the sql storage driver", EnvDBDSN)
		}
	}

	if strings.TrimSpace(c.Storage.Namespace) == "" {
		return fmt.Errorf("%s must not be blank", EnvStorageNS)
	}
	if c.Events.SSEBuffer <= 0 {
		return fmt.Errorf("%s must be positive", EnvEventsSSEBuffer)
	}
	return nil
}
