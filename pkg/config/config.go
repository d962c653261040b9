package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Store        StoreConfig
	DB           DBConfig
	Redis        RedisConfig
	Bundle       BundleConfig
	Link         LinkConfig
	CORS         CORSConfig
	FeatureFlags FeatureFlagsConfig
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
	Env          string `envconfig:"FIGORDERS_APP_ENV" default:"dev"`
	Port         string `envconfig:"FIGORDERS_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"FIGORDERS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"FIGORDERS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// StoreConfig selects the durable slot backend and names the slots.
type StoreConfig struct {
	Backend      string `envconfig:"FIGORDERS_STORE_BACKEND" default:"sqlite"`
	OrdersKey    string `envconfig:"FIGORDERS_STORE_ORDERS_KEY" default:"figPreordersV3_Orders"`
	VarietiesKey string `envconfig:"FIGORDERS_STORE_VARIETIES_KEY" default:"figVarietiesV3"`
	QuotaBytes   int    `envconfig:"FIGORDERS_STORE_QUOTA_BYTES" default:"5242880"`
}

// NormalizedBackend returns the lower-cased backend name.
func (s StoreConfig) NormalizedBackend() string {
	return strings.ToLower(strings.TrimSpace(s.Backend))
}

// UsesSQL reports whether the slots live in a GORM-managed database.
func (s StoreConfig) UsesSQL() bool {
	switch s.NormalizedBackend() {
	case StoreBackendSQLite, StoreBackendPostgres:
		return true
	}
	return false
}

type DBConfig struct {
	DSN string `envconfig:"FIGORDERS_DB_DSN" default:"figorders.db"`

	MaxOpenConns    int           `envconfig:"FIGORDERS_DB_MAX_OPEN_CONNS" default:"4"`
	MaxIdleConns    int           `envconfig:"FIGORDERS_DB_MAX_IDLE_CONNS" default:"2"`
	ConnMaxLifetime time.Duration `envconfig:"FIGORDERS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FIGORDERS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"FIGORDERS_REDIS_URL"`
	Address      string        `envconfig:"FIGORDERS_REDIS_ADDR"`
	Password     string        `envconfig:"FIGORDERS_REDIS_PASSWORD"`
	DB           int           `envconfig:"FIGORDERS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"FIGORDERS_REDIS_POOL_SIZE" default:"4"`
	MinIdleConns int           `envconfig:"FIGORDERS_REDIS_MIN_IDLE_CONNS" default:"1"`
	DialTimeout  time.Duration `envconfig:"FIGORDERS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FIGORDERS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"FIGORDERS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Configured reports whether any redis endpoint was supplied.
func (r RedisConfig) Configured() bool {
	return r.URL != "" || r.Address != ""
}

// BundleConfig locates the read-only default orders.json / varieties.json.
type BundleConfig struct {
	Dir     string        `envconfig:"FIGORDERS_BUNDLE_DIR" default:"public"`
	URL     string        `envconfig:"FIGORDERS_BUNDLE_URL"`
	Timeout time.Duration `envconfig:"FIGORDERS_BUNDLE_TIMEOUT" default:"5s"`
}

type LinkConfig struct {
	Enabled bool   `envconfig:"FIGORDERS_LINK_ENABLED" default:"true"`
	Root    string `envconfig:"FIGORDERS_LINK_ROOT" default:"."`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"FIGORDERS_CORS_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"FIGORDERS_AUTO_MIGRATE" default:"true"`
}

func (c *Config) validate() error {
	switch c.Store.NormalizedBackend() {
	case StoreBackendSQLite, StoreBackendPostgres, StoreBackendMemory:
	case StoreBackendRedis:
		if !c.Redis.Configured() {
			return fmt.Errorf("%s=redis requires %s or %s", EnvStoreBackend, EnvRedisURL, EnvRedisAddr)
		}
	default:
		return fmt.Errorf("unsupported %s %q", EnvStoreBackend, c.Store.Backend)
	}
	if c.Store.UsesSQL() && strings.TrimSpace(c.DB.DSN) == "" {
		return fmt.Errorf("%s is required for the %s backend", EnvDBDSN, c.Store.NormalizedBackend())
	}
	if c.Store.OrdersKey == c.Store.VarietiesKey {
		return fmt.Errorf("%s and %s must differ", EnvStoreOrdersKey, EnvStoreVarietiesKey)
	}
	if c.Store.QuotaBytes < 0 {
		return fmt.Errorf("%s must not be negative", EnvStoreQuotaBytes)
	}
	return nil
}
