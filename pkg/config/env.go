package config

const EnvPrefix = "FIGORDERS"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	StoreBackendSQLite   = "sqlite"
	StoreBackendPostgres = "postgres"
	StoreBackendRedis    = "redis"
	StoreBackendMemory   = "memory"
)

const (
	EnvAppEnv            = "FIGORDERS_APP_ENV"
	EnvPort              = "FIGORDERS_APP_PORT"
	EnvLogLevel          = "FIGORDERS_LOG_LEVEL"
	EnvStoreBackend      = "FIGORDERS_STORE_BACKEND"
	EnvStoreOrdersKey    = "FIGORDERS_STORE_ORDERS_KEY"
	EnvStoreVarietiesKey = "FIGORDERS_STORE_VARIETIES_KEY"
	EnvStoreQuotaBytes   = "FIGORDERS_STORE_QUOTA_BYTES"
	EnvDBDSN             = "FIGORDERS_DB_DSN"
	EnvRedisURL          = "FIGORDERS_REDIS_URL"
	EnvRedisAddr         = "FIGORDERS_REDIS_ADDR"
	EnvBundleDir         = "FIGORDERS_BUNDLE_DIR"
	EnvBundleURL         = "FIGORDERS_BUNDLE_URL"
	EnvLinkEnabled       = "FIGORDERS_LINK_ENABLED"
	EnvLinkRoot          = "FIGORDERS_LINK_ROOT"
	EnvCORSOrigins       = "FIGORDERS_CORS_ORIGINS"
)
