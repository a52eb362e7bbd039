package config

const (
	EnvPrefix = "ASSETTRACK"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"

	defaultSQLiteDSN = "file:assettrack.db?cache=shared&_foreign_keys=on"
)

const (
	EnvAppEnv   = "ASSETTRACK_APP_ENV"
	EnvPort     = "ASSETTRACK_APP_PORT"
	EnvLogLevel = "ASSETTRACK_LOG_LEVEL"

	EnvDBDSN    = "ASSETTRACK_DB_DSN"
	EnvDBDriver = "ASSETTRACK_DB_DRIVER"
	EnvDBHost   = "ASSETTRACK_DB_HOST"
	EnvDBPort   = "ASSETTRACK_DB_PORT"
	EnvDBUser   = "ASSETTRACK_DB_USER"
	EnvDBPass   = "ASSETTRACK_DB_PASSWORD"
	EnvDBName   = "ASSETTRACK_DB_NAME"

	EnvRedisURL = "ASSETTRACK_REDIS_URL"

	EnvJWTSecret  = "ASSETTRACK_JWT_SECRET"
	EnvJWTIssuer  = "ASSETTRACK_JWT_ISSUER"
	EnvJWTExpMins = "ASSETTRACK_JWT_EXPIRATION_MINUTES"

	EnvUseSQLite = "ASSETTRACK_USE_SQLITE"

	EnvTransferRequiresApproval = "ASSETTRACK_TRANSFER_REQUIRES_APPROVAL"
	EnvUpcomingDays             = "ASSETTRACK_MAINTENANCE_UPCOMING_DAYS"

	EnvPubSubLifecycleTopic = "ASSETTRACK_PUBSUB_LIFECYCLE_TOPIC"
	EnvCORSOrigins          = "ASSETTRACK_CORS_ALLOWED_ORIGINS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
