package config

// EnvPrefix is empty because every field carries its fully qualified env name.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv                = "STOREFRONT_APP_ENV"
	EnvPort                  = "STOREFRONT_APP_PORT"
	EnvLogLevel              = "STOREFRONT_LOG_LEVEL"
	EnvResetSchemaOnStart    = "STOREFRONT_RESET_SCHEMA_ON_START"
	EnvAllowDestructiveReset = "STOREFRONT_ALLOW_DESTRUCTIVE_RESET"
	EnvCORSOrigins           = "STOREFRONT_CORS_ORIGINS"

	EnvDBDSN    = "STOREFRONT_DB_DSN"
	EnvDBDriver = "STOREFRONT_DB_DRIVER"
	EnvDBHost   = "STOREFRONT_DB_HOST"
	EnvDBUser   = "STOREFRONT_DB_USER"
	EnvDBName   = "STOREFRONT_DB_NAME"

	EnvRedisURL = "STOREFRONT_REDIS_URL"

	EnvJWTSecret    = "STOREFRONT_JWT_SECRET"
	EnvJWTIssuer    = "STOREFRONT_JWT_ISSUER"
	EnvJWTAlgorithm = "STOREFRONT_JWT_ALGORITHM"
	EnvJWTExpMins   = "STOREFRONT_JWT_EXPIRATION_MINUTES"

	EnvPasswordAlgorithm = "STOREFRONT_PASSWORD_ALGORITHM"

	EnvOrdersPricingMode = "STOREFRONT_ORDERS_PRICING_MODE"

	EnvUseSQLite = "STOREFRONT_USE_SQLITE"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

// placeholderSecrets are rejected as JWT secrets in production.
var placeholderSecrets = []string{
	"secret",
	"secret_key",
	"secret-key",
	"changeme",
	"change-me",
	"change_me",
	"placeholder",
	"jwt-secret",
	"your-secret-key",
}

const minProdSecretLen = 32
