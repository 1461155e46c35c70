package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	Idempotency   IdempotencyConfig
	Orders        OrdersConfig
	FeatureFlags  FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = DriverSQLite
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations that are unsafe or internally inconsistent.
func (c *Config) Validate() error {
	if err := c.JWT.validate(c.App.IsProd()); err != nil {
		return err
	}
	if _, err := enums.ParsePricingMode(c.Orders.PricingMode); err != nil {
		return fmt.Errorf("%s: %w", EnvOrdersPricingMode, err)
	}
	switch strings.ToLower(c.Password.Algorithm) {
	case PasswordAlgorithmArgon2id, PasswordAlgorithmBcrypt:
	default:
		return fmt.Errorf("%s: unsupported password algorithm %q", EnvPasswordAlgorithm, c.Password.Algorithm)
	}
	if c.App.IsProd() && c.App.ResetSchemaOnStart && !c.App.AllowDestructiveReset {
		return fmt.Errorf("%s is destructive; set %s to run it in production", EnvResetSchemaOnStart, EnvAllowDestructiveReset)
	}
	return nil
}

type AppConfig struct {
	Env                   string   `envconfig:"STOREFRONT_APP_ENV" required:"true"`
	Port                  string   `envconfig:"STOREFRONT_APP_PORT" default:"8000"`
	LogLevel              string   `envconfig:"STOREFRONT_LOG_LEVEL" default:"info"`
	LogWarnStack          bool     `envconfig:"STOREFRONT_LOG_WARN_STACK" default:"false"`
	LogFormat             string   `envconfig:"STOREFRONT_LOG_FORMAT" default:"json"`
	ResetSchemaOnStart    bool     `envconfig:"STOREFRONT_RESET_SCHEMA_ON_START" default:"true"`
	AllowDestructiveReset bool     `envconfig:"STOREFRONT_ALLOW_DESTRUCTIVE_RESET" default:"false"`
	CORSOrigins           []string `envconfig:"STOREFRONT_CORS_ORIGINS" default:"http://localhost:3000,http://localhost:8000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd) || strings.EqualFold(a.Env, "production")
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type DBConfig struct {
	DSN    string `envconfig:"STOREFRONT_DB_DSN"`
	Driver string `envconfig:"STOREFRONT_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"STOREFRONT_DB_HOST"`
	LegacyPort     int    `envconfig:"STOREFRONT_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"STOREFRONT_DB_USER"`
	LegacyPassword string `envconfig:"STOREFRONT_DB_PASSWORD"`
	LegacyName     string `envconfig:"STOREFRONT_DB_NAME"`
	LegacySSLMode  string `envconfig:"STOREFRONT_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"STOREFRONT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"STOREFRONT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"STOREFRONT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STOREFRONT_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	// SlowQueryThreshold logs statements slower than this at warn; zero disables.
	SlowQueryThreshold time.Duration `envconfig:"STOREFRONT_DB_SLOW_QUERY_THRESHOLD" default:"200ms"`
}

// IsSQLite reports whether the sqlite driver is selected.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, DriverSQLite)
}

// Redis is optional. Rate limiting and idempotency are disabled without it.
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

// Enabled reports whether a redis endpoint has been configured.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

type JWTConfig struct {
	Secret            string `envconfig:"STOREFRONT_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"STOREFRONT_JWT_ISSUER" default:"storefront"`
	Algorithm         string `envconfig:"STOREFRONT_JWT_ALGORITHM" default:"HS256"`
	ExpirationMinutes int    `envconfig:"STOREFRONT_JWT_EXPIRATION_MINUTES" default:"30"`
}

var allowedJWTAlgorithms = map[string]struct{}{
	"HS256": {},
	"HS384": {},
	"HS512": {},
}

func (j JWTConfig) validate(prod bool) error {
	secret := strings.TrimSpace(j.Secret)
	if secret == "" {
		return fmt.Errorf("%s is required", EnvJWTSecret)
	}
	if _, ok := allowedJWTAlgorithms[strings.ToUpper(j.Algorithm)]; !ok {
		return fmt.Errorf("%s: unsupported algorithm %q", EnvJWTAlgorithm, j.Algorithm)
	}
	if j.ExpirationMinutes <= 0 {
		return fmt.Errorf("%s must be positive", EnvJWTExpMins)
	}
	if !prod {
		return nil
	}
	if IsPlaceholderSecret(secret) {
		return fmt.Errorf("%s is a placeholder value; refusing to start in production", EnvJWTSecret)
	}
	if len(secret) < minProdSecretLen {
		return fmt.Errorf("%s must be at least %d bytes in production", EnvJWTSecret, minProdSecretLen)
	}
	return nil
}

// IsPlaceholderSecret reports whether the secret is a well-known default.
func IsPlaceholderSecret(secret string) bool {
	normalized := strings.ToLower(strings.TrimSpace(secret))
	for _, candidate := range placeholderSecrets {
		if normalized == candidate {
			return true
		}
	}
	return false
}

const (
	PasswordAlgorithmArgon2id = "argon2id"
	PasswordAlgorithmBcrypt   = "bcrypt"
)

type PasswordConfig struct {
	Algorithm        string `envconfig:"STOREFRONT_PASSWORD_ALGORITHM" default:"argon2id"`
	ArgonMemoryKB    int    `envconfig:"STOREFRONT_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int    `envconfig:"STOREFRONT_ARGON_TIME" default:"3"`
	ArgonParallelism int    `envconfig:"STOREFRONT_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int    `envconfig:"STOREFRONT_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int    `envconfig:"STOREFRONT_ARGON_KEY_LEN" default:"32"`
	BcryptCost       int    `envconfig:"STOREFRONT_BCRYPT_COST" default:"12"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"STOREFRONT_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"STOREFRONT_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"STOREFRONT_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"STOREFRONT_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"STOREFRONT_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"STOREFRONT_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type IdempotencyConfig struct {
	TTL time.Duration `envconfig:"STOREFRONT_IDEMPOTENCY_TTL" default:"24h"`
}

type OrdersConfig struct {
	PricingMode         string `envconfig:"STOREFRONT_ORDERS_PRICING_MODE" default:"cart"`
	RecommendationLimit int    `envconfig:"STOREFRONT_RECOMMENDATION_LIMIT" default:"5"`
}

// Mode returns the parsed pricing mode, falling back to cart pricing.
func (o OrdersConfig) Mode() enums.PricingMode {
	mode, err := enums.ParsePricingMode(o.PricingMode)
	if err != nil {
		return enums.PricingModeCart
	}
	return mode
}

type FeatureFlagsConfig struct {
	UseSQLite bool `envconfig:"STOREFRONT_USE_SQLITE" default:"false"`
}

const defaultSQLiteDSN = "file:storefront.db?cache=shared&_foreign_keys=on"

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	if db.IsSQLite() {
		db.DSN = defaultSQLiteDSN
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
