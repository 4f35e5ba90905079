package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	Session       SessionConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	GCP           GCPConfig
	GCS           GCSConfig
	Sendgrid      SendgridConfig
	Cron          CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SHOPSPHERE_APP_ENV" required:"true"`
	Port         string `envconfig:"SHOPSPHERE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SHOPSPHERE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SHOPSPHERE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"SHOPSPHERE_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"SHOPSPHERE_DB_DSN"`
	Driver string `envconfig:"SHOPSPHERE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SHOPSPHERE_DB_HOST"`
	LegacyPort     int    `envconfig:"SHOPSPHERE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SHOPSPHERE_DB_USER"`
	LegacyPassword string `envconfig:"SHOPSPHERE_DB_PASSWORD"`
	LegacyName     string `envconfig:"SHOPSPHERE_DB_NAME"`
	LegacySSLMode  string `envconfig:"SHOPSPHERE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SHOPSPHERE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SHOPSPHERE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SHOPSPHERE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SHOPSPHERE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SHOPSPHERE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SHOPSPHERE_REDIS_ADDR"`
	Password     string        `envconfig:"SHOPSPHERE_REDIS_PASSWORD"`
	DB           int           `envconfig:"SHOPSPHERE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SHOPSPHERE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SHOPSPHERE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SHOPSPHERE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SHOPSPHERE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SHOPSPHERE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type SessionConfig struct {
	TTLHours   int    `envconfig:"SHOPSPHERE_SESSION_TTL_HOURS" default:"24"`
	CookieName string `envconfig:"SHOPSPHERE_SESSION_COOKIE_NAME" default:"ss_session"`
}

// TTL returns the session lifetime configured in hours.
func (s SessionConfig) TTL() time.Duration {
	if s.TTLHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(s.TTLHours) * time.Hour
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"SHOPSPHERE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"SHOPSPHERE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"SHOPSPHERE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"SHOPSPHERE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"SHOPSPHERE_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"SHOPSPHERE_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"SHOPSPHERE_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"SHOPSPHERE_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"SHOPSPHERE_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"SHOPSPHERE_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"SHOPSPHERE_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"SHOPSPHERE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"SHOPSPHERE_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID       string `envconfig:"SHOPSPHERE_GCP_PROJECT_ID"`
	CredentialsJSON string `envconfig:"SHOPSPHERE_GCP_CREDENTIALS_JSON"`
}

type GCSConfig struct {
	BucketName      string        `envconfig:"SHOPSPHERE_GCS_BUCKET_NAME"`
	PublicBaseURL   string        `envconfig:"SHOPSPHERE_GCS_PUBLIC_BASE_URL" default:"https://storage.googleapis.com"`
	UploadURLExpiry time.Duration `envconfig:"SHOPSPHERE_GCS_UPLOAD_URL_EXPIRY" default:"15m"`
	MaxUploadMB     int           `envconfig:"SHOPSPHERE_GCS_MAX_UPLOAD_MB" default:"10"`
}

type SendgridConfig struct {
	APIKey      string `envconfig:"SHOPSPHERE_SENDGRID_API_KEY"`
	DefaultFrom string `envconfig:"SHOPSPHERE_SENDGRID_FROM_EMAIL"`
}

type CronConfig struct {
	OTPCleanupInterval    time.Duration `envconfig:"SHOPSPHERE_CRON_OTP_CLEANUP_INTERVAL" default:"1h"`
	CartRetentionInterval time.Duration `envconfig:"SHOPSPHERE_CRON_CART_RETENTION_INTERVAL" default:"24h"`
	CartRetentionDays     int           `envconfig:"SHOPSPHERE_CRON_CART_RETENTION_DAYS" default:"90"`
	LockTTL               time.Duration `envconfig:"SHOPSPHERE_CRON_LOCK_TTL" default:"5m"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
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
