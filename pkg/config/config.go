package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	RateLimit    RateLimitConfig
	Points       PointsConfig
	Client       ClientConfig
	FeatureFlags FeatureFlagsConfig
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

// LoadClient reads only the settings the terminal client needs.
func LoadClient() (*ClientConfig, error) {
	var cfg ClientConfig
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing client config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string   `envconfig:"FINPILOT_APP_ENV" required:"true"`
	Port         string   `envconfig:"FINPILOT_APP_PORT" required:"true"`
	LogLevel     string   `envconfig:"FINPILOT_LOG_LEVEL" default:"info"`
	LogFormat    string   `envconfig:"FINPILOT_LOG_FORMAT" default:"json"`
	LogWarnStack bool     `envconfig:"FINPILOT_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"FINPILOT_CORS_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"FINPILOT_DB_DSN"`
	Driver string `envconfig:"FINPILOT_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"FINPILOT_DB_HOST"`
	LegacyPort     int    `envconfig:"FINPILOT_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"FINPILOT_DB_USER"`
	LegacyPassword string `envconfig:"FINPILOT_DB_PASSWORD"`
	LegacyName     string `envconfig:"FINPILOT_DB_NAME"`
	LegacySSLMode  string `envconfig:"FINPILOT_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"FINPILOT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"FINPILOT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"FINPILOT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FINPILOT_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	SlowQueryThreshold time.Duration `envconfig:"FINPILOT_DB_SLOW_QUERY_THRESHOLD" default:"200ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"FINPILOT_REDIS_URL" required:"true"`
	Address      string        `envconfig:"FINPILOT_REDIS_ADDR"`
	Password     string        `envconfig:"FINPILOT_REDIS_PASSWORD"`
	DB           int           `envconfig:"FINPILOT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"FINPILOT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"FINPILOT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"FINPILOT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FINPILOT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"FINPILOT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// JWTConfig describes the access tokens issued by the hosted auth provider.
type JWTConfig struct {
	Secret            string `envconfig:"FINPILOT_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"FINPILOT_JWT_ISSUER" required:"true"`
	Audience          string `envconfig:"FINPILOT_JWT_AUDIENCE" default:"authenticated"`
	ExpirationMinutes int    `envconfig:"FINPILOT_JWT_EXPIRATION_MINUTES" default:"60"`
}

// AccessTTL returns the access token lifetime; revocations only need to outlive it.
func (j JWTConfig) AccessTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type RateLimitConfig struct {
	PerSecond   int           `envconfig:"FINPILOT_RATE_LIMIT_PER_SECOND" default:"20"`
	Burst       int           `envconfig:"FINPILOT_RATE_LIMIT_BURST" default:"40"`
	AwardWindow time.Duration `envconfig:"FINPILOT_RATE_LIMIT_AWARD_WINDOW" default:"1m"`
	AwardLimit  int           `envconfig:"FINPILOT_RATE_LIMIT_AWARD_LIMIT" default:"30"`
}

type PointsConfig struct {
	ReadTimeout  time.Duration `envconfig:"FINPILOT_POINTS_READ_TIMEOUT" default:"5s"`
	AwardTimeout time.Duration `envconfig:"FINPILOT_POINTS_AWARD_TIMEOUT" default:"5s"`
}

// ClientConfig configures cmd/pilot.
type ClientConfig struct {
	BaseURL     string        `envconfig:"FINPILOT_CLIENT_BASE_URL" default:"http://localhost:8080"`
	AccessToken string        `envconfig:"FINPILOT_CLIENT_ACCESS_TOKEN"`
	Timeout     time.Duration `envconfig:"FINPILOT_CLIENT_TIMEOUT" default:"10s"`
	RatePerSec  float64       `envconfig:"FINPILOT_CLIENT_RATE_PER_SECOND" default:"5"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"FINPILOT_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"FINPILOT_AUTO_MIGRATE" default:"false"`
	Metrics     bool `envconfig:"FINPILOT_METRICS_ENABLED" default:"true"`
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
