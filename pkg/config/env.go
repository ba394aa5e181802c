package config

// EnvPrefix is handed to envconfig; every field carries its full variable name.
const EnvPrefix = "FINPILOT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv      = "FINPILOT_APP_ENV"
	EnvPort        = "FINPILOT_APP_PORT"
	EnvDBDSN       = "FINPILOT_DB_DSN"
	EnvDBHost      = "FINPILOT_DB_HOST"
	EnvDBUser      = "FINPILOT_DB_USER"
	EnvDBName      = "FINPILOT_DB_NAME"
	EnvRedisURL    = "FINPILOT_REDIS_URL"
	EnvJWTSecret   = "FINPILOT_JWT_SECRET"
	EnvJWTIssuer   = "FINPILOT_JWT_ISSUER"
	EnvJWTExpMins  = "FINPILOT_JWT_EXPIRATION_MINUTES"
	EnvAwardLimit  = "FINPILOT_RATE_LIMIT_AWARD_LIMIT"
	EnvClientURL   = "FINPILOT_CLIENT_BASE_URL"
	EnvClientToken = "FINPILOT_CLIENT_ACCESS_TOKEN"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
