package config

// EnvPrefix namespaces every environment variable the app reads.
const EnvPrefix = "AROMABAY"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv                 = "AROMABAY_APP_ENV"
	EnvPort                   = "AROMABAY_APP_PORT"
	EnvDBDSN                  = "AROMABAY_DB_DSN"
	EnvDBHost                 = "AROMABAY_DB_HOST"
	EnvDBUser                 = "AROMABAY_DB_USER"
	EnvDBName                 = "AROMABAY_DB_NAME"
	EnvRedisURL               = "AROMABAY_REDIS_URL"
	EnvJWTSecret              = "AROMABAY_JWT_SECRET"
	EnvJWTIssuer              = "AROMABAY_JWT_ISSUER"
	EnvJWTExpMins             = "AROMABAY_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "AROMABAY_REFRESH_TOKEN_TTL_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
