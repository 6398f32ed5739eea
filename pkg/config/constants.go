package config

const EnvPrefix = "GUVVY"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv        = "GUVVY_APP_ENV"
	EnvPort          = "GUVVY_APP_PORT"
	EnvDBDSN         = "GUVVY_DB_DSN"
	EnvDBHost        = "GUVVY_DB_HOST"
	EnvDBUser        = "GUVVY_DB_USER"
	EnvDBName        = "GUVVY_DB_NAME"
	EnvFirebaseCreds = "GUVVY_FIREBASE_CREDENTIALS_FILE"
)

var requiredDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
