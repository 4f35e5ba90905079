package config

const (
	EnvPrefix = "SHOPSPHERE"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv = "SHOPSPHERE_APP_ENV"
	EnvDBDSN  = "SHOPSPHERE_DB_DSN"
	EnvDBHost = "SHOPSPHERE_DB_HOST"
	EnvDBUser = "SHOPSPHERE_DB_USER"
	EnvDBName = "SHOPSPHERE_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
