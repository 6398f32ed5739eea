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
	Firebase     FirebaseConfig
	CORS         CORSConfig
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

type AppConfig struct {
	Env          string `envconfig:"GUVVY_APP_ENV" required:"true"`
	Port         string `envconfig:"GUVVY_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"GUVVY_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"GUVVY_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"GUVVY_DB_DSN"`
	Driver string `envconfig:"GUVVY_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"GUVVY_DB_HOST"`
	Port     int    `envconfig:"GUVVY_DB_PORT" default:"5432"`
	User     string `envconfig:"GUVVY_DB_USER"`
	Password string `envconfig:"GUVVY_DB_PASSWORD"`
	Name     string `envconfig:"GUVVY_DB_NAME"`
	SSLMode  string `envconfig:"GUVVY_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"GUVVY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"GUVVY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"GUVVY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"GUVVY_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// FirebaseConfig locates the service-account credentials used to verify ID tokens.
type FirebaseConfig struct {
	CredentialsFile string `envconfig:"GUVVY_FIREBASE_CREDENTIALS_FILE" required:"true"`
	ProjectID       string `envconfig:"GUVVY_FIREBASE_PROJECT_ID"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"GUVVY_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"GUVVY_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range requiredDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
