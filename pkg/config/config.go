package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "BUYBOT"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv = "BUYBOT_APP_ENV"
	EnvDBDSN  = "BUYBOT_DB_DSN"
	EnvDBHost = "BUYBOT_DB_HOST"
	EnvDBUser = "BUYBOT_DB_USER"
	EnvDBName = "BUYBOT_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Mattermost   MattermostConfig
	Bot          BotConfig
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
	cfg.Mattermost.normalize()
	cfg.Bot.normalize()
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"BUYBOT_APP_ENV" required:"true"`
	Port         string `envconfig:"BUYBOT_APP_PORT" default:"8585"`
	LogLevel     string `envconfig:"BUYBOT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"BUYBOT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"BUYBOT_DB_DSN"`
	Driver string `envconfig:"BUYBOT_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"BUYBOT_DB_HOST"`
	LegacyPort     int    `envconfig:"BUYBOT_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"BUYBOT_DB_USER"`
	LegacyPassword string `envconfig:"BUYBOT_DB_PASSWORD"`
	LegacyName     string `envconfig:"BUYBOT_DB_NAME"`
	LegacySSLMode  string `envconfig:"BUYBOT_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"BUYBOT_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"BUYBOT_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"BUYBOT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"BUYBOT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// MattermostConfig carries the credentials for the outbound Mattermost REST API.
type MattermostConfig struct {
	URL       string        `envconfig:"BUYBOT_MATTERMOST_URL" required:"true"`
	Token     string        `envconfig:"BUYBOT_MATTERMOST_TOKEN" required:"true"`
	BotUserID string        `envconfig:"BUYBOT_MATTERMOST_BOT_USER_ID" required:"true"`
	Timeout   time.Duration `envconfig:"BUYBOT_MATTERMOST_TIMEOUT" default:"10s"`
}

func (m *MattermostConfig) normalize() {
	m.URL = strings.TrimSuffix(strings.TrimSpace(m.URL), "/")
}

// BotConfig holds this service's externally reachable base URL. Every callback
// URL embedded in outbound buttons and dialogs is built from it.
type BotConfig struct {
	BaseURL string `envconfig:"BUYBOT_BASE_URL" required:"true"`
}

func (b *BotConfig) normalize() {
	b.BaseURL = strings.TrimSuffix(strings.TrimSpace(b.BaseURL), "/")
}

// CallbackURL joins the bot base URL with an endpoint path.
func (b BotConfig) CallbackURL(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return b.BaseURL + path
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"BUYBOT_AUTO_MIGRATE" default:"false"`
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
