package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"chatdesk/api/apperrors"
)

// Config holds all environment backed configuration for the API.
type Config struct {
	// HTTP server
	Port    string `env:"PORT" envDefault:"8080"`
	GinMode string `env:"GIN_MODE" envDefault:"debug"`

	// PostgreSQL
	DatabaseURL string `env:"DATABASE_URL,notEmpty"`
	AutoMigrate bool   `env:"AUTO_MIGRATE" envDefault:"true"`

	// ClickHouse event analytics. CLICKHOUSE_HOST enables it; the other
	// CLICKHOUSE_* settings without a host are rejected.
	ClickHouseHost       string `env:"CLICKHOUSE_HOST"`
	ClickHouseNativePort int    `env:"CLICKHOUSE_NATIVE_PORT" envDefault:"9000"`
	ClickHouseDBName     string `env:"CLICKHOUSE_DB_NAME" envDefault:"default"`
	ClickHouseUsername   string `env:"CLICKHOUSE_USERNAME"`
	ClickHousePassword   string `env:"CLICKHOUSE_PASSWORD"`

	// Redis relays session events between instances when set.
	RedisURL string `env:"REDIS_URL"`

	// Model gateway
	ModelGatewayURL    string        `env:"MODEL_GATEWAY_URL" envDefault:"https://ai.gateway.lovable.dev/v1"`
	ModelGatewayAPIKey string        `env:"MODEL_GATEWAY_API_KEY,notEmpty"`
	ChatModel          string        `env:"CHAT_MODEL" envDefault:"google/gemini-2.5-flash"`
	GatewayTimeout     time.Duration `env:"GATEWAY_TIMEOUT" envDefault:"60s"`

	// Owner auth
	JWTSecret string        `env:"JWT_SECRET_KEY,notEmpty"`
	JWTTTL    time.Duration `env:"JWT_TTL" envDefault:"1h"`

	// Public URLs
	FrontendOrigin  string `env:"FE_ORIGIN" envDefault:"http://localhost:3000"`
	PublicBaseURL   string `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:3000"`
	WidgetScriptURL string `env:"WIDGET_SCRIPT_URL" envDefault:"http://localhost:3000/widget.js"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"console"`
}

// Load reads an optional .env file and parses the environment into Config.
// Missing required credentials surface as a configuration error.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("No .env file loaded")
	}
	return Parse()
}

// Parse reads Config from the process environment only.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, apperrors.Wrap(apperrors.KindConfiguration, err, "missing or invalid configuration")
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	cfg.PublicBaseURL = strings.TrimRight(cfg.PublicBaseURL, "/")

	if cfg.JWTTTL <= 0 {
		return nil, apperrors.New(apperrors.KindConfiguration, fmt.Sprintf("invalid JWT_TTL: %s", cfg.JWTTTL))
	}
	if cfg.ClickHouseHost == "" {
		if name := firstSet(clickHouseSettings...); name != "" {
			return nil, apperrors.New(apperrors.KindConfiguration, name+" is set but CLICKHOUSE_HOST is empty")
		}
	}

	return cfg, nil
}

var clickHouseSettings = []string{
	"CLICKHOUSE_NATIVE_PORT",
	"CLICKHOUSE_DB_NAME",
	"CLICKHOUSE_USERNAME",
	"CLICKHOUSE_PASSWORD",
}

func firstSet(names ...string) string {
	for _, name := range names {
		if v, ok := os.LookupEnv(name); ok && v != "" {
			return name
		}
	}
	return ""
}

// ClickHouseEnabled reports whether event analytics should be connected.
func (c *Config) ClickHouseEnabled() bool {
	return c.ClickHouseHost != ""
}

// MigrateConfig is the subset needed by the migrate command, so schema
// changes do not require gateway or auth credentials.
type MigrateConfig struct {
	DatabaseURL string `env:"DATABASE_URL,notEmpty"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"LOG_FORMAT" envDefault:"console"`
}

func LoadMigrate() (*MigrateConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("No .env file loaded")
	}
	cfg := &MigrateConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, apperrors.Wrap(apperrors.KindConfiguration, err, "missing or invalid configuration")
	}
	return cfg, nil
}
