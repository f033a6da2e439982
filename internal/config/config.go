package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix     = "DEVDIR_"
	configFileEnv = "DEVDIR_CONFIG"
)

var (
	// ErrInvalidConfig is returned when a loaded value fails validation.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrLoadConfig is returned when a config source cannot be read.
	ErrLoadConfig = errors.New("load config failed")
)

// Config holds application level configuration.
type Config struct {
	ServerPort  string `koanf:"server_port"`
	DBDriver    string `koanf:"db_driver"`
	DBDSN       string `koanf:"db_dsn"`
	ResetDB     bool   `koanf:"reset_db"`
	RedisAddr   string `koanf:"redis_addr"`
	RedisDB     int    `koanf:"redis_db"`
	RedisPass   string `koanf:"redis_password"`
	JWTSecret   string `koanf:"jwt_secret"`
	SwaggerHost string `koanf:"swagger_host"`

	LogLevel  string `koanf:"log_level"`
	LogFormat string `koanf:"log_format"`

	// DailyContactLimit is the number of distinct developers a company may contact per UTC day.
	DailyContactLimit int `koanf:"daily_contact_limit"`
	// LedgerTimeout bounds every contact ledger round trip.
	LedgerTimeout time.Duration `koanf:"ledger_timeout"`
	// QuotaStrict serializes a viewer's contact attempts so the daily limit is exact.
	QuotaStrict bool `koanf:"quota_strict"`

	DeveloperCacheTTL time.Duration `koanf:"developer_cache_ttl"`

	// AuthRateLimit is requests per second per client IP on /api/auth.
	AuthRateLimit float64 `koanf:"auth_rate_limit"`
	AuthRateBurst int     `koanf:"auth_rate_burst"`
}

// Default returns the configuration used when nothing else is provided.
func Default() *Config {
	return &Config{
		ServerPort:        "8080",
		DBDriver:          "mysql",
		DBDSN:             "user:password@tcp(localhost:3306)/devdir?charset=utf8mb4&parseTime=True&loc=UTC",
		RedisAddr:         "localhost:6379",
		JWTSecret:         "change-me",
		LogLevel:          "info",
		LogFormat:         "json",
		DailyContactLimit: 10,
		LedgerTimeout:     3 * time.Second,
		QuotaStrict:       true,
		DeveloperCacheTTL: 5 * time.Minute,
		AuthRateLimit:     5,
		AuthRateBurst:     10,
	}
}

// Load builds a Config by layering defaults, an optional YAML file named by
// DEVDIR_CONFIG, and DEVDIR_* environment variables, in that order.
func Load() (*Config, error) {
	k := koanf.New(".")

	if path := os.Getenv(configFileEnv); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLoadConfig, path, err)
		}
	}

	// DEVDIR_DAILY_CONTACT_LIMIT -> daily_contact_limit
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %v", ErrLoadConfig, err)
	}

	cfg := *Default()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks invariants the rest of the process relies on.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("%w: unsupported db_driver %q", ErrInvalidConfig, c.DBDriver)
	}
	if c.DBDSN == "" {
		return fmt.Errorf("%w: db_dsn must not be empty", ErrInvalidConfig)
	}
	if c.ServerPort == "" {
		return fmt.Errorf("%w: server_port must not be empty", ErrInvalidConfig)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("%w: jwt_secret must not be empty", ErrInvalidConfig)
	}
	if c.DailyContactLimit <= 0 {
		return fmt.Errorf("%w: daily_contact_limit must be positive", ErrInvalidConfig)
	}
	if c.LedgerTimeout <= 0 {
		return fmt.Errorf("%w: ledger_timeout must be positive", ErrInvalidConfig)
	}
	if c.AuthRateLimit <= 0 || c.AuthRateBurst <= 0 {
		return fmt.Errorf("%w: auth_rate_limit and auth_rate_burst must be positive", ErrInvalidConfig)
	}
	return nil
}
