// Package config loads application settings from the environment.
//
// Variables use the ANIME_ prefix and a double underscore as the nesting
// delimiter, so ANIME_DATABASE__SSL_MODE maps to Config.Database.SSLMode.
// A .env file in the working directory is loaded automatically.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

const (
	EnvPrefix   = "ANIME_"
	ServiceName = "anime-api"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Database      DatabaseConfig       `koanf:"database" validate:"required"`
	Auth          AuthConfig           `koanf:"auth"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// ServerConfig timeouts are in seconds.
type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"min=0"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"min=0"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"min=0"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`

	// RateLimit is the sustained requests per second allowed per client IP.
	// Zero disables rate limiting.
	RateLimit      float64 `koanf:"rate_limit" validate:"min=0"`
	RateLimitBurst int     `koanf:"rate_limit_burst" validate:"min=0"`
}

// DatabaseConfig selects the storage driver. Postgres needs the connection
// fields; sqlite only needs Path (":memory:" is allowed).
type DatabaseConfig struct {
	Driver          string `koanf:"driver" validate:"required,oneof=postgres sqlite"`
	Host            string `koanf:"host" validate:"required_if=Driver postgres"`
	Port            int    `koanf:"port" validate:"required_if=Driver postgres"`
	User            string `koanf:"user" validate:"required_if=Driver postgres"`
	Password        string `koanf:"password"`
	Name            string `koanf:"name" validate:"required_if=Driver postgres"`
	SSLMode         string `koanf:"ssl_mode"`
	Path            string `koanf:"path" validate:"required_if=Driver sqlite"`
	MaxOpenConns    int    `koanf:"max_open_conns" validate:"min=0"`
	MaxIdleConns    int    `koanf:"max_idle_conns" validate:"min=0"`
	ConnMaxLifetime int    `koanf:"conn_max_lifetime" validate:"min=0"`
	ConnMaxIdleTime int    `koanf:"conn_max_idle_time" validate:"min=0"`

	// AutoMigrate runs pending migrations when the server starts.
	AutoMigrate bool `koanf:"auto_migrate"`
}

type AuthConfig struct {
	Realm      string `koanf:"realm"`
	BcryptCost int    `koanf:"bcrypt_cost" validate:"omitempty,min=4,max=31"`
}

// Load reads configuration from the process environment.
func Load() (*Config, error) {
	return LoadWithPrefix(EnvPrefix)
}

// LoadWithPrefix is Load with a custom variable prefix.
func LoadWithPrefix(prefix string) (*Config, error) {
	k := koanf.New(".")

	err := k.Load(env.Provider(prefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, prefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("could not load env variables: %w", err)
	}

	mainConfig := &Config{}
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("could not unmarshal config: %w", err)
	}

	// Comma separated lists arrive as a single string.
	if raw := k.String("server.cors_allowed_origins"); raw != "" {
		mainConfig.Server.CORSAllowedOrigins = splitList(raw)
	}

	if err := mainConfig.Finalize(); err != nil {
		return nil, err
	}

	return mainConfig, nil
}

// Finalize applies defaults and validates the config. It is called by Load
// and by callers that build a Config by hand.
func (c *Config) Finalize() error {
	c.applyDefaults()

	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if c.Observability == nil {
		c.Observability = DefaultObservabilityConfig()
	}
	c.Observability.ServiceName = ServiceName
	c.Observability.Environment = c.Primary.Env

	if err := c.Observability.Validate(); err != nil {
		return fmt.Errorf("invalid observability config: %w", err)
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.Primary.Env == "" {
		c.Primary.Env = "local"
	}
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 30
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60
	}
	if len(c.Server.CORSAllowedOrigins) == 0 {
		c.Server.CORSAllowedOrigins = []string{"*"}
	}
	if c.Server.RateLimit > 0 && c.Server.RateLimitBurst == 0 {
		c.Server.RateLimitBurst = int(c.Server.RateLimit) * 2
	}

	if c.Database.Driver == "" {
		c.Database.Driver = DriverPostgres
	}
	if c.Database.Driver == DriverPostgres {
		if c.Database.Port == 0 {
			c.Database.Port = 5432
		}
		if c.Database.SSLMode == "" {
			c.Database.SSLMode = "disable"
		}
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 25
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Database.ConnMaxLifetime == 0 {
		c.Database.ConnMaxLifetime = 300
	}
	if c.Database.ConnMaxIdleTime == 0 {
		c.Database.ConnMaxIdleTime = 60
	}

	if c.Auth.Realm == "" {
		c.Auth.Realm = "anime-api"
	}
	if c.Auth.BcryptCost == 0 {
		c.Auth.BcryptCost = 10
	}
}

// IsLocal reports whether the app runs on a developer machine.
func (c *Config) IsLocal() bool {
	return c.Primary.Env == "local"
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Getenv is os.Getenv with a fallback.
func Getenv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
