// Package config loads service options from a YAML file, a .env file and
// TODO_ prefixed environment variables, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, TODO_AUTH_JWT_SECRET
// sets auth.jwt_secret
const EnvPrefix = "TODO"

var ErrMissingJWTSecret = errors.New("config: auth.jwt_secret is required")

type Config struct {
	Server   Server   `mapstructure:"server"`
	Database Database `mapstructure:"database"`
	Auth     Auth     `mapstructure:"auth"`
	Logger   Logger   `mapstructure:"logger"`
	Seed     Seed     `mapstructure:"seed"`
}

type Server struct {
	Addr         string        `mapstructure:"addr"`
	Prefix       string        `mapstructure:"prefix"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	BodyLimit    int           `mapstructure:"body_limit"`
}

type Database struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
	Debug  bool   `mapstructure:"debug"`
}

func (d Database) GetDriver() string { return d.Driver }
func (d Database) GetDSN() string    { return d.DSN }
func (d Database) GetDebug() bool    { return d.Debug }

type Auth struct {
	JWTSecret            string `mapstructure:"jwt_secret"`
	Issuer               string `mapstructure:"issuer"`
	TokenExpirationHours int    `mapstructure:"token_expiration_hours"`
	PasswordCost         int    `mapstructure:"password_cost"`
	AuthScheme           string `mapstructure:"auth_scheme"`
	ContextKey           string `mapstructure:"context_key"`
}

func (a Auth) GetSigningKey() string   { return a.JWTSecret }
func (a Auth) GetContextKey() string   { return a.ContextKey }
func (a Auth) GetTokenExpiration() int { return a.TokenExpirationHours }
func (a Auth) GetAuthScheme() string   { return a.AuthScheme }
func (a Auth) GetIssuer() string       { return a.Issuer }
func (a Auth) GetPasswordCost() int    { return a.PasswordCost }

type Logger struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type Seed struct {
	Enabled bool `mapstructure:"enabled"`
}

// Validate checks the options the service can not start without
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return ErrMissingJWTSecret
	}
	if c.Auth.TokenExpirationHours <= 0 {
		return fmt.Errorf("config: auth.token_expiration_hours must be positive, got %d", c.Auth.TokenExpirationHours)
	}
	if c.Database.DSN == "" {
		return errors.New("config: database.dsn is required")
	}
	return nil
}

// Option configures Load
type Option func(*loader)

type loader struct {
	configFile string
	envFile    string
	overrides  map[string]any
}

// WithConfigFile reads path, any format viper understands
func WithConfigFile(path string) Option {
	return func(l *loader) { l.configFile = path }
}

// WithEnvFile loads path into the process environment before binding
func WithEnvFile(path string) Option {
	return func(l *loader) { l.envFile = path }
}

// WithOverride sets key after every other source, used for CLI flags
func WithOverride(key string, value any) Option {
	return func(l *loader) {
		if l.overrides == nil {
			l.overrides = map[string]any{}
		}
		l.overrides[key] = value
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":3000")
	v.SetDefault("server.prefix", "api")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.body_limit", 1024*1024)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "file:todo.db?cache=shared")
	v.SetDefault("database.debug", false)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.issuer", "go-todo-auth")
	v.SetDefault("auth.token_expiration_hours", 24)
	v.SetDefault("auth.password_cost", 0)
	v.SetDefault("auth.auth_scheme", "Bearer")
	v.SetDefault("auth.context_key", "user")

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")

	v.SetDefault("seed.enabled", true)
}

// Load resolves the configuration and validates it
func Load(opts ...Option) (*Config, error) {
	l := &loader{}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}

	if l.envFile != "" {
		if err := godotenv.Load(l.envFile); err != nil {
			return nil, fmt.Errorf("config: load env file %s: %w", l.envFile, err)
		}
	}

	v := viper.New()
	setDefaults(v)

	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", l.configFile, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, value := range l.overrides {
		v.Set(key, value)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
