// Package config provides configuration management for acueducto
package config

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Backend kinds
const (
	BackendREST = "rest"
	BackendSQL  = "sql"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Backend   BackendConfig   `mapstructure:"backend"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
	Log       LogConfig       `mapstructure:"log"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// AuthConfig holds dashboard API authentication settings
type AuthConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	JWTSecret         string        `mapstructure:"jwt_secret"`
	TokenTTL          time.Duration `mapstructure:"token_ttl"`
	AdminUser         string        `mapstructure:"admin_user"`
	AdminPasswordHash string        `mapstructure:"admin_password_hash"`
}

// BackendConfig selects where entity collections are read from
type BackendConfig struct {
	Kind    string        `mapstructure:"kind"`
	URL     string        `mapstructure:"url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// DatabaseConfig holds SQL connection settings for the sql backend
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	URL      string `mapstructure:"url"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

// DashboardConfig holds table defaults
type DashboardConfig struct {
	DefaultDataset  string `mapstructure:"default_dataset"`
	DefaultPageSize int    `mapstructure:"default_page_size"`
	PageSizes       []int  `mapstructure:"page_sizes"`
	PhoneRegion     string `mapstructure:"phone_region"`
}

// LogConfig holds logrus settings
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8090)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)

	v.SetDefault("cors.allowed_origins", []string{
		"http://localhost:3000",
		"http://localhost:5173",
		"http://127.0.0.1:3000",
		"http://127.0.0.1:5173",
	})

	v.SetDefault("auth.enabled", false)
	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("auth.admin_user", "admin")

	v.SetDefault("backend.kind", BackendREST)
	v.SetDefault("backend.timeout", 15*time.Second)

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")

	v.SetDefault("dashboard.default_dataset", "usuarios")
	v.SetDefault("dashboard.default_page_size", 10)
	v.SetDefault("dashboard.page_sizes", []int{10, 25, 50})
	v.SetDefault("dashboard.phone_region", "CO")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Load reads configuration from an optional YAML file, a .env file and the environment.
// Environment keys use the ACUEDUCTO_ prefix with dots replaced by underscores
// (ACUEDUCTO_BACKEND_URL). The Supabase variable names are accepted as aliases.
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("ACUEDUCTO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("backend.url", "ACUEDUCTO_BACKEND_URL", "SUPABASE_URL", "VITE_SUPABASE_URL")
	_ = v.BindEnv("backend.api_key", "ACUEDUCTO_BACKEND_API_KEY", "SUPABASE_ANON_KEY", "VITE_SUPABASE_ANON_KEY")
	_ = v.BindEnv("database.url", "ACUEDUCTO_DATABASE_URL", "DATABASE_URL")
	_ = v.BindEnv("server.port", "ACUEDUCTO_SERVER_PORT", "PORT")
	// keys without defaults are invisible to Unmarshal unless bound
	for _, key := range []string{
		"auth.jwt_secret", "auth.admin_password_hash",
		"database.host", "database.user", "database.password", "database.name",
	} {
		_ = v.BindEnv(key)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config.Load: reading %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports settings that would fail at first use
func (c *Config) Validate() error {
	switch c.Backend.Kind {
	case BackendREST:
		if c.Backend.URL == "" || c.Backend.APIKey == "" {
			return stderrors.New("config: backend.url and backend.api_key are required for the rest backend (SUPABASE_URL, SUPABASE_ANON_KEY)")
		}
	case BackendSQL:
		switch c.Database.Driver {
		case "postgres", "mysql", "sqlite":
		default:
			return fmt.Errorf("config: unsupported database.driver %q", c.Database.Driver)
		}
	default:
		return fmt.Errorf("config: unsupported backend.kind %q", c.Backend.Kind)
	}

	if c.Auth.Enabled && c.Auth.JWTSecret == "" {
		return stderrors.New("config: auth.jwt_secret is required when auth is enabled")
	}
	if c.Dashboard.DefaultPageSize < 1 {
		return fmt.Errorf("config: dashboard.default_page_size must be positive, got %d", c.Dashboard.DefaultPageSize)
	}
	return nil
}

// AllowsPageSize reports whether n is one of the configured page sizes
func (c DashboardConfig) AllowsPageSize(n int) bool {
	for _, s := range c.PageSizes {
		if s == n {
			return true
		}
	}
	return false
}
