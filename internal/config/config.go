package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// BaseConfig holds base configuration
type BaseConfig struct {
	Debug     bool   `mapstructure:"debug"`
	SentryDSN string `mapstructure:"sentry_dsn"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // in seconds
	WriteTimeout int    `mapstructure:"write_timeout"` // in seconds
	IdleTimeout  int    `mapstructure:"idle_timeout"`  // in seconds
	CORSOrigin   string `mapstructure:"cors_origin"`
}

// DatabaseConfig holds ledger database configuration
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

// RedisConfig holds cache and rate-limiter backend configuration
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	// DefaultTTL is the cache TTL in seconds applied when callers pass none
	DefaultTTL int `mapstructure:"default_ttl"`
	// OpTimeout bounds each cache operation before it fails open
	OpTimeout time.Duration `mapstructure:"op_timeout"`
}

// RateLimitRule holds the sliding-window parameters for one route
type RateLimitRule struct {
	WindowMS int64 `mapstructure:"window_ms"`
	Max      int64 `mapstructure:"max"`
}

// RateLimitConfig holds per-route rate-limit rules
type RateLimitConfig struct {
	Default  RateLimitRule `mapstructure:"default"`
	Check    RateLimitRule `mapstructure:"check"`
	Submit   RateLimitRule `mapstructure:"submit"`
	Evidence RateLimitRule `mapstructure:"evidence"`
	Stats    RateLimitRule `mapstructure:"stats"`
	Migrate  RateLimitRule `mapstructure:"migrate"`
}

// APIConfig holds configuration for the API server
type APIConfig struct {
	BaseConfig `mapstructure:",squash"`
	Server     ServerConfig    `mapstructure:"server"`
	Database   DatabaseConfig  `mapstructure:"database"`
	Redis      RedisConfig     `mapstructure:"redis"`
	RateLimit  RateLimitConfig `mapstructure:"rate_limit"`
	// Threshold is the vote count at which an account becomes a scammer
	Threshold int64 `mapstructure:"threshold"`
	// MigrationDataDir holds the flat-file snapshots for the one-shot import
	MigrationDataDir string `mapstructure:"migration_data_dir"`
}

// LoadAPIConfig loads configuration for the API server
func LoadAPIConfig(configFile string, envPath string) (*APIConfig, error) {
	v := configureViper("api", configFile, envPath)

	// Set defaults
	v.SetDefault("debug", false)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("server.idle_timeout", 120)
	v.SetDefault("server.cors_origin", "*")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.default_ttl", 3600)
	v.SetDefault("redis.op_timeout", "5s")
	v.SetDefault("threshold", 10)
	v.SetDefault("migration_data_dir", "data/")
	v.SetDefault("rate_limit.default.window_ms", 60_000)
	v.SetDefault("rate_limit.default.max", 30)
	v.SetDefault("rate_limit.check.window_ms", 60_000)
	v.SetDefault("rate_limit.check.max", 60)
	v.SetDefault("rate_limit.submit.window_ms", 300_000)
	v.SetDefault("rate_limit.submit.max", 10)
	v.SetDefault("rate_limit.evidence.window_ms", 60_000)
	v.SetDefault("rate_limit.evidence.max", 20)
	v.SetDefault("rate_limit.stats.window_ms", 60_000)
	v.SetDefault("rate_limit.stats.max", 30)
	v.SetDefault("rate_limit.migrate.window_ms", 3_600_000)
	v.SetDefault("rate_limit.migrate.max", 5)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			// Config file not found, use environment variables
		} else {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config APIConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if config.Database.Host == "" {
		return nil, errors.New("database.host is required")
	}
	if config.Database.DBName == "" {
		return nil, errors.New("database.dbname is required")
	}

	return &config, nil
}

// configureViper returns a viper instance with the config file and environment variables set
func configureViper(service string, configFile string, envPath string) *viper.Viper {
	v := viper.New()

	loadEnv(envPath, service)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(fmt.Sprintf("cmd/%s/", service))
		v.AddConfigPath("config/")
	}

	v.SetEnvPrefix("SCAMWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindAllEnvVars(v)
	return v
}

// bindAllEnvVars explicitly binds all possible environment variables
// This is required for viper to map env vars to config struct fields when no config file exists
func bindAllEnvVars(v *viper.Viper) {
	keys := []string{
		"debug",
		"sentry_dsn",
		"threshold",
		"migration_data_dir",
		// Server
		"server.host",
		"server.port",
		"server.read_timeout",
		"server.write_timeout",
		"server.idle_timeout",
		"server.cors_origin",
		// Database
		"database.host",
		"database.port",
		"database.user",
		"database.password",
		"database.dbname",
		"database.sslmode",
		"database.max_open_conns",
		"database.max_idle_conns",
		"database.conn_max_lifetime",
		"database.conn_max_idle_time",
		// Redis
		"redis.addr",
		"redis.username",
		"redis.password",
		"redis.db",
		"redis.default_ttl",
		"redis.op_timeout",
		// Rate limits
		"rate_limit.default.window_ms",
		"rate_limit.default.max",
		"rate_limit.check.window_ms",
		"rate_limit.check.max",
		"rate_limit.submit.window_ms",
		"rate_limit.submit.max",
		"rate_limit.evidence.window_ms",
		"rate_limit.evidence.max",
		"rate_limit.stats.window_ms",
		"rate_limit.stats.max",
		"rate_limit.migrate.window_ms",
		"rate_limit.migrate.max",
	}

	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}

// loadEnv loads environment variables from the config directory
func loadEnv(envPath string, service string) {
	envFiles := []string{".env", ".env.local"}
	if service != "" {
		envFiles = append(envFiles, ".env."+service+".local")
	}

	if envPath == "" {
		envPath = "config/"
	}

	for _, envFile := range envFiles {
		candidate := filepath.Join(envPath, envFile)
		_ = godotenv.Overload(candidate) // Overload lets later files override earlier ones
	}
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// Window returns the sliding-window size as a duration
func (r RateLimitRule) Window() time.Duration {
	return time.Duration(r.WindowMS) * time.Millisecond
}
