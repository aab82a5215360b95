package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"tristar/fitness-hub/internal/domain"
)

// Config holds all configuration for the Record Store server.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	S3        S3Config        `mapstructure:"s3"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Sweep     SweepConfig     `mapstructure:"sweep"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Pricing   PricingConfig   `mapstructure:"pricing"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
	Mode    string `mapstructure:"mode"` // gin mode: debug, release or test
}

// DatabaseConfig selects the storage backend. URI and Name are used by the
// mongo driver, DSN by postgres and sqlite.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	URI    string `mapstructure:"uri"`
	Name   string `mapstructure:"name"`
	DSN    string `mapstructure:"dsn"`
}

type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

// Enabled reports whether backups have somewhere to go.
func (c S3Config) Enabled() bool {
	return c.BucketName != ""
}

// JWTConfig defines JWT specific configuration
type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
}

// AuthConfig lists the staff accounts seeded at startup.
type AuthConfig struct {
	OwnerUsername   string `mapstructure:"owner_username"`
	OwnerPassword   string `mapstructure:"owner_password"`
	ManagerUsername string `mapstructure:"manager_username"`
	ManagerPassword string `mapstructure:"manager_password"`
	// AllowDemoTokens accepts any bearer token prefixed "demo-token-" as the owner.
	// Insecure, for compatibility with old clients only.
	AllowDemoTokens bool `mapstructure:"allow_demo_tokens"`
}

type SweepConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

type RateLimitConfig struct {
	Requests int           `mapstructure:"requests"` // 0 disables the limiter
	Window   time.Duration `mapstructure:"window"`
}

// PricingConfig holds membership fees in whole rupees.
type PricingConfig struct {
	Monthly   int64 `mapstructure:"monthly"`
	Quarterly int64 `mapstructure:"quarterly"`
	Annual    int64 `mapstructure:"annual"`
}

// Pricing converts the configured fees to domain pricing.
func (c PricingConfig) Pricing() domain.Pricing {
	p := domain.DefaultPricing()
	p.MonthlyFee = domain.Rupees(c.Monthly)
	p.QuarterlyFee = domain.Rupees(c.Quarterly)
	p.YearlyFee = domain.Rupees(c.Annual)
	return p
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// LoadConfig reads configuration from file or environment variables.
// A .env file in the working directory, when present, is loaded into the
// environment first; variables already set take precedence.
func LoadConfig(path string) (config Config, err error) {
	if err = godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return config, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// server.address -> SERVER_ADDRESS
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	setDefaults(v)

	err = v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		err = nil // no file, rely on defaults and env vars
	} else if err != nil {
		return config, fmt.Errorf("read config: %w", err)
	}

	if err = v.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("decode config: %w", err)
	}
	return config, config.Validate()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.uri", "mongodb://localhost:27017")
	v.SetDefault("database.name", "tristar_fitness")
	v.SetDefault("database.dsn", "tristar.db")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.access_key_id", "")
	v.SetDefault("s3.secret_access_key", "")
	v.SetDefault("s3.bucket_name", "")
	v.SetDefault("s3.use_ssl", true)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiration", "12h")
	v.SetDefault("auth.owner_username", "owner")
	v.SetDefault("auth.owner_password", "")
	v.SetDefault("auth.manager_username", "manager")
	v.SetDefault("auth.manager_password", "")
	v.SetDefault("auth.allow_demo_tokens", false)
	v.SetDefault("sweep.interval", "1h")
	v.SetDefault("ratelimit.requests", 300)
	v.SetDefault("ratelimit.window", "1m")
	v.SetDefault("pricing.monthly", 1999)
	v.SetDefault("pricing.quarterly", 5500)
	v.SetDefault("pricing.annual", 8500)
	v.SetDefault("log.level", "info")
}

// Validate rejects settings the server cannot start with.
func (c Config) Validate() error {
	switch c.Database.Driver {
	case "mongo", "postgres", "sqlite":
	default:
		return fmt.Errorf("database.driver must be mongo, postgres or sqlite, got %q", c.Database.Driver)
	}
	if c.JWT.Secret == "" {
		return errors.New("jwt.secret is required")
	}
	if c.Sweep.Interval <= 0 {
		return errors.New("sweep.interval must be positive")
	}
	if c.RateLimit.Requests > 0 && c.RateLimit.Window <= 0 {
		return errors.New("ratelimit.window must be positive when the limiter is enabled")
	}
	return nil
}
