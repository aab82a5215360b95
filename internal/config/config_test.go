package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tristar/fitness-hub/internal/domain"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := LoadConfig(".")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 12*time.Hour, cfg.JWT.Expiration)
	assert.Equal(t, time.Hour, cfg.Sweep.Interval)
	assert.False(t, cfg.Auth.AllowDemoTokens)
	assert.False(t, cfg.S3.Enabled())
	assert.Equal(t, domain.Rupees(1999), cfg.Pricing.Pricing().MonthlyFee)
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	yaml := `
server:
  address: ":9090"
database:
  driver: postgres
  dsn: "host=db user=tristar"
jwt:
  secret: from-file
  expiration: 30m
s3:
  bucket_name: backups
pricing:
  annual: 9000
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))
	t.Setenv("SERVER_ADDRESS", ":7070")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Address)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "from-file", cfg.JWT.Secret)
	assert.Equal(t, 30*time.Minute, cfg.JWT.Expiration)
	assert.True(t, cfg.S3.Enabled())
	assert.Equal(t, domain.Rupees(9000), cfg.Pricing.Pricing().YearlyFee)
}

func TestLoadConfigDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("JWT_SECRET=dotenv\n"), 0o600))
	t.Setenv("JWT_SECRET", "")
	os.Unsetenv("JWT_SECRET")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "dotenv", cfg.JWT.Secret)
}

func TestConfigValidate(t *testing.T) {
	valid := Config{
		Database: DatabaseConfig{Driver: "mongo"},
		JWT:      JWTConfig{Secret: "x"},
		Sweep:    SweepConfig{Interval: time.Minute},
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown driver", func(c *Config) { c.Database.Driver = "oracle" }},
		{"missing secret", func(c *Config) { c.JWT.Secret = "" }},
		{"zero sweep", func(c *Config) { c.Sweep.Interval = 0 }},
		{"limiter without window", func(c *Config) { c.RateLimit.Requests = 10 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestLoadClientConfig(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "client.env")
	require.NoError(t, os.WriteFile(envFile, []byte("TRISTAR_REMOTE_URL=http://store:8080\n"), 0o600))
	t.Setenv("TRISTAR_DB_PATH", filepath.Join(dir, "replica.db"))
	t.Setenv("TRISTAR_REMOTE_TIMEOUT", "2s")
	t.Cleanup(func() { os.Unsetenv("TRISTAR_REMOTE_URL") })

	cfg, err := LoadClientConfig(envFile, filepath.Join(dir, "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "replica.db"), cfg.DBPath)
	assert.Equal(t, "http://store:8080", cfg.RemoteURL)
	assert.Equal(t, 2*time.Second, cfg.RemoteTimeout)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoadClientConfigRejectsBadTimeout(t *testing.T) {
	t.Setenv("TRISTAR_DB_PATH", filepath.Join(t.TempDir(), "replica.db"))
	t.Setenv("TRISTAR_REMOTE_TIMEOUT", "-1s")

	_, err := LoadClientConfig()
	assert.Error(t, err)
}
