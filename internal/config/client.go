package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const clientEnvPrefix = "TRISTAR"

// ClientConfig configures the sync client. Fields map to TRISTAR_* variables.
type ClientConfig struct {
	DBPath        string        `envconfig:"DB_PATH"`
	RemoteURL     string        `envconfig:"REMOTE_URL"`
	RemoteToken   string        `envconfig:"REMOTE_TOKEN"`
	RemoteTimeout time.Duration `envconfig:"REMOTE_TIMEOUT" default:"5s"`
	LogLevel      string        `envconfig:"LOG_LEVEL" default:"warn"`
}

// LoadClientConfig reads the given .env files (missing files are skipped)
// and then the TRISTAR_* environment.
func LoadClientConfig(envFiles ...string) (ClientConfig, error) {
	var cfg ClientConfig
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("load %s: %w", file, err)
		}
	}
	if err := envconfig.Process(clientEnvPrefix, &cfg); err != nil {
		return cfg, fmt.Errorf("process env: %w", err)
	}
	if cfg.DBPath == "" {
		path, err := DefaultReplicaPath()
		if err != nil {
			return cfg, err
		}
		cfg.DBPath = path
	}
	if cfg.RemoteTimeout <= 0 {
		return cfg, errors.New("TRISTAR_REMOTE_TIMEOUT must be positive")
	}
	return cfg, nil
}

// DefaultReplicaPath places the replica under the user's config directory.
func DefaultReplicaPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "tristar", "replica.db"), nil
}
