// Package config resolves run settings from defaults, a project .env file
// and SLSLOOP_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

const (
	DefaultTemplate  = ".serverless/cloudformation-template-update-stack.json"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// Config holds the resolved settings.
type Config struct {
	LogLevel    string
	LogFormat   string
	ServiceFile string // Empty means look up serverless.{yml,yaml,json,pkl}
	Template    string
}

func Default() *Config {
	return &Config{
		LogLevel:  DefaultLogLevel,
		LogFormat: DefaultLogFormat,
		Template:  DefaultTemplate,
	}
}

// Load returns the defaults overlaid with projectDir/.env and the process
// environment. Variables already set in the environment win over .env.
func Load(projectDir string) (*Config, error) {
	envFile := filepath.Join(projectDir, ".env")
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	cfg := Default()
	if v := os.Getenv("SLSLOOP_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("SLSLOOP_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv("SLSLOOP_SERVICE_FILE"); v != "" {
		cfg.ServiceFile = v
	}
	if v := os.Getenv("SLSLOOP_TEMPLATE"); v != "" {
		cfg.Template = v
	}
	return cfg, nil
}
