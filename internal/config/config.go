// Package config reads runtime settings from an optional .env file and
// SMETACSV_* environment variables. Nothing is written back.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/nconklindev/smetacsv/internal/converter"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

const (
	EnvPrefix      = "SMETACSV"
	DefaultEnvFile = ".env"
)

type Config struct {
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
	LogFile   string `envconfig:"LOG_FILE"`
	StartDir  string `envconfig:"START_DIR"`
	OutputDir string `envconfig:"OUTPUT_DIR"`
	TrimMode  string `envconfig:"TRIM_MODE" default:"pair"`
	CRLF      bool   `envconfig:"CRLF" default:"true"`

	// EnvFile is the .env file that was applied, empty if none.
	EnvFile string `ignored:"true"`
}

// Load applies .env from the working directory when present, then reads the
// environment.
func Load() (*Config, error) {
	return LoadFrom(DefaultEnvFile)
}

// LoadFrom is Load with an explicit .env path. A missing file is not an error.
// Variables already set in the environment win over the file. The result is
// not validated; see Validate.
func LoadFrom(envFile string) (*Config, error) {
	applied := ""
	if envFile != "" {
		err := godotenv.Load(envFile)
		switch {
		case err == nil:
			applied = envFile
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf("failed to read %s: %w", envFile, err)
		}
	}

	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}
	cfg.EnvFile = applied

	if cfg.StartDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		cfg.StartDir = wd
	}

	return &cfg, nil
}

// Validate checks the enumerated settings. Callers run it after applying
// their own overrides, so a bad value that a flag replaces is not an error.
func (c *Config) Validate() error {
	if _, err := converter.ParseTrimMode(c.TrimMode); err != nil {
		return fmt.Errorf("%s_TRIM_MODE: %w", EnvPrefix, err)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%s_LOG_LEVEL: %w", EnvPrefix, err)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("%s_LOG_FORMAT: unknown format %q (want text or json)", EnvPrefix, c.LogFormat)
	}
	return nil
}

// Options builds converter options from the config.
func (c *Config) Options(logger logrus.FieldLogger) converter.Options {
	mode, _ := converter.ParseTrimMode(c.TrimMode)
	return converter.Options{
		TrimMode: mode,
		CRLF:     c.CRLF,
		Logger:   logger,
	}
}
