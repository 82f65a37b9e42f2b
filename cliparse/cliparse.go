// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPort         = 3318
	DefaultDatabaseType = "sqlite"
	defaultEnvFile      = ".env"
)

type Config struct {
	Port          int    `yaml:"port"          envconfig:"PORT"`
	DatabaseURL   string `yaml:"databaseUrl"   envconfig:"DATABASE_URL"`
	DatabaseType  string `yaml:"databaseType"  envconfig:"DATABASE_TYPE"`
	CallerKeySalt string `yaml:"callerKeySalt" envconfig:"CALLER_KEY_SALT"`
	Debug         bool   `yaml:"debug"         envconfig:"DEBUG"`
}

// ParseFlags builds the configuration from CLI flags, falling back to
// the environment, an optional .env file, an optional YAML file and
// finally defaults. Flags always win.
func ParseFlags(args []string) (Config, error) {
	var flags Config
	var configFile, envFile string

	fs := flag.NewFlagSet("quickly-vote", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&flags.Port, "p", 0, "Server port")
	fs.StringVar(&flags.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&flags.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.BoolVar(&flags.Debug, "debug", false, "Enable debug logging")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&flags.CallerKeySalt, "caller-salt", "", "Caller key salt (prefer env)")

	fs.StringVar(&configFile, "config", "", "Path to YAML config file")
	fs.StringVar(&envFile, "env-file", "", "Path to .env file (default: ./.env if present)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg, err := Load(configFile, envFile)
	if err != nil {
		return Config{}, err
	}

	// Only flags that were actually set override lower layers
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "p":
			cfg.Port = flags.Port
		case "d":
			cfg.DatabaseURL = flags.DatabaseURL
		case "t":
			cfg.DatabaseType = flags.DatabaseType
		case "debug":
			cfg.Debug = flags.Debug
		case "caller-salt":
			cfg.CallerKeySalt = flags.CallerKeySalt
		}
	})

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load merges defaults, the YAML file, the .env file and the process
// environment, in increasing precedence. Variables already present in the
// environment are never overwritten by the .env file.
func Load(configFile, envFile string) (Config, error) {
	cfg := Config{
		Port:         DefaultPort,
		DatabaseType: DefaultDatabaseType,
	}

	if configFile != "" {
		buf, err := os.ReadFile(configFile)
		if err != nil {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
		if err := yaml.Unmarshal(buf, &cfg); err != nil {
			return Config{}, fmt.Errorf("error parsing config file: %w", err)
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return Config{}, fmt.Errorf("error loading env file: %w", err)
		}
	} else if _, err := os.Stat(defaultEnvFile); err == nil {
		if err := godotenv.Load(defaultEnvFile); err != nil {
			return Config{}, fmt.Errorf("error loading env file: %w", err)
		}
	}

	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("invalid environment: %w", err)
	}
	return cfg, nil
}

// Validate reports the first missing or malformed setting
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.DatabaseURL == "" {
		return errors.New("database URL required (use -d or DATABASE_URL env)")
	}
	switch c.DatabaseType {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported database type %q (use sqlite or postgres)", c.DatabaseType)
	}

	// Secrets - MUST be provided
	if c.CallerKeySalt == "" {
		return errors.New("CALLER_KEY_SALT required")
	}
	return nil
}
