// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all configuration for the featurizer.
type Config struct {
	// Fetch settings
	EtherscanAPIKey string        `env:"ETHERSCAN_API_KEY"`
	EtherscanURL    string        `env:"ETHERSCAN_URL" envDefault:"https://api.etherscan.io/v2/api"`
	ChainID         int           `env:"CHAIN_ID" envDefault:"1"`
	HTTPTimeout     time.Duration `env:"HTTP_TIMEOUT" envDefault:"30s"`

	// Vocabulary files, one token name per line
	SentVocabPath string `env:"SENT_VOCAB_PATH" envDefault:"sent_tokens.txt"`
	RecVocabPath  string `env:"REC_VOCAB_PATH" envDefault:"rec_tokens.txt"`

	// Storage; both empty means in-memory only
	PostgresDSN   string `env:"POSTGRES_DSN"`
	ClickhouseDSN string `env:"CLICKHOUSE_DSN"`

	// Output
	OutputDir string `env:"OUTPUT_DIR" envDefault:"output"`
	Workers   int    `env:"WORKERS" envDefault:"4"`

	// Metrics server address, empty to disable
	MetricsAddr string `env:"METRICS_ADDR" envDefault:":9090"`

	Verbose bool `env:"VERBOSE" envDefault:"false"`
}

// Load parses Config from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

// Validate checks settings that have no usable zero value.
func (c *Config) Validate() error {
	var errs []error
	if c.EtherscanAPIKey == "" {
		errs = append(errs, errors.New("ETHERSCAN_API_KEY is required"))
	}
	if c.EtherscanURL == "" {
		errs = append(errs, errors.New("ETHERSCAN_URL must not be empty"))
	}
	if c.ChainID <= 0 {
		errs = append(errs, fmt.Errorf("CHAIN_ID must be positive, got %d", c.ChainID))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("WORKERS must be at least 1, got %d", c.Workers))
	}
	if c.OutputDir == "" {
		errs = append(errs, errors.New("OUTPUT_DIR must not be empty"))
	}
	return errors.Join(errs...)
}
