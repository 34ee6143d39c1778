// Package config holds the settings of a stress run.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/min1324/mpsc/internal/log"
)

type Config struct {
	// Number of producer goroutines.
	Producers int `json:"producers"`
	// Nodes pushed by each producer.
	NodesPerProducer int `json:"nodes_per_producer"`
	// Pops tried per node before the consumer gives up on the run.
	PopAttempts uint `json:"pop_attempts"`
	// Wait between pops that came back empty.
	PopBackoff_us uint64 `json:"pop_backoff_us"`
	// Upper bound on the whole run.
	Timeout_ms uint64 `json:"timeout_ms"`
	// Log level name, e.g. INFO.
	LogLevel string `json:"log_level"`
	// Address to serve metrics on while running; empty disables it.
	MetricsAddr string `json:"metrics"`

	// Parsed log level
	logLevel log.Level
}

func DefaultConfig() *Config {
	return &Config{
		Producers:        4,
		NodesPerProducer: 1 << 14,
		PopAttempts:      1 << 20,
		PopBackoff_us:    0,
		Timeout_ms:       60_000,
		LogLevel:         "INFO",
		MetricsAddr:      "",
	}
}

// Parse validates the configuration and fills in derived fields.
func (c *Config) Parse() (err error) {
	if c.Producers < 1 {
		return errors.New("producers must be at least 1")
	}
	if c.NodesPerProducer < 1 {
		return errors.New("nodes_per_producer must be at least 1")
	}
	if c.PopAttempts < 1 {
		return errors.New("pop_attempts must be at least 1")
	}
	if c.Timeout_ms == 0 {
		return errors.New("timeout_ms must be positive")
	}
	if c.logLevel, err = log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level %q: %w", c.LogLevel, err)
	}
	return nil
}

func (c *Config) Total() int {
	return c.Producers * c.NodesPerProducer
}

func (c *Config) PopBackoff() time.Duration {
	return time.Duration(c.PopBackoff_us) * time.Microsecond
}

func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Timeout_ms) * time.Millisecond
}

// Level is the parsed LogLevel. Only valid after Parse.
func (c *Config) Level() log.Level {
	return c.logLevel
}

// Decode reads YAML from r over the values already in c. Unknown keys are
// rejected.
func (c *Config) Decode(r io.Reader) error {
	dec := yaml.NewDecoder(r, yaml.Strict())
	if err := dec.Decode(c); err != nil {
		return fmt.Errorf("unable to parse configuration: %w", err)
	}
	return nil
}

// ReadFile loads the defaults overlaid with the YAML file at path and
// validates the result.
func ReadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open configuration file: %w", err)
	}
	defer f.Close()

	c := DefaultConfig()
	if err = c.Decode(f); err != nil {
		return nil, err
	}
	if err = c.Parse(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return c, nil
}
