// Package config provides unified configuration loading for coojabatch.
// It supports loading from YAML files and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config contains all coojabatch configuration settings.
type Config struct {
	// Simulator locates the external Cooja/Contiki-NG checkouts.
	Simulator SimulatorConfig `json:"simulator" yaml:"simulator"`

	// Generation contains defaults for topology generation.
	Generation GenerationConfig `json:"generation" yaml:"generation"`

	// Results contains settings for the run results store.
	Results ResultsConfig `json:"results" yaml:"results"`

	// Logging contains settings for operational and trace logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// SimulatorConfig locates the external simulator checkouts.
type SimulatorConfig struct {
	// CoojaPath is the Cooja gradle project directory.
	CoojaPath string `json:"cooja_path" yaml:"cooja_path"`

	// ContikiPath is the Contiki-NG checkout.
	ContikiPath string `json:"contiki_path" yaml:"contiki_path"`

	// Timeout bounds a single simulation run. Zero disables the bound.
	Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// GenerationConfig holds topology generation defaults.
type GenerationConfig struct {
	// FallbackTxRange is the transmitting range assumed when the
	// scenario's radio medium is not range-based.
	FallbackTxRange float64 `json:"fallback_tx_range" yaml:"fallback_tx_range"`

	// MaxAttempts caps rejection sampling per mote. Zero restores the
	// original unbounded behavior.
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts"`
}

// ResultsConfig configures the run results store.
type ResultsConfig struct {
	// DBPath is the SQLite database file for recorded runs.
	DBPath string `json:"db_path" yaml:"db_path"`
}

// LoggingConfig configures coojabatch's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	// "debug" enables placement tracing to placement-trace.jsonl.
	Level string `json:"level" yaml:"level"`
}

// Default returns a Config with sensible defaults. The simulator paths
// mirror the conventional layout: cooja/ and contiki-ng/ as siblings of the
// working tree.
func Default() *Config {
	return &Config{
		Simulator: SimulatorConfig{
			CoojaPath:   filepath.Join("..", "cooja"),
			ContikiPath: filepath.Join("..", "contiki-ng"),
			Timeout:     0,
		},
		Generation: GenerationConfig{
			FallbackTxRange: 50.0,
			MaxAttempts:     10000,
		},
		Results: ResultsConfig{
			DBPath: filepath.Join(".coojabatch", "runs.db"),
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from the default locations and environment
// variables. Order: defaults -> ~/.coojabatch/config.yaml -> environment.
func Load() (*Config, error) {
	config := Default()

	homeDir, err := os.UserHomeDir()
	if err == nil {
		configPath := filepath.Join(homeDir, ".coojabatch", "config.yaml")
		if _, statErr := os.Stat(configPath); statErr == nil {
			fileConfig, loadErr := LoadFromFile(configPath)
			if loadErr != nil {
				return nil, fmt.Errorf("loading config file: %w", loadErr)
			}
			config = fileConfig
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return config, nil
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Generation.FallbackTxRange <= 0 {
		return fmt.Errorf("fallback_tx_range must be positive, got %g", c.Generation.FallbackTxRange)
	}

	if c.Generation.MaxAttempts < 0 {
		return fmt.Errorf("max_attempts must be non-negative, got %d", c.Generation.MaxAttempts)
	}

	if c.Simulator.Timeout < 0 {
		return fmt.Errorf("timeout must be non-negative, got %v", c.Simulator.Timeout)
	}

	validLevels := map[string]bool{"info": true, "debug": true, "trace": true}
	if c.Logging.Level != "" && !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: info, debug, trace, or empty for default)", c.Logging.Level)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("COOJABATCH_COOJA_PATH"); v != "" {
		config.Simulator.CoojaPath = v
	}

	if v := os.Getenv("COOJABATCH_CONTIKI_PATH"); v != "" {
		config.Simulator.ContikiPath = v
	}

	if v := os.Getenv("COOJABATCH_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			config.Simulator.Timeout = d
		}
	}

	if v := os.Getenv("COOJABATCH_MAX_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Generation.MaxAttempts = n
		}
	}

	if v := os.Getenv("COOJABATCH_DB_PATH"); v != "" {
		config.Results.DBPath = v
	}

	if v := os.Getenv("COOJABATCH_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
}
