package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lyase/quantlib/opt"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Address      string        `yaml:"address"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Calibration struct {
		MaxIterations                int     `yaml:"max_iterations"`
		MaxStationaryStateIterations int     `yaml:"max_stationary_state_iterations"`
		RootEpsilon                  float64 `yaml:"root_epsilon"`
		FunctionEpsilon              float64 `yaml:"function_epsilon"`
		GradientNormEpsilon          float64 `yaml:"gradient_norm_epsilon"`
	} `yaml:"calibration"`
}

// Default returns the configuration used for fields absent from the file.
func Default() *Config {
	c := &Config{Environment: "development"}
	c.Server.Address = ":8080"
	c.Server.ReadTimeout = 5 * time.Second
	c.Server.WriteTimeout = 30 * time.Second
	c.Log.Level = "info"
	c.Log.Format = "console"

	criteria := opt.DefaultEndCriteria()
	c.Calibration.MaxIterations = criteria.MaxIterations
	c.Calibration.MaxStationaryStateIterations = criteria.MaxStationaryStateIterations
	c.Calibration.RootEpsilon = criteria.RootEpsilon
	c.Calibration.FunctionEpsilon = criteria.FunctionEpsilon
	c.Calibration.GradientNormEpsilon = criteria.GradientNormEpsilon
	return c
}

// Load reads and parses a YAML configuration file. Fields missing from the
// file keep their defaults.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("SMILE_ADDRESS"); v != "" {
		c.Server.Address = v
	}
	if v := os.Getenv("SMILE_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("SMILE_ENVIRONMENT"); v != "" {
		c.Environment = v
	}
	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Address == "" {
		return fmt.Errorf("server.address is required")
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 {
		return fmt.Errorf("server timeouts must not be negative")
	}
	if c.Calibration.MaxIterations <= 0 {
		return fmt.Errorf("calibration.max_iterations must be positive")
	}
	if c.Calibration.MaxStationaryStateIterations <= 0 {
		return fmt.Errorf("calibration.max_stationary_state_iterations must be positive")
	}
	return nil
}

// EndCriteria translates the calibration section into solver stop criteria.
func (c *Config) EndCriteria() opt.EndCriteria {
	return opt.EndCriteria{
		MaxIterations:                c.Calibration.MaxIterations,
		MaxStationaryStateIterations: c.Calibration.MaxStationaryStateIterations,
		RootEpsilon:                  c.Calibration.RootEpsilon,
		FunctionEpsilon:              c.Calibration.FunctionEpsilon,
		GradientNormEpsilon:          c.Calibration.GradientNormEpsilon,
	}
}
