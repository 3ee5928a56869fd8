// Copyright 2021 The failover Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package config loads a retry policy and logging settings from a YAML
// file.
package config

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/gogama/failover/endpoint"
	"github.com/gogama/failover/retry"
	"gopkg.in/yaml.v3"
)

// Strategy types.
const (
	TypeThrottling = "throttling"
	TypeBackoff    = "backoff"
)

// Config is the top-level configuration.
type Config struct {
	MaxRetries *int             `yaml:"max_retries"`
	Endpoints  []string         `yaml:"endpoints"`
	Strategies []StrategyConfig `yaml:"strategies"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// StrategyConfig configures one retry strategy. Only Type is used by
// the throttling strategy. The other fields configure a backoff.
type StrategyConfig struct {
	Type            string        `yaml:"type"`
	BaseDelay       time.Duration `yaml:"base_delay"`
	MaxDelay        time.Duration `yaml:"max_delay"`
	StatusCodes     []int         `yaml:"status_codes"`
	TransientErrors *bool         `yaml:"transient_errors"`
	RetryAfter      bool          `yaml:"retry_after"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// Load reads configuration from a YAML file. Environment variables in
// the file are expanded before parsing.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse expands environment variables in data, parses it as YAML,
// applies defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.setDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns the configuration used when there is no file.
func Default() *Config {
	var cfg Config
	cfg.setDefaults()
	return &cfg
}

func (cfg *Config) setDefaults() {
	if cfg.MaxRetries == nil {
		n := retry.DefaultMaxRetries
		cfg.MaxRetries = &n
	}
	if len(cfg.Strategies) == 0 {
		cfg.Strategies = []StrategyConfig{
			{Type: TypeThrottling},
			{Type: TypeBackoff},
		}
	}
	for i := range cfg.Strategies {
		s := &cfg.Strategies[i]
		if s.Type != TypeBackoff {
			continue
		}
		if s.BaseDelay == 0 {
			s.BaseDelay = 50 * time.Millisecond
		}
		if s.MaxDelay == 0 {
			s.MaxDelay = time.Second
		}
		if s.TransientErrors == nil {
			t := true
			s.TransientErrors = &t
		}
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
}

// Validate checks the configuration for errors.
func (cfg *Config) Validate() error {
	var errs []error
	if cfg.MaxRetries != nil && *cfg.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("max_retries must not be negative, got %d", *cfg.MaxRetries))
	}
	if _, err := endpoint.NewList(cfg.Endpoints...); err != nil && len(cfg.Endpoints) > 0 {
		errs = append(errs, fmt.Errorf("endpoints: %w", err))
	}
	for i, s := range cfg.Strategies {
		switch s.Type {
		case TypeThrottling:
		case TypeBackoff:
			if s.BaseDelay <= 0 {
				errs = append(errs, fmt.Errorf("strategies[%d]: base_delay must be positive", i))
			}
			if s.MaxDelay < s.BaseDelay {
				errs = append(errs, fmt.Errorf("strategies[%d]: max_delay must be at least base_delay", i))
			}
		default:
			errs = append(errs, fmt.Errorf("strategies[%d]: unknown type %q", i, s.Type))
		}
	}
	switch cfg.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("logging.level: unknown level %q", cfg.Logging.Level))
	}
	switch cfg.Logging.Format {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format: unknown format %q", cfg.Logging.Format))
	}
	return errors.Join(errs...)
}

// Policy builds the retry policy described by the configuration. At
// least one endpoint is required. Use extra to add endpoints, such as
// ones given on the command line, after the configured ones.
func (cfg *Config) Policy(extra ...string) (*retry.Policy, error) {
	bases := append(append([]string(nil), cfg.Endpoints...), extra...)
	endpoints, err := endpoint.NewList(bases...)
	if err != nil {
		return nil, err
	}

	strategies := make([]retry.Strategy, len(cfg.Strategies))
	for i, s := range cfg.Strategies {
		if strategies[i], err = s.strategy(); err != nil {
			return nil, fmt.Errorf("strategies[%d]: %w", i, err)
		}
	}

	maxRetries := retry.DefaultMaxRetries
	if cfg.MaxRetries != nil {
		maxRetries = *cfg.MaxRetries
	}

	return retry.NewPolicy(maxRetries, endpoints, strategies...)
}

func (s StrategyConfig) strategy() (retry.Strategy, error) {
	switch s.Type {
	case TypeThrottling:
		return retry.ThrottlingRedirect, nil
	case TypeBackoff:
		if s.BaseDelay <= 0 || s.MaxDelay < s.BaseDelay {
			return nil, errors.New("invalid backoff delays")
		}
		var decider retry.DeciderFunc
		if len(s.StatusCodes) > 0 {
			decider = retry.StatusCode(s.StatusCodes...)
		} else {
			decider = retry.StatusCode(retry.DefaultStatusCodes...)
		}
		if s.TransientErrors == nil || *s.TransientErrors {
			decider = decider.Or(retry.TransientErr)
		}
		waiter := retry.NewExpWaiter(s.BaseDelay, s.MaxDelay, rand.NewSource(time.Now().UnixNano()))
		if s.RetryAfter {
			waiter = retry.NewRetryAfterWaiter(waiter)
		}
		return retry.NewBackoff(decider, waiter), nil
	default:
		return nil, fmt.Errorf("unknown type %q", s.Type)
	}
}
