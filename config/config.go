// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/gogama/httpcalls/transport"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultTimeout is the attempt timeout of the default configuration.
const DefaultTimeout = 30 * time.Second

// Config is the complete configuration of a client.
type Config struct {
	// BaseURL is joined to relative request paths.
	BaseURL string `yaml:"base_url"`
	// Headers are sent with every request unless overridden.
	Headers map[string]string `yaml:"headers"`
	// Timeout is the default attempt timeout. Zero disables it.
	Timeout time.Duration `yaml:"timeout"`
	// RequestIDHeader names a header carrying the execution ID.
	RequestIDHeader string `yaml:"request_id_header"`

	Retry     Retry            `yaml:"retry"`
	RateLimit RateLimit        `yaml:"rate_limit"`
	Transport transport.Config `yaml:"transport"`
	Log       Log              `yaml:"log"`
	Metrics   Metrics          `yaml:"metrics"`
}

// Retry is the default retry setting: up to MaxAttempts retries after
// network failures and attempt timeouts, waiting Delay * 2^k before
// retry k+1.
type Retry struct {
	MaxAttempts int           `yaml:"max_attempts"`
	Delay       time.Duration `yaml:"delay"`
}

// RateLimit throttles outgoing attempts. A PerSecond of zero disables
// it.
type RateLimit struct {
	PerSecond float64 `yaml:"per_second"`
	Burst     int     `yaml:"burst"`
}

// Log configures the client logger.
type Log struct {
	// Level is a zap level name: debug, info, warn, error.
	Level string `yaml:"level"`
	// Development selects the human-friendly console encoder.
	Development bool `yaml:"development"`
}

// Metrics configures Prometheus instrumentation.
type Metrics struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		Headers: map[string]string{},
		Timeout: DefaultTimeout,
		RateLimit: RateLimit{
			Burst: 1,
		},
		Transport: transport.Config{
			MaxIdleConns:    transport.DefaultMaxIdleConns,
			IdleConnTimeout: transport.DefaultIdleConnTimeout,
			DialTimeout:     transport.DefaultDialTimeout,
		},
		Log: Log{
			Level: "info",
		},
		Metrics: Metrics{
			Namespace: "httpcalls",
		},
	}
}

// Logger builds a zap logger from the log settings.
func (l Log) Logger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(l.Level)
	if err != nil {
		return nil, errors.Wrapf(err, "log.level %q", l.Level)
	}
	zc := zap.NewProductionConfig()
	if l.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	logger, err := zc.Build()
	if err != nil {
		return nil, errors.Wrap(err, "build logger")
	}
	return logger, nil
}
