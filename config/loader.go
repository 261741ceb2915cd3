// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Laisky/errors/v2"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes the names of the environment variables read by
// FromEnv.
const EnvPrefix = "HTTPCALLS_"

// Load reads and parses a YAML configuration file, applies environment
// overrides, and validates the result. An empty path skips the file and
// starts from DefaultConfig.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "failed to read config file")
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrap(err, "failed to parse config file")
		}
	}

	if err := FromEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}

	if err := validate(cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	return cfg, nil
}

// FromEnv overrides cfg with the HTTPCALLS_* variables lookup finds:
//
//	HTTPCALLS_BASE_URL            base_url
//	HTTPCALLS_TIMEOUT             timeout (Go duration)
//	HTTPCALLS_RETRY_MAX_ATTEMPTS  retry.max_attempts
//	HTTPCALLS_RETRY_DELAY         retry.delay (Go duration)
//	HTTPCALLS_RATE_LIMIT          rate_limit.per_second
//	HTTPCALLS_RATE_BURST          rate_limit.burst
//	HTTPCALLS_HTTP2               transport.http2
//	HTTPCALLS_TLS_INSECURE        transport.tls_insecure
//	HTTPCALLS_LOG_LEVEL           log.level
//	HTTPCALLS_METRICS             metrics.enabled
func FromEnv(cfg *Config, lookup func(string) (string, bool)) error {
	env := func(name string) (string, bool) {
		v, ok := lookup(EnvPrefix + name)
		return strings.TrimSpace(v), ok && strings.TrimSpace(v) != ""
	}

	if v, ok := env("BASE_URL"); ok {
		cfg.BaseURL = v
	}
	if v, ok := env("LOG_LEVEL"); ok {
		cfg.Log.Level = v
	}

	durations := []struct {
		name string
		dst  *time.Duration
	}{
		{"TIMEOUT", &cfg.Timeout},
		{"RETRY_DELAY", &cfg.Retry.Delay},
	}
	for _, d := range durations {
		if v, ok := env(d.name); ok {
			x, err := time.ParseDuration(v)
			if err != nil {
				return errors.Wrapf(err, "%s%s", EnvPrefix, d.name)
			}
			*d.dst = x
		}
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"RETRY_MAX_ATTEMPTS", &cfg.Retry.MaxAttempts},
		{"RATE_BURST", &cfg.RateLimit.Burst},
	}
	for _, i := range ints {
		if v, ok := env(i.name); ok {
			x, err := strconv.Atoi(v)
			if err != nil {
				return errors.Wrapf(err, "%s%s", EnvPrefix, i.name)
			}
			*i.dst = x
		}
	}

	if v, ok := env("RATE_LIMIT"); ok {
		x, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return errors.Wrapf(err, "%sRATE_LIMIT", EnvPrefix)
		}
		cfg.RateLimit.PerSecond = x
	}

	bools := []struct {
		name string
		dst  *bool
	}{
		{"HTTP2", &cfg.Transport.HTTP2},
		{"TLS_INSECURE", &cfg.Transport.TLSInsecure},
		{"METRICS", &cfg.Metrics.Enabled},
	}
	for _, b := range bools {
		if v, ok := env(b.name); ok {
			x, err := strconv.ParseBool(v)
			if err != nil {
				return errors.Wrapf(err, "%s%s", EnvPrefix, b.name)
			}
			*b.dst = x
		}
	}

	return nil
}

// validate checks the configuration for errors.
func validate(cfg *Config) error {
	if cfg.BaseURL != "" {
		u, err := url.Parse(cfg.BaseURL)
		if err != nil {
			return errors.Wrap(err, "base_url")
		}
		if !u.IsAbs() || u.Host == "" {
			return errors.Errorf("base_url must be an absolute URL, got %q", cfg.BaseURL)
		}
	}
	for k := range cfg.Headers {
		if strings.TrimSpace(k) == "" {
			return errors.New("headers: empty header name")
		}
	}
	if cfg.Timeout < 0 {
		return errors.New("timeout must not be negative")
	}
	if cfg.Retry.MaxAttempts < 0 {
		return errors.New("retry.max_attempts must not be negative")
	}
	if cfg.Retry.Delay < 0 {
		return errors.New("retry.delay must not be negative")
	}
	if cfg.RateLimit.PerSecond < 0 {
		return errors.New("rate_limit.per_second must not be negative")
	}
	if cfg.RateLimit.Burst < 0 {
		return errors.New("rate_limit.burst must not be negative")
	}
	if cfg.Transport.MaxIdleConns < 0 {
		return errors.New("transport.max_idle_conns must not be negative")
	}
	if _, err := zapcore.ParseLevel(cfg.Log.Level); err != nil {
		return errors.Errorf("log.level %q is not a valid level", cfg.Log.Level)
	}
	if cfg.Metrics.Enabled && cfg.Metrics.Namespace == "" {
		return errors.New("metrics.namespace is required when metrics are enabled")
	}

	return nil
}
