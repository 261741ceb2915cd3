// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "httpcalls", cfg.Metrics.Namespace)
	assert.NotNil(t, cfg.Headers)
	assert.NoError(t, validate(cfg))
}

func TestLoad(t *testing.T) {
	t.Run("no file", func(t *testing.T) {
		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), cfg)
	})
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read config file")
	})
	t.Run("bad yaml", func(t *testing.T) {
		path := writeFile(t, "timeout: [")
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse config file")
	})
	t.Run("full", func(t *testing.T) {
		path := writeFile(t, `
base_url: https://api.example.test/v1
headers:
  Accept: application/json
timeout: 5s
request_id_header: X-Request-Id
retry:
  max_attempts: 2
  delay: 100ms
rate_limit:
  per_second: 20
  burst: 4
transport:
  max_idle_conns: 10
  idle_conn_timeout: 1m
  tls_insecure: true
  http2: true
log:
  level: debug
  development: true
metrics:
  enabled: true
  namespace: app
`)
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "https://api.example.test/v1", cfg.BaseURL)
		assert.Equal(t, map[string]string{"Accept": "application/json"}, cfg.Headers)
		assert.Equal(t, 5*time.Second, cfg.Timeout)
		assert.Equal(t, "X-Request-Id", cfg.RequestIDHeader)
		assert.Equal(t, Retry{MaxAttempts: 2, Delay: 100 * time.Millisecond}, cfg.Retry)
		assert.Equal(t, RateLimit{PerSecond: 20, Burst: 4}, cfg.RateLimit)
		assert.Equal(t, 10, cfg.Transport.MaxIdleConns)
		assert.Equal(t, time.Minute, cfg.Transport.IdleConnTimeout)
		assert.True(t, cfg.Transport.TLSInsecure)
		assert.True(t, cfg.Transport.HTTP2)
		assert.Equal(t, Log{Level: "debug", Development: true}, cfg.Log)
		assert.Equal(t, Metrics{Enabled: true, Namespace: "app"}, cfg.Metrics)
	})
	t.Run("partial keeps defaults", func(t *testing.T) {
		path := writeFile(t, "base_url: http://localhost:8080\n")
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:8080", cfg.BaseURL)
		assert.Equal(t, DefaultTimeout, cfg.Timeout)
		assert.Equal(t, "info", cfg.Log.Level)
	})
	t.Run("env overrides file", func(t *testing.T) {
		path := writeFile(t, "timeout: 5s\n")
		t.Setenv("HTTPCALLS_TIMEOUT", "250ms")
		t.Setenv("HTTPCALLS_BASE_URL", "https://env.example.test")
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 250*time.Millisecond, cfg.Timeout)
		assert.Equal(t, "https://env.example.test", cfg.BaseURL)
	})
	t.Run("invalid", func(t *testing.T) {
		path := writeFile(t, "retry:\n  max_attempts: -1\n")
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid configuration")
		assert.Contains(t, err.Error(), "retry.max_attempts")
	})
}

func TestFromEnv(t *testing.T) {
	t.Run("all", func(t *testing.T) {
		env := map[string]string{
			"HTTPCALLS_BASE_URL":           "https://x.example.test",
			"HTTPCALLS_TIMEOUT":            "2s",
			"HTTPCALLS_RETRY_MAX_ATTEMPTS": "3",
			"HTTPCALLS_RETRY_DELAY":        "50ms",
			"HTTPCALLS_RATE_LIMIT":         "2.5",
			"HTTPCALLS_RATE_BURST":         "6",
			"HTTPCALLS_HTTP2":              "true",
			"HTTPCALLS_TLS_INSECURE":       "1",
			"HTTPCALLS_LOG_LEVEL":          "warn",
			"HTTPCALLS_METRICS":            "true",
		}
		cfg := DefaultConfig()
		require.NoError(t, FromEnv(cfg, lookup(env)))
		assert.Equal(t, "https://x.example.test", cfg.BaseURL)
		assert.Equal(t, 2*time.Second, cfg.Timeout)
		assert.Equal(t, Retry{MaxAttempts: 3, Delay: 50 * time.Millisecond}, cfg.Retry)
		assert.Equal(t, RateLimit{PerSecond: 2.5, Burst: 6}, cfg.RateLimit)
		assert.True(t, cfg.Transport.HTTP2)
		assert.True(t, cfg.Transport.TLSInsecure)
		assert.Equal(t, "warn", cfg.Log.Level)
		assert.True(t, cfg.Metrics.Enabled)
	})
	t.Run("blank ignored", func(t *testing.T) {
		cfg := DefaultConfig()
		require.NoError(t, FromEnv(cfg, lookup(map[string]string{"HTTPCALLS_TIMEOUT": "  "})))
		assert.Equal(t, DefaultTimeout, cfg.Timeout)
	})
	testCases := []string{
		"HTTPCALLS_TIMEOUT",
		"HTTPCALLS_RETRY_DELAY",
		"HTTPCALLS_RETRY_MAX_ATTEMPTS",
		"HTTPCALLS_RATE_BURST",
		"HTTPCALLS_RATE_LIMIT",
		"HTTPCALLS_HTTP2",
	}
	for _, name := range testCases {
		t.Run("bad "+name, func(t *testing.T) {
			err := FromEnv(DefaultConfig(), lookup(map[string]string{name: "bogus"}))
			require.Error(t, err)
			assert.Contains(t, err.Error(), name)
		})
	}
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name   string
		modify func(*Config)
		msg    string
	}{
		{"relative base url", func(c *Config) { c.BaseURL = "/api" }, "base_url"},
		{"empty header name", func(c *Config) { c.Headers[" "] = "x" }, "empty header name"},
		{"negative timeout", func(c *Config) { c.Timeout = -1 }, "timeout"},
		{"negative retry delay", func(c *Config) { c.Retry.Delay = -1 }, "retry.delay"},
		{"negative rate", func(c *Config) { c.RateLimit.PerSecond = -1 }, "rate_limit.per_second"},
		{"negative burst", func(c *Config) { c.RateLimit.Burst = -1 }, "rate_limit.burst"},
		{"negative idle conns", func(c *Config) { c.Transport.MaxIdleConns = -1 }, "max_idle_conns"},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"metrics without namespace", func(c *Config) {
			c.Metrics.Enabled = true
			c.Metrics.Namespace = ""
		}, "metrics.namespace"},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			cfg := DefaultConfig()
			testCase.modify(cfg)
			err := validate(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), testCase.msg)
		})
	}
}

func TestLog_Logger(t *testing.T) {
	logger, err := Log{Level: "debug"}.Logger()
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(-1))

	logger, err = Log{Level: "error", Development: true}.Logger()
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(1))

	_, err = Log{Level: "chatty"}.Logger()
	assert.Error(t, err)
}

func writeFile(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "httpcalls.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func lookup(env map[string]string) func(string) (string, bool) {
	return func(name string) (string, bool) {
		v, ok := env[name]
		return v, ok
	}
}
