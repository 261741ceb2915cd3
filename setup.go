// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httpcalls

import (
	"net/http"

	"github.com/Laisky/errors/v2"
	"github.com/gogama/httpcalls/config"
	"github.com/gogama/httpcalls/retry"
	"github.com/gogama/httpcalls/timeout"
	"github.com/gogama/httpcalls/transport"
)

// NewClient builds a ready-to-use client from cfg: an HTTPDoer tuned
// per cfg.Transport and throttled per cfg.RateLimit, default headers,
// a fixed timeout policy, an exponential retry policy, a logger and an
// empty handler group.
//
// The Dispatcher is left nil. Set it before first use to receive
// lifecycle events.
func NewClient(cfg *config.Config) (*Client, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	hc, err := transport.New(cfg.Transport)
	if err != nil {
		return nil, err
	}
	logger, err := cfg.Log.Logger()
	if err != nil {
		return nil, err
	}

	header := make(http.Header, len(cfg.Headers))
	for k, v := range cfg.Headers {
		header.Set(k, v)
	}

	c := &Client{
		HTTPDoer:        transport.RateLimited(hc, transport.NewLimiter(cfg.RateLimit.PerSecond, cfg.RateLimit.Burst)),
		BaseURL:         cfg.BaseURL,
		Header:          header,
		TimeoutPolicy:   timeout.Infinite,
		RetryPolicy:     retry.Never,
		Handlers:        &HandlerGroup{},
		Logger:          logger,
		RequestIDHeader: cfg.RequestIDHeader,
	}
	if cfg.Timeout < 0 {
		return nil, errors.Errorf("negative timeout %s", cfg.Timeout)
	} else if cfg.Timeout > 0 {
		c.TimeoutPolicy = timeout.Fixed(cfg.Timeout)
	}
	if cfg.Retry.MaxAttempts < 0 || cfg.Retry.Delay < 0 {
		return nil, errors.Errorf("negative retry setting %d/%s", cfg.Retry.MaxAttempts, cfg.Retry.Delay)
	} else if cfg.Retry.MaxAttempts > 0 {
		c.RetryPolicy = retry.Exponential(cfg.Retry.MaxAttempts, cfg.Retry.Delay)
	}

	return c, nil
}
