// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/gogama/httpcalls/httperr"
	"golang.org/x/net/http2"
	"golang.org/x/time/rate"
)

// Default values used by New for zero-valued Config fields.
const (
	DefaultMaxIdleConns    = 100
	DefaultIdleConnTimeout = 90 * time.Second
	DefaultDialTimeout     = 30 * time.Second
)

// Config holds the tunables of the *http.Client built by New.
type Config struct {
	// MaxIdleConns bounds the idle connection pool, both in total and
	// per host.
	MaxIdleConns int `yaml:"max_idle_conns"`
	// IdleConnTimeout is how long an idle connection stays pooled.
	IdleConnTimeout time.Duration `yaml:"idle_conn_timeout"`
	// DialTimeout bounds establishing a TCP connection.
	DialTimeout time.Duration `yaml:"dial_timeout"`
	// TLSInsecure disables server certificate verification.
	TLSInsecure bool `yaml:"tls_insecure"`
	// HTTP2 enables HTTP/2 over TLS.
	HTTP2 bool `yaml:"http2"`
	// NoRedirects makes the client return 3XX responses instead of
	// following them.
	NoRedirects bool `yaml:"no_redirects"`
}

// A Doer sends HTTP requests. *http.Client is a Doer.
type Doer interface {
	Do(r *http.Request) (*http.Response, error)
}

// New builds an *http.Client from cfg. Zero-valued fields take the
// package defaults.
//
// The client has no overall Timeout: attempt timeouts are the job of
// the request context.
func New(cfg Config) (*http.Client, error) {
	if cfg.MaxIdleConns <= 0 {
		cfg.MaxIdleConns = DefaultMaxIdleConns
	}
	if cfg.IdleConnTimeout <= 0 {
		cfg.IdleConnTimeout = DefaultIdleConnTimeout
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = DefaultDialTimeout
	}

	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.DialTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxIdleConns,
		IdleConnTimeout:     cfg.IdleConnTimeout,
		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: cfg.TLSInsecure,
		},
	}
	if cfg.HTTP2 {
		if err := http2.ConfigureTransport(t); err != nil {
			return nil, errors.Wrap(err, "configure http2 transport")
		}
	}

	c := &http.Client{Transport: t}
	if cfg.NoRedirects {
		c.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}
	return c, nil
}

// RateLimited returns a Doer which waits on l before passing each request
// to d. The wait honours the request context: if the context ends first,
// the request is not sent and the error is the context's error, so that
// an attempt timeout spent waiting still counts as a timeout.
//
// A nil limiter returns d unchanged.
func RateLimited(d Doer, l *rate.Limiter) Doer {
	if d == nil {
		panic("httpcalls/transport: nil doer")
	}
	if l == nil {
		return d
	}
	return &limited{d: d, l: l}
}

// NewLimiter returns a limiter allowing perSecond requests per second
// with the given burst, or nil if perSecond is not positive. A burst
// below 1 is raised to 1.
func NewLimiter(perSecond float64, burst int) *rate.Limiter {
	if perSecond <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}

type limited struct {
	d Doer
	l *rate.Limiter
}

func (x *limited) Do(r *http.Request) (*http.Response, error) {
	ctx := r.Context()
	if err := x.l.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		// The wait would outlast the context deadline.
		return nil, httperr.NewTimeout(err)
	}
	return x.d.Do(r)
}

// CloseIdleConnections forwards to the wrapped Doer if it has the
// method.
func (x *limited) CloseIdleConnections() {
	type closer interface {
		CloseIdleConnections()
	}
	if c, ok := x.d.(closer); ok {
		c.CloseIdleConnections()
	}
}
