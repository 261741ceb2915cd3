// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"bytes"
	"context"
	"encoding/base64"
	"io"
	"net/http"
	urlpkg "net/url"
	"strings"
	"time"

	"github.com/gogama/httpcalls/dispatch"
	"github.com/gogama/httpcalls/httperr"
	"golang.org/x/net/http/httpguts"
)

var (
	template, _ = http.NewRequest("GET", "", nil)
)

const (
	nilCtxMsg = "httpcalls/request: nil context"
)

// A Retry is a per-plan retry policy: up to MaxAttempts retries after the
// initial attempt, waiting Delay * 2^n after the n-th failed attempt
// (zero-based). Only network failures and attempt timeouts are retried.
type Retry struct {
	MaxAttempts int
	Delay       time.Duration
}

// A Plan contains a logical HTTP request plan for execution by a
// client.
//
// The logical request described by a Plan may result in multiple
// lower-level http.Request attempts, for example if a failed attempt
// needs to be retried. A Plan is normally produced by a Builder, which
// freezes a private copy of its configuration when the request is sent,
// but it may also be constructed with NewPlan and executed directly by
// Client.Do.
//
// Like the http.Request structure, a Plan has a context which controls
// the overall plan execution and can be used to cancel the inflight
// execution of a Plan at any time.
type Plan struct {
	// Method specifies the HTTP method. It must be one of GET, POST,
	// PUT, DELETE, PATCH, HEAD, or OPTIONS. An empty string means GET.
	Method string

	// URL specifies the absolute URL to access.
	URL *urlpkg.URL

	// Header contains the request header fields to be sent by the
	// client. Headers set here take precedence over any header the
	// client would derive from the body (such as Content-Type).
	Header http.Header

	// Body is the pre-buffered request body to be sent.
	Body Body

	// Timeout is the per-attempt timeout. Zero means the client's
	// timeout policy decides. It is ignored if NoTimeout is set.
	Timeout time.Duration

	// NoTimeout disables attempt timeouts for this plan, overriding
	// any client default.
	NoTimeout bool

	// Retry is the retry policy for this plan. If nil, the client's
	// retry policy is used.
	Retry *Retry

	// CallName is an opaque label used to key the lifecycle events of
	// this plan. Empty means the unlabeled default channel.
	CallName string

	// WithLoader requests loader enabled/disabled lifecycle events.
	WithLoader bool

	// WithProgress requests upload progress lifecycle events. It only
	// has an effect for FormData and Binary bodies.
	WithProgress bool

	// WithNotifications requests success/failure lifecycle events.
	WithNotifications bool

	// Dispatcher receives the plan's lifecycle events. If nil, the
	// client's dispatcher is used.
	Dispatcher dispatch.Dispatcher

	// ctx allows the entire Plan exec to be cancelled. It should only
	// be modified by copying the whole Plan using WithContext.
	ctx context.Context
}

// NewPlan wraps NewPlanWithContext using the background context.
func NewPlan(method, url string, body interface{}) (*Plan, error) {
	return NewPlanWithContext(context.Background(), method, url, body)
}

// NewPlanWithContext returns a new Plan given a method, absolute URL,
// and optional body.
//
// Parameter body may be nil (empty body), a Body, a string (text body),
// or a []byte, io.Reader, or io.ReadCloser (binary body). See BodyOf.
//
// The returned error, if any, is an *httperr.Error of kind
// Configuration or InvalidURL.
func NewPlanWithContext(ctx context.Context, method, url string, body interface{}) (*Plan, error) {
	if ctx == nil {
		return nil, httperr.NewConfiguration(nilCtxMsg)
	}
	if method == "" {
		method = http.MethodGet
	}
	if !validMethod(method) {
		return nil, httperr.NewConfiguration("invalid method %q", method)
	}
	u, err := ParseURL(url)
	if err != nil {
		return nil, err
	}
	b, err := BodyOf(body)
	if err != nil {
		return nil, err
	}
	return &Plan{
		ctx:    ctx,
		Method: method,
		URL:    u,
		Header: make(http.Header),
		Body:   b,
	}, nil
}

// ParseURL parses rawURL, which must be absolute, into a URL. The error
// returned, if any, is an *httperr.Error of kind InvalidURL.
func ParseURL(rawURL string) (*urlpkg.URL, error) {
	if strings.TrimSpace(rawURL) == "" {
		return nil, httperr.NewInvalidURL(rawURL, nil)
	}
	u, err := urlpkg.Parse(rawURL)
	if err != nil {
		return nil, httperr.NewInvalidURL(rawURL, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, httperr.NewInvalidURL(rawURL, nil)
	}
	u.Host = removeEmptyPort(u.Host)
	return u, nil
}

// Context returns the request plan's context. The context controls
// cancellation of the overall request plan. To change the context, use
// WithContext.
//
// The returned context is always non-nil; it defaults to the
// background context.
func (p *Plan) Context() context.Context {
	if p.ctx != nil {
		return p.ctx
	}
	return context.Background()
}

// WithContext returns a shallow copy of p with its context changed to
// ctx, which must be non-nil.
//
// The context controls the entire lifetime of a logical request plan
// and its execution, including: making individual request attempts,
// running event handlers, and waiting for a retry backoff to expire.
// Cancelling the context ends the execution with a Cancelled error.
func (p *Plan) WithContext(ctx context.Context) *Plan {
	if ctx == nil {
		panic(nilCtxMsg)
	}
	p2 := new(Plan)
	*p2 = *p
	p2.ctx = ctx
	return p2
}

// Clone returns a deep copy of p. Changes to the header, URL, or retry
// policy of either plan do not affect the other. Bodies are immutable
// and are shared.
func (p *Plan) Clone() *Plan {
	p2 := new(Plan)
	*p2 = *p
	if p.URL != nil {
		u := *p.URL
		if p.URL.User != nil {
			user := *p.URL.User
			u.User = &user
		}
		p2.URL = &u
	}
	p2.Header = p.Header.Clone()
	if p2.Header == nil {
		p2.Header = make(http.Header)
	}
	if p.Retry != nil {
		r := *p.Retry
		p2.Retry = &r
	}
	return p2
}

// Validate checks the plan for configuration mistakes which can be
// detected before any network activity. The error returned, if any, is
// an *httperr.Error of kind Configuration or InvalidURL.
func (p *Plan) Validate() error {
	method := p.Method
	if method == "" {
		method = http.MethodGet
	}
	if !validMethod(method) {
		return httperr.NewConfiguration("invalid method %q", p.Method)
	}
	if p.URL == nil {
		return httperr.NewInvalidURL("", nil)
	}
	if !p.URL.IsAbs() || p.URL.Host == "" {
		return httperr.NewInvalidURL(p.URL.String(), nil)
	}
	if p.Timeout < 0 {
		return httperr.NewConfiguration("negative timeout %s", p.Timeout)
	}
	if p.Retry != nil {
		if p.Retry.MaxAttempts < 0 {
			return httperr.NewConfiguration("negative retry count %d", p.Retry.MaxAttempts)
		}
		if p.Retry.Delay < 0 {
			return httperr.NewConfiguration("negative retry delay %s", p.Retry.Delay)
		}
	}
	for name, values := range p.Header {
		if !httpguts.ValidHeaderFieldName(name) {
			return httperr.NewConfiguration("invalid header name %q", name)
		}
		for _, value := range values {
			if !httpguts.ValidHeaderFieldValue(value) {
				return httperr.NewConfiguration("invalid value for header %q", name)
			}
		}
	}
	return nil
}

// SetBasicAuth sets the request plan's Authorization header to use HTTP
// Basic Authentication with the provided username and password.
//
// With HTTP Basic Authentication the provided username and password
// are not encrypted.
func (p *Plan) SetBasicAuth(username, password string) {
	p.Header.Set("Authorization", "Basic "+basicAuth(username, password))
}

// ToRequest creates an HTTP request corresponding to the given request
// plan. The context of the new request is set to ctx, which may not be
// nil.
//
// The request gets its own copy of the plan header. If the plan header
// has no Content-Type and the body has a derived content type (JSON,
// text, or multipart form data), the derived type is set on the copy.
func (p *Plan) ToRequest(ctx context.Context) *http.Request {
	r := template.WithContext(ctx)
	r.Method = p.Method
	if r.Method == "" {
		r.Method = http.MethodGet
	}
	r.URL = p.URL
	r.Host = p.URL.Host
	r.Header = p.Header.Clone()
	if r.Header == nil {
		r.Header = make(http.Header)
	}
	if ct := p.Body.ContentType(); ct != "" && r.Header.Get("Content-Type") == "" {
		r.Header.Set("Content-Type", ct)
	}
	data := p.Body.data
	if len(data) > 0 {
		r.Body = io.NopCloser(bytes.NewReader(data))
		r.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		}
		r.ContentLength = int64(len(data))
	}
	return r
}

// basicAuth is lifted verbatim from net/http/client.go.
//
// See 2 (end of page 4) https://www.ietf.org/rfc/rfc2617.txt
// "To receive authorization, the client sends the userid and password,
// separated by a single colon (":") character, within a base64
// encoded string in the credentials."
// It is not meant to be urlencoded.
func basicAuth(username, password string) string {
	auth := username + ":" + password
	return base64.StdEncoding.EncodeToString([]byte(auth))
}

func validMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete,
		http.MethodPatch, http.MethodHead, http.MethodOptions:
		return true
	default:
		return false
	}
}

// hasPort is lifted verbatim from net/http/http.go
//
// Given a string of the form "host", "host:port", or "[ipv6::address]:port",
// return true if the string includes a port.
func hasPort(s string) bool { return strings.LastIndex(s, ":") > strings.LastIndex(s, "]") }

// removeEmptyPort is lifted verbatim from net/http/http.go
//
// removeEmptyPort strips the empty port in ":port" to ""
// as mandated by RFC 3986 Section 6.2.3.
func removeEmptyPort(host string) string {
	if hasPort(host) {
		return strings.TrimSuffix(host, ":")
	}
	return host
}
