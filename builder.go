// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httpcalls

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gogama/httpcalls/dispatch"
	"github.com/gogama/httpcalls/httperr"
	"github.com/gogama/httpcalls/request"
)

// A Builder accumulates the configuration of one request and sends it.
// Obtain a Builder from one of the Client method functions, chain
// configuration calls, and finish with Send:
//
//	resp, err := client.Get("/api/users").
//		Header("Accept", "application/json").
//		WithLoader(true).
//		CallName("fetch_users").
//		Send(ctx)
//
// Every configuration method returns the builder, and the last call
// wins for each setting. Send freezes a private copy of the
// configuration into a request.Plan, so nothing done to the builder
// afterwards affects the request in flight. A builder can only be sent
// once.
//
// A Builder is not safe for concurrent use.
type Builder struct {
	client     *Client
	method     string
	url        string
	defaults   http.Header
	header     http.Header
	body       request.Body
	form       *request.Form
	timeout    time.Duration
	noTimeout  bool
	retry      *request.Retry
	callName   string
	loader     bool
	progress   bool
	notify     bool
	dispatcher dispatch.Dispatcher
	err        error
	sent       bool
}

func newBuilder(c *Client, method, url string) *Builder {
	return &Builder{
		client:   c,
		method:   method,
		url:      url,
		defaults: c.Header.Clone(),
		header:   make(http.Header),
	}
}

// Header sets the header field key to value, replacing any value set
// before, including a client default.
//
// An explicitly set Content-Type always wins over the content type the
// body would imply, whatever the order of the calls.
func (b *Builder) Header(key, value string) *Builder {
	b.header.Set(key, value)
	return b
}

// Headers sets every header field in m, as if by calling Header for
// each entry.
func (b *Builder) Headers(m map[string]string) *Builder {
	for k, v := range m {
		b.header.Set(k, v)
	}
	return b
}

// BasicAuth sets the Authorization header to use HTTP Basic
// Authentication with the given username and password.
func (b *Builder) BasicAuth(username, password string) *Builder {
	p := request.Plan{Header: b.header}
	p.SetBasicAuth(username, password)
	return b
}

// JSON serializes v as the request body, replacing any body set before.
// Unless a Content-Type header is set explicitly, the request is sent
// with Content-Type application/json.
//
// If v cannot be serialized, the body is left unchanged and Send fails
// with a Serialization error without sending anything. The error stays
// with the builder: setting another body afterwards does not clear it.
func (b *Builder) JSON(v interface{}) *Builder {
	body, err := request.JSONBody(v)
	if err != nil {
		b.fail(err)
		return b
	}
	return b.setBody(body, nil)
}

// FormData sets a multipart form as the request body, replacing any
// body set before. The form is encoded when the request is sent, and
// the request Content-Type carries the multipart boundary unless a
// Content-Type header is set explicitly.
func (b *Builder) FormData(f *request.Form) *Builder {
	if f == nil {
		f = request.NewForm()
	}
	return b.setBody(request.Body{}, f)
}

// Text sets s as the request body, replacing any body set before. Unless
// a Content-Type header is set explicitly, the request is sent with
// Content-Type text/plain; charset=utf-8.
func (b *Builder) Text(s string) *Builder {
	return b.setBody(request.TextBody(s), nil)
}

// Binary sets a copy of data as the request body, replacing any body
// set before. No Content-Type is implied.
func (b *Builder) Binary(data []byte) *Builder {
	return b.setBody(request.BinaryBody(data), nil)
}

// BinaryFrom reads r to the end and sets the bytes read as the request
// body, as Binary does. If r implements io.Closer, it is closed.
//
// If reading fails, Send fails with a Serialization error without
// sending anything, even if another body is set afterwards.
func (b *Builder) BinaryFrom(r io.Reader) *Builder {
	data, err := request.BodyBytes(r)
	if err != nil {
		b.fail(err)
		return b
	}
	return b.setBody(request.BinaryBody(data), nil)
}

// WithLoader requests loader enabled and disabled events for the call
// name.
func (b *Builder) WithLoader(on bool) *Builder {
	b.loader = on
	return b
}

// WithProgress requests upload progress events for the call name. It
// only has an effect for FormData and Binary bodies.
func (b *Builder) WithProgress(on bool) *Builder {
	b.progress = on
	return b
}

// WithNotifications requests a success or failure notification event
// when the request ends.
func (b *Builder) WithNotifications(on bool) *Builder {
	b.notify = on
	return b
}

// CallName sets the label used to key the lifecycle events of the
// request.
func (b *Builder) CallName(name string) *Builder {
	b.callName = name
	return b
}

// Timeout sets the per-attempt timeout, overriding the client's timeout
// policy and any earlier NoTimeout call.
func (b *Builder) Timeout(d time.Duration) *Builder {
	b.timeout = d
	b.noTimeout = false
	return b
}

// NoTimeout disables attempt timeouts for the request, including the
// client default.
func (b *Builder) NoTimeout() *Builder {
	b.timeout = 0
	b.noTimeout = true
	return b
}

// Retry allows up to n retries after network failures and attempt
// timeouts, waiting delay * 2^k before retry k+1. Responses with a
// non-2XX status are never retried.
func (b *Builder) Retry(n int, delay time.Duration) *Builder {
	b.retry = &request.Retry{MaxAttempts: n, Delay: delay}
	return b
}

// WithDispatcher sets the dispatcher receiving this request's lifecycle
// events, overriding the client's dispatcher.
func (b *Builder) WithDispatcher(d dispatch.Dispatcher) *Builder {
	b.dispatcher = d
	return b
}

// Plan freezes the builder configuration into a new request plan whose
// context is ctx. It does not mark the builder as sent.
//
// The error returned, if any, is an *httperr.Error of kind
// Configuration, InvalidURL, or Serialization.
func (b *Builder) Plan(ctx context.Context) (*request.Plan, error) {
	if b.err != nil {
		return nil, b.err
	}
	if ctx == nil {
		return nil, httperr.NewConfiguration("nil context")
	}
	u, err := request.ParseURL(b.client.resolve(b.url))
	if err != nil {
		return nil, err
	}
	body := b.body
	if b.form != nil {
		if body, err = request.FormBody(b.form); err != nil {
			return nil, err
		}
	}
	p := &request.Plan{
		Method:            b.method,
		URL:               u,
		Header:            b.planHeader(body),
		Body:              body,
		Timeout:           b.timeout,
		NoTimeout:         b.noTimeout,
		Retry:             b.retry,
		CallName:          b.callName,
		WithLoader:        b.loader,
		WithProgress:      b.progress,
		WithNotifications: b.notify,
		Dispatcher:        b.dispatcher,
	}
	return p.Clone().WithContext(ctx), nil
}

// Send freezes the configuration and executes the request with the
// client, blocking until the request ends. Cancelling ctx aborts the
// request with a Cancelled error; a deadline on ctx bounds the whole
// request, retries included, and ends it with a Timeout error.
//
// Errors detected before sending (configuration, URL, or body
// serialization errors) are returned without any network activity, but
// still produce the failure notification and loader events the builder
// asked for.
func (b *Builder) Send(ctx context.Context) (*Response, error) {
	if b.sent {
		err := httperr.NewConfiguration("request already sent")
		b.notifier().preflight(err)
		return nil, err
	}
	b.sent = true
	p, err := b.Plan(ctx)
	if err != nil {
		b.notifier().preflight(err)
		return nil, err
	}
	return b.client.Do(p)
}

// planHeader merges the client defaults with the header fields set on
// b. A Content-Type implied by body replaces a default one, but not one
// set explicitly.
func (b *Builder) planHeader(body request.Body) http.Header {
	h := b.defaults.Clone()
	if h == nil {
		h = make(http.Header, len(b.header))
	}
	if body.ContentType() != "" {
		h.Del("Content-Type")
	}
	for k, vs := range b.header {
		h[k] = vs
	}
	return h
}

func (b *Builder) setBody(body request.Body, f *request.Form) *Builder {
	b.body = body
	b.form = f
	return b
}

func (b *Builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

func (b *Builder) notifier() *notifier {
	d := b.client.Dispatcher
	if b.dispatcher != nil {
		d = b.dispatcher
	}
	return newNotifier(d, b.callName, b.loader, b.progress, b.notify)
}

// resolve joins url to the base URL unless url is an absolute http or
// https URL.
func (c *Client) resolve(url string) string {
	if c.BaseURL == "" || hasScheme(url, "http://") || hasScheme(url, "https://") {
		return url
	}
	if url == "" {
		return c.BaseURL
	}
	base := strings.TrimRight(c.BaseURL, "/")
	if strings.HasPrefix(url, "?") || strings.HasPrefix(url, "#") {
		return base + url
	}
	return base + "/" + strings.TrimLeft(url, "/")
}

func hasScheme(url, scheme string) bool {
	return len(url) >= len(scheme) && strings.EqualFold(url[:len(scheme)], scheme)
}
