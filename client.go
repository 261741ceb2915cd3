// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httpcalls

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gogama/httpcalls/dispatch"
	"github.com/gogama/httpcalls/httperr"
	"github.com/gogama/httpcalls/request"
	"github.com/gogama/httpcalls/retry"
	"github.com/gogama/httpcalls/timeout"
	"github.com/gogama/httpcalls/transient"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// An HTTPDoer implements a Do method in the same manner as the GoLang
// standard library http.Client from the net/http package.
//
// HTTPDoer is the transport adapter of the client. The client reads and
// closes the body of every response the HTTPDoer returns.
type HTTPDoer interface {
	// Do sends an HTTP request and returns an HTTP response following
	// policy (such as redirects, cookies, auth) configured on the
	// HTTPDoer.
	//
	// The Do method must follow the contract documented on the GoLang
	// standard library http.Client from the net/http package.
	Do(r *http.Request) (*http.Response, error)
}

var emptyHandlers = HandlerGroup{}

// A Client is an HTTP client with timeout, retry, upload progress, and
// lifecycle notification support. Its zero value is a valid
// configuration.
//
// The zero value client uses http.DefaultClient (from net/http) as the
// HTTPDoer, timeout.DefaultPolicy (no timeout) as the timeout policy,
// retry.Never as the retry policy, dispatch.Nop as the dispatcher, a
// no-op logger, and an empty handler group (no event handlers/plug-ins).
//
// Client's HTTPDoer typically has an internal state (cached TCP
// connections) so Client instances should be reused instead of created
// as needed. Client is safe for concurrent use by multiple goroutines,
// provided its fields are not changed after first use.
//
// Requests are normally made with a Builder obtained from one of the
// method functions (Get, Post, Put, Delete, Patch, Head, Options):
//
//	resp, err := client.Post("/api/users").
//		JSON(user).
//		Retry(2, 100*time.Millisecond).
//		WithNotifications(true).
//		Send(ctx)
//
// On top of the HTTP request features provided by the HTTPDoer, Client
// adds the following features:
//
// • Client reads and buffers the entire HTTP response body, and
// normalizes the outcome into a *Response or an *httperr.Error;
//
// • Client retries network failures and attempt timeouts using the
// per-request retry setting or a customizable retry policy;
//
// • Client sets individual request attempt timeouts using the
// per-request timeout or a customizable timeout policy;
//
// • Client reports upload progress, and emits loader and notification
// events to a dispatch.Dispatcher; and
//
// • Client invokes user-provided handler functions at designated plug-in
// points within the attempt/retry loop, allowing new features to be
// mixed in from outside libraries.
type Client struct {
	// HTTPDoer specifies the mechanics of sending HTTP requests and
	// receiving responses.
	//
	// If HTTPDoer is nil, http.DefaultClient from the standard net/http
	// package is used.
	HTTPDoer HTTPDoer
	// BaseURL is joined to every relative path given to a Builder.
	// Absolute http and https URLs bypass it.
	BaseURL string
	// Header holds default header fields sent with every request made
	// through a Builder. Per-request headers override them, and so
	// does the Content-Type implied by a request body.
	Header http.Header
	// RetryPolicy decides when to retry failed attempts and how long
	// to sleep after a failed attempt before retrying. It is used for
	// plans which have no retry setting of their own.
	//
	// If RetryPolicy is nil, retry.Never is used.
	RetryPolicy retry.Policy
	// TimeoutPolicy specifies how to set timeouts on individual request
	// attempts. It is used for plans which have no timeout setting of
	// their own.
	//
	// If TimeoutPolicy is nil, timeout.DefaultPolicy is used.
	TimeoutPolicy timeout.Policy
	// Dispatcher receives the lifecycle events (loader, progress,
	// notifications) of every request which asks for them.
	//
	// If Dispatcher is nil, lifecycle events are discarded.
	Dispatcher dispatch.Dispatcher
	// Handlers allows custom handler chains to be invoked when
	// designated events occur during execution of a request plan.
	//
	// If Handlers is nil, no custom handlers will be run.
	Handlers *HandlerGroup
	// Logger receives debug logs about retries and request outcomes.
	//
	// If Logger is nil, nothing is logged.
	Logger *zap.Logger
	// RequestIDHeader, if not empty, names a header which is set to the
	// execution ID on every attempt, unless the plan already sets it.
	RequestIDHeader string
}

// Do executes an HTTP request plan and returns the results, following
// timeout and retry settings on the plan and policies set on Client, and
// low-level policy set on the underlying HTTPDoer.
//
// The result returned is the result after the final HTTP request
// attempt made during the plan execution. Only Network and Timeout
// errors are retried, and only as far as the retry setting allows.
//
// If the final attempt received a 2XX response, the returned *Response
// is non-nil and the error is nil. Otherwise the response is nil and the
// error is an *httperr.Error:
//
// • Configuration or InvalidURL, if the plan is invalid (no attempt is
// made);
//
// • Http, if the server answered with a status code outside the 2XX
// range;
//
// • Network or Timeout, if the last attempt failed in transport or
// timed out;
//
// • InvalidResponse, if the HTTPDoer returned something that is not a
// valid HTTP response;
//
// • Cancelled, if the plan context was cancelled, or Timeout if the plan
// context deadline expired. Neither is retried.
func (c *Client) Do(p *request.Plan) (*Response, error) {
	n := planNotifier(c.Dispatcher, p)
	if err := p.Validate(); err != nil {
		n.preflight(err)
		return nil, err
	}

	e := &request.Execution{
		Plan: p,
		ID:   uuid.New(),
	}
	logger := c.logger().With(
		zap.String("call", p.CallName),
		zap.Stringer("execution", e.ID),
	)

	doer := c.doer()
	timeoutPolicy := c.timeoutPolicy(p)
	retryPolicy := c.retryPolicy(p)

	handlers := c.Handlers
	if handlers == nil {
		handlers = &emptyHandlers
	}
	handlers.run(BeforeExecutionStart, e)
	e.Start = time.Now()
	n.start()
	t := newTracker(p, n.emitProgress)

	for {
		if err := p.Context().Err(); err != nil {
			e.Err = callerErr(err)
			break
		}
		if c.sendAndReceive(p, e, doer, handlers, timeoutPolicy, t) {
			e.AttemptTimeouts++
			handlers.run(AfterAttemptTimeout, e)
		}
		handlers.run(AfterAttempt, e)
		if err := p.Context().Err(); err != nil {
			e.Err = callerErr(err)
			break
		}
		if e.Err == nil || !httperr.KindOf(e.Err).Retryable() || !retryPolicy.Decide(e) {
			break
		}
		e.Wait = retryPolicy.Wait(e)
		logger.Debug("retrying request",
			zap.Int("attempt", e.Attempt),
			zap.Duration("wait", e.Wait),
			zap.Error(e.Err))
		handlers.run(BeforeBackoff, e)
		if !sleep(p.Context(), e.Wait) {
			e.Err = callerErr(p.Context().Err())
			break
		}
		e.Wait = 0
		e.Response = nil
		e.Err = nil
		e.Body = nil
		e.Attempt++
	}

	e.End = time.Now()
	var resp *Response
	if e.Err == nil {
		t.finish()
		resp = newResponse(e)
		n.succeed(resp.Status)
		logger.Debug("request succeeded",
			zap.Int("status", resp.Status),
			zap.Int("attempts", e.Attempt+1),
			zap.Duration("duration", e.Duration()))
	} else {
		t.close()
		n.fail(e.Err)
		logger.Debug("request failed",
			zap.Stringer("kind", httperr.KindOf(e.Err)),
			zap.Int("attempts", e.Attempt+1),
			zap.Duration("duration", e.Duration()),
			zap.Error(e.Err))
	}
	handlers.run(AfterExecutionEnd, e)
	if e.Err != nil {
		return nil, e.Err
	}
	return resp, nil
}

// sendAndReceive makes one attempt and records its outcome in e. The
// return value reports whether the attempt timed out.
func (c *Client) sendAndReceive(p *request.Plan, e *request.Execution, doer HTTPDoer, handlers *HandlerGroup, timeoutPolicy timeout.Policy, t *tracker) bool {
	var ctx context.Context
	var cancel context.CancelFunc
	if d := timeoutPolicy.Timeout(e); timeout.Active(d) {
		ctx, cancel = context.WithTimeout(p.Context(), d)
	} else {
		ctx, cancel = context.WithCancel(p.Context())
	}
	defer cancel()

	e.Request = p.ToRequest(ctx)
	if c.RequestIDHeader != "" && e.Request.Header.Get(c.RequestIDHeader) == "" {
		e.Request.Header.Set(c.RequestIDHeader, e.ID.String())
	}
	defer t.wrap(e.Request)()
	handlers.run(BeforeAttempt, e)

	res := roundTrip(ctx, doer, e.Request)
	e.Response, e.Body = res.resp, res.body
	if res.err != nil {
		if p.Context().Err() != nil {
			e.Err = callerErr(p.Context().Err())
			return false
		}
		if errors.Is(ctx.Err(), context.DeadlineExceeded) || transient.Categorize(res.err) == transient.Timeout {
			e.Err = httperr.NewTimeout(res.err)
			return true
		}
		e.Err = httperr.NewNetwork(res.err.Error(), res.err)
		return false
	}
	e.Err = validate(res.resp, res.body)
	return false
}

type result struct {
	resp     *http.Response
	body     []byte
	err      error
	panicked bool
	panicVal interface{}
}

// roundTrip runs the HTTPDoer call and reads the whole response body on
// a separate goroutine, so that an HTTPDoer which ignores the request
// context still cannot hold the attempt past its deadline. A result
// that arrives after ctx is done is discarded; its body is already
// closed.
func roundTrip(ctx context.Context, doer HTTPDoer, r *http.Request) result {
	ch := make(chan result, 1)
	go func() {
		var res result
		defer func() {
			if v := recover(); v != nil {
				res = result{panicked: true, panicVal: v}
			}
			ch <- res
		}()
		res.resp, res.err = doer.Do(r)
		if res.err != nil || res.resp == nil || res.resp.Body == nil {
			return
		}
		res.body, res.err = io.ReadAll(res.resp.Body)
		_ = res.resp.Body.Close()
	}()

	select {
	case res := <-ch:
		if res.panicked {
			panic(res.panicVal)
		}
		return res
	case <-ctx.Done():
		return result{err: ctx.Err()}
	}
}

// validate turns a transported response into an error if it is not a
// valid 2XX response.
func validate(resp *http.Response, body []byte) error {
	if resp == nil {
		return httperr.NewInvalidResponse(errors.New("nil response"))
	}
	code := resp.StatusCode
	if code < 100 || code > 599 {
		return httperr.NewInvalidResponse(errors.New("status code " + strconv.Itoa(code)))
	}
	if code < 200 || code > 299 {
		return httperr.NewHTTP(code, statusText(resp), string(body))
	}
	return nil
}

func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}

func callerErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return httperr.NewTimeout(err)
	}
	return httperr.NewCancelled(err)
}

// sleep waits for d unless ctx ends first. It reports whether the full
// duration elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// Get returns a builder for a GET request to url, which may be relative
// to BaseURL.
func (c *Client) Get(url string) *Builder {
	return newBuilder(c, http.MethodGet, url)
}

// Post returns a builder for a POST request to url, which may be
// relative to BaseURL.
func (c *Client) Post(url string) *Builder {
	return newBuilder(c, http.MethodPost, url)
}

// Put returns a builder for a PUT request to url, which may be relative
// to BaseURL.
func (c *Client) Put(url string) *Builder {
	return newBuilder(c, http.MethodPut, url)
}

// Delete returns a builder for a DELETE request to url, which may be
// relative to BaseURL.
func (c *Client) Delete(url string) *Builder {
	return newBuilder(c, http.MethodDelete, url)
}

// Patch returns a builder for a PATCH request to url, which may be
// relative to BaseURL.
func (c *Client) Patch(url string) *Builder {
	return newBuilder(c, http.MethodPatch, url)
}

// Head returns a builder for a HEAD request to url, which may be
// relative to BaseURL.
func (c *Client) Head(url string) *Builder {
	return newBuilder(c, http.MethodHead, url)
}

// Options returns a builder for an OPTIONS request to url, which may be
// relative to BaseURL.
func (c *Client) Options(url string) *Builder {
	return newBuilder(c, http.MethodOptions, url)
}

// CloseIdleConnections invokes the same method on the client's
// underlying HTTPDoer.
//
// If the HTTPDoer has no CloseIdleConnections method, this method does
// nothing.
//
// If the HTTPDoer does have a CloseIdleConnections method, then the
// effect of this method depends entirely on its implementation in the
// HTTPDoer. For example, the http.Client type forwards the call to its
// Transport, but only if the Transport itself has a CloseIdleConnections
// method (otherwise it does nothing).
func (c *Client) CloseIdleConnections() {
	doer := c.doer()
	if ic, ok := doer.(IdleCloser); ok {
		ic.CloseIdleConnections()
	}
}

func (c *Client) doer() HTTPDoer {
	if c.HTTPDoer == nil {
		return http.DefaultClient
	}

	return c.HTTPDoer
}

func (c *Client) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}

	return c.Logger
}

func (c *Client) timeoutPolicy(p *request.Plan) timeout.Policy {
	switch {
	case p.NoTimeout:
		return timeout.Infinite
	case p.Timeout > 0:
		return timeout.Fixed(p.Timeout)
	case c.TimeoutPolicy != nil:
		return c.TimeoutPolicy
	default:
		return timeout.DefaultPolicy
	}
}

func (c *Client) retryPolicy(p *request.Plan) retry.Policy {
	switch {
	case p.Retry != nil:
		return retry.Exponential(p.Retry.MaxAttempts, p.Retry.Delay)
	case c.RetryPolicy != nil:
		return c.RetryPolicy
	default:
		return retry.Never
	}
}
