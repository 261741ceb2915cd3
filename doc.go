// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package httpcalls provides an HTTP request builder with timeouts, retry,
upload progress, and lifecycle notifications within a simple and
familiar interface.

Create a Client to begin making requests. Each request is configured
with a Builder and sent with Send:

	client := &httpcalls.Client{BaseURL: "https://api.example.com"}
	resp, err := client.Get("/users").
		Header("Accept", "application/json").
		Send(ctx)
	...
	resp, err := client.Post("/users").
		JSON(user).
		Timeout(5*time.Second).
		Retry(3, 100*time.Millisecond).
		Send(ctx)

A successful Send returns a Response whose body is fully buffered. Any
failure is returned as an *httperr.Error, whose Kind tells network
failures, timeouts, HTTP error statuses, and the other error classes
apart:

	if httperr.Is(err, httperr.HTTP) {
		...
	}

To build a client from a YAML configuration file and environment
variables, use package config and NewClient:

	cfg, err := config.Load("httpcalls.yaml")
	...
	client, err := httpcalls.NewClient(cfg)

For control over how the client sends HTTP requests and receives HTTP
responses, use a custom HTTPDoer. For example, use a GoLang standard
HTTP client, or one built by package transport:

	doer := &http.Client{
		..., // See package "net/http" for detailed documentation
	}
	client := &httpcalls.Client{
		HTTPDoer: doer,
	}

For control over the client's default retry decisions and timing,
create a custom retry policy using components from package retry:

	retryWaiter := retry.NewExpWaiter(250*time.Millisecond, 5*time.Second, time.Now())
	retryPolicy := retry.NewPolicy(retry.DefaultDecider, retryWaiter)
	client := &httpcalls.Client{
		RetryPolicy: retryPolicy,
	}

For control over the client's default attempt timeouts, set a timeout
policy using package timeout:

	client := &httpcalls.Client{
		TimeoutPolicy: timeout.Fixed(10*time.Second),
	}

Loader, progress, and notification events are emitted to the client's
Dispatcher when a request asks for them. Package dispatch provides a
Store which keeps the loading and progress state of each call name:

	store := dispatch.NewStore(time.Minute)
	client := &httpcalls.Client{Dispatcher: store}
	resp, err := client.Post("/upload").
		FormData(form).
		CallName("upload").
		WithLoader(true).
		WithProgress(true).
		Send(ctx)

To hook into the fine-grained details of the client's request execution
logic, install a handler into the appropriate handler chain:

	handlers := &httpcalls.HandlerGroup{}
	handlers.PushBack(httpcalls.BeforeAttempt, httpcalls.HandlerFunc(
		func(_ httpcalls.Event, e *request.Execution) {
			log.Printf("Attempt %d to %s", e.Attempt, e.Request.URL.String())
		}),
	)
	client := &httpcalls.Client{
		HTTPDoer: doer,
		Handlers: handlers,
	}

LogHandler returns a handler that logs every event to a zap logger.
*/
package httpcalls
