// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package request contains the core types Plan (describes an HTTP request
plan), Body (an immutable pre-buffered request body), and Execution
(describes a Plan execution).

The first core type is Plan, which represents a frozen HTTP request
description.

A Plan describes how to make a logical HTTP request, potentially
involving repeated HTTP request attempts if retry is necessary after a
failure. Besides the method, URL, headers and body, a Plan carries the
per-request timeout and retry settings, and the lifecycle flags (loader,
progress, notifications) keyed by its call name. Most programs get their
plans from httpcalls.Builder, but a plan can also be created directly:

	p, err := request.NewPlan("GET", "https://example.com", nil)
	...
	resp, err := client.Do(p)
	...

A plan may be assigned a context to allow a deadline to be set on the
entire plan execution, and to allow the plan execution to be cancelled:

	p, err := request.NewPlanWithContext(ctx, "POST", "https://example.com/upload", body)
	...

If a deadline is set on the plan context, it is separate from the
per-attempt timeout. An attempt timeout is retryable; the plan deadline
is not.

Bodies come in five kinds: none, JSON, multipart form data, text, and
binary. Construct them with JSONBody, FormBody, TextBody, BinaryBody, or
the generic BodyOf.

The third core type is Execution, which represents the state of the
execution of an HTTP request plan. Execution is the input type for
callbacks invoked during plan execution: timeout policies, retry
policies, and event handlers. You will typically not allocate Execution
instances yourself, but will instead work with the ones handed out by
the client's request plan execution logic.
*/
package request
