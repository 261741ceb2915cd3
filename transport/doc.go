// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package transport builds the HTTPDoer values a client sends its
requests through.

New returns a tuned *http.Client, optionally speaking HTTP/2:

	doer, err := transport.New(transport.Config{HTTP2: true})

RateLimited wraps any Doer so that requests wait on a token bucket
limiter before they go out:

	doer = transport.RateLimited(doer, transport.NewLimiter(10, 5))
*/
package transport
