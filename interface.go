// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httpcalls

import (
	"github.com/gogama/httpcalls/request"
)

// Doer is the interface that wraps the basic Do method.
//
// Do executes an HTTP request plan and returns the normalized response
// (or error). Client implements the Doer interface, and any other Doer
// implementation must behave substantially the same as Client.Do.
type Doer interface {
	Do(p *request.Plan) (*Response, error)
}

// IdleCloser is the interface that wraps the basic CloseIdleConnections
// method.
//
// If the underlying implementation supports it, CloseIdleConnections
// closes any idle which were previously connected from previous
// requests but are now sitting idle in a "keep-alive" state. It does
// not interrupt any connections currently in use.
//
// If the underlying implementation does not support this ability,
// CloseIdleConnections does nothing.
type IdleCloser interface {
	CloseIdleConnections()
}

// Executor is the interface that groups the basic Do and
// CloseIdleConnections methods. Client implements Executor.
type Executor interface {
	Doer
	IdleCloser
}

var _ Executor = (*Client)(nil)
