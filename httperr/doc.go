// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package httperr defines the closed set of errors a request execution
// can end with. Every error returned by the httpcalls client, and every
// error stored on a request.Execution, is an *Error whose Kind tells the
// caller what went wrong without string matching:
//
//	resp, err := client.Get("/users").Send(ctx)
//	switch httperr.KindOf(err) {
//	case httperr.HTTP:
//		...
//	case httperr.Timeout, httperr.Network:
//		...
//	}
package httperr
