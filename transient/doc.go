// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package transient classifies errors from HTTP request execution as
// transient or non-transient. This is handy for writing retry policies,
// and for other purposes such as bucketing error metrics.
//
// Package transient is lightweight: besides the standard library it
// depends only on package httperr, whose Timeout and Network kinds it
// recognizes.
package transient
