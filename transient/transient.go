// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transient

import (
	"errors"
	"fmt"
	"syscall"

	"github.com/gogama/httpcalls/httperr"
)

// A Category tells whether an error is transient, that is whether
// another attempt of the same request has a prospect of succeeding,
// and if so why. Not is the only non-transient category.
type Category int

const (
	// Not is the category of nil errors and of errors a retry is very
	// unlikely to cure.
	Not Category = iota
	// Timeout is a client-side timeout: the error or one of its causes
	// has a Timeout method reporting true. The server may just be slow
	// for a while.
	Timeout
	// ConnRefused is a refused connection (ECONNREFUSED). It is
	// transient because a service that is starting or restarting
	// refuses connections until it listens again.
	ConnRefused
	// ConnReset is a connection torn down by the peer while in use
	// (ECONNRESET, ECONNABORTED, EPIPE), typical of hosts going down
	// mid-response and of load balancers.
	ConnReset
	// Network is any other connectivity failure reported as an
	// httperr Network error, such as a failed DNS lookup or a
	// connection closed before the response arrived.
	Network
)

var categoryNames = []string{"Not", "Timeout", "ConnRefused", "ConnReset", "Network"}

// String returns the name of the category.
func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return fmt.Sprintf("Category(%d)", int(c))
	}
	return categoryNames[c]
}

// Transient reports whether c is any category other than Not.
func (c Category) Transient() bool {
	return c != Not
}

var errnoCategories = map[syscall.Errno]Category{
	syscall.ECONNREFUSED: ConnRefused,
	syscall.ECONNRESET:   ConnReset,
	syscall.ECONNABORTED: ConnReset,
	syscall.EPIPE:        ConnReset,
}

type timeouter interface {
	Timeout() bool
}

// Categorize returns the category of err, looking through the whole
// chain of wrapped causes. The checks are made in order: Timeout first,
// then the connection errno categories, then Network.
//
// Categorize never consults Temporary methods, whose meaning is too
// loosely defined to rely on.
func Categorize(err error) Category {
	if err == nil {
		return Not
	}

	var t timeouter
	if errors.As(err, &t) && t.Timeout() {
		return Timeout
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		if c, ok := errnoCategories[errno]; ok {
			return c
		}
	}

	if httperr.Is(err, httperr.Network) {
		return Network
	}
	return Not
}
