// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httperr

import (
	"errors"
	"fmt"
)

// A Kind identifies which member of the closed error taxonomy an Error
// belongs to.
type Kind int

const (
	// Network indicates a connectivity failure: the transport could not
	// complete the HTTP exchange. Network errors are retryable.
	Network Kind = iota + 1
	// Timeout indicates an elapsed deadline, either the per-attempt
	// timeout or the caller's context deadline. Attempt timeouts are
	// retryable.
	Timeout
	// InvalidURL indicates the request target could not be resolved to
	// an absolute URL. It is detected before any network activity.
	InvalidURL
	// Serialization indicates a payload could not be encoded (request
	// body) or decoded (response body).
	Serialization
	// HTTP indicates a successfully transported exchange whose status
	// code is outside the 2XX range. HTTP errors are never retried.
	HTTP
	// Cancelled indicates the caller cancelled the request.
	Cancelled
	// InvalidResponse indicates the transport produced something that
	// cannot be interpreted as an HTTP response.
	InvalidResponse
	// Configuration indicates a misconfiguration detected before any
	// network activity.
	Configuration
)

var kindNames = map[Kind]string{
	Network:         "Network",
	Timeout:         "Timeout",
	InvalidURL:      "InvalidURL",
	Serialization:   "Serialization",
	HTTP:            "Http",
	Cancelled:       "Cancelled",
	InvalidResponse: "InvalidResponse",
	Configuration:   "Configuration",
}

// String returns the name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Retryable reports whether errors of this kind may be retried by a
// retry policy. Only connectivity-class failures qualify.
func (k Kind) Retryable() bool {
	return k == Network || k == Timeout
}

// An Error is the typed error returned by every request execution.
//
// Which fields are populated depends on Kind: Message for Network,
// Serialization, HTTP and Configuration; URL for InvalidURL; Status and
// Body for HTTP. Cause, when non-nil, is the underlying error reported
// by the transport or codec and is available through errors.Unwrap.
type Error struct {
	Kind    Kind
	Message string
	URL     string
	Status  int
	Body    string
	Cause   error
}

// Error returns the human-readable message for the error. This is the
// text carried by error notifications.
func (err *Error) Error() string {
	switch err.Kind {
	case Network:
		return "Network error: " + err.Message
	case Timeout:
		return "Request timeout"
	case InvalidURL:
		return "Invalid URL: " + err.URL
	case Serialization:
		return "Serialization error: " + err.Message
	case HTTP:
		return fmt.Sprintf("HTTP %d: %s", err.Status, err.Message)
	case Cancelled:
		return "Cancelled by user"
	case InvalidResponse:
		return "Invalid response format"
	case Configuration:
		return "Configuration error: " + err.Message
	default:
		return "unknown error: " + err.Message
	}
}

// Unwrap returns the underlying cause, if any.
func (err *Error) Unwrap() error {
	return err.Cause
}

// Timeout reports whether the error is a Timeout. It lets
// transient.Categorize and other code probing for a Timeout() method
// recognize timeouts without knowing this type.
func (err *Error) Timeout() bool {
	return err.Kind == Timeout
}

// Is matches any *Error of the same Kind, so errors.Is(err, &Error{Kind:
// Timeout}) works as a kind test.
func (err *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == err.Kind
}

// KindOf returns the Kind of the first *Error in err's chain, or zero if
// there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// Is reports whether err's chain contains an *Error of kind k.
func Is(err error, k Kind) bool {
	return KindOf(err) == k
}

// NewNetwork returns a Network error wrapping cause.
func NewNetwork(message string, cause error) *Error {
	return &Error{Kind: Network, Message: message, Cause: cause}
}

// NewTimeout returns a Timeout error wrapping cause.
func NewTimeout(cause error) *Error {
	return &Error{Kind: Timeout, Cause: cause}
}

// NewInvalidURL returns an InvalidURL error for url.
func NewInvalidURL(url string, cause error) *Error {
	return &Error{Kind: InvalidURL, URL: url, Cause: cause}
}

// NewSerialization returns a Serialization error wrapping cause.
func NewSerialization(message string, cause error) *Error {
	return &Error{Kind: Serialization, Message: message, Cause: cause}
}

// NewHTTP returns an HTTP error for a non-2XX status code.
func NewHTTP(status int, message, body string) *Error {
	return &Error{Kind: HTTP, Status: status, Message: message, Body: body}
}

// NewCancelled returns a Cancelled error wrapping cause.
func NewCancelled(cause error) *Error {
	return &Error{Kind: Cancelled, Cause: cause}
}

// NewInvalidResponse returns an InvalidResponse error.
func NewInvalidResponse(cause error) *Error {
	return &Error{Kind: InvalidResponse, Cause: cause}
}

// NewConfiguration returns a Configuration error.
func NewConfiguration(format string, a ...interface{}) *Error {
	return &Error{Kind: Configuration, Message: fmt.Sprintf(format, a...)}
}
