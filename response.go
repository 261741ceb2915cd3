// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httpcalls

import (
	"encoding/json"
	"mime"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gogama/httpcalls/httperr"
	"github.com/gogama/httpcalls/request"
	"golang.org/x/net/html/charset"
)

// A Response is the normalized outcome of a successful (2XX) request.
// The whole body has already been read and buffered by the client.
//
// A Response is safe for concurrent use by multiple goroutines.
type Response struct {
	// Status is the HTTP status code.
	Status int

	// Header holds the response header fields.
	Header http.Header

	// URL is the final URL of the exchange, after any redirects the
	// HTTPDoer followed.
	URL string

	// Redirected reports whether the final URL differs from the URL
	// the request was sent to.
	Redirected bool

	// CallName echoes the call name of the request.
	CallName string

	body     []byte
	textOnce sync.Once
	text     string
}

func newResponse(e *request.Execution) *Response {
	r := &Response{
		Status:   e.Response.StatusCode,
		Header:   e.Response.Header,
		URL:      e.Request.URL.String(),
		CallName: e.Plan.CallName,
		body:     e.Body,
	}
	if r.Header == nil {
		r.Header = make(http.Header)
	}
	if last := e.Response.Request; last != nil && last.URL != nil {
		final := last.URL.String()
		r.Redirected = final != r.URL
		r.URL = final
	}
	return r
}

// Text returns the body decoded as a string. The body is decoded on the
// first call, using the charset parameter of the Content-Type header if
// there is one, and the same string is returned on every call.
//
// Bytes which are invalid in the declared charset are replaced, and an
// unknown charset leaves the body undecoded.
func (r *Response) Text() string {
	r.textOnce.Do(func() {
		r.text = decodeText(r.body, r.Header.Get("Content-Type"))
	})
	return r.text
}

// Bytes returns a copy of the raw body bytes.
func (r *Response) Bytes() []byte {
	return append([]byte(nil), r.body...)
}

// JSON decodes the body text as JSON into v, which must be a non-nil
// pointer. The body is decoded afresh on every call.
//
// If the text is not valid JSON, or does not fit the type of v, the
// error returned is an *httperr.Error of kind Serialization and the
// value v points to is left untouched.
func (r *Response) JSON(v interface{}) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return httperr.NewSerialization("JSON target must be a non-nil pointer", nil)
	}
	tmp := reflect.New(rv.Elem().Type())
	if err := json.Unmarshal([]byte(r.Text()), tmp.Interface()); err != nil {
		return httperr.NewSerialization(err.Error(), err)
	}
	rv.Elem().Set(tmp.Elem())
	return nil
}

// DecodeJSON decodes the body of r as JSON into a new value of type T.
func DecodeJSON[T any](r *Response) (T, error) {
	var v T
	err := r.JSON(&v)
	return v, err
}

// IsSuccess reports whether the status code is in the 2XX range.
func (r *Response) IsSuccess() bool {
	return r.Status >= 200 && r.Status < 300
}

// IsClientError reports whether the status code is in the 4XX range.
func (r *Response) IsClientError() bool {
	return r.Status >= 400 && r.Status < 500
}

// IsServerError reports whether the status code is in the 5XX range.
func (r *Response) IsServerError() bool {
	return r.Status >= 500 && r.Status < 600
}

// HeaderValue returns the first value of the named header. The name is
// case-insensitive. The empty string is returned if there is no such
// header.
func (r *Response) HeaderValue(name string) string {
	return r.Header.Get(name)
}

// Headers returns the response header as a map from canonical header
// name to the header's first value.
func (r *Response) Headers() map[string]string {
	m := make(map[string]string, len(r.Header))
	for k, vs := range r.Header {
		if len(vs) > 0 {
			m[http.CanonicalHeaderKey(k)] = vs[0]
		}
	}
	return m
}

func decodeText(body []byte, contentType string) string {
	if contentType == "" {
		return string(body)
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return string(body)
	}
	label := strings.TrimSpace(params["charset"])
	if label == "" || strings.EqualFold(label, "utf-8") || strings.EqualFold(label, "utf8") {
		return string(body)
	}
	enc, _ := charset.Lookup(label)
	if enc == nil {
		return string(body)
	}
	b, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return string(body)
	}
	return string(b)
}
