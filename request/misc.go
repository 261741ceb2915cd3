// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"io"

	"github.com/gogama/httpcalls/httperr"
)

// BodyBytes returns the bytes of a loosely typed body: nil, a string, a
// []byte (returned as is), or an io.Reader read to the end. A reader
// which is also an io.Closer is closed, even when reading fails.
//
// A failure to read or close the reader yields a Serialization error
// wrapping the cause. Any other body type yields a Configuration error.
func BodyBytes(body interface{}) ([]byte, error) {
	switch x := body.(type) {
	case nil:
		return nil, nil
	case string:
		return []byte(x), nil
	case []byte:
		return x, nil
	case io.Reader:
		return readBody(x)
	default:
		return nil, httperr.NewConfiguration(
			"invalid body type %T (use nil, string, []byte or io.Reader)", body)
	}
}

func readBody(r io.Reader) ([]byte, error) {
	b, readErr := io.ReadAll(r)
	var closeErr error
	if c, ok := r.(io.Closer); ok {
		closeErr = c.Close()
	}
	switch {
	case readErr != nil:
		return nil, httperr.NewSerialization("failed to read body", readErr)
	case closeErr != nil:
		return nil, httperr.NewSerialization("failed to close body", closeErr)
	default:
		return b, nil
	}
}
