// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httpcalls

import (
	"context"
	"io"
	"sort"

	"github.com/gogama/httpcalls/httperr"
	"github.com/gogama/httpcalls/request"
)

// GetJSON sends a GET request to url and decodes the JSON response body
// into a value of type T.
func GetJSON[T any](ctx context.Context, c *Client, url string) (T, error) {
	resp, err := c.Get(url).Header("Accept", "application/json").Send(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	return DecodeJSON[T](resp)
}

// PostJSON sends body as JSON in a POST request to url and decodes the
// JSON response body into a value of type R.
func PostJSON[T, R any](ctx context.Context, c *Client, url string, body T) (R, error) {
	resp, err := c.Post(url).Header("Accept", "application/json").JSON(body).Send(ctx)
	if err != nil {
		var zero R
		return zero, err
	}
	return DecodeJSON[R](resp)
}

// An Upload describes a single file sent by UploadFile.
type Upload struct {
	// Field is the form field name of the file part. Empty means
	// "file".
	Field string
	// Filename is the file name sent to the server.
	Filename string
	// ContentType is the content type of the file part. Empty means
	// application/octet-stream.
	ContentType string
	// Data holds the file contents.
	Data []byte
	// Fields holds additional plain form fields.
	Fields map[string]string
	// CallName labels the upload's lifecycle events.
	CallName string
}

// UploadFile POSTs u to url as multipart form data, with loader,
// progress, and notification events enabled.
func UploadFile(ctx context.Context, c *Client, url string, u Upload) (*Response, error) {
	field := u.Field
	if field == "" {
		field = "file"
	}
	f := request.NewForm()
	names := make([]string, 0, len(u.Fields))
	for k := range u.Fields {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		f.Add(k, u.Fields[k])
	}
	f.AddFile(field, u.Filename, u.ContentType, u.Data)
	return c.Post(url).
		FormData(f).
		CallName(u.CallName).
		WithLoader(true).
		WithProgress(true).
		WithNotifications(true).
		Send(ctx)
}

// DownloadFile GETs url and writes the response body to w. It returns
// the number of bytes written. A failure to write is reported as a
// Serialization error.
func DownloadFile(ctx context.Context, c *Client, url string, w io.Writer) (int64, error) {
	resp, err := c.Get(url).Send(ctx)
	if err != nil {
		return 0, err
	}
	n, err := w.Write(resp.body)
	if err != nil {
		return int64(n), httperr.NewSerialization("failed to write download", err)
	}
	return int64(n), nil
}
