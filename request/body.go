// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strings"

	"github.com/gogama/httpcalls/httperr"
)

// BodyKind identifies the representation of a request Body.
type BodyKind int

const (
	// NoBody is the kind of the zero Body. No payload is sent.
	NoBody BodyKind = iota
	// JSON is the kind of a body holding serialized JSON.
	JSON
	// FormData is the kind of a body holding an encoded multipart form.
	FormData
	// Text is the kind of a body holding a string.
	Text
	// Binary is the kind of a body holding raw bytes.
	Binary
)

var bodyKindNames = []string{"None", "JSON", "FormData", "Text", "Binary"}

func (k BodyKind) String() string {
	if k < 0 || int(k) >= len(bodyKindNames) {
		return fmt.Sprintf("BodyKind(%d)", int(k))
	}
	return bodyKindNames[k]
}

// A Body is an immutable, pre-buffered request body. The zero value is
// the empty body.
//
// Bodies are constructed with JSONBody, TextBody, BinaryBody, FormBody,
// or BodyOf. Every constructor copies its input, so changes the caller
// makes to its own data afterwards never reach the body.
type Body struct {
	kind        BodyKind
	data        []byte
	contentType string
}

// JSONBody serializes v as JSON. If v cannot be serialized, the error
// returned is an *httperr.Error of kind Serialization.
func JSONBody(v interface{}) (Body, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return Body{}, httperr.NewSerialization(err.Error(), err)
	}
	return Body{kind: JSON, data: b, contentType: "application/json"}, nil
}

// TextBody returns a text body holding s.
func TextBody(s string) Body {
	return Body{kind: Text, data: []byte(s), contentType: "text/plain; charset=utf-8"}
}

// BinaryBody returns a binary body holding a copy of b. Binary bodies
// have no derived content type.
func BinaryBody(b []byte) Body {
	return Body{kind: Binary, data: append([]byte(nil), b...)}
}

// FormBody encodes f as a multipart/form-data payload with a fresh
// boundary. The derived content type carries the boundary.
func FormBody(f *Form) (Body, error) {
	if f == nil {
		f = NewForm()
	}
	data, contentType, err := f.encode()
	if err != nil {
		return Body{}, httperr.NewSerialization(err.Error(), err)
	}
	return Body{kind: FormData, data: data, contentType: contentType}, nil
}

// BodyOf converts a generic body parameter into a Body.
//
// The conversion logic is:
//
// • If body is nil, the empty body is returned.
//
// • If body is a Body or *Body, it is returned as is.
//
// • If body is a *Form, the result of FormBody is returned.
//
// • If body is a string, a Text body is returned.
//
// • If body is a []byte, io.Reader, or io.ReadCloser, a Binary body
// holding the bytes produced by BodyBytes is returned.
//
// • Otherwise, an *httperr.Error of kind Configuration is returned.
func BodyOf(body interface{}) (Body, error) {
	switch x := body.(type) {
	case nil:
		return Body{}, nil
	case Body:
		return x, nil
	case *Body:
		if x == nil {
			return Body{}, nil
		}
		return *x, nil
	case *Form:
		return FormBody(x)
	case string:
		return TextBody(x), nil
	}
	b, err := BodyBytes(body)
	if err != nil {
		return Body{}, err
	}
	return Body{kind: Binary, data: append([]byte(nil), b...)}, nil
}

// Kind returns the body's representation kind.
func (b Body) Kind() BodyKind {
	return b.kind
}

// Len returns the size of the payload in bytes.
func (b Body) Len() int {
	return len(b.data)
}

// Bytes returns a copy of the payload.
func (b Body) Bytes() []byte {
	if b.data == nil {
		return nil
	}
	return append([]byte(nil), b.data...)
}

// ContentType returns the content type derived from the body's kind, or
// the empty string if the body has none. It is applied to a request
// only when the plan header does not already have a Content-Type.
func (b Body) ContentType() string {
	return b.contentType
}

// Streamable indicates whether upload progress can be tracked for the
// body. Only form data and binary bodies are streamable.
func (b Body) Streamable() bool {
	return b.kind == FormData || b.kind == Binary
}

// A Form is a multipart form under construction, holding ordinary
// fields and file parts in insertion order. Repeated names are allowed
// and all are sent.
//
// Form is not safe for concurrent use.
type Form struct {
	parts []formPart
}

type formPart struct {
	name        string
	value       string
	file        bool
	filename    string
	contentType string
	data        []byte
}

// NewForm returns an empty form.
func NewForm() *Form {
	return &Form{}
}

// Add appends a plain field and returns f.
func (f *Form) Add(name, value string) *Form {
	f.parts = append(f.parts, formPart{name: name, value: value})
	return f
}

// AddFile appends a file part holding a copy of data and returns f. An
// empty contentType means application/octet-stream.
func (f *Form) AddFile(name, filename, contentType string, data []byte) *Form {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	f.parts = append(f.parts, formPart{
		name:        name,
		file:        true,
		filename:    filename,
		contentType: contentType,
		data:        append([]byte(nil), data...),
	})
	return f
}

// Len returns the number of parts in f.
func (f *Form) Len() int {
	return len(f.parts)
}

func (f *Form) encode() ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, p := range f.parts {
		if !p.file {
			if err := w.WriteField(p.name, p.value); err != nil {
				return nil, "", err
			}
			continue
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
				escapeQuotes(p.name), escapeQuotes(p.filename)))
		h.Set("Content-Type", p.contentType)
		pw, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err = pw.Write(p.data); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
