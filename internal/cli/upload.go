// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package cli

import (
	"mime"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/Laisky/errors/v2"
	"github.com/gogama/httpcalls"
	"github.com/spf13/cobra"
)

type uploadOptions struct {
	field       string
	contentType string
	fields      []string
	callName    string
	output      string
}

func newUploadCmd(g *globals) *cobra.Command {
	o := &uploadOptions{}
	cmd := &cobra.Command{
		Use:   "upload URL FILE",
		Short: "Upload a file as multipart form data",
		Long: `Upload a file as multipart form data, printing upload progress.

Example:
  httpcalls upload /api/files ./report.pdf --field document --form owner=me`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpload(cmd, g, o, args[0], args[1])
		},
	}

	f := cmd.Flags()
	f.StringVar(&o.field, "field", "file", "Form field name of the file part")
	f.StringVar(&o.contentType, "content-type", "", "Content type of the file part (default by extension)")
	f.StringArrayVarP(&o.fields, "form", "F", nil, "Extra form field as name=value (repeatable)")
	f.StringVar(&o.callName, "call-name", "upload", "Call name keying lifecycle events")
	f.StringVarP(&o.output, "output", "o", "", "Write the response body to a file instead of stdout")
	return cmd
}

func runUpload(cmd *cobra.Command, g *globals, o *uploadOptions, url, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "failed to read file")
	}
	u := httpcalls.Upload{
		Field:       o.field,
		Filename:    filepath.Base(path),
		ContentType: o.contentType,
		Data:        data,
		Fields:      make(map[string]string, len(o.fields)),
		CallName:    o.callName,
	}
	if u.ContentType == "" {
		u.ContentType = mime.TypeByExtension(filepath.Ext(path))
	}
	for _, kv := range o.fields {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			return errors.Errorf("malformed form field %q, want name=value", kv)
		}
		u.Fields[k] = v
	}

	s, err := g.session(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	resp, err := httpcalls.UploadFile(ctx, s.client, url, u)
	if cerr := s.close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	return writeBody(cmd, o.output, resp.Bytes())
}
