// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package cli

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/gogama/httpcalls"
	"github.com/spf13/cobra"
)

type doOptions struct {
	headers    []string
	json       string
	text       string
	dataFile   string
	timeout    time.Duration
	noTimeout  bool
	retry      int
	retryDelay time.Duration
	callName   string
	loader     bool
	progress   bool
	notify     bool
	include    bool
	output     string
}

func newDoCmd(g *globals) *cobra.Command {
	o := &doOptions{}
	cmd := &cobra.Command{
		Use:   "do METHOD URL",
		Short: "Send one HTTP request",
		Long: `Send one HTTP request and print the response body to stdout.

URL may be relative to the configured base_url.

Example:
  httpcalls do GET /api/users --call-name fetch_users --loader
  httpcalls do POST /api/users --json '{"name":"x"}' --retry 2 --retry-delay 100ms`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDo(cmd, g, o, args[0], args[1])
		},
	}

	f := cmd.Flags()
	f.StringArrayVarP(&o.headers, "header", "H", nil, "Request header as 'Name: value' (repeatable)")
	f.StringVar(&o.json, "json", "", "JSON request body")
	f.StringVar(&o.text, "text", "", "Plain text request body")
	f.StringVar(&o.dataFile, "data-file", "", "Send the contents of a file as a binary body")
	f.DurationVar(&o.timeout, "timeout", 0, "Attempt timeout (overrides config)")
	f.BoolVar(&o.noTimeout, "no-timeout", false, "Disable attempt timeouts")
	f.IntVar(&o.retry, "retry", -1, "Maximum number of retries (overrides config)")
	f.DurationVar(&o.retryDelay, "retry-delay", 100*time.Millisecond, "Initial retry backoff delay")
	f.StringVar(&o.callName, "call-name", "", "Call name keying lifecycle events")
	f.BoolVar(&o.loader, "loader", false, "Emit loader events")
	f.BoolVar(&o.progress, "progress", false, "Emit upload progress events")
	f.BoolVar(&o.notify, "notify", true, "Emit success and failure notifications")
	f.BoolVarP(&o.include, "include", "i", false, "Print the status line and headers to stderr")
	f.StringVarP(&o.output, "output", "o", "", "Write the body to a file instead of stdout")
	cmd.MarkFlagsMutuallyExclusive("json", "text", "data-file")
	cmd.MarkFlagsMutuallyExclusive("timeout", "no-timeout")
	return cmd
}

func runDo(cmd *cobra.Command, g *globals, o *doOptions, method, url string) error {
	s, err := g.session(cmd)
	if err != nil {
		return err
	}

	b, err := o.builder(s.client, method, url)
	if err != nil {
		_ = s.close()
		return err
	}

	ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	resp, err := b.Send(ctx)
	if cerr := s.close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	if o.include {
		s.printer.response(resp)
	}
	return writeBody(cmd, o.output, resp.Bytes())
}

func (o *doOptions) builder(c *httpcalls.Client, method, url string) (*httpcalls.Builder, error) {
	var b *httpcalls.Builder
	switch strings.ToUpper(method) {
	case "GET":
		b = c.Get(url)
	case "POST":
		b = c.Post(url)
	case "PUT":
		b = c.Put(url)
	case "DELETE":
		b = c.Delete(url)
	case "PATCH":
		b = c.Patch(url)
	case "HEAD":
		b = c.Head(url)
	case "OPTIONS":
		b = c.Options(url)
	default:
		return nil, errors.Errorf("unsupported method %q", method)
	}

	for _, h := range o.headers {
		k, v, ok := strings.Cut(h, ":")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, errors.Errorf("malformed header %q, want 'Name: value'", h)
		}
		b.Header(strings.TrimSpace(k), strings.TrimSpace(v))
	}

	switch {
	case o.json != "":
		var v interface{}
		if err := json.Unmarshal([]byte(o.json), &v); err != nil {
			return nil, errors.Wrap(err, "invalid --json body")
		}
		b.JSON(v)
	case o.text != "":
		b.Text(o.text)
	case o.dataFile != "":
		data, err := os.ReadFile(o.dataFile)
		if err != nil {
			return nil, errors.Wrap(err, "failed to read data file")
		}
		b.Binary(data)
	}

	if o.noTimeout {
		b.NoTimeout()
	} else if o.timeout > 0 {
		b.Timeout(o.timeout)
	}
	if o.retry >= 0 {
		b.Retry(o.retry, o.retryDelay)
	}

	return b.CallName(o.callName).
		WithLoader(o.loader).
		WithProgress(o.progress).
		WithNotifications(o.notify), nil
}

func writeBody(cmd *cobra.Command, path string, body []byte) error {
	if path == "" {
		_, err := cmd.OutOrStdout().Write(body)
		return err
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return errors.Wrap(err, "failed to write output")
	}
	return nil
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
