// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/Laisky/errors/v2"
	"github.com/gogama/httpcalls"
	"github.com/gogama/httpcalls/config"
	"github.com/gogama/httpcalls/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

// globals holds the flags shared by every subcommand.
type globals struct {
	configPath string
	verbose    bool
	metrics    bool
	quiet      bool
}

// NewRootCmd builds the httpcalls command tree writing to out and
// errOut.
func NewRootCmd(out, errOut io.Writer) *cobra.Command {
	g := &globals{}
	root := &cobra.Command{
		Use:   "httpcalls",
		Short: "Send HTTP requests with timeouts, retries and lifecycle events",
		Long: `httpcalls sends HTTP requests through the httpcalls client engine.

Lifecycle events (loader, progress, notifications) are printed to stderr
and the response body to stdout.

Get started:
  httpcalls do GET https://example.com/api/users
  httpcalls do POST /api/users --json '{"name":"x"}' --retry 2
  httpcalls upload /api/files ./report.pdf --progress`,
		Version:       fmt.Sprintf("%s (built %s)", version, buildTime),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetOut(out)
	root.SetErr(errOut)

	pf := root.PersistentFlags()
	pf.StringVarP(&g.configPath, "config", "c", "", "Path to YAML configuration file")
	pf.BoolVarP(&g.verbose, "verbose", "v", false, "Log engine events to stderr")
	pf.BoolVar(&g.metrics, "metrics", false, "Print Prometheus metrics to stderr when done")
	pf.BoolVarP(&g.quiet, "quiet", "q", false, "Do not print lifecycle events")

	root.AddCommand(newDoCmd(g), newUploadCmd(g))
	return root
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// SetVersion sets the version info.
func SetVersion(v, bt string) {
	version = v
	buildTime = bt
}

// session is a client configured for one command run.
type session struct {
	client    *httpcalls.Client
	registry  *prometheus.Registry
	printer   *printer
	collector *metrics.Collector
}

func (g *globals) session(cmd *cobra.Command) (*session, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load config")
	}
	if g.verbose {
		cfg.Log.Level = "debug"
		cfg.Log.Development = true
	}
	if g.metrics {
		cfg.Metrics.Enabled = true
	}

	client, err := httpcalls.NewClient(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create client")
	}

	s := &session{
		client:  client,
		printer: newPrinter(cmd.ErrOrStderr()),
	}
	if !g.quiet {
		client.Dispatcher = s.printer
	}
	if g.verbose {
		client.Handlers.PushBackAll(httpcalls.LogHandler(client.Logger))
	}
	if cfg.Metrics.Enabled {
		s.registry = prometheus.NewRegistry()
		s.collector = metrics.NewCollector(cfg.Metrics.Namespace, s.registry)
		s.collector.Install(client.Handlers)
	}
	return s, nil
}

func (s *session) close() error {
	defer func() {
		_ = s.client.Logger.Sync()
	}()
	s.client.CloseIdleConnections()
	if s.registry == nil {
		return nil
	}
	return s.printer.metrics(s.registry)
}
