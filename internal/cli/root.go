// Copyright 2021 The failover Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package cli implements the failover command, which sends one HTTP
// request through a failover.Client configured from a YAML file and
// command line flags.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gogama/failover"
	"github.com/gogama/failover/config"
	"github.com/gogama/failover/metrics"
	"github.com/gogama/failover/request"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"golang.org/x/net/http2"
)

type options struct {
	cfgPath     string
	isDebug     bool
	method      string
	data        string
	headers     []string
	endpoints   []string
	maxRetries  int
	showMetrics bool
	timeout     time.Duration
}

// Execute runs the root command and exits with a non-zero status if it
// fails.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// NewRootCmd builds the failover command.
func NewRootCmd() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "failover [flags] URL",
		Short: "Send an HTTP request with retries and endpoint failover",
		Long: `failover sends one HTTP request, retrying throttled and failed attempts.
Throttled requests wait for the server's retry-after hint or are redirected
to the next configured endpoint, keeping the path and query.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, &opts, args[0])
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.cfgPath, "config", "", "config file (YAML)")
	f.BoolVar(&opts.isDebug, "debug", false, "enable debug logging")
	f.StringVarP(&opts.method, "method", "X", "GET", "HTTP method")
	f.StringVarP(&opts.data, "data", "d", "", "request body")
	f.StringArrayVarP(&opts.headers, "header", "H", nil, "request header as 'Name: value' (repeatable)")
	f.StringArrayVar(&opts.endpoints, "endpoint", nil, "failover endpoint base URL (repeatable)")
	f.IntVar(&opts.maxRetries, "max-retries", 0, "maximum number of retries (overrides config)")
	f.BoolVar(&opts.showMetrics, "metrics", false, "print Prometheus metrics to stderr when done")
	f.DurationVar(&opts.timeout, "timeout", 0, "overall deadline for the request, 0 for none")
	return cmd
}

func run(cmd *cobra.Command, opts *options, target string) error {
	_ = godotenv.Load()

	cfg := config.Default()
	if opts.cfgPath != "" {
		var err error
		if cfg, err = config.Load(opts.cfgPath); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("max-retries") {
		n := opts.maxRetries
		cfg.MaxRetries = &n
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	logger := newLogger(cmd.ErrOrStderr(), cfg.Logging, opts.isDebug)

	extra := opts.endpoints
	if len(cfg.Endpoints)+len(extra) == 0 {
		base, err := baseOf(target)
		if err != nil {
			return err
		}
		extra = []string{base}
	}
	policy, err := cfg.Policy(extra...)
	if err != nil {
		return err
	}

	transport, err := newTransport()
	if err != nil {
		return err
	}

	handlers := &failover.HandlerGroup{}
	reg := prometheus.NewRegistry()
	metrics.NewCollector(reg).Install(handlers)

	client := &failover.Client{
		Transport: transport,
		Policy:    policy,
		Handlers:  handlers,
		Logger:    logger,
	}
	defer client.CloseIdleConnections()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	var body interface{}
	if opts.data != "" {
		body = opts.data
	}
	p, err := request.NewPlanWithContext(ctx, opts.method, target, body)
	if err != nil {
		return err
	}
	if p.Header, err = parseHeaders(opts.headers); err != nil {
		return err
	}

	logger.Debug("sending request",
		"method", p.Method,
		"url", target,
		"max_retries", policy.MaxRetries,
		"endpoints", policy.Endpoints.Strings())
	e, err := client.Do(p)
	if opts.showMetrics {
		if merr := writeMetrics(cmd.ErrOrStderr(), reg); merr != nil {
			logger.Warn("failed to write metrics", "error", merr)
		}
	}
	if err != nil {
		logger.Error("request failed", "execution_id", e.ID, "attempts", e.Attempt+1, "error", err)
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s\n", e.Response.Proto, e.Response.Status)
	_, err = out.Write(e.Body)
	return err
}

func newLogger(w io.Writer, cfg config.LoggingConfig, isDebug bool) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if isDebug {
		level = slog.LevelDebug
	}

	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	}

	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.RFC3339,
	}))
}

func newTransport() (*http.Client, error) {
	t := http.DefaultTransport.(*http.Transport).Clone()
	if err := http2.ConfigureTransport(t); err != nil {
		return nil, fmt.Errorf("failed to configure HTTP/2: %w", err)
	}

	return &http.Client{Transport: t}, nil
}

func parseHeaders(lines []string) (http.Header, error) {
	h := make(http.Header)
	for _, line := range lines {
		name, value, ok := strings.Cut(line, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid header %q: want 'Name: value'", line)
		}
		h.Add(name, strings.TrimSpace(value))
	}

	return h, nil
}

func baseOf(target string) (string, error) {
	u, err := url.Parse(target)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", errors.New("URL must be absolute")
	}

	return (&url.URL{Scheme: u.Scheme, Host: u.Host}).String(), nil
}

func writeMetrics(w io.Writer, g prometheus.Gatherer) error {
	mfs, err := g.Gather()
	if err != nil {
		return err
	}
	for _, mf := range mfs {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}

	return nil
}
