package cli

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/matzehuels/sketchtower/internal/server"
	"github.com/matzehuels/sketchtower/pkg/observability"
)

const shutdownTimeout = 5 * time.Second

type serveOptions struct {
	addr      string
	maxUpload int64
	metrics   bool
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var o serveOptions
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve conversions over HTTP",
		Long: `Start an HTTP server. POST a .sketch archive to /v1/convert with the
page, artboard, all, format, detailed and refresh query parameters.
Prometheus metrics are served on /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), o)
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.addr, "addr", ":8080", "listen address")
	f.Int64Var(&o.maxUpload, "max-upload", server.DefaultMaxUpload, "maximum upload size in bytes")
	f.BoolVar(&o.metrics, "metrics", true, "serve Prometheus metrics on /metrics")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, o serveOptions) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, cfg)
	if err != nil {
		return err
	}
	defer runner.Close()

	opts := []server.Option{
		server.WithConfig(cfg),
		server.WithLogger(c.Logger),
		server.WithMaxUpload(o.maxUpload),
	}
	if o.metrics {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		prom := observability.NewPrometheus(reg)
		observability.SetPipelineHooks(prom)
		observability.SetCacheHooks(prom)
		observability.SetHTTPHooks(prom)
		defer observability.Reset()
		runner.GeneratorHooks = prom
		opts = append(opts, server.WithHooks(prom), server.WithMetrics(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	}

	srv := &http.Server{
		Addr:              o.addr,
		Handler:           server.New(runner, opts...).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		c.Logger.Info("listening", "addr", o.addr, "cache", cfg.Cache.Backend)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		c.Logger.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			c.Logger.Warn("graceful shutdown incomplete", "timeout", shutdownTimeout, "err", err)
			return srv.Close()
		}
		return nil
	}
}
