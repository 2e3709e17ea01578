package cli

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/symlump/pkg/api"
	"github.com/matzehuels/symlump/pkg/observability"
	"github.com/matzehuels/symlump/pkg/pipeline"
	"github.com/matzehuels/symlump/pkg/record"
)

// shutdownTimeout bounds how long serve waits for in-flight requests.
const shutdownTimeout = 10 * time.Second

// serveCommand creates the HTTP API command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		flags analysisFlags
		addr  string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analysis API over HTTP",
		Long: `Serve POST /v1/analyze, GET /v1/records/{name}, GET /healthz and
GET /metrics. Records are kept in memory, and also in MongoDB when the config
file sets [mongo] uri.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") {
				addr = c.cfg.Server.Addr
			}
			popts, err := c.options(cmd, &flags)
			if err != nil {
				return err
			}
			return c.serve(cmd.Context(), addr, popts, flags.noCache)
		},
	}

	flags.register(cmd, false)
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")

	return cmd
}

func (c *CLI) serve(ctx context.Context, addr string, popts pipeline.Options, noCache bool) error {
	metrics := observability.NewPrometheusHooks()
	observability.SetPipelineHooks(metrics)
	observability.SetOracleHooks(metrics)
	observability.SetCacheHooks(metrics)
	observability.SetAPIHooks(metrics)

	var store record.Store = record.NewMemoryStore()
	if c.cfg.Mongo.URI != "" {
		ms, err := record.NewMongoStore(ctx, c.cfg.Mongo.URI, c.cfg.Mongo.Database, c.cfg.Mongo.Collection)
		if err != nil {
			return err
		}
		store = record.Multi(store, ms)
	}
	runner, err := c.newRunner(ctx, store, noCache)
	if err != nil {
		store.Close()
		return err
	}
	defer runner.Close()

	server, err := api.NewServer(runner, popts, metrics.Handler(), c.Logger)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		c.Logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	c.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
