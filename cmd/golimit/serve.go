package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	httpAdapter "github.com/njchilds90/golimit/internal/adapters/http"
	mcpAdapter "github.com/njchilds90/golimit/internal/adapters/mcp"
	"github.com/njchilds90/golimit/internal/metrics"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Starts the stateless JSON API (POST /v1/limit, /v1/normalize, /v1/tool).
With --mcp-sse the MCP server runs alongside it on its own port; both stop
together on SIGINT or SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("addr") {
			a.cfg.Server.Addr, _ = cmd.Flags().GetString("addr")
		}
		withSSE, _ := cmd.Flags().GetBool("mcp-sse")

		var m *metrics.Metrics
		if a.cfg.Server.Metrics {
			m = a.metrics
		}
		handler, err := httpAdapter.NewHandler(a.resolver, m, a.logger)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return httpAdapter.Serve(gctx, a.cfg.Server.Addr, handler, a.logger)
		})
		if withSSE {
			srv := mcpAdapter.NewServer(a.resolver, a.metrics, a.logger)
			g.Go(func() error {
				return srv.ServeSSE(gctx, a.cfg.MCP.Port)
			})
		}
		if err := g.Wait(); err != nil && err != context.Canceled {
			return err
		}
		a.logger.Info("golimit stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", ":8080", "Address to listen on (overrides config)")
	serveCmd.Flags().Bool("mcp-sse", false, "Also serve MCP over SSE on the configured mcp.port")
}
