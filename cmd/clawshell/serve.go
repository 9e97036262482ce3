package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	clawmcp "github.com/deixis/clawshell/internal/mcp"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		httpAddr     string
		instructions bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the MCP server on stdin/stdout, or over streamable HTTP with --http.

With --http the MCP endpoint is /mcp and Prometheus metrics are served at /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			if instructions {
				fmt.Fprint(cmd.OutOrStdout(), clawmcp.Instructions)
				return nil
			}
			// Post-run hooks are skipped when RunE fails, and a detached
			// gateway must not outlive the server.
			defer func() { err = errors.Join(err, a.close()) }()

			ctx := cmd.Context()
			server := clawmcp.NewServer(a.svc)
			if httpAddr != "" {
				return a.serveHTTP(ctx, server, httpAddr)
			}
			a.logger.Info().Str("transport", "stdio").Msg("serving")
			err = server.Run(ctx, &mcpsdk.StdioTransport{})
			if errors.Is(err, context.Canceled) && ctx.Err() != nil {
				a.logger.Info().Msg("interrupted, shutting down")
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringVar(&httpAddr, "http", "", "start HTTP server on address (e.g. :9090)")
	cmd.Flags().BoolVar(&instructions, "instructions", false, "print model instructions and exit")
	return cmd
}

func (a *app) serveHTTP(ctx context.Context, server *mcpsdk.Server, addr string) error {
	httpServer := &http.Server{
		Addr:    addr,
		Handler: clawmcp.NewHTTPHandler(server),
	}

	go func() {
		<-ctx.Done()
		_ = httpServer.Close()
	}()

	a.logger.Info().Str("addr", addr).Msg("listening")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}
