package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/tandem-mlops/tandem/pkg/service/mcp"
	"github.com/tandem-mlops/tandem/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func mcpCommand() *cli.Command {
	var (
		cfg      config
		httpAddr string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "http",
			Usage:       "Serve streamable HTTP on this address instead of stdio",
			Sources:     cli.EnvVars("TANDEM_MCP_ADDR"),
			Destination: &httpAddr,
		},
	}
	flags = append(flags, logFlags(&cfg)...)
	flags = append(flags, agentFlags(&cfg)...)

	return &cli.Command{
		Name:  "mcp",
		Usage: "Expose the agent as an MCP server",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.withLogger(ctx)

			a, err := cfg.newAgent(ctx)
			if err != nil {
				return err
			}
			server := mcp.NewServer(a, Version)

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			if httpAddr == "" {
				return server.Run(ctx)
			}
			return serveHTTP(ctx, httpAddr, server.Handler())
		},
	}
}

func serveHTTP(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logging.From(ctx).Info("starting MCP server", "addr", addr)
		serverErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return goerr.Wrap(err, "MCP server stopped", goerr.V("addr", addr))

	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return goerr.Wrap(err, "graceful shutdown failed")
		}
		return nil
	}
}
