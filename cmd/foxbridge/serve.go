package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	mcpGoServer "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/i2y/foxbridge/internal/adapter/inbound/mcphttp"
	"github.com/i2y/foxbridge/internal/usecase"
)

var transport string

func init() {
	serveCmd.Flags().StringVar(&transport, "transport", "sse", "Transport mode: sse or stdio")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server (and the admin HTTP server in sse mode)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if transport != "stdio" && transport != "sse" {
			return fmt.Errorf("invalid transport %q: want sse or stdio", transport)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := newApp(transport == "stdio")
		if err != nil {
			return err
		}
		logger := a.logger.With(slog.String("transport", transport))

		shutdownOtel, err := initOtelProvider(ctx, a.cfg, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
		}
		defer func() {
			if err := shutdownOtel(context.Background()); err != nil {
				logger.Error("Failed to shutdown OpenTelemetry TracerProvider.", slog.Any("error", err))
			}
		}()

		mcpSrv := mcpGoServer.NewMCPServer("foxbridge", version, mcpGoServer.WithToolCapabilities(false))
		usecase.NewServeToolsUseCase(a.sync, mcpSrv, usecase.ToolDefaults{
			Token:      a.cfg.Token,
			Categories: a.cfg.Categories,
		}, logger).Execute()
		logger.Info("MCP server initialized.")

		// Warm the session cache so the first tool call does not pay for the
		// tree and schema fetch. Failure is not fatal: tools retry on demand.
		if a.cfg.Token != "" {
			if _, err := a.sync.Execute(ctx, a.cfg.Token); err != nil {
				logger.Error("Initial project load failed. Tools will retry on first use.", slog.Any("error", err))
			} else {
				logger.Info("Initial project load completed.")
			}
		}

		if transport == "stdio" {
			return serveStdio(ctx, mcpSrv, logger)
		}
		return serveSSE(ctx, stop, a, mcpSrv, logger)
	},
}

func serveStdio(ctx context.Context, mcpSrv *mcpGoServer.MCPServer, logger *slog.Logger) error {
	logger.Info("Starting in STDIO mode")
	stdioServer := mcpGoServer.NewStdioServer(mcpSrv)
	if err := stdioServer.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("stdio server: %w", err)
	}
	return nil
}

func serveSSE(ctx context.Context, stop context.CancelFunc, a *app, mcpSrv *mcpGoServer.MCPServer, logger *slog.Logger) error {
	logger.Info("Starting in SSE mode")
	sseServer := mcpGoServer.NewSSEServer(mcpSrv, mcpGoServer.WithBaseURL("http://"+a.cfg.ListenAddr))

	adminMux := http.NewServeMux()
	mcphttp.NewHandlers(a.sync, a.cfg.Token, logger).RegisterAdminRoutes(adminMux)
	adminServer := &http.Server{
		Addr:    a.cfg.AdminAddr,
		Handler: adminMux,
	}

	go func() {
		logger.Info("Admin HTTP server starting.", slog.String("address", adminServer.Addr))
		if err := adminServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Admin HTTP server failed.", slog.Any("error", err))
			stop()
		}
	}()
	go func() {
		logger.Info("MCP SSE server starting.", slog.String("address", a.cfg.ListenAddr))
		if err := sseServer.Start(a.cfg.ListenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("MCP SSE server failed.", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()

	logger.Info("Shutting down servers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	err := errors.Join(
		adminServer.Shutdown(shutdownCtx),
		sseServer.Shutdown(shutdownCtx),
	)
	if err != nil {
		logger.Error("Graceful shutdown failed.", slog.Any("error", err))
		return err
	}
	logger.Info("Servers shut down gracefully.")
	return nil
}
