package main

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/i2y/foxbridge/configs"
	"github.com/i2y/foxbridge/internal/adapter/outbound/apifox"
	"github.com/i2y/foxbridge/internal/adapter/outbound/memrepo"
	"github.com/i2y/foxbridge/internal/adapter/outbound/yapi"
	"github.com/i2y/foxbridge/internal/usecase"
)

var tokenFlag string

// app is the wired dependency graph shared by every command.
type app struct {
	cfg    *configs.Config
	logger *slog.Logger
	engine *usecase.Engine
	sync   *usecase.SyncProjectUseCase
}

// newLogger builds the root logger. In stdio mode stdout carries the MCP
// protocol, so logs go to a file instead.
func newLogger(cfg *configs.Config, stdio bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.ParsedLogLevel()}
	if !stdio {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	logFile, err := os.OpenFile(filepath.Join(os.TempDir(), "foxbridge.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return slog.New(slog.NewTextHandler(io.Discard, opts))
	}
	return slog.New(slog.NewTextHandler(logFile, opts))
}

// newApp loads configuration and wires the gateway, generator, engine and
// session cache.
func newApp(stdio bool) (*app, error) {
	cfg, err := configs.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if tokenFlag != "" {
		cfg.Token = tokenFlag
	}

	logger := newLogger(cfg, stdio)
	slog.SetDefault(logger)
	logger.Info("Logger initialized.", slog.String("level", cfg.ParsedLogLevel().String()))

	var gateway usecase.DocumentGateway
	if cfg.SnapshotDir != "" {
		gateway = apifox.NewSnapshot(cfg.SnapshotDir, logger)
		logger.Info("Serving documents from snapshot directory.", slog.String("dir", cfg.SnapshotDir))
	} else {
		httpClient := &http.Client{Timeout: cfg.HTTPClientTimeout}
		gateway = apifox.NewGateway(httpClient, cfg.BaseURL, logger)
		logger.Debug("HTTP gateway configured.",
			slog.String("base_url", cfg.BaseURL),
			slog.Duration("timeout", cfg.HTTPClientTimeout))
	}

	repo, err := memrepo.NewSessionRepository(cfg.SessionCacheSize, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create session repository: %w", err)
	}

	engine := usecase.NewEngine(gateway, yapi.NewInterfaceGenerator(logger), cfg.FetchConcurrency, logger)
	return &app{
		cfg:    cfg,
		logger: logger,
		engine: engine,
		sync:   usecase.NewSyncProjectUseCase(engine, repo, logger),
	}, nil
}
