package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/i2y/foxbridge/internal/domain"
)

// SyncProjectUseCase loads shares through the Engine and keeps the resulting
// sessions in a repository.
type SyncProjectUseCase struct {
	engine     *Engine
	repository SessionRepository
	logger     *slog.Logger
}

// NewSyncProjectUseCase creates a new SyncProjectUseCase.
func NewSyncProjectUseCase(engine *Engine, repository SessionRepository, logger *slog.Logger) *SyncProjectUseCase {
	return &SyncProjectUseCase{
		engine:     engine,
		repository: repository,
		logger:     logger.With("usecase", "SyncProject"),
	}
}

// Execute reloads the share from the gateway and replaces the stored session.
func (uc *SyncProjectUseCase) Execute(ctx context.Context, token string) (*domain.Session, error) {
	uc.logger.Info("Starting project sync")

	session, err := uc.engine.LoadProjectInfo(ctx, token)
	if err != nil {
		uc.logger.Error("Failed to load project", slog.Any("error", err))
		return nil, fmt.Errorf("failed to load project: %w", err)
	}
	if err := uc.repository.Save(ctx, session); err != nil {
		uc.logger.Error("Failed to save session", slog.Any("error", err))
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	uc.logger.Info("Successfully synced project", slog.Int64("project_id", session.Registry().ProjectID()))
	return session, nil
}

// Session returns the stored session for token, loading it on first use.
func (uc *SyncProjectUseCase) Session(ctx context.Context, token string) (*domain.Session, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	session, err := uc.repository.FindByToken(ctx, token)
	if err == nil {
		return session, nil
	}
	if !errors.Is(err, ErrSessionNotFound) {
		uc.logger.Error("Failed to look up session", slog.Any("error", err))
		return nil, fmt.Errorf("failed to look up session: %w", err)
	}
	uc.logger.Debug("Session not cached, loading project")
	return uc.Execute(ctx, token)
}

// Engine returns the engine sessions are loaded with.
func (uc *SyncProjectUseCase) Engine() *Engine { return uc.engine }
