package memrepo

import (
	"context"
	"fmt"
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/i2y/foxbridge/internal/domain"
	"github.com/i2y/foxbridge/internal/usecase"
)

// DefaultSize is the number of sessions kept when no size is configured.
const DefaultSize = 64

// SessionRepository provides an in-memory implementation of usecase.SessionRepository.
// The least recently used session is evicted once the cache is full.
// NOTE: This implementation is not persistent and data will be lost on restart.
type SessionRepository struct {
	cache  *lru.Cache[string, *domain.Session]
	logger *slog.Logger
}

// NewSessionRepository creates a new repository holding up to size sessions.
func NewSessionRepository(size int, logger *slog.Logger) (*SessionRepository, error) {
	if size < 1 {
		size = DefaultSize
	}
	log := logger.With("component", "mem_repo")
	cache, err := lru.NewWithEvict(size, func(token string, _ *domain.Session) {
		log.Debug("Evicted session", slog.String("token", redact(token)))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session cache: %w", err)
	}
	return &SessionRepository{cache: cache, logger: log}, nil
}

// Save stores the session under its token.
func (r *SessionRepository) Save(ctx context.Context, session *domain.Session) error {
	if session == nil || session.Token() == "" {
		r.logger.Error("Refusing to save session without token")
		return fmt.Errorf("save failed: %w", usecase.ErrInvalidToken)
	}
	r.cache.Add(session.Token(), session)
	r.logger.Info("Saved session", slog.String("token", redact(session.Token())), slog.Int("cached", r.cache.Len()))
	return nil
}

// FindByToken returns the cached session for token.
func (r *SessionRepository) FindByToken(ctx context.Context, token string) (*domain.Session, error) {
	session, ok := r.cache.Get(token)
	if !ok {
		r.logger.Debug("Session not found", slog.String("token", redact(token)))
		return nil, usecase.ErrSessionNotFound
	}
	return session, nil
}

// Delete drops the cached session for token.
func (r *SessionRepository) Delete(ctx context.Context, token string) error {
	if r.cache.Remove(token) {
		r.logger.Info("Deleted session", slog.String("token", redact(token)))
	}
	return nil
}

// Len returns the number of cached sessions.
func (r *SessionRepository) Len() int { return r.cache.Len() }

// redact keeps share tokens out of logs.
func redact(token string) string {
	if len(token) <= 4 {
		return "****"
	}
	return token[:4] + "****"
}
