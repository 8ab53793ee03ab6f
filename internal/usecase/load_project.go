package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/i2y/foxbridge/internal/domain"
)

// LoadProjectInfo fetches the folder tree and the schema list of a share in
// parallel, builds the schema registry and returns the resulting session.
// The session only exists once both documents are in.
func (e *Engine) LoadProjectInfo(ctx context.Context, token string) (*domain.Session, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	ctx, span := e.tracer.Start(ctx, "Engine.LoadProjectInfo")
	defer span.End()

	log := e.logger.With(slog.String("operation", "LoadProjectInfo"))
	log.Info("Loading project")

	var (
		tree    []domain.FolderNode
		schemas []domain.SchemaEntry
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := e.gateway.FetchFolderTree(gctx, token)
		if err != nil {
			return fmt.Errorf("failed to fetch folder tree: %w", err)
		}
		tree = t
		return nil
	})
	g.Go(func() error {
		s, err := e.gateway.FetchSchemaList(gctx, token)
		if err != nil {
			return fmt.Errorf("failed to fetch schema list: %w", err)
		}
		schemas = s
		return nil
	})
	if err := g.Wait(); err != nil {
		log.Error("Failed to load project documents", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	registry, err := domain.BuildRegistry(schemas)
	if err != nil {
		log.Error("Failed to build schema registry", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to build schema registry: %w", err)
	}

	session := domain.NewSession(token, tree, registry)
	span.SetAttributes(
		attribute.Int64("apifox.project_id", registry.ProjectID()),
		attribute.Int("apifox.schema_count", registry.Len()),
	)
	log.Info("Project loaded",
		slog.Int64("project_id", registry.ProjectID()),
		slog.Int("top_level_nodes", len(tree)),
		slog.Int("schema_count", registry.Len()))
	return session, nil
}
