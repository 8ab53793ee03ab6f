package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"

	"github.com/i2y/foxbridge/internal/domain"
)

// SelectCategories returns the folder ids selected by cfg, in pre-order.
func (e *Engine) SelectCategories(session *domain.Session, cfg domain.CategoryConfig) []int64 {
	return domain.SelectFolders(cfg, session.Folders())
}

// ListInterfaces synthesizes one Interface per direct endpoint leaf of the
// category cfg.ID. An id that names no folder yields an empty list and no
// error. Descriptors are fetched concurrently; the result keeps leaf order and
// the first failure aborts the whole batch.
func (e *Engine) ListInterfaces(ctx context.Context, session *domain.Session, cfg domain.SyntheticalConfig) ([]domain.Interface, error) {
	ctx, span := e.tracer.Start(ctx, "Engine.ListInterfaces")
	defer span.End()
	span.SetAttributes(attribute.Int64("apifox.category_id", cfg.ID))

	log := e.logger.With(slog.String("operation", "ListInterfaces"), slog.Int64("category_id", cfg.ID))

	folder, ok := domain.FindFolder(cfg.ID, session.Folders())
	if !ok {
		log.Info("Category not found, returning no interfaces")
		return []domain.Interface{}, nil
	}

	leaves := folder.Leaves()
	out := make([]domain.Interface, len(leaves))
	if len(leaves) == 0 {
		return out, nil
	}

	category := domain.Category{ID: cfg.ID, Name: folder.Name, List: []domain.Interface{}}
	project := session.Project()
	registry := session.Registry()

	log.Info("Synthesizing interfaces", slog.Int("endpoint_count", len(leaves)), slog.Int("concurrency", e.concurrency))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, leaf := range leaves {
		g.Go(func() error {
			desc, err := e.gateway.FetchEndpoint(gctx, session.Token(), leaf.ID)
			if err != nil {
				return fmt.Errorf("failed to fetch endpoint %d: %w", leaf.ID, err)
			}
			iface, err := e.generator.Generate(desc, registry, category, project)
			if err != nil {
				return fmt.Errorf("failed to generate interface for endpoint %d: %w", leaf.ID, err)
			}
			out[i] = iface
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Error("Failed to list interfaces", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if e.synthesized != nil {
		e.synthesized.Add(ctx, int64(len(out)), metric.WithAttributes(attribute.Int64("apifox.category_id", cfg.ID)))
	}
	log.Info("Interfaces synthesized", slog.Int("count", len(out)))
	return out, nil
}
