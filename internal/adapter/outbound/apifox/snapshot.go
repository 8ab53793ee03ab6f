package apifox

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/i2y/foxbridge/internal/domain"
)

// Snapshot serves the gateway contract from a directory of saved documents:
//
//	{dir}/{token}/http-api-tree.json
//	{dir}/{token}/data-schemas.json
//	{dir}/{token}/http-apis/{id}.json
//
// Each file holds the response body exactly as the shared-docs API returns it.
type Snapshot struct {
	dir    string
	logger *slog.Logger
}

// NewSnapshot creates a gateway reading from dir.
func NewSnapshot(dir string, logger *slog.Logger) *Snapshot {
	return &Snapshot{
		dir:    dir,
		logger: logger.With("component", "apifox_snapshot"),
	}
}

// FetchFolderTree reads the saved folder tree.
func (s *Snapshot) FetchFolderTree(ctx context.Context, token string) ([]domain.FolderNode, error) {
	var raw []rawNode
	if err := s.read(ctx, token, &raw, DocFolderTree); err != nil {
		return nil, err
	}
	return decodeTree(raw, s.logger)
}

// FetchSchemaList reads the saved schema list.
func (s *Snapshot) FetchSchemaList(ctx context.Context, token string) ([]domain.SchemaEntry, error) {
	var list []domain.SchemaEntry
	if err := s.read(ctx, token, &list, DocSchemaList); err != nil {
		return nil, err
	}
	return list, nil
}

// FetchEndpoint reads one saved endpoint descriptor.
func (s *Snapshot) FetchEndpoint(ctx context.Context, token string, endpointID int64) (domain.EndpointDescriptor, error) {
	var desc domain.EndpointDescriptor
	if err := s.read(ctx, token, &desc, DocEndpoints, strconv.FormatInt(endpointID, 10)); err != nil {
		return domain.EndpointDescriptor{}, err
	}
	if err := checkEndpoint(&desc, s.logger); err != nil {
		return domain.EndpointDescriptor{}, err
	}
	return desc, nil
}

func (s *Snapshot) read(ctx context.Context, token string, out any, doc ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if token == "" || filepath.Base(token) != token {
		return fmt.Errorf("invalid share token %q", token)
	}
	parts := append([]string{s.dir, token}, doc...)
	path := filepath.Join(parts...) + ".json"

	log := s.logger.With(slog.String("path", path))
	log.Debug("Reading document")
	data, err := os.ReadFile(path)
	if err != nil {
		log.Error("Failed to read document", slog.Any("error", err))
		return fmt.Errorf("failed to read %s: %w", doc[0], err)
	}
	if err := unwrap(data, out); err != nil {
		log.Error("Failed to decode document", slog.Any("error", err))
		return fmt.Errorf("failed to decode %s: %w", doc[0], err)
	}
	return nil
}
