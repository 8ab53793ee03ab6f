package usecase

import (
	"context"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"
	mcpGoServer "github.com/mark3labs/mcp-go/server"

	"github.com/i2y/foxbridge/internal/domain"
)

// Standard errors returned by use cases and adapters.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidToken    = errors.New("share token is required")
)

// --- Document Source Related ---

// DocumentGateway fetches the documents of an Apifox shared project.
// Errors are returned to the caller as they are; retries and timeouts are the
// implementation's business.
type DocumentGateway interface {
	FetchFolderTree(ctx context.Context, token string) ([]domain.FolderNode, error)
	FetchSchemaList(ctx context.Context, token string) ([]domain.SchemaEntry, error)
	FetchEndpoint(ctx context.Context, token string, endpointID int64) (domain.EndpointDescriptor, error)
}

// InterfaceGenerator turns one endpoint descriptor into an Interface record,
// resolving its schema references against the registry.
type InterfaceGenerator interface {
	Generate(desc domain.EndpointDescriptor, registry *domain.Registry, category domain.Category, project domain.Project) (domain.Interface, error)
}

// SessionRepository keeps loaded sessions so repeated calls with the same
// token skip the foundational fetches.
type SessionRepository interface {
	// Save stores a session under its token, replacing any earlier one.
	Save(ctx context.Context, session *domain.Session) error

	// FindByToken returns ErrSessionNotFound when no session is stored for token.
	FindByToken(ctx context.Context, token string) (*domain.Session, error)

	// Delete drops the session for token; deleting an absent token is not an error.
	Delete(ctx context.Context, token string) error
}

// --- MCP Server Abstraction ---

// MCPServerAdapter defines the interface required by ServeToolsUseCase
// to interact with the underlying MCP server (like mcp-go).
type MCPServerAdapter interface {
	AddTool(tool mcp.Tool, handlerFunc mcpGoServer.ToolHandlerFunc)
}
