package apifox

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/i2y/foxbridge/internal/domain"
)

// maxTreeDepth bounds how deep the decoder follows nested children.
const maxTreeDepth = 256

// Raw node types as Apifox names them.
const (
	nodeTypeFolder = "apiDetailFolder"
	nodeTypeAPI    = "apiDetail"
)

var (
	errAmbiguousNode = errors.New("node carries both a folder and an api")
	errZeroFolderID  = errors.New("folder node has id 0")
	errZeroAPIID     = errors.New("api node has id 0")
	errTreeTooDeep   = fmt.Errorf("folder tree deeper than %d levels", maxTreeDepth)
)

type rawFolder struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	ParentID int64  `json:"parentId"`
}

type rawAPI struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Method   string `json:"method"`
	Path     string `json:"path"`
	FolderID int64  `json:"folderId"`
}

// rawNode is one node of the http-api-tree document.
type rawNode struct {
	Key      string     `json:"key"`
	Type     string     `json:"type"`
	Name     string     `json:"name"`
	Children []rawNode  `json:"children"`
	Folder   *rawFolder `json:"folder"`
	API      *rawAPI    `json:"api"`
}

// TreeError reports a tree node that cannot be turned into a domain node.
type TreeError struct {
	Key   string
	Cause error
}

func (e *TreeError) Error() string {
	return fmt.Sprintf("invalid tree node %q: %v", e.Key, e.Cause)
}

func (e *TreeError) Unwrap() error { return e.Cause }

// decodeTree validates raw nodes into the folder/leaf union. Nodes that are
// neither folders nor endpoints (markdown docs and the like) are dropped.
func decodeTree(raw []rawNode, logger *slog.Logger) ([]domain.FolderNode, error) {
	return decodeLevel(raw, 0, logger)
}

func decodeLevel(raw []rawNode, depth int, logger *slog.Logger) ([]domain.FolderNode, error) {
	if depth > maxTreeDepth {
		return nil, errTreeTooDeep
	}
	var out []domain.FolderNode
	for _, n := range raw {
		switch {
		case n.Folder != nil && n.API != nil:
			return nil, &TreeError{Key: n.Key, Cause: errAmbiguousNode}
		case n.Folder != nil:
			if n.Folder.ID == 0 {
				return nil, &TreeError{Key: n.Key, Cause: errZeroFolderID}
			}
			children, err := decodeLevel(n.Children, depth+1, logger)
			if err != nil {
				return nil, err
			}
			out = append(out, domain.NewFolder(n.Key, n.Name, n.Folder.ID, children...))
		case n.API != nil:
			if n.API.ID == 0 {
				return nil, &TreeError{Key: n.Key, Cause: errZeroAPIID}
			}
			out = append(out, domain.NewLeaf(n.Key, n.Name, domain.EndpointRef{
				ID:     n.API.ID,
				Name:   n.API.Name,
				Method: n.API.Method,
				Path:   n.API.Path,
			}))
		default:
			logger.Warn("Dropping unsupported tree node",
				slog.String("key", n.Key),
				slog.String("type", n.Type),
				slog.String("name", n.Name))
		}
	}
	return out, nil
}

// checkEndpoint verifies that the schemas of desc decode as JSON-Schema
// objects. A failure is returned as the *domain.MalformedSchemaError itself so
// callers classify it as a data-integrity problem.
func checkEndpoint(desc *domain.EndpointDescriptor, logger *slog.Logger) error {
	if _, _, err := desc.DecodeSchemas(); err != nil {
		logger.Warn("Endpoint carries a malformed schema",
			slog.Int64("endpoint_id", desc.ID),
			slog.Any("error", err))
		return err
	}
	return nil
}
