package apifox

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/i2y/foxbridge/internal/domain"
)

// DefaultBaseURL is the public shared-docs endpoint of Apifox.
const DefaultBaseURL = "https://apifox.com/api/v1/shared-docs"

// Document names, relative to {baseURL}/{token}/.
const (
	DocFolderTree = "http-api-tree"
	DocSchemaList = "data-schemas"
	DocEndpoints  = "http-apis"
)

const tracerName = "github.com/i2y/foxbridge/internal/adapter/outbound/apifox"

// StatusError is returned when the gateway answers with a non-2xx status.
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %s from %s", e.Status, e.URL)
}

// envelope is the wrapper Apifox puts around every shared-docs payload.
type envelope struct {
	Success      bool            `json:"success"`
	Data         json.RawMessage `json:"data"`
	ErrorCode    string          `json:"errorCode,omitempty"`
	ErrorMessage string          `json:"errorMessage,omitempty"`
}

// Gateway implements usecase.DocumentGateway over the Apifox shared-docs HTTP API.
type Gateway struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
	tracer     trace.Tracer
}

// NewGateway creates a new HTTP gateway. An empty baseURL selects DefaultBaseURL.
func NewGateway(client *http.Client, baseURL string, logger *slog.Logger) *Gateway {
	if client == nil {
		client = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Gateway{
		httpClient: client,
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger.With("component", "apifox_gateway"),
		tracer:     otel.Tracer(tracerName),
	}
}

// FetchFolderTree loads the folder tree of a shared project.
func (g *Gateway) FetchFolderTree(ctx context.Context, token string) ([]domain.FolderNode, error) {
	var raw []rawNode
	if err := g.get(ctx, token, &raw, DocFolderTree); err != nil {
		return nil, err
	}
	return decodeTree(raw, g.logger)
}

// FetchSchemaList loads the flat list of reusable schemas.
func (g *Gateway) FetchSchemaList(ctx context.Context, token string) ([]domain.SchemaEntry, error) {
	var list []domain.SchemaEntry
	if err := g.get(ctx, token, &list, DocSchemaList); err != nil {
		return nil, err
	}
	return list, nil
}

// FetchEndpoint loads the full descriptor of one endpoint.
func (g *Gateway) FetchEndpoint(ctx context.Context, token string, endpointID int64) (domain.EndpointDescriptor, error) {
	var desc domain.EndpointDescriptor
	if err := g.get(ctx, token, &desc, DocEndpoints, strconv.FormatInt(endpointID, 10)); err != nil {
		return domain.EndpointDescriptor{}, err
	}
	if err := checkEndpoint(&desc, g.logger); err != nil {
		return domain.EndpointDescriptor{}, err
	}
	return desc, nil
}

func (g *Gateway) get(ctx context.Context, token string, out any, doc ...string) (err error) {
	docURL := g.baseURL + "/" + documentPath(token, doc...)
	log := g.logger.With(slog.String("document", doc[0]))

	ctx, span := g.tracer.Start(ctx, "apifox.fetch "+doc[0], trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("apifox.document", strings.Join(doc, "/"))))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	log.Debug("Fetching document", slog.String("url", docURL))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, docURL, nil)
	if err != nil {
		log.Error("Failed to create HTTP request", slog.Any("error", err))
		return fmt.Errorf("failed to create request for %s: %w", doc[0], err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		log.Error("Failed to fetch document", slog.Any("error", err))
		return fmt.Errorf("failed to fetch %s: %w", doc[0], err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Warn("Received non-success status code", slog.String("status", resp.Status), slog.Int("status_code", resp.StatusCode))
		return &StatusError{URL: docURL, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error("Failed to read response body", slog.Any("error", err))
		return fmt.Errorf("failed to read %s: %w", doc[0], err)
	}
	if err := unwrap(body, out); err != nil {
		log.Error("Failed to decode document", slog.Any("error", err))
		return fmt.Errorf("failed to decode %s: %w", doc[0], err)
	}
	log.Debug("Fetched document", slog.Int("bytes", len(body)))
	return nil
}

// unwrap decodes an envelope and its data payload into out.
func unwrap(body []byte, out any) error {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return err
	}
	if !env.Success {
		msg := env.ErrorMessage
		if msg == "" {
			msg = "request was not successful"
		}
		if env.ErrorCode != "" {
			msg = env.ErrorCode + ": " + msg
		}
		return fmt.Errorf("apifox: %s", msg)
	}
	if len(env.Data) == 0 {
		return fmt.Errorf("apifox: response has no data")
	}
	return json.Unmarshal(env.Data, out)
}

// documentPath builds "{token}/{doc...}" with every segment path-escaped.
func documentPath(token string, doc ...string) string {
	parts := make([]string, 0, len(doc)+1)
	parts = append(parts, url.PathEscape(token))
	for _, d := range doc {
		parts = append(parts, url.PathEscape(d))
	}
	return strings.Join(parts, "/")
}
