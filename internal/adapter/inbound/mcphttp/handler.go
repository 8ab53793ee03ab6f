package mcphttp

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/i2y/foxbridge/internal/domain"
	"github.com/i2y/foxbridge/internal/usecase"
)

// Handlers struct holds dependencies for the HTTP handlers.
type Handlers struct {
	syncProjectUseCase *usecase.SyncProjectUseCase
	defaultToken       string
	logger             *slog.Logger
}

// NewHandlers creates a new Handlers struct. defaultToken is used when a
// request does not name a share.
func NewHandlers(
	syncUC *usecase.SyncProjectUseCase,
	defaultToken string,
	logger *slog.Logger,
) *Handlers {
	return &Handlers{
		syncProjectUseCase: syncUC,
		defaultToken:       defaultToken,
		logger:             logger.With("component", "mcphttp_handler"),
	}
}

// RegisterAdminRoutes sets up the HTTP routes for admin endpoints.
func (h *Handlers) RegisterAdminRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /admin/sync", h.handleSync)
	mux.HandleFunc("GET /admin/categories", h.handleSelectCategories)
	mux.HandleFunc("GET /admin/categories/{id}/interfaces", h.handleListInterfaces)
}

// SyncRequest defines the expected JSON body for the /admin/sync endpoint.
type SyncRequest struct {
	Token string `json:"token"`
}

// errorResponse is the JSON body of every failed admin request.
type errorResponse struct {
	Error string `json:"error"`
}

// handleSync implements POST /admin/sync
func (h *Handlers) handleSync(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req SyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Failed to decode sync request body", slog.Any("error", err))
		h.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	token := h.token(req.Token)

	h.logger.Info("Received sync request")
	session, err := h.syncProjectUseCase.Execute(r.Context(), token)
	if err != nil {
		h.logger.Error("Failed to sync project", slog.Any("error", err))
		h.writeError(w, statusFor(err), err)
		return
	}
	h.writeJSON(w, http.StatusOK, session.ProjectInfo())
	h.logger.Info("Sync request completed", slog.Int64("project_id", session.Registry().ProjectID()))
}

// handleSelectCategories implements GET /admin/categories?token=&ids=1,2
func (h *Handlers) handleSelectCategories(w http.ResponseWriter, r *http.Request) {
	ids, err := parseIDs(r.URL.Query().Get("ids"))
	if err != nil {
		h.logger.Warn("Invalid ids parameter", slog.Any("error", err))
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	session, err := h.syncProjectUseCase.Session(r.Context(), h.token(r.URL.Query().Get("token")))
	if err != nil {
		h.logger.Error("Failed to load session", slog.Any("error", err))
		h.writeError(w, statusFor(err), err)
		return
	}
	selected := h.syncProjectUseCase.Engine().SelectCategories(session, domain.CategoryConfig{IDs: ids})
	h.writeJSON(w, http.StatusOK, selected)
}

// handleListInterfaces implements GET /admin/categories/{id}/interfaces?token=
func (h *Handlers) handleListInterfaces(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		h.logger.Warn("Invalid category id", slog.String("id", r.PathValue("id")))
		h.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid category id %q", r.PathValue("id")))
		return
	}

	session, err := h.syncProjectUseCase.Session(r.Context(), h.token(r.URL.Query().Get("token")))
	if err != nil {
		h.logger.Error("Failed to load session", slog.Any("error", err))
		h.writeError(w, statusFor(err), err)
		return
	}
	list, err := h.syncProjectUseCase.Engine().ListInterfaces(r.Context(), session, domain.SyntheticalConfig{ID: id})
	if err != nil {
		h.logger.Error("Failed to list interfaces", slog.Int64("category_id", id), slog.Any("error", err))
		h.writeError(w, statusFor(err), err)
		return
	}
	h.writeJSON(w, http.StatusOK, list)
}

func (h *Handlers) token(requested string) string {
	if requested != "" {
		return requested
	}
	return h.defaultToken
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Failed to write response", slog.Any("error", err))
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, status int, err error) {
	h.writeJSON(w, status, errorResponse{Error: err.Error()})
}

// statusFor maps a use case error onto an HTTP status: caller mistakes are
// 400, broken source documents 422 and everything else an upstream failure.
func statusFor(err error) int {
	switch {
	case errors.Is(err, usecase.ErrInvalidToken):
		return http.StatusBadRequest
	case domain.IsDataIntegrity(err):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}

// parseIDs reads a comma separated id list; an empty string selects everything.
func parseIDs(raw string) ([]int64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid category id %q", p)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
