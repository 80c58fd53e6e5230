package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/snaplink/snaplink/internal/handler/dto"
	"github.com/snaplink/snaplink/internal/middleware"
	"github.com/snaplink/snaplink/internal/service"
)

// LinkHandler handles HTTP requests for link operations.
type LinkHandler struct {
	svc     *service.LinkService
	logger  *slog.Logger
	baseURL string
	ttlMin  int64
	ttlMax  int64
}

// NewLinkHandler creates a new LinkHandler. baseURL is used to build
// the short_url field in responses; ttlMin and ttlMax bound accepted
// link expiries in seconds.
func NewLinkHandler(svc *service.LinkService, logger *slog.Logger, baseURL string, ttlMin, ttlMax int64) *LinkHandler {
	return &LinkHandler{
		svc:     svc,
		logger:  logger,
		baseURL: baseURL,
		ttlMin:  ttlMin,
		ttlMax:  ttlMax,
	}
}

// Create handles POST /api/v1/links.
func (h *LinkHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}

	if problems := req.Validate(h.ttlMin, h.ttlMax); len(problems) > 0 {
		writeFieldErrors(w, problems)
		return
	}

	link, err := h.svc.Create(r.Context(), service.CreateParams{
		OwnerID:     middleware.OwnerFromContext(r.Context()),
		Destination: req.URL,
		Alias:       req.CustomAlias,
		TTLSeconds:  req.TTL,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("link_created",
		"link_id", link.ID,
		"code", link.Code,
		"has_custom_alias", req.CustomAlias != "",
	)

	writeJSON(w, http.StatusCreated, dto.ToLinkResponse(link, h.baseURL))
}

// List handles GET /api/v1/links.
func (h *LinkHandler) List(w http.ResponseWriter, r *http.Request) {
	owner := middleware.OwnerFromContext(r.Context())
	if owner == nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "identity required")
		return
	}

	page := queryInt(r, "page", 1)
	pageSize := queryInt(r, "page_size", 20)

	links, total, err := h.svc.ListForOwner(r.Context(), *owner, page, pageSize)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToLinkListResponse(links, h.baseURL, page, pageSize, total))
}

// Get handles GET /api/v1/links/{id}.
func (h *LinkHandler) Get(w http.ResponseWriter, r *http.Request) {
	owner := middleware.OwnerFromContext(r.Context())
	if owner == nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "identity required")
		return
	}

	link, err := h.svc.GetForOwner(r.Context(), *owner, chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToLinkResponse(link, h.baseURL))
}

// Delete handles DELETE /api/v1/links/{id}.
func (h *LinkHandler) Delete(w http.ResponseWriter, r *http.Request) {
	owner := middleware.OwnerFromContext(r.Context())
	if owner == nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "identity required")
		return
	}

	id := chi.URLParam(r, "id")
	deleted, err := h.svc.Delete(r.Context(), *owner, id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "link not found")
		return
	}

	h.logger.Info("link_deleted", "link_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// handleServiceError maps service errors to HTTP responses.
func (h *LinkHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidDestination):
		writeError(w, http.StatusUnprocessableEntity, "INVALID_URL", err.Error())
	case errors.Is(err, service.ErrInvalidAlias):
		writeError(w, http.StatusUnprocessableEntity, "INVALID_ALIAS", err.Error())
	case errors.Is(err, service.ErrAliasTaken):
		writeError(w, http.StatusConflict, "ALIAS_TAKEN", err.Error())
	case errors.Is(err, service.ErrLinkNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "link not found")
	default:
		h.logger.Error("internal error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "internal server error")
	}
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
