package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/snaplink/snaplink/internal/analytics"
	"github.com/snaplink/snaplink/internal/middleware"
	"github.com/snaplink/snaplink/internal/service"
)

// StatsHandler serves aggregated click statistics.
type StatsHandler struct {
	links     *service.LinkService
	analytics *analytics.Service
	logger    *slog.Logger
}

// NewStatsHandler creates a StatsHandler.
func NewStatsHandler(links *service.LinkService, analyticsService *analytics.Service, logger *slog.Logger) *StatsHandler {
	return &StatsHandler{
		links:     links,
		analytics: analyticsService,
		logger:    logger,
	}
}

// Get handles GET /api/v1/links/{id}/stats. Stats are owner-scoped:
// a link owned by someone else reads as missing.
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	owner := middleware.OwnerFromContext(r.Context())
	if owner == nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "identity required")
		return
	}

	id := chi.URLParam(r, "id")
	if _, err := h.links.GetForOwner(r.Context(), *owner, id); err != nil {
		if errors.Is(err, service.ErrLinkNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "link not found")
			return
		}
		h.logger.Error("stats ownership check failed", "link_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "internal server error")
		return
	}

	stats, err := h.analytics.Stats(r.Context(), id)
	if err != nil {
		h.logger.Error("stats computation failed", "link_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, stats)
}
