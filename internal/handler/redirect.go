package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/snaplink/snaplink/internal/analytics"
	"github.com/snaplink/snaplink/internal/service"
	"github.com/snaplink/snaplink/internal/shortcode"
)

// RedirectHandler resolves short codes and issues redirects.
type RedirectHandler struct {
	svc        *service.LinkService
	dispatcher *analytics.Dispatcher
	logger     *slog.Logger
}

// NewRedirectHandler creates a RedirectHandler. dispatcher may be nil
// when click recording is disabled.
func NewRedirectHandler(svc *service.LinkService, dispatcher *analytics.Dispatcher, logger *slog.Logger) *RedirectHandler {
	return &RedirectHandler{
		svc:        svc,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Redirect handles GET /{code}. The click is handed to the analytics
// dispatcher and the redirect returns immediately; a full analytics
// queue costs the event, never the redirect.
func (h *RedirectHandler) Redirect(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if !shortcode.IsValidCode(code) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "link not found")
		return
	}

	link, err := h.svc.Resolve(r.Context(), code)
	if err != nil {
		if errors.Is(err, service.ErrLinkNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "link not found")
			return
		}
		h.logger.Error("resolve failed", "code", code, "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "internal server error")
		return
	}

	if h.dispatcher != nil {
		h.dispatcher.Enqueue(link.ID, analytics.ClientContext{
			RemoteAddr:   r.RemoteAddr,
			ForwardedFor: r.Header.Get("X-Forwarded-For"),
			UserAgent:    r.UserAgent(),
		})
	}

	http.Redirect(w, r, link.Destination, http.StatusFound)
}
