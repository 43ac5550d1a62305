package httpx

import (
	"log/slog"
	"net/http"

	"github.com/campushub/eventhub/internal/service"
)

// NotificationHandlers serves the in-app notification feed.
type NotificationHandlers struct {
	Svc    *service.NotificationService
	Logger *slog.Logger
}

// List returns the latest notifications and the unread count.
// GET /api/notifications.
func (h *NotificationHandlers) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r, h.Logger)
	if !ok {
		return
	}

	feed, err := h.Svc.Feed(r.Context(), claims.UserID)
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, feed)
}

// MarkAllRead marks every notification of the current user as read.
// POST /api/notifications.
func (h *NotificationHandlers) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r, h.Logger)
	if !ok {
		return
	}

	n, err := h.Svc.MarkAllRead(r.Context(), claims.UserID)
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"updated": n})
}
