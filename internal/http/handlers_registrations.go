package httpx

import (
	"log/slog"
	"net/http"

	"github.com/campushub/eventhub/internal/domain/model"
	"github.com/campushub/eventhub/internal/service"
)

// RegistrationHandlers serves event sign-ups for the current user.
type RegistrationHandlers struct {
	Svc    *service.RegistrationService
	Logger *slog.Logger
}

// Register signs the current user up for an event. A duplicate registration is a 409.
// POST /api/events/{id}/register.
func (h *RegistrationHandlers) Register(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r, h.Logger)
	if !ok {
		return
	}

	reg, err := h.Svc.Register(r.Context(), claims.UserID, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusCreated, map[string]any{
		"message":      "Successfully registered for event",
		"registration": reg,
	})
}

// Cancel withdraws the current user's registration.
// DELETE /api/events/{id}/register.
func (h *RegistrationHandlers) Cancel(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r, h.Logger)
	if !ok {
		return
	}

	reg, err := h.Svc.Cancel(r.Context(), claims.UserID, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"message":      "Registration cancelled",
		"registration": reg,
	})
}

// ListMine returns the current user's registrations with event details.
// GET /student/registrations.
func (h *RegistrationHandlers) ListMine(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r, h.Logger)
	if !ok {
		return
	}

	regs, err := h.Svc.ListMine(r.Context(), claims.UserID)
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	if regs == nil {
		regs = []*model.RegistrationWithEvent{}
	}
	WriteJSON(w, http.StatusOK, map[string]any{"registrations": regs})
}
