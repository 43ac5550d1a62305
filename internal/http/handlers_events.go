package httpx

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	domainauth "github.com/campushub/eventhub/internal/domain/auth"
	"github.com/campushub/eventhub/internal/domain/model"
	"github.com/campushub/eventhub/internal/service"
)

var eventPage = pageBounds{def: 20, max: 100}

// EventHandlers serves the public catalogue and the coordinator's event management.
type EventHandlers struct {
	Events *service.EventService
	Clubs  *service.ClubService
	Logger *slog.Logger
}

// List returns upcoming events, optionally for one club.
// GET /events?clubId=<id>&limit=<n>&offset=<n>.
func (h *EventHandlers) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := eventPage.parse(r)
	opts := model.EventsListOptions{Limit: limit, Offset: offset}
	if clubID := strings.TrimSpace(r.URL.Query().Get("clubId")); clubID != "" {
		opts.ClubID = &clubID
	}

	events, err := h.Events.ListUpcoming(r.Context(), opts)
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	if events == nil {
		events = []*model.Event{}
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"events": events,
		"limit":  limit,
		"offset": offset,
	})
}

// Get returns one event.
// GET /events/{id}.
func (h *EventHandlers) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("event id is required")})
		return
	}

	event, err := h.Events.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, event)
}

// ListClubs returns every club.
// GET /clubs.
func (h *EventHandlers) ListClubs(w http.ResponseWriter, r *http.Request) {
	clubs, err := h.Clubs.List(r.Context())
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	if clubs == nil {
		clubs = []*model.Club{}
	}
	WriteJSON(w, http.StatusOK, map[string]any{"clubs": clubs})
}

// GetClub returns one club.
// GET /clubs/{id}.
func (h *EventHandlers) GetClub(w http.ResponseWriter, r *http.Request) {
	club, err := h.Clubs.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, club)
}

// ListForLead returns the coordinator's club events with registration counts.
// GET /club-lead/events.
func (h *EventHandlers) ListForLead(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r, h.Logger)
	if !ok {
		return
	}

	events, err := h.Events.ListForCoordinator(r.Context(), *claims)
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"events": events})
}

// Create publishes a new event for the coordinator's club.
// POST /club-lead/events with {title, description, date, location, posterUrl?}.
func (h *EventHandlers) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r, h.Logger)
	if !ok {
		return
	}

	var req model.CreateEventRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	event, err := h.Events.Create(r.Context(), *claims, &req)
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusCreated, event)
}

// requireClaims returns the session claims or writes a 401. The gate normally
// guarantees them on protected routes.
func requireClaims(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (*domainauth.Token, bool) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		writeServiceError(w, r, logger, domainauth.ErrUnauthenticated)
		return nil, false
	}
	return claims, true
}
