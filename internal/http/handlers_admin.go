package httpx

import (
	"log/slog"
	"net/http"
	"strings"

	domainauth "github.com/campushub/eventhub/internal/domain/auth"
	"github.com/campushub/eventhub/internal/domain/model"
	"github.com/campushub/eventhub/internal/service"
)

var userPage = pageBounds{def: 50, max: 200}

// AdminHandlers serves the ADMIN-only operations.
type AdminHandlers struct {
	Users         *service.UserService
	Clubs         *service.ClubService
	Registrations *service.RegistrationService
	Logger        *slog.Logger
}

// ListUsers returns a page of users, optionally filtered by role.
// GET /admin/users?role=<role>&limit=<n>&offset=<n>.
func (h *AdminHandlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit, offset := userPage.parse(r)
	opts := model.UsersListOptions{Limit: limit, Offset: offset}
	if raw := strings.TrimSpace(r.URL.Query().Get("role")); raw != "" {
		role, err := domainauth.ParseRole(raw)
		if err != nil {
			WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_role", Err: err})
			return
		}
		opts.Role = &role
	}

	users, err := h.Users.List(r.Context(), opts)
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	if users == nil {
		users = []*model.User{}
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"users":  users,
		"limit":  limit,
		"offset": offset,
	})
}

// SetRole assigns a role. Coordinators must name an existing club.
// POST /admin/users/role with {email, role, clubId?}.
func (h *AdminHandlers) SetRole(w http.ResponseWriter, r *http.Request) {
	var req model.SetRoleRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	user, err := h.Users.SetRole(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, user)
}

// CreateClub adds a club.
// POST /admin/clubs with {name, description?, logoUrl?, contact?, socialLinks?}.
func (h *AdminHandlers) CreateClub(w http.ResponseWriter, r *http.Request) {
	var req model.CreateClubRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	club, err := h.Clubs.Create(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusCreated, club)
}

// RemindAttendees queues a reminder email for every registered attendee.
// POST /admin/events/{id}/remind.
func (h *AdminHandlers) RemindAttendees(w http.ResponseWriter, r *http.Request) {
	n, err := h.Registrations.RemindAttendees(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusAccepted, map[string]any{"queued": n})
}
