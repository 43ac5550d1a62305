// Package httpx provides the HTTP surface of the event hub: the access gate
// middleware, the sign-in flow and the JSON API.
package httpx

import (
	"log/slog"
	"net/http"

	"github.com/campushub/eventhub/internal/domain/access"
	"github.com/campushub/eventhub/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
// Optional services leave their routes unregistered when nil.
type RouterServices struct {
	Gate *access.Gate
	Auth AuthService

	Users         *service.UserService
	Clubs         *service.ClubService
	Events        *service.EventService
	Registrations *service.RegistrationService
	Notifications *service.NotificationService

	Cookies        Cookies
	AllowedDomains []string
	HealthChecks   []HealthCheck // checked by /readyz
	Logger         *slog.Logger  // optional
}

// NewRouter creates the HTTP handler: routes wrapped by the access gate, browser
// detection, request logging and panic recovery.
func NewRouter(services RouterServices) http.Handler {
	logger := loggerOrDefault(services.Logger)
	mux := http.NewServeMux()

	health := &HealthHandlers{Checks: services.HealthChecks, Logger: logger}
	mux.HandleFunc("GET /healthz", health.Live)
	mux.HandleFunc("HEAD /healthz", health.Live)
	mux.HandleFunc("GET /readyz", health.Ready)

	pages := &PageHandlers{AllowedDomains: services.AllowedDomains, Logger: logger}
	registerPageRoutes(mux, pages)

	if services.Auth != nil {
		registerAuthRoutes(mux, &AuthHandlers{Svc: services.Auth, Cookies: services.Cookies, Logger: logger})
	}
	if services.Users != nil && services.Auth != nil {
		profile := &ProfileHandlers{Users: services.Users, Auth: services.Auth, Cookies: services.Cookies, Logger: logger}
		mux.HandleFunc("POST /api/profile/complete", profile.Complete)
	}
	if services.Events != nil && services.Clubs != nil {
		registerEventRoutes(mux, &EventHandlers{Events: services.Events, Clubs: services.Clubs, Logger: logger})
	}
	if services.Registrations != nil {
		registerRegistrationRoutes(mux, &RegistrationHandlers{Svc: services.Registrations, Logger: logger})
	}
	if services.Notifications != nil {
		notes := &NotificationHandlers{Svc: services.Notifications, Logger: logger}
		mux.HandleFunc("GET /api/notifications", notes.List)
		mux.HandleFunc("POST /api/notifications", notes.MarkAllRead)
	}
	if services.Users != nil && services.Clubs != nil && services.Registrations != nil {
		registerAdminRoutes(mux, &AdminHandlers{
			Users:         services.Users,
			Clubs:         services.Clubs,
			Registrations: services.Registrations,
			Logger:        logger,
		})
	}

	mux.HandleFunc("/", notFound)

	var handler http.Handler = mux
	if services.Gate != nil && services.Auth != nil {
		handler = Gate(GateOptions{
			Gate:    services.Gate,
			Auth:    services.Auth,
			Cookies: services.Cookies,
			Logger:  logger,
		})(handler)
	}
	handler = BrowserDetection()(handler)
	handler = Logging(logger)(handler)
	return Recover(logger)(handler)
}

func registerPageRoutes(mux *http.ServeMux, h *PageHandlers) {
	mux.HandleFunc("GET /{$}", h.Home)
	mux.HandleFunc("GET "+access.SignupPath, h.Signup)
	mux.HandleFunc("GET "+access.CompletePath, h.CompleteProfile)
	mux.HandleFunc("GET "+access.ForbiddenPath, h.Forbidden)
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers) {
	mux.HandleFunc("GET /api/auth/login", h.Login)
	mux.HandleFunc("GET /api/auth/callback", h.Callback)
	mux.HandleFunc("POST /api/auth/logout", h.Logout)
	mux.HandleFunc("GET /api/auth/session", h.Session)
	mux.HandleFunc("POST /api/auth/session", h.UpdateSession)
}

func registerEventRoutes(mux *http.ServeMux, h *EventHandlers) {
	mux.HandleFunc("GET /events", h.List)
	mux.HandleFunc("GET /events/{id}", h.Get)
	mux.HandleFunc("GET /clubs", h.ListClubs)
	mux.HandleFunc("GET /clubs/{id}", h.GetClub)
	mux.HandleFunc("GET /club-lead/events", h.ListForLead)
	mux.HandleFunc("POST /club-lead/events", h.Create)
}

func registerRegistrationRoutes(mux *http.ServeMux, h *RegistrationHandlers) {
	mux.HandleFunc("POST /api/events/{id}/register", h.Register)
	mux.HandleFunc("DELETE /api/events/{id}/register", h.Cancel)
	mux.HandleFunc("GET /student/registrations", h.ListMine)
}

func registerAdminRoutes(mux *http.ServeMux, h *AdminHandlers) {
	mux.HandleFunc("GET /admin/users", h.ListUsers)
	mux.HandleFunc("POST /admin/users/role", h.SetRole)
	mux.HandleFunc("POST /admin/clubs", h.CreateClub)
	mux.HandleFunc("POST /admin/events/{id}/remind", h.RemindAttendees)
}

// notFound answers unmatched routes in the caller's format.
func notFound(w http.ResponseWriter, r *http.Request) {
	if IsBrowserRequest(r) {
		http.NotFound(w, r)
		return
	}
	WriteJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "message": "route not found"})
}
