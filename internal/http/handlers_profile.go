package httpx

import (
	"log/slog"
	"mime"
	"net/http"

	domainauth "github.com/campushub/eventhub/internal/domain/auth"
	"github.com/campushub/eventhub/internal/domain/model"
	"github.com/campushub/eventhub/internal/service"
)

// ProfileHandlers serves the one-time profile completion step.
type ProfileHandlers struct {
	Users   *service.UserService
	Auth    SessionAuthenticator
	Cookies Cookies
	Logger  *slog.Logger
}

// Complete stores the profile and re-issues the session token so the very next
// request already sees isProfileComplete=true.
// POST /api/profile/complete with JSON or form fields firstName, lastName, phoneNumber, rollNumber.
func (h *ProfileHandlers) Complete(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		writeServiceError(w, r, h.Logger, domainauth.ErrUnauthenticated)
		return
	}

	form := isFormPost(r)
	var req model.CompleteProfileRequest
	if form {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := r.ParseForm(); err != nil {
			WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_form", Err: err})
			return
		}
		req = model.CompleteProfileRequest{
			FirstName:   r.PostForm.Get("firstName"),
			LastName:    r.PostForm.Get("lastName"),
			PhoneNumber: r.PostForm.Get("phoneNumber"),
			RollNumber:  r.PostForm.Get("rollNumber"),
		}
	} else if !DecodeJSON(w, r, &req) {
		return
	}

	user, err := h.Users.CompleteProfile(r.Context(), claims.UserID, &req)
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}

	// The saved row is the directory record; no second read is needed.
	sess := h.Auth.Reissue(r.Context(), *claims, user.DirectoryRecord())
	setReissuedSession(w, r, h.Cookies, sess)
	if !sess.Reissued() {
		// The profile is saved; the next request refreshes the token on its own.
		loggerOrDefault(h.Logger).WarnContext(r.Context(), "session not re-issued after profile completion",
			"user_id", claims.UserID)
	}
	updated := &sess.Claims

	if form {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"message": "Profile completed successfully",
		"user":    user,
		"session": newSessionResponse(updated),
	})
}

func isFormPost(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "application/x-www-form-urlencoded"
}
