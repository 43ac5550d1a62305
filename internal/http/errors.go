package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	domainauth "github.com/campushub/eventhub/internal/domain/auth"
	"github.com/campushub/eventhub/internal/domain/model"
	apperrors "github.com/campushub/eventhub/internal/errors"
)

var errAlreadyRegistered = errors.New("You are already registered for this event") //nolint:staticcheck // user-facing text

// sentinelStatuses maps domain sentinels to their HTTP representation. Order matters:
// the first match wins.
//
//nolint:gochecknoglobals // static read-only lookup
var sentinelStatuses = []struct {
	err    error
	status int
	code   string
}{
	{domainauth.ErrUnauthenticated, http.StatusUnauthorized, "authentication_required"},
	{domainauth.ErrIncompleteProfile, http.StatusForbidden, "profile_incomplete"},
	{domainauth.ErrUnauthorized, http.StatusForbidden, "insufficient_permissions"},
	{model.ErrNotCoordinator, http.StatusForbidden, "not_coordinator"},
	{model.ErrUserNotFound, http.StatusNotFound, "user_not_found"},
	{model.ErrEventNotFound, http.StatusNotFound, "event_not_found"},
	{model.ErrClubNotFound, http.StatusNotFound, "club_not_found"},
	{model.ErrRegistrationNotFound, http.StatusNotFound, "registration_not_found"},
}

// StatusForError returns the HTTP status a service error is reported with.
func StatusForError(err error) int {
	return classifyError(err).Code
}

// classifyError turns a service error into a client-safe ErrorParams. Messages of
// 5xx errors are replaced with the status text so internals never leak.
func classifyError(err error) ErrorParams {
	var rejected *domainauth.RejectedDomainError
	if errors.As(err, &rejected) {
		return ErrorParams{Code: http.StatusForbidden, ErrCode: "invalid_domain", Err: rejected}
	}
	if errors.Is(err, model.ErrAlreadyRegistered) {
		return ErrorParams{Code: http.StatusConflict, ErrCode: "already_registered", Err: errAlreadyRegistered}
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		status := statusForCode(appErr.Code)
		if status >= http.StatusInternalServerError {
			return ErrorParams{Code: status, ErrCode: string(appErr.Code), Err: errors.New(http.StatusText(status))}
		}
		return ErrorParams{Code: status, ErrCode: string(appErr.Code), Err: errors.New(appErr.Message)}
	}

	for _, s := range sentinelStatuses {
		if errors.Is(err, s.err) {
			return ErrorParams{Code: s.status, ErrCode: s.code, Err: s.err}
		}
	}

	return ErrorParams{
		Code:    http.StatusInternalServerError,
		ErrCode: "internal_error",
		Err:     errors.New(http.StatusText(http.StatusInternalServerError)),
	}
}

func statusForCode(code apperrors.ErrorCode) int {
	switch code {
	case apperrors.ErrCodeValidation, apperrors.ErrCodeForeignKey:
		return http.StatusBadRequest
	case apperrors.ErrCodeNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeConflict:
		return http.StatusConflict
	case apperrors.ErrCodeUnauthenticated:
		return http.StatusUnauthorized
	case apperrors.ErrCodeForbidden:
		return http.StatusForbidden
	case apperrors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case apperrors.ErrCodeCanceled:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError reports err to the client and logs server-side failures.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	p := classifyError(err)
	if p.Code >= http.StatusInternalServerError {
		loggerOrDefault(logger).ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
	}
	p.Field = apperrors.GetField(err)
	WriteError(w, p)
}

func loggerOrDefault(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return slog.Default()
}
