package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	domainauth "github.com/campushub/eventhub/internal/domain/auth"
	"github.com/campushub/eventhub/internal/domain/model"
)

func TestGate_Unauthenticated(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		target     string
		accept     string
		wantStatus int
		wantLoc    string
	}{
		{
			name:       "browser is sent to sign-in with callback",
			method:     http.MethodGet,
			target:     "/student/registrations",
			accept:     "text/html",
			wantStatus: http.StatusSeeOther,
			wantLoc:    "/signup?callbackUrl=%2Fstudent%2Fregistrations",
		},
		{
			name:       "query string survives the round trip",
			method:     http.MethodGet,
			target:     "/club-lead/events?tab=past",
			accept:     "text/html",
			wantStatus: http.StatusSeeOther,
			wantLoc:    "/signup?callbackUrl=%2Fclub-lead%2Fevents%3Ftab%3Dpast",
		},
		{
			name:       "api call gets 401",
			method:     http.MethodPost,
			target:     "/api/events/e-1/register",
			accept:     "application/json",
			wantStatus: http.StatusUnauthorized,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAPIFixture(t)
			req := httptest.NewRequest(tt.method, tt.target, nil)
			req.Header.Set("Accept", tt.accept)

			rec := f.do(req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantLoc != "" {
				assert.Equal(t, tt.wantLoc, rec.Header().Get("Location"))
			}
		})
	}
}

func TestGate_APIErrorPayload(t *testing.T) {
	f := newAPIFixture(t)
	req := httptest.NewRequest(http.MethodGet, "/api/notifications", nil)

	rec := f.do(req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "authentication_required", body["error"])
	assert.Equal(t, "/signup?callbackUrl=%2Fapi%2Fnotifications", body["redirect_to"])
}

func TestGate_PublicRoutesNeedNoSession(t *testing.T) {
	f := newAPIFixture(t)
	f.events.EXPECT().List(gomock.Any(), gomock.Any()).Return(nil, nil)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/events", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"events":[],"limit":20,"offset":0}`, rec.Body.String())

	rec = f.do(httptest.NewRequest(http.MethodGet, "/signup", nil))
	assert.Equal(t, http.StatusOK, rec.Code, "sign-in page never redirects to itself")

	rec = f.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGate_IncompleteProfile(t *testing.T) {
	t.Run("browser is sent to completion", func(t *testing.T) {
		f := newAPIFixture(t)
		f.users.EXPECT().GetByEmail(gomock.Any(), testEmail).Return(studentUser(false), nil)
		req := httptest.NewRequest(http.MethodGet, "/student/registrations", nil)
		req.AddCookie(f.sessionCookie(t, studentToken(false)))

		rec := f.do(req)

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/signup/complete", rec.Header().Get("Location"))
		assert.Nil(t, responseCookie(rec, DefaultSessionCookie), "unchanged claims are not re-issued")
	})

	t.Run("api call gets 403", func(t *testing.T) {
		f := newAPIFixture(t)
		f.users.EXPECT().GetByEmail(gomock.Any(), testEmail).Return(studentUser(false), nil)
		req := httptest.NewRequest(http.MethodGet, "/api/notifications", nil)
		req.AddCookie(f.sessionCookie(t, studentToken(false)))

		rec := f.do(req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Contains(t, rec.Body.String(), "profile_incomplete")
	})

	t.Run("completion page is reachable", func(t *testing.T) {
		f := newAPIFixture(t)
		f.users.EXPECT().GetByEmail(gomock.Any(), testEmail).Return(studentUser(false), nil)
		req := httptest.NewRequest(http.MethodGet, "/signup/complete", nil)
		req.AddCookie(f.sessionCookie(t, studentToken(false)))

		rec := f.do(req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Complete your profile")
	})

	t.Run("completed elsewhere is picked up and re-issued", func(t *testing.T) {
		f := newAPIFixture(t)
		f.users.EXPECT().GetByEmail(gomock.Any(), testEmail).Return(studentUser(true), nil)
		f.regs.EXPECT().ListByUser(gomock.Any(), "u-1").Return(nil, nil)
		req := httptest.NewRequest(http.MethodGet, "/student/registrations", nil)
		req.AddCookie(f.sessionCookie(t, studentToken(false)))

		rec := f.do(req)

		require.Equal(t, http.StatusOK, rec.Code)
		ck := responseCookie(rec, DefaultSessionCookie)
		require.NotNil(t, ck)
		tok, err := f.codec.Decode(ck.Value)
		require.NoError(t, err)
		assert.True(t, tok.IsProfileComplete)
	})

	t.Run("directory outage keeps the token", func(t *testing.T) {
		f := newAPIFixture(t)
		f.users.EXPECT().GetByEmail(gomock.Any(), testEmail).Return(nil, errors.New("connection refused"))
		req := httptest.NewRequest(http.MethodGet, "/student/registrations", nil)
		req.AddCookie(f.sessionCookie(t, studentToken(false)))

		rec := f.do(req)

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/signup/complete", rec.Header().Get("Location"))
	})
}

func TestGate_Roles(t *testing.T) {
	tests := []struct {
		name   string
		role   domainauth.Role
		target string
	}{
		{name: "student on admin", role: domainauth.RoleStudent, target: "/admin/users"},
		{name: "student on club lead", role: domainauth.RoleStudent, target: "/club-lead/events"},
		{name: "admin on student area", role: domainauth.RoleAdmin, target: "/student/registrations"},
		{name: "coordinator on admin", role: domainauth.RoleCoordinator, target: "/admin/users"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAPIFixture(t)
			tok := studentToken(true)
			tok.Role = tt.role
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			req.AddCookie(f.sessionCookie(t, tok))

			rec := f.do(req)

			assert.Equal(t, http.StatusSeeOther, rec.Code)
			assert.Equal(t, "/403", rec.Header().Get("Location"))
		})
	}

	t.Run("admin lists users", func(t *testing.T) {
		f := newAPIFixture(t)
		tok := studentToken(true)
		tok.Role = domainauth.RoleAdmin
		f.users.EXPECT().List(gomock.Any(), model.UsersListOptions{Limit: 50}).Return([]*model.User{studentUser(true)}, nil)
		req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
		req.AddCookie(f.sessionCookie(t, tok))

		rec := f.do(req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), testEmail)
	})
}

func TestGate_InvalidCookieIsCleared(t *testing.T) {
	f := newAPIFixture(t)
	req := httptest.NewRequest(http.MethodGet, "/student/registrations", nil)
	req.AddCookie(&http.Cookie{Name: DefaultSessionCookie, Value: "garbage"})

	rec := f.do(req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	ck := responseCookie(rec, DefaultSessionCookie)
	require.NotNil(t, ck)
	assert.Equal(t, -1, ck.MaxAge)
}

func TestGate_StaticAssetsSkipAuthentication(t *testing.T) {
	f := newAPIFixture(t)
	req := httptest.NewRequest(http.MethodGet, "/static/logo.png", nil)
	req.AddCookie(&http.Cookie{Name: DefaultSessionCookie, Value: "garbage"})

	rec := f.do(req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Nil(t, responseCookie(rec, DefaultSessionCookie), "cookie untouched for static paths")
}

func TestIsBrowserRequest(t *testing.T) {
	tests := []struct {
		path, accept string
		want         bool
	}{
		{path: "/events", accept: "", want: true},
		{path: "/events", accept: "text/html,application/xhtml+xml", want: true},
		{path: "/events", accept: "application/json", want: false},
		{path: "/api/notifications", accept: "text/html", want: false},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, tt.path, nil)
		if tt.accept != "" {
			req.Header.Set("Accept", tt.accept)
		}
		assert.Equal(t, tt.want, IsBrowserRequest(req), "%s accept=%q", tt.path, tt.accept)
	}
}
