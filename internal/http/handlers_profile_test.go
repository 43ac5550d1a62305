package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/campushub/eventhub/internal/domain/model"
)

func TestProfile_CompleteReissuesToken(t *testing.T) {
	f := newAPIFixture(t)
	gomock.InOrder(
		// gate refresh: still incomplete
		f.users.EXPECT().GetByEmail(gomock.Any(), testEmail).Return(studentUser(false), nil).Times(1),
		// the returned row re-issues the token, so the directory is not read again
		f.users.EXPECT().CompleteProfile(gomock.Any(), "u-1", gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, req *model.CompleteProfileRequest) (*model.User, error) {
				assert.Equal(t, "Ada Lovelace", req.FullName())
				return studentUser(true), nil
			}),
	)

	req := httptest.NewRequest(http.MethodPost, "/api/profile/complete", jsonBody(t, map[string]string{
		"firstName":   " Ada ",
		"lastName":    "Lovelace",
		"phoneNumber": "9876543210",
		"rollNumber":  "CS-01",
	}))
	req.AddCookie(f.sessionCookie(t, studentToken(false)))

	rec := f.do(req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "Profile completed successfully")
	ck := responseCookie(rec, DefaultSessionCookie)
	require.NotNil(t, ck)
	tok, err := f.codec.Decode(ck.Value)
	require.NoError(t, err)
	assert.True(t, tok.IsProfileComplete)

	// The re-issued token is ALLOWed without another completion redirect.
	f.regs.EXPECT().ListByUser(gomock.Any(), "u-1").Return(nil, nil)
	next := httptest.NewRequest(http.MethodGet, "/student/registrations", nil)
	next.AddCookie(ck)
	assert.Equal(t, http.StatusOK, f.do(next).Code)
}

func TestProfile_CompleteFromForm(t *testing.T) {
	f := newAPIFixture(t)
	f.users.EXPECT().GetByEmail(gomock.Any(), testEmail).Return(studentUser(false), nil).Times(1)
	f.users.EXPECT().CompleteProfile(gomock.Any(), "u-1", gomock.Any()).Return(studentUser(true), nil)

	form := url.Values{
		"firstName":   {"Ada"},
		"lastName":    {"Lovelace"},
		"phoneNumber": {"9876543210"},
		"rollNumber":  {"CS-01"},
	}
	req := httptest.NewRequest(http.MethodPost, "/api/profile/complete", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(f.sessionCookie(t, studentToken(false)))

	rec := f.do(req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	ck := responseCookie(rec, DefaultSessionCookie)
	require.NotNil(t, ck)
	tok, err := f.codec.Decode(ck.Value)
	require.NoError(t, err)
	assert.True(t, tok.IsProfileComplete)
}

func TestProfile_Validation(t *testing.T) {
	f := newAPIFixture(t)
	f.users.EXPECT().GetByEmail(gomock.Any(), testEmail).Return(studentUser(false), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/profile/complete", jsonBody(t, map[string]string{
		"firstName":   "Ada",
		"lastName":    "Lovelace",
		"phoneNumber": "12345",
		"rollNumber":  "CS-01",
	}))
	req.AddCookie(f.sessionCookie(t, studentToken(false)))

	rec := f.do(req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "validation")
	assert.Nil(t, responseCookie(rec, DefaultSessionCookie))
}

func TestProfile_RequiresSession(t *testing.T) {
	f := newAPIFixture(t)
	req := httptest.NewRequest(http.MethodPost, "/api/profile/complete", jsonBody(t, map[string]string{}))

	rec := f.do(req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
