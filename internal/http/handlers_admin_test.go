package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	domainauth "github.com/campushub/eventhub/internal/domain/auth"
	"github.com/campushub/eventhub/internal/domain/model"
)

func adminRequest(t *testing.T, f *apiFixture, req *http.Request) *http.Request {
	t.Helper()
	tok := studentToken(true)
	tok.Role = domainauth.RoleAdmin
	req.Header.Set("Accept", "application/json")
	req.AddCookie(f.sessionCookie(t, tok))
	return req
}

func TestAdmin_ListUsersByRole(t *testing.T) {
	f := newAPIFixture(t)
	f.users.EXPECT().List(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ any, opts model.UsersListOptions) ([]*model.User, error) {
			require.NotNil(t, opts.Role)
			assert.Equal(t, domainauth.RoleCoordinator, *opts.Role)
			assert.Equal(t, 200, opts.Limit)
			return []*model.User{lead(strPtr("c-1"))}, nil
		})

	rec := f.do(adminRequest(t, f, httptest.NewRequest(http.MethodGet, "/admin/users?role=coordinator&limit=1000", nil)))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"role":"COORDINATOR"`)

	rec = f.do(adminRequest(t, f, httptest.NewRequest(http.MethodGet, "/admin/users?role=dean", nil)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdmin_CreateClub(t *testing.T) {
	f := newAPIFixture(t)
	f.clubs.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ any, req *model.CreateClubRequest) (*model.Club, error) {
			assert.Equal(t, "Robotics Club", req.Name)
			return &model.Club{ID: "c-9", Name: req.Name}, nil
		})

	rec := f.do(adminRequest(t, f, httptest.NewRequest(http.MethodPost, "/admin/clubs",
		jsonBody(t, map[string]string{"name": "  Robotics Club "}))))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"id":"c-9"`)

	rec = f.do(adminRequest(t, f, httptest.NewRequest(http.MethodPost, "/admin/clubs",
		jsonBody(t, map[string]string{"name": " "}))))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdmin_RemindAttendees(t *testing.T) {
	f := newAPIFixture(t)
	f.events.EXPECT().GetByID(gomock.Any(), "e-1").Return(hackNight, nil)
	f.regs.EXPECT().ListAttendees(gomock.Any(), "e-1").Return([]*model.User{studentUser(true)}, nil)

	rec := f.do(adminRequest(t, f, httptest.NewRequest(http.MethodPost, "/admin/events/e-1/remind", nil)))

	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"queued":1}`, rec.Body.String())
	require.Len(t, f.notifier.Sent(), 1)
	assert.Equal(t, "Reminder: Hack Night", f.notifier.Sent()[0].Subject())
}
