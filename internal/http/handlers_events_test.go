package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/campushub/eventhub/internal/core"
	domainauth "github.com/campushub/eventhub/internal/domain/auth"
	"github.com/campushub/eventhub/internal/domain/model"
)

func leadToken() domainauth.Token {
	tok := studentToken(true)
	tok.UserID = "lead-1"
	tok.Role = domainauth.RoleCoordinator
	return tok
}

func lead(clubID *string) *model.User {
	u := studentUser(true)
	u.ID = "lead-1"
	u.Role = domainauth.RoleCoordinator
	u.ClubID = clubID
	return u
}

func TestEvents_CoordinatorCreates(t *testing.T) {
	f := newAPIFixture(t)
	f.users.EXPECT().GetByID(gomock.Any(), "lead-1").Return(lead(strPtr("c-1")), nil)
	f.events.EXPECT().Create(gomock.Any(), core.CreateEventParams{
		ClubID:      "c-1",
		Title:       "Hack Night",
		Description: "Bring a laptop",
		Date:        time.Date(2025, 4, 1, 18, 0, 0, 0, time.UTC),
		Location:    "Lab 3",
	}).Return(hackNight, nil)

	req := httptest.NewRequest(http.MethodPost, "/club-lead/events", jsonBody(t, map[string]string{
		"title":       "Hack Night",
		"description": "Bring a laptop",
		"date":        "2025-04-01T18:00:00Z",
		"location":    "Lab 3",
	}))
	req.Header.Set("Accept", "application/json")
	req.AddCookie(f.sessionCookie(t, leadToken()))

	rec := f.do(req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"title":"Hack Night"`)
}

func TestEvents_CoordinatorWithoutClubIsForbidden(t *testing.T) {
	f := newAPIFixture(t)
	f.users.EXPECT().GetByID(gomock.Any(), "lead-1").Return(lead(nil), nil)

	req := httptest.NewRequest(http.MethodPost, "/club-lead/events", jsonBody(t, map[string]string{
		"title": "t", "description": "d", "date": "2025-04-01", "location": "l",
	}))
	req.Header.Set("Accept", "application/json")
	req.AddCookie(f.sessionCookie(t, leadToken()))

	rec := f.do(req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "Only club leads can create events")
}

func TestEvents_CoordinatorDashboard(t *testing.T) {
	f := newAPIFixture(t)
	f.users.EXPECT().GetByID(gomock.Any(), "lead-1").Return(lead(strPtr("c-1")), nil)
	f.events.EXPECT().List(gomock.Any(), gomock.Any()).Return([]*model.Event{hackNight}, nil)
	f.events.EXPECT().RegistrationCounts(gomock.Any(), []string{"e-1"}).Return(map[string]int{"e-1": 12}, nil)

	req := httptest.NewRequest(http.MethodGet, "/club-lead/events", nil)
	req.AddCookie(f.sessionCookie(t, leadToken()))

	rec := f.do(req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"registeredCount":12`)
}

func TestEvents_PublicCatalogue(t *testing.T) {
	f := newAPIFixture(t)
	f.events.EXPECT().GetByID(gomock.Any(), "e-1").Return(hackNight, nil)
	rec := f.do(httptest.NewRequest(http.MethodGet, "/events/e-1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"clubName":"Coding Club"`)

	f.events.EXPECT().GetByID(gomock.Any(), "missing").Return(nil, model.ErrEventNotFound)
	rec = f.do(httptest.NewRequest(http.MethodGet, "/events/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	f.clubs.EXPECT().List(gomock.Any()).Return([]*model.Club{{ID: "c-1", Name: "Coding Club"}}, nil)
	rec = f.do(httptest.NewRequest(http.MethodGet, "/clubs", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"Coding Club"`)
}

func TestAdmin_SetRole(t *testing.T) {
	f := newAPIFixture(t)
	admin := studentToken(true)
	admin.Role = domainauth.RoleAdmin
	f.clubs.EXPECT().GetByID(gomock.Any(), "c-1").Return(&model.Club{ID: "c-1"}, nil)
	f.users.EXPECT().SetRole(gomock.Any(), gomock.Any()).Return(lead(strPtr("c-1")), nil)

	req := httptest.NewRequest(http.MethodPost, "/admin/users/role", jsonBody(t, map[string]string{
		"email": "lead@students.college.edu", "role": "coordinator", "clubId": "c-1",
	}))
	req.Header.Set("Accept", "application/json")
	req.AddCookie(f.sessionCookie(t, admin))

	rec := f.do(req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"role":"COORDINATOR"`)
}
