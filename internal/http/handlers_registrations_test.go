package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/campushub/eventhub/internal/core"
	"github.com/campushub/eventhub/internal/domain/model"
)

var hackNight = &model.Event{
	ID:       "e-1",
	Title:    "Hack Night",
	Date:     time.Date(2025, 4, 1, 18, 0, 0, 0, time.UTC),
	ClubID:   "c-1",
	ClubName: "Coding Club",
}

func registerRequest(t *testing.T, f *apiFixture, method, eventID string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, "/api/events/"+eventID+"/register", nil)
	req.Header.Set("Accept", "application/json")
	req.AddCookie(f.sessionCookie(t, studentToken(true)))
	return req
}

func TestRegistration_Register(t *testing.T) {
	f := newAPIFixture(t)
	key := core.RegistrationKey{UserID: "u-1", EventID: "e-1"}
	f.events.EXPECT().GetByID(gomock.Any(), "e-1").Return(hackNight, nil)
	f.users.EXPECT().GetByID(gomock.Any(), "u-1").Return(studentUser(true), nil)
	f.regs.EXPECT().Upsert(gomock.Any(), key).Return(&model.UpsertResult{
		Registration: &model.Registration{ID: "r-1", UserID: "u-1", EventID: "e-1", Status: model.RegistrationRegistered},
	}, nil)
	f.notes.EXPECT().Create(gomock.Any(), gomock.Any()).Return(&model.Notification{ID: "n-1"}, nil)

	rec := f.do(registerRequest(t, f, http.MethodPost, "e-1"))

	require.Equal(t, http.StatusCreated, rec.Code)
	var body struct {
		Message      string             `json:"message"`
		Registration model.Registration `json:"registration"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, model.RegistrationRegistered, body.Registration.Status)
	require.Len(t, f.notifier.Sent(), 1)
	assert.Equal(t, "Registration Confirmed: Hack Night", f.notifier.Sent()[0].Subject())
}

func TestRegistration_AlreadyRegistered(t *testing.T) {
	f := newAPIFixture(t)
	f.events.EXPECT().GetByID(gomock.Any(), "e-1").Return(hackNight, nil)
	f.users.EXPECT().GetByID(gomock.Any(), "u-1").Return(studentUser(true), nil)
	f.regs.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(&model.UpsertResult{
		Registration:      &model.Registration{ID: "r-1", Status: model.RegistrationRegistered},
		AlreadyRegistered: true,
	}, nil)

	rec := f.do(registerRequest(t, f, http.MethodPost, "e-1"))

	require.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t,
		`{"error":"already_registered","message":"You are already registered for this event"}`,
		rec.Body.String())
	assert.Empty(t, f.notifier.Sent())
}

func TestRegistration_UnknownEvent(t *testing.T) {
	f := newAPIFixture(t)
	f.events.EXPECT().GetByID(gomock.Any(), "nope").Return(nil, model.ErrEventNotFound)

	rec := f.do(registerRequest(t, f, http.MethodPost, "nope"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "event_not_found")
}

func TestRegistration_Cancel(t *testing.T) {
	f := newAPIFixture(t)
	f.regs.EXPECT().Cancel(gomock.Any(), core.RegistrationKey{UserID: "u-1", EventID: "e-1"}).
		Return(&model.Registration{ID: "r-1", Status: model.RegistrationCancelled}, nil)

	rec := f.do(registerRequest(t, f, http.MethodDelete, "e-1"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), string(model.RegistrationCancelled))

	f.regs.EXPECT().Cancel(gomock.Any(), gomock.Any()).Return(nil, model.ErrRegistrationNotFound)
	rec = f.do(registerRequest(t, f, http.MethodDelete, "e-2"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRegistration_ListMine(t *testing.T) {
	f := newAPIFixture(t)
	f.regs.EXPECT().ListByUser(gomock.Any(), "u-1").Return(nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/student/registrations", nil)
	req.AddCookie(f.sessionCookie(t, studentToken(true)))

	rec := f.do(req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"registrations":[]}`, rec.Body.String())
}

func TestNotifications(t *testing.T) {
	f := newAPIFixture(t)
	f.notes.EXPECT().ListRecent(gomock.Any(), "u-1", 10).Return(nil, nil)
	f.notes.EXPECT().CountUnread(gomock.Any(), "u-1").Return(0, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/notifications", nil)
	req.AddCookie(f.sessionCookie(t, studentToken(true)))

	rec := f.do(req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"notifications":[],"unreadCount":0}`, rec.Body.String())

	f.notes.EXPECT().MarkAllRead(gomock.Any(), "u-1").Return(3, nil)
	req = httptest.NewRequest(http.MethodPost, "/api/notifications", nil)
	req.AddCookie(f.sessionCookie(t, studentToken(true)))
	rec = f.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"updated":3}`, rec.Body.String())
}
