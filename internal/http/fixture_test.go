package httpx

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/campushub/eventhub/internal/adapters/memstore"
	"github.com/campushub/eventhub/internal/domain/access"
	domainauth "github.com/campushub/eventhub/internal/domain/auth"
	"github.com/campushub/eventhub/internal/domain/model"
	"github.com/campushub/eventhub/internal/mocks"
	authmocks "github.com/campushub/eventhub/internal/mocks/auth"
	"github.com/campushub/eventhub/internal/service"
)

const testEmail = "mock.student@students.college.edu"

// apiFixture wires the real router and services over mocked repositories.
type apiFixture struct {
	handler  http.Handler
	codec    *authmocks.FakeTokenCodec
	provider *authmocks.MockAuthProvider
	notifier *authmocks.RecordingNotifier

	users  *mocks.MockUserRepository
	clubs  *mocks.MockClubRepository
	events *mocks.MockEventRepository
	regs   *mocks.MockRegistrationRepository
	notes  *mocks.MockNotificationRepository
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	f := &apiFixture{
		codec:    &authmocks.FakeTokenCodec{TTL: time.Hour},
		provider: authmocks.NewMockAuthProvider(),
		notifier: &authmocks.RecordingNotifier{},
		users:    mocks.NewMockUserRepository(ctrl),
		clubs:    mocks.NewMockClubRepository(ctrl),
		events:   mocks.NewMockEventRepository(ctrl),
		regs:     mocks.NewMockRegistrationRepository(ctrl),
		notes:    mocks.NewMockNotificationRepository(ctrl),
	}

	domains, err := domainauth.NewDomainFilter([]string{"students.college.edu"})
	require.NoError(t, err)
	authSvc, err := service.NewAuthService(service.AuthServiceOptions{
		Provider: f.provider,
		Codec:    f.codec,
		States:   memstore.NewLoginStateStore(),
		Users:    f.users,
		Domains:  domains,
		Logger:   logger,
	})
	require.NoError(t, err)
	gate, err := access.NewGate(access.DefaultRouteTable())
	require.NoError(t, err)
	regSvc, err := service.NewRegistrationService(service.RegistrationServiceOptions{
		Registrations: f.regs,
		Events:        f.events,
		Users:         f.users,
		Notifications: f.notes,
		Notifier:      f.notifier,
		Logger:        logger,
	})
	require.NoError(t, err)

	f.handler = NewRouter(RouterServices{
		Gate:           gate,
		Auth:           authSvc,
		Users:          service.NewUserService(service.UserServiceOptions{Repo: f.users, Clubs: f.clubs, Logger: logger}),
		Clubs:          service.NewClubService(service.ClubServiceOptions{Repo: f.clubs}),
		Events:         service.NewEventService(service.EventServiceOptions{Events: f.events, Users: f.users, Logger: logger}),
		Registrations:  regSvc,
		Notifications:  service.NewNotificationService(service.NotificationServiceOptions{Repo: f.notes}),
		AllowedDomains: domains.Domains(),
		Logger:         logger,
	})
	return f
}

func (f *apiFixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

// sessionCookie signs tok with the fixture's codec.
func (f *apiFixture) sessionCookie(t *testing.T, tok domainauth.Token) *http.Cookie {
	t.Helper()
	raw, _, err := f.codec.Encode(tok)
	require.NoError(t, err)
	return &http.Cookie{Name: DefaultSessionCookie, Value: raw}
}

func studentToken(complete bool) domainauth.Token {
	return domainauth.Token{
		UserID:            "u-1",
		Email:             testEmail,
		Name:              "Mock Student",
		Role:              domainauth.RoleStudent,
		IsProfileComplete: complete,
	}
}

func strPtr(s string) *string { return &s }

func studentUser(complete bool) *model.User {
	return &model.User{
		ID:                "u-1",
		Email:             testEmail,
		Name:              strPtr("Mock Student"),
		Role:              domainauth.RoleStudent,
		IsProfileComplete: complete,
	}
}

// responseCookie returns the last cookie named name set on the response.
func responseCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	var found *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			found = c
		}
	}
	return found
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(b)
}
