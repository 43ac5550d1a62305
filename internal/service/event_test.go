package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/campushub/eventhub/internal/core"
	domainauth "github.com/campushub/eventhub/internal/domain/auth"
	"github.com/campushub/eventhub/internal/domain/model"
	apperrors "github.com/campushub/eventhub/internal/errors"
	"github.com/campushub/eventhub/internal/mocks"
)

func coordinator(clubID *string) *model.User {
	return &model.User{
		ID:                "lead-1",
		Email:             "lead@students.college.edu",
		Role:              domainauth.RoleCoordinator,
		IsProfileComplete: true,
		ClubID:            clubID,
	}
}

func leadToken() domainauth.Token {
	return domainauth.Token{UserID: "lead-1", Email: "lead@students.college.edu", Role: domainauth.RoleCoordinator, IsProfileComplete: true}
}

func TestEventService_Create(t *testing.T) {
	ctrl := gomock.NewController(t)
	events := mocks.NewMockEventRepository(ctrl)
	users := mocks.NewMockUserRepository(ctrl)
	svc := NewEventService(EventServiceOptions{Events: events, Users: users})
	ctx := context.Background()

	users.EXPECT().GetByID(gomock.Any(), "lead-1").Return(coordinator(strPtr("c-1")), nil)
	events.EXPECT().Create(gomock.Any(), core.CreateEventParams{
		ClubID:      "c-1",
		Title:       "Hack Night",
		Description: "Bring a laptop",
		Date:        time.Date(2025, 4, 1, 18, 0, 0, 0, time.UTC),
		Location:    "Lab 3",
	}).Return(&model.Event{ID: "e-1", Title: "Hack Night"}, nil)

	ev, err := svc.Create(ctx, leadToken(), &model.CreateEventRequest{
		Title:       " Hack Night ",
		Description: "Bring a laptop",
		Date:        "2025-04-01T18:00:00Z",
		Location:    "Lab 3",
	})
	require.NoError(t, err)
	assert.Equal(t, "e-1", ev.ID)
}

func TestEventService_Create_Rejections(t *testing.T) {
	ctx := context.Background()
	valid := func() *model.CreateEventRequest {
		return &model.CreateEventRequest{Title: "t", Description: "d", Date: "2025-04-01", Location: "l"}
	}

	t.Run("student role", func(t *testing.T) {
		svc := NewEventService(EventServiceOptions{})
		tok := leadToken()
		tok.Role = domainauth.RoleStudent
		_, err := svc.Create(ctx, tok, valid())
		assert.ErrorIs(t, err, model.ErrNotCoordinator)
		assert.Equal(t, apperrors.ErrCodeForbidden, apperrors.GetCode(err))
	})

	t.Run("coordinator without club", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		users := mocks.NewMockUserRepository(ctrl)
		users.EXPECT().GetByID(gomock.Any(), "lead-1").Return(coordinator(nil), nil)
		svc := NewEventService(EventServiceOptions{Users: users})
		_, err := svc.Create(ctx, leadToken(), valid())
		assert.ErrorIs(t, err, model.ErrNotCoordinator)
	})

	t.Run("demoted since token was minted", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		users := mocks.NewMockUserRepository(ctrl)
		demoted := coordinator(strPtr("c-1"))
		demoted.Role = domainauth.RoleStudent
		users.EXPECT().GetByID(gomock.Any(), "lead-1").Return(demoted, nil)
		svc := NewEventService(EventServiceOptions{Users: users})
		_, err := svc.Create(ctx, leadToken(), valid())
		assert.ErrorIs(t, err, model.ErrNotCoordinator)
	})

	t.Run("missing fields", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		users := mocks.NewMockUserRepository(ctrl)
		users.EXPECT().GetByID(gomock.Any(), "lead-1").Return(coordinator(strPtr("c-1")), nil)
		svc := NewEventService(EventServiceOptions{Users: users})
		req := valid()
		req.Location = " "
		_, err := svc.Create(ctx, leadToken(), req)
		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("bad date", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		users := mocks.NewMockUserRepository(ctrl)
		users.EXPECT().GetByID(gomock.Any(), "lead-1").Return(coordinator(strPtr("c-1")), nil)
		svc := NewEventService(EventServiceOptions{Users: users})
		req := valid()
		req.Date = "next friday"
		_, err := svc.Create(ctx, leadToken(), req)
		assert.ErrorContains(t, err, "invalid date format")
	})
}

func TestEventService_ListForCoordinator(t *testing.T) {
	ctrl := gomock.NewController(t)
	events := mocks.NewMockEventRepository(ctrl)
	users := mocks.NewMockUserRepository(ctrl)
	svc := NewEventService(EventServiceOptions{Events: events, Users: users})

	users.EXPECT().GetByID(gomock.Any(), "lead-1").Return(coordinator(strPtr("c-1")), nil)
	events.EXPECT().List(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, opts model.EventsListOptions) ([]*model.Event, error) {
			require.NotNil(t, opts.ClubID)
			assert.Equal(t, "c-1", *opts.ClubID)
			assert.False(t, opts.Upcoming)
			return []*model.Event{{ID: "e-1"}, {ID: "e-2"}}, nil
		})
	events.EXPECT().RegistrationCounts(gomock.Any(), []string{"e-1", "e-2"}).Return(map[string]int{"e-1": 3}, nil)

	out, err := svc.ListForCoordinator(context.Background(), leadToken())
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, 3, out[0].RegisteredCount)
	assert.Equal(t, 0, out[1].RegisteredCount)
}

func TestEventService_ListUpcoming(t *testing.T) {
	ctrl := gomock.NewController(t)
	events := mocks.NewMockEventRepository(ctrl)
	svc := NewEventService(EventServiceOptions{Events: events})

	events.EXPECT().List(gomock.Any(), model.EventsListOptions{Limit: 20, Upcoming: true}).Return(nil, nil)
	_, err := svc.ListUpcoming(context.Background(), model.EventsListOptions{Limit: 20})
	require.NoError(t, err)
}

func TestClubService_Create(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockClubRepository(ctrl)
	svc := NewClubService(ClubServiceOptions{Repo: repo})
	ctx := context.Background()

	_, err := svc.Create(ctx, &model.CreateClubRequest{Name: "  "})
	assert.True(t, apperrors.IsValidation(err))

	repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(&model.Club{ID: "c-1", Name: "Chess"}, nil)
	club, err := svc.Create(ctx, &model.CreateClubRequest{Name: " Chess "})
	require.NoError(t, err)
	assert.Equal(t, "Chess", club.Name)
}
