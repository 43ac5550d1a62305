package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/campushub/eventhub/internal/core"
	domainauth "github.com/campushub/eventhub/internal/domain/auth"
	"github.com/campushub/eventhub/internal/domain/model"
	apperrors "github.com/campushub/eventhub/internal/errors"
)

// EventServiceOptions groups dependencies for EventService.
type EventServiceOptions struct {
	Events core.EventRepository
	Users  core.UserRepository
	Logger *slog.Logger
}

// EventService publishes and lists club events.
type EventService struct {
	events core.EventRepository
	users  core.UserRepository
	logger *slog.Logger
}

// NewEventService constructs a new EventService.
func NewEventService(opts EventServiceOptions) *EventService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &EventService{
		events: opts.Events,
		users:  opts.Users,
		logger: logger.With("component", "event_service"),
	}
}

// Create publishes an event for the coordinator's club. The club affiliation is
// read from the directory, not the token, so a revoked coordinator cannot post.
func (s *EventService) Create(
	ctx context.Context,
	actor domainauth.Token,
	req *model.CreateEventRequest,
) (*model.Event, error) {
	clubID, err := s.coordinatorClub(ctx, actor)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, apperrors.Validation("all fields are required")
	}
	date, err := req.Validate()
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid event")
	}

	ev, err := s.events.Create(ctx, core.CreateEventParams{
		ClubID:      clubID,
		Title:       req.Title,
		Description: req.Description,
		Date:        date,
		Location:    req.Location,
		PosterURL:   req.PosterURL,
	})
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	s.logger.InfoContext(ctx, "event created", "event_id", ev.ID, "club_id", clubID, "user_id", actor.UserID)
	return ev, nil
}

func (s *EventService) coordinatorClub(ctx context.Context, actor domainauth.Token) (string, error) {
	forbidden := apperrors.Wrap(model.ErrNotCoordinator, apperrors.ErrCodeForbidden, "Only club leads can create events")
	if actor.Role != domainauth.RoleCoordinator || actor.UserID == "" {
		return "", forbidden
	}
	u, err := s.users.GetByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return "", forbidden
		}
		return "", fmt.Errorf("lookup coordinator: %w", err)
	}
	if u.Role != domainauth.RoleCoordinator || u.ClubID == nil || *u.ClubID == "" {
		return "", forbidden
	}
	return *u.ClubID, nil
}

// GetByID retrieves an event by ID.
func (s *EventService) GetByID(ctx context.Context, id string) (*model.Event, error) {
	return s.events.GetByID(ctx, id)
}

// ListUpcoming returns events dated now or later, soonest first.
func (s *EventService) ListUpcoming(ctx context.Context, opts model.EventsListOptions) ([]*model.Event, error) {
	opts.Upcoming = true
	return s.events.List(ctx, opts)
}

// ListForCoordinator returns every event of the coordinator's club with registration counts.
func (s *EventService) ListForCoordinator(ctx context.Context, actor domainauth.Token) ([]*model.EventSummary, error) {
	clubID, err := s.coordinatorClub(ctx, actor)
	if err != nil {
		return nil, err
	}
	events, err := s.events.List(ctx, model.EventsListOptions{ClubID: &clubID})
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return []*model.EventSummary{}, nil
	}

	ids := make([]string, len(events))
	for i, ev := range events {
		ids[i] = ev.ID
	}
	counts, err := s.events.RegistrationCounts(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("count registrations: %w", err)
	}

	out := make([]*model.EventSummary, len(events))
	for i, ev := range events {
		out[i] = &model.EventSummary{Event: ev, RegisteredCount: counts[ev.ID]}
	}
	return out, nil
}
