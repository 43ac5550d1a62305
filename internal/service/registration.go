package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/campushub/eventhub/internal/core"
	"github.com/campushub/eventhub/internal/domain/model"
	apperrors "github.com/campushub/eventhub/internal/errors"
	"github.com/campushub/eventhub/internal/ports"
)

// RegistrationServiceOptions groups dependencies for RegistrationService.
type RegistrationServiceOptions struct {
	Registrations core.RegistrationRepository // Required
	Events        core.EventRepository        // Required
	Users         core.UserRepository         // Required
	Notifications core.NotificationRepository // Optional: in-app reminder on registration
	Notifier      ports.Notifier              // Optional: confirmation and reminder email
	Logger        *slog.Logger                // Optional
}

// RegistrationService manages event registrations. Side effects after a
// successful registration are best effort and never undo it.
type RegistrationService struct {
	registrations core.RegistrationRepository
	events        core.EventRepository
	users         core.UserRepository
	notifications core.NotificationRepository
	notifier      ports.Notifier
	logger        *slog.Logger
}

// NewRegistrationService constructs a new RegistrationService.
func NewRegistrationService(opts RegistrationServiceOptions) (*RegistrationService, error) {
	if opts.Registrations == nil || opts.Events == nil || opts.Users == nil {
		return nil, errors.New("registration, event and user repositories are required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &RegistrationService{
		registrations: opts.Registrations,
		events:        opts.Events,
		users:         opts.Users,
		notifications: opts.Notifications,
		notifier:      opts.Notifier,
		logger:        logger.With("component", "registration_service"),
	}, nil
}

// Register registers userID for eventID. An active registration yields the
// existing row together with model.ErrAlreadyRegistered.
func (s *RegistrationService) Register(ctx context.Context, userID, eventID string) (*model.Registration, error) {
	if userID == "" {
		return nil, apperrors.Unauthenticated("Unauthorized")
	}
	if eventID == "" {
		return nil, apperrors.ValidationField("eventId", "event id is required")
	}

	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	res, err := s.registrations.Upsert(ctx, core.RegistrationKey{UserID: userID, EventID: eventID})
	if err != nil {
		return nil, fmt.Errorf("upsert registration: %w", err)
	}
	if res.AlreadyRegistered {
		return res.Registration, model.ErrAlreadyRegistered
	}

	s.logger.InfoContext(ctx, "registered for event", "user_id", userID, "event_id", eventID)
	s.afterRegister(ctx, user, event)
	return res.Registration, nil
}

func (s *RegistrationService) afterRegister(ctx context.Context, user *model.User, event *model.Event) {
	if s.notifications != nil {
		_, err := s.notifications.Create(ctx, &model.CreateNotificationRequest{
			UserID: user.ID,
			Type:   model.NotificationEventReminder,
			Payload: model.EventReminderPayload{
				EventID:       event.ID,
				EventTitle:    event.Title,
				EventDate:     event.Date,
				EventLocation: event.LocationOrTBA(),
				ClubName:      event.ClubName,
			},
		})
		if err != nil {
			s.logger.WarnContext(ctx, "create registration notification failed",
				"user_id", user.ID, "event_id", event.ID, "error", err)
		}
	}
	s.notify(ctx, model.EmailRegistrationConfirmed, user, event)
}

func (s *RegistrationService) notify(ctx context.Context, kind model.EmailKind, user *model.User, event *model.Event) bool {
	if s.notifier == nil {
		return false
	}
	msg := model.EventEmail{
		Kind:          kind,
		To:            user.Email,
		UserName:      user.DisplayName(),
		EventTitle:    event.Title,
		EventDate:     event.Date,
		EventLocation: event.LocationOrTBA(),
		ClubName:      event.ClubName,
	}
	if err := s.notifier.Notify(ctx, msg); err != nil {
		s.logger.WarnContext(ctx, "queue email failed",
			"kind", kind, "user_id", user.ID, "event_id", event.ID, "error", err)
		return false
	}
	return true
}

// Cancel marks the registration of userID for eventID as cancelled.
func (s *RegistrationService) Cancel(ctx context.Context, userID, eventID string) (*model.Registration, error) {
	if userID == "" {
		return nil, apperrors.Unauthenticated("Unauthorized")
	}
	reg, err := s.registrations.Cancel(ctx, core.RegistrationKey{UserID: userID, EventID: eventID})
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "registration cancelled", "user_id", userID, "event_id", eventID)
	return reg, nil
}

// ListMine returns the active registrations of userID with event details.
func (s *RegistrationService) ListMine(ctx context.Context, userID string) ([]*model.RegistrationWithEvent, error) {
	if userID == "" {
		return nil, apperrors.Unauthenticated("Unauthorized")
	}
	return s.registrations.ListByUser(ctx, userID)
}

// RemindAttendees queues a reminder email for every registered attendee of
// eventID and returns how many were queued.
func (s *RegistrationService) RemindAttendees(ctx context.Context, eventID string) (int, error) {
	if s.notifier == nil {
		return 0, errors.New("no notifier configured")
	}
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return 0, err
	}
	attendees, err := s.registrations.ListAttendees(ctx, eventID)
	if err != nil {
		return 0, fmt.Errorf("list attendees: %w", err)
	}

	queued := 0
	for _, u := range attendees {
		if err := ctx.Err(); err != nil {
			return queued, err
		}
		if s.notify(ctx, model.EmailEventReminder, u, event) {
			queued++
		}
	}
	s.logger.InfoContext(ctx, "event reminders queued", "event_id", eventID, "queued", queued, "attendees", len(attendees))
	return queued, nil
}
