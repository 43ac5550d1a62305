package core

import (
	"context"
	"time"

	"github.com/campushub/eventhub/internal/domain/model"
)

// This file contains repository interface definitions (ports in hexagonal architecture).
// Service implementations depend on these interfaces, not on internal/data.

// UserRepository is the User Directory: user records keyed by lower-case email.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	// Create inserts a minimal record. It returns model.ErrUserExists when the email
	// is already present, including when a concurrent sign-in won the race.
	Create(ctx context.Context, req *model.CreateUserRequest) (*model.User, error)
	CompleteProfile(ctx context.Context, userID string, req *model.CompleteProfileRequest) (*model.User, error)
	SetRole(ctx context.Context, req *model.SetRoleRequest) (*model.User, error)
	List(ctx context.Context, opts model.UsersListOptions) ([]*model.User, error)
}

// ClubRepository defines club data operations.
type ClubRepository interface {
	Create(ctx context.Context, req *model.CreateClubRequest) (*model.Club, error)
	GetByID(ctx context.Context, id string) (*model.Club, error)
	List(ctx context.Context) ([]*model.Club, error)
}

// CreateEventParams groups the validated fields of a new event.
type CreateEventParams struct {
	ClubID      string
	Title       string
	Description string
	Date        time.Time
	Location    string
	PosterURL   *string
}

// EventRepository defines event data operations.
type EventRepository interface {
	Create(ctx context.Context, params CreateEventParams) (*model.Event, error)
	GetByID(ctx context.Context, id string) (*model.Event, error)
	List(ctx context.Context, opts model.EventsListOptions) ([]*model.Event, error)
	// RegistrationCounts returns the number of REGISTERED rows per event id.
	RegistrationCounts(ctx context.Context, eventIDs []string) (map[string]int, error)
}

// RegistrationKey identifies the single registration row of a (user, event) pair.
type RegistrationKey struct {
	UserID  string
	EventID string
}

// RegistrationRepository defines registration data operations. Upsert is the only
// way to create or reactivate a registration.
type RegistrationRepository interface {
	Upsert(ctx context.Context, key RegistrationKey) (*model.UpsertResult, error)
	Cancel(ctx context.Context, key RegistrationKey) (*model.Registration, error)
	Get(ctx context.Context, key RegistrationKey) (*model.Registration, error)
	ListByUser(ctx context.Context, userID string) ([]*model.RegistrationWithEvent, error)
	ListAttendees(ctx context.Context, eventID string) ([]*model.User, error)
}

// NotificationRepository defines in-app notification data operations.
type NotificationRepository interface {
	Create(ctx context.Context, req *model.CreateNotificationRequest) (*model.Notification, error)
	ListRecent(ctx context.Context, userID string, limit int) ([]*model.Notification, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	MarkAllRead(ctx context.Context, userID string) (int, error)
}
