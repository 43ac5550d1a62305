//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import "time"

// RegistrationStatus is the lifecycle state of an event registration.
// REGISTERED -> CANCELLED -> REGISTERED is permitted.
type RegistrationStatus string

const (
	RegistrationRegistered RegistrationStatus = "REGISTERED"
	RegistrationCancelled  RegistrationStatus = "CANCELLED"
)

// Valid reports whether the status is supported.
func (s RegistrationStatus) Valid() bool {
	return s == RegistrationRegistered || s == RegistrationCancelled
}

// Registration ties a user to an event. At most one row exists per (user, event).
type Registration struct {
	ID        string             `json:"id"        db:"id"`
	UserID    string             `json:"userId"    db:"user_id"`
	EventID   string             `json:"eventId"   db:"event_id"`
	Status    RegistrationStatus `json:"status"    db:"status"`
	CreatedAt time.Time          `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time          `json:"updatedAt" db:"updated_at"`
}

// RegistrationWithEvent is a registration joined with its event for listings.
type RegistrationWithEvent struct {
	Registration
	EventTitle    string    `json:"eventTitle"              db:"event_title"`
	EventDate     time.Time `json:"eventDate"               db:"event_date"`
	EventLocation *string   `json:"eventLocation,omitempty" db:"event_location"`
	ClubName      string    `json:"clubName"                db:"club_name"`
}

// UpsertResult reports what a registration upsert did.
type UpsertResult struct {
	Registration *Registration
	// AlreadyRegistered is true when an active registration already existed and nothing changed.
	AlreadyRegistered bool
}
