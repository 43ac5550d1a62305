//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"strings"
	"time"
)

// Event is a club-hosted event students can register for.
type Event struct {
	ID          string    `json:"id"                  db:"id"`
	Title       string    `json:"title"               db:"title"`
	Description string    `json:"description"         db:"description"`
	Date        time.Time `json:"date"                db:"date"`
	Location    *string   `json:"location,omitempty"  db:"location"`
	PosterURL   *string   `json:"posterUrl,omitempty" db:"poster_url"`
	ClubID      string    `json:"clubId"              db:"club_id"`
	ClubName    string    `json:"clubName"            db:"club_name"`
	CreatedAt   time.Time `json:"createdAt"           db:"created_at"`
}

// LocationOrTBA returns the location or "TBA" when unset.
func (e *Event) LocationOrTBA() string {
	if e.Location == nil || *e.Location == "" {
		return "TBA"
	}
	return *e.Location
}

// CreateEventRequest represents parameters a coordinator submits to publish an event.
// Date accepts RFC 3339 or a bare "2006-01-02T15:04" local form.
type CreateEventRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
	Location    string  `json:"location"`
	PosterURL   *string `json:"posterUrl,omitempty"`
}

var eventDateLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"}

// Validate checks required fields and returns the parsed event date.
func (r *CreateEventRequest) Validate() (time.Time, error) {
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
	r.Date = strings.TrimSpace(r.Date)
	r.Location = strings.TrimSpace(r.Location)
	r.PosterURL = trimOptional(r.PosterURL)

	if r.Title == "" || r.Description == "" || r.Date == "" || r.Location == "" {
		return time.Time{}, errors.New("all fields are required")
	}
	for _, layout := range eventDateLayouts {
		if t, err := time.Parse(layout, r.Date); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, errors.New("invalid date format")
}

// EventsListOptions controls listing events.
type EventsListOptions struct {
	Limit    int
	Offset   int
	ClubID   *string
	Upcoming bool // only events dated at or after now
}

// EventSummary is an event with its active registration count.
type EventSummary struct {
	*Event
	RegisteredCount int `json:"registeredCount"`
}
