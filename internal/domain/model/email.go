//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// EmailKind selects the template of an event email.
type EmailKind string

const (
	EmailRegistrationConfirmed EmailKind = "registration_confirmed"
	EmailEventReminder         EmailKind = "event_reminder"
)

// EventEmail is a queued transactional email about an event.
type EventEmail struct {
	ID            string    `json:"id"`
	Kind          EmailKind `json:"kind"`
	To            string    `json:"to"`
	UserName      string    `json:"userName"`
	EventTitle    string    `json:"eventTitle"`
	EventDate     time.Time `json:"eventDate"`
	EventLocation string    `json:"eventLocation"`
	ClubName      string    `json:"clubName"`
	Attempts      int       `json:"attempts"`
	EnqueuedAt    time.Time `json:"enqueuedAt"`
}

// Validate validates EventEmail.
func (m *EventEmail) Validate() error {
	if strings.TrimSpace(m.To) == "" {
		return errors.New("recipient is required")
	}
	if strings.TrimSpace(m.EventTitle) == "" {
		return errors.New("event title is required")
	}
	switch m.Kind {
	case EmailRegistrationConfirmed, EmailEventReminder:
		return nil
	default:
		return fmt.Errorf("unknown email kind %q", m.Kind)
	}
}

// Subject returns the subject line for the email kind.
func (m *EventEmail) Subject() string {
	if m.Kind == EmailEventReminder {
		return "Reminder: " + m.EventTitle
	}
	return "Registration Confirmed: " + m.EventTitle
}

// Body renders the plain-text body.
func (m *EventEmail) Body() string {
	name := m.UserName
	if name == "" {
		name = "there"
	}
	lead := "You have successfully registered for the following event:"
	tail := "We're excited to see you there!\n\nIf you need to cancel your registration, you can do so from your dashboard."
	if m.Kind == EmailEventReminder {
		lead = "This is a reminder for your upcoming event:"
		tail = "Don't forget to attend!"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s!\n\n%s\n\n", name, lead)
	fmt.Fprintf(&b, "EVENT: %s\n", m.EventTitle)
	fmt.Fprintf(&b, "HOSTED BY: %s\n", m.ClubName)
	fmt.Fprintf(&b, "DATE & TIME: %s\n", m.EventDate.Format("Monday, January 2, 2006 at 03:04 PM MST"))
	fmt.Fprintf(&b, "VENUE: %s\n\n", m.EventLocation)
	b.WriteString(tail)
	b.WriteString("\n\nBest regards,\nEvent Hub Team")
	return b.String()
}
