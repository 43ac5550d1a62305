//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"encoding/json"
	"time"
)

// NotificationType classifies in-app notifications.
type NotificationType string

const (
	NotificationEventReminder NotificationType = "EVENT_REMINDER"
)

// Notification is an in-app message for a user.
type Notification struct {
	ID        string           `json:"id"        db:"id"`
	UserID    string           `json:"userId"    db:"user_id"`
	Type      NotificationType `json:"type"      db:"type"`
	Payload   json.RawMessage  `json:"payload"   db:"payload"`
	Read      bool             `json:"read"      db:"read"`
	CreatedAt time.Time        `json:"createdAt" db:"created_at"`
}

// EventReminderPayload is stored with EVENT_REMINDER notifications.
type EventReminderPayload struct {
	EventID       string    `json:"eventId"`
	EventTitle    string    `json:"eventTitle"`
	EventDate     time.Time `json:"eventDate"`
	EventLocation string    `json:"eventLocation"`
	ClubName      string    `json:"clubName"`
}

// CreateNotificationRequest represents parameters to create a Notification.
type CreateNotificationRequest struct {
	UserID  string
	Type    NotificationType
	Payload any
}

// NotificationFeed is the latest notifications plus the unread count.
type NotificationFeed struct {
	Notifications []*Notification `json:"notifications"`
	UnreadCount   int             `json:"unreadCount"`
}
