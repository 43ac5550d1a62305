package testutil

import (
	"context"
	"database/sql"
	"time"
)

// Fixture rows inserted directly with SQL so repository tests do not depend on
// the repositories they exercise.

// InsertClub creates a club and returns its id.
func InsertClub(t TestingTB, db *sql.DB, name string) string {
	t.Helper()
	var id string
	err := db.QueryRowContext(context.Background(),
		`INSERT INTO clubs (name) VALUES ($1) RETURNING id`, name).Scan(&id)
	if err != nil {
		t.Fatalf("insert club %q: %v", name, err)
	}
	return id
}

// UserFixture describes a user row to insert.
type UserFixture struct {
	Email    string
	Name     string
	Role     string
	Complete bool
	ClubID   *string
}

// InsertUser creates a user and returns its id. Role defaults to STUDENT.
func InsertUser(t TestingTB, db *sql.DB, u UserFixture) string {
	t.Helper()
	if u.Role == "" {
		u.Role = "STUDENT"
	}
	var id string
	err := db.QueryRowContext(context.Background(), `
		INSERT INTO users (email, name, role, is_profile_complete, club_id)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5) RETURNING id`,
		u.Email, u.Name, u.Role, u.Complete, u.ClubID,
	).Scan(&id)
	if err != nil {
		t.Fatalf("insert user %q: %v", u.Email, err)
	}
	return id
}

// InsertEvent creates an event for clubID at date and returns its id.
func InsertEvent(t TestingTB, db *sql.DB, clubID, title string, date time.Time) string {
	t.Helper()
	var id string
	err := db.QueryRowContext(context.Background(), `
		INSERT INTO events (title, description, date, location, club_id)
		VALUES ($1, $1 || ' description', $2, 'Main Hall', $3) RETURNING id`,
		title, date, clubID,
	).Scan(&id)
	if err != nil {
		t.Fatalf("insert event %q: %v", title, err)
	}
	return id
}
