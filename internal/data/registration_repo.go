package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/campushub/eventhub/internal/core"
	"github.com/campushub/eventhub/internal/data/pgxutil"
	"github.com/campushub/eventhub/internal/domain/model"
	apperrors "github.com/campushub/eventhub/internal/errors"
)

const registrationColumns = `id, user_id, event_id, status, created_at, updated_at`

// RegistrationRepo stores event registrations. Every write goes through a single
// statement keyed on the (user_id, event_id) unique constraint, so concurrent
// requests for the same pair converge on one row.
type RegistrationRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewRegistrationRepo creates a new RegistrationRepo with real time provider.
func NewRegistrationRepo(db *sql.DB) *RegistrationRepo {
	return &RegistrationRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewRegistrationRepoWithTimeProvider creates a new RegistrationRepo with a custom time provider (useful for tests).
func NewRegistrationRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *RegistrationRepo {
	return &RegistrationRepo{DB: db, timeProvider: tp}
}

// Upsert creates the registration, or reactivates a cancelled one. When the pair is
// already REGISTERED nothing is written and the existing row is returned with
// AlreadyRegistered set.
func (r *RegistrationRepo) Upsert(ctx context.Context, key core.RegistrationKey) (*model.UpsertResult, error) {
	if key.UserID == "" || key.EventID == "" {
		return nil, apperrors.Validation("user id and event id are required")
	}

	now := r.timeProvider.Now().UTC()
	var res model.UpsertResult
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		reg, err := pgxutil.CollectOne[model.Registration](ctx, conn, `
			INSERT INTO event_registrations (user_id, event_id, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $4)
			ON CONFLICT (user_id, event_id) DO UPDATE
				SET status = EXCLUDED.status, updated_at = EXCLUDED.updated_at
				WHERE event_registrations.status <> EXCLUDED.status
			RETURNING `+registrationColumns,
			key.UserID, key.EventID, model.RegistrationRegistered, now,
		)
		if err == nil {
			res.Registration = &reg
			return nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return err
		}

		// The conflict branch's WHERE filtered the row out: it is already active.
		reg, err = pgxutil.CollectOne[model.Registration](ctx, conn,
			`SELECT `+registrationColumns+` FROM event_registrations WHERE user_id = $1 AND event_id = $2`,
			key.UserID, key.EventID,
		)
		if err != nil {
			return err
		}
		res.Registration = &reg
		res.AlreadyRegistered = true
		return nil
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &res, nil
}

// Cancel marks an existing registration CANCELLED. Cancelling an already cancelled
// registration is a no-op that returns the row.
func (r *RegistrationRepo) Cancel(ctx context.Context, key core.RegistrationKey) (*model.Registration, error) {
	return r.getOne(ctx, `
		UPDATE event_registrations
		SET status = $3,
			updated_at = CASE WHEN status = $3 THEN updated_at ELSE $4 END
		WHERE user_id = $1 AND event_id = $2
		RETURNING `+registrationColumns,
		key.UserID, key.EventID, model.RegistrationCancelled, r.timeProvider.Now().UTC(),
	)
}

// Get returns the registration row for the pair, whatever its status.
func (r *RegistrationRepo) Get(ctx context.Context, key core.RegistrationKey) (*model.Registration, error) {
	return r.getOne(ctx,
		`SELECT `+registrationColumns+` FROM event_registrations WHERE user_id = $1 AND event_id = $2`,
		key.UserID, key.EventID,
	)
}

// ListByUser returns the user's active registrations joined with their events, soonest first.
func (r *RegistrationRepo) ListByUser(ctx context.Context, userID string) ([]*model.RegistrationWithEvent, error) {
	var out []*model.RegistrationWithEvent
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		var err error
		out, err = pgxutil.CollectAll[model.RegistrationWithEvent](ctx, conn, `
			SELECT r.id, r.user_id, r.event_id, r.status, r.created_at, r.updated_at,
				e.title AS event_title, e.date AS event_date, e.location AS event_location,
				c.name AS club_name
			FROM event_registrations r
			JOIN events e ON e.id = r.event_id
			JOIN clubs c ON c.id = e.club_id
			WHERE r.user_id = $1 AND r.status = $2
			ORDER BY e.date ASC, r.id`,
			userID, model.RegistrationRegistered,
		)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations: %w", err)
	}
	return out, nil
}

// ListAttendees returns the users actively registered for an event.
func (r *RegistrationRepo) ListAttendees(ctx context.Context, eventID string) ([]*model.User, error) {
	var out []*model.User
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		var err error
		out, err = pgxutil.CollectAll[model.User](ctx, conn, `
			SELECT u.id, u.email, u.name, u.image, u.first_name, u.last_name, u.phone_number,
				u.roll_number, u.role, u.is_profile_complete, u.club_id, u.created_at, u.updated_at
			FROM event_registrations r
			JOIN users u ON u.id = r.user_id
			WHERE r.event_id = $1 AND r.status = $2
			ORDER BY r.created_at, u.id`,
			eventID, model.RegistrationRegistered,
		)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list attendees: %w", err)
	}
	return out, nil
}

func (r *RegistrationRepo) getOne(ctx context.Context, query string, args ...any) (*model.Registration, error) {
	var out model.Registration
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		var err error
		out, err = pgxutil.CollectOne[model.Registration](ctx, conn, query, args...)
		return err
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrRegistrationNotFound
	}
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}
