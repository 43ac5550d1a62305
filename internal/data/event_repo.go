package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/campushub/eventhub/internal/core"
	"github.com/campushub/eventhub/internal/data/pgxutil"
	"github.com/campushub/eventhub/internal/domain/model"
	apperrors "github.com/campushub/eventhub/internal/errors"
)

const eventSelect = `
	SELECT e.id, e.title, e.description, e.date, e.location, e.poster_url,
		e.club_id, c.name AS club_name, e.created_at
	FROM events e
	JOIN clubs c ON c.id = e.club_id`

// EventRepo provides database operations for events.
type EventRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewEventRepo creates a new EventRepo with real time provider.
func NewEventRepo(db *sql.DB) *EventRepo {
	return &EventRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewEventRepoWithTimeProvider creates a new EventRepo with a custom time provider (useful for tests).
func NewEventRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *EventRepo {
	return &EventRepo{DB: db, timeProvider: tp}
}

// Create inserts an event and returns it joined with its club name.
func (r *EventRepo) Create(ctx context.Context, p core.CreateEventParams) (*model.Event, error) {
	var out model.Event
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		var err error
		out, err = pgxutil.CollectOne[model.Event](ctx, conn, `
			WITH ins AS (
				INSERT INTO events (title, description, date, location, poster_url, club_id, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
				RETURNING *
			)
			SELECT ins.id, ins.title, ins.description, ins.date, ins.location, ins.poster_url,
				ins.club_id, c.name AS club_name, ins.created_at
			FROM ins JOIN clubs c ON c.id = ins.club_id`,
			p.Title, p.Description, p.Date.UTC(), p.Location, p.PosterURL, p.ClubID,
			r.timeProvider.Now().UTC(),
		)
		return err
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// GetByID retrieves an event by ID.
func (r *EventRepo) GetByID(ctx context.Context, id string) (*model.Event, error) {
	var out model.Event
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		var err error
		out, err = pgxutil.CollectOne[model.Event](ctx, conn, eventSelect+` WHERE e.id = $1`, id)
		return err
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrEventNotFound
	}
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// List returns events ordered by date. Upcoming restricts to events dated at or after now.
func (r *EventRepo) List(ctx context.Context, opts model.EventsListOptions) ([]*model.Event, error) {
	limit, offset := clampPage(opts.Limit, opts.Offset)
	var after *time.Time
	if opts.Upcoming {
		now := r.timeProvider.Now().UTC()
		after = &now
	}

	var out []*model.Event
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		var err error
		out, err = pgxutil.CollectAll[model.Event](ctx, conn, eventSelect+`
			WHERE ($1::uuid IS NULL OR e.club_id = $1)
			  AND ($2::timestamptz IS NULL OR e.date >= $2)
			ORDER BY e.date ASC, e.id
			LIMIT $3 OFFSET $4`,
			opts.ClubID, after, limit, offset,
		)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return out, nil
}

// RegistrationCounts returns the number of active registrations per event.
// Events with no registrations are absent from the map.
func (r *EventRepo) RegistrationCounts(ctx context.Context, eventIDs []string) (map[string]int, error) {
	counts := make(map[string]int, len(eventIDs))
	if len(eventIDs) == 0 {
		return counts, nil
	}
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT event_id::text, count(*)
			FROM event_registrations
			WHERE event_id = ANY($1::uuid[]) AND status = $2
			GROUP BY event_id`,
			eventIDs, model.RegistrationRegistered,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var id string
			var n int
			if err := rows.Scan(&id, &n); err != nil {
				return err
			}
			counts[id] = n
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to count registrations: %w", err)
	}
	return counts, nil
}

