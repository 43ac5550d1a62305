package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/campushub/eventhub/internal/data/pgxutil"
	"github.com/campushub/eventhub/internal/domain/model"
	apperrors "github.com/campushub/eventhub/internal/errors"
)

const notificationColumns = `id, user_id, type, payload, read, created_at`

// NotificationRepo provides database operations for in-app notifications.
type NotificationRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewNotificationRepo creates a new NotificationRepo with real time provider.
func NewNotificationRepo(db *sql.DB) *NotificationRepo {
	return &NotificationRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewNotificationRepoWithTimeProvider creates a new NotificationRepo with a custom time provider (useful for tests).
func NewNotificationRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *NotificationRepo {
	return &NotificationRepo{DB: db, timeProvider: tp}
}

// Create stores a notification; the payload is marshalled to JSON.
func (r *NotificationRepo) Create(
	ctx context.Context,
	req *model.CreateNotificationRequest,
) (*model.Notification, error) {
	if req == nil {
		return nil, errors.New("create notification request is required")
	}
	if req.UserID == "" || req.Type == "" {
		return nil, apperrors.Validation("user id and type are required")
	}
	payload := json.RawMessage(`{}`)
	if req.Payload != nil {
		b, err := json.Marshal(req.Payload)
		if err != nil {
			return nil, fmt.Errorf("marshal notification payload: %w", err)
		}
		payload = b
	}

	var out model.Notification
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		var err error
		out, err = pgxutil.CollectOne[model.Notification](ctx, conn, `
			INSERT INTO notifications (user_id, type, payload, read, created_at)
			VALUES ($1, $2, $3, FALSE, $4)
			RETURNING `+notificationColumns,
			req.UserID, req.Type, payload, r.timeProvider.Now().UTC(),
		)
		return err
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// ListRecent returns the user's newest notifications.
func (r *NotificationRepo) ListRecent(ctx context.Context, userID string, limit int) ([]*model.Notification, error) {
	limit, _ = clampPage(limit, 0)
	var out []*model.Notification
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		var err error
		out, err = pgxutil.CollectAll[model.Notification](ctx, conn, `
			SELECT `+notificationColumns+` FROM notifications
			WHERE user_id = $1
			ORDER BY created_at DESC, id
			LIMIT $2`,
			userID, limit,
		)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return out, nil
}

// CountUnread returns how many of the user's notifications are unread.
func (r *NotificationRepo) CountUnread(ctx context.Context, userID string) (int, error) {
	var n int
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		return conn.QueryRow(ctx,
			`SELECT count(*) FROM notifications WHERE user_id = $1 AND NOT read`, userID,
		).Scan(&n)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return n, nil
}

// MarkAllRead marks every unread notification of the user read and returns how many changed.
func (r *NotificationRepo) MarkAllRead(ctx context.Context, userID string) (int, error) {
	var n int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		tag, err := conn.Exec(ctx, `UPDATE notifications SET read = TRUE WHERE user_id = $1 AND NOT read`, userID)
		if err != nil {
			return err
		}
		n = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return int(n), nil
}
