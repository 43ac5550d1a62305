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

const clubColumns = `id, name, description, logo_url, contact, social_links, created_at`

// ClubRepo provides database operations for clubs.
type ClubRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewClubRepo creates a new ClubRepo.
func NewClubRepo(db *sql.DB) *ClubRepo {
	return &ClubRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// Create inserts a new club. Duplicate names map to a Conflict.
func (r *ClubRepo) Create(ctx context.Context, req *model.CreateClubRequest) (*model.Club, error) {
	if req == nil {
		return nil, errors.New("create club request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	var links []byte
	if len(req.SocialLinks) > 0 {
		b, err := json.Marshal(req.SocialLinks)
		if err != nil {
			return nil, fmt.Errorf("marshal social links: %w", err)
		}
		links = b
	}

	var out model.Club
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		var err error
		out, err = pgxutil.CollectOne[model.Club](ctx, conn, `
			INSERT INTO clubs (name, description, logo_url, contact, social_links, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING `+clubColumns,
			req.Name, req.Description, req.LogoURL, req.Contact, links, r.timeProvider.Now().UTC(),
		)
		return err
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// GetByID retrieves a club by ID.
func (r *ClubRepo) GetByID(ctx context.Context, id string) (*model.Club, error) {
	var out model.Club
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		var err error
		out, err = pgxutil.CollectOne[model.Club](ctx, conn,
			`SELECT `+clubColumns+` FROM clubs WHERE id = $1`, id)
		return err
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrClubNotFound
	}
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// List returns every club ordered by name.
func (r *ClubRepo) List(ctx context.Context) ([]*model.Club, error) {
	var out []*model.Club
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		var err error
		out, err = pgxutil.CollectAll[model.Club](ctx, conn,
			`SELECT `+clubColumns+` FROM clubs ORDER BY name`)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list clubs: %w", err)
	}
	return out, nil
}
