package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/campushub/eventhub/internal/data/pgxutil"
	domainauth "github.com/campushub/eventhub/internal/domain/auth"
	"github.com/campushub/eventhub/internal/domain/model"
	apperrors "github.com/campushub/eventhub/internal/errors"
)

const userColumns = `id, email, name, image, first_name, last_name, phone_number, roll_number,
	role, is_profile_complete, club_id, created_at, updated_at`

// UserRepo is the Postgres-backed user directory.
type UserRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewUserRepo creates a new UserRepo with real time provider.
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewUserRepoWithTimeProvider creates a new UserRepo with a custom time provider (useful for tests).
func NewUserRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *UserRepo {
	return &UserRepo{DB: db, timeProvider: tp}
}

// GetByEmail looks a user up by (case-insensitive) email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, domainauth.NormalizeEmail(email))
}

// GetByID retrieves a user by ID.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// Create inserts a minimal STUDENT record. A concurrent insert for the same email
// loses silently at the database and surfaces as model.ErrUserExists.
func (r *UserRepo) Create(ctx context.Context, req *model.CreateUserRequest) (*model.User, error) {
	if req == nil {
		return nil, errors.New("create user request is required")
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	now := r.timeProvider.Now().UTC()
	var out *model.User
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		u, err := pgxutil.CollectOne[model.User](ctx, conn, `
			INSERT INTO users (email, name, image, role, is_profile_complete, created_at, updated_at)
			VALUES ($1, $2, $3, $4, FALSE, $5, $5)
			ON CONFLICT (email) DO NOTHING
			RETURNING `+userColumns,
			req.Email, req.Name, req.Image, domainauth.DefaultRole, now,
		)
		if err != nil {
			return err
		}
		out = &u
		return nil
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrUserExists
	}
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return out, nil
}

// CompleteProfile stores the profile form and flips is_profile_complete. The display
// name is replaced by "first last".
func (r *UserRepo) CompleteProfile(
	ctx context.Context,
	userID string,
	req *model.CompleteProfileRequest,
) (*model.User, error) {
	if req == nil {
		return nil, errors.New("complete profile request is required")
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	return r.getOne(ctx, `
		UPDATE users
		SET first_name = $2, last_name = $3, phone_number = $4, roll_number = $5,
			name = $6, is_profile_complete = TRUE, updated_at = $7
		WHERE id = $1
		RETURNING `+userColumns,
		userID, req.FirstName, req.LastName, req.PhoneNumber, req.RollNumber, req.FullName(),
		r.timeProvider.Now().UTC(),
	)
}

// SetRole assigns a role (and, for coordinators, a club) to an existing user.
// Non-coordinator roles clear the club link.
func (r *UserRepo) SetRole(ctx context.Context, req *model.SetRoleRequest) (*model.User, error) {
	if req == nil {
		return nil, errors.New("set role request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	clubID := req.ClubID
	if req.Role != domainauth.RoleCoordinator {
		clubID = nil
	}
	return r.getOne(ctx, `
		UPDATE users SET role = $2, club_id = $3, updated_at = $4
		WHERE email = $1
		RETURNING `+userColumns,
		req.Email, req.Role, clubID, r.timeProvider.Now().UTC(),
	)
}

// List returns users ordered by creation time, newest first.
func (r *UserRepo) List(ctx context.Context, opts model.UsersListOptions) ([]*model.User, error) {
	limit, offset := clampPage(opts.Limit, opts.Offset)
	var role *string
	if opts.Role != nil {
		s := string(*opts.Role)
		role = &s
	}

	var out []*model.User
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		var err error
		out, err = pgxutil.CollectAll[model.User](ctx, conn, `
			SELECT `+userColumns+` FROM users
			WHERE ($1::text IS NULL OR role = $1)
			ORDER BY created_at DESC, id
			LIMIT $2 OFFSET $3`,
			role, limit, offset,
		)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return out, nil
}

func (r *UserRepo) getOne(ctx context.Context, query string, args ...any) (*model.User, error) {
	var out model.User
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		var err error
		out, err = pgxutil.CollectOne[model.User](ctx, conn, query, args...)
		return err
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrUserNotFound
	}
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
