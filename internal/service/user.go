package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/campushub/eventhub/internal/core"
	domainauth "github.com/campushub/eventhub/internal/domain/auth"
	"github.com/campushub/eventhub/internal/domain/model"
	apperrors "github.com/campushub/eventhub/internal/errors"
)

// UserServiceOptions groups dependencies for UserService.
type UserServiceOptions struct {
	Repo   core.UserRepository // Required
	Clubs  core.ClubRepository // Optional: verifies coordinator club affiliation
	Logger *slog.Logger        // Optional
}

// UserService owns the user directory: first sign-in bootstrap, profile
// completion and out-of-band role assignment.
type UserService struct {
	repo   core.UserRepository
	clubs  core.ClubRepository
	logger *slog.Logger
}

// NewUserService constructs a new UserService.
func NewUserService(opts UserServiceOptions) *UserService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{
		repo:   opts.Repo,
		clubs:  opts.Clubs,
		logger: logger.With("component", "user_service"),
	}
}

// EnsureUser returns the directory record for identity, creating a minimal
// record on first sign-in.
func (s *UserService) EnsureUser(ctx context.Context, identity domainauth.Identity) (*model.User, error) {
	return ensureUser(ctx, s.repo, identity)
}

// ensureUser tolerates a concurrent first sign-in for the same email: the
// losing create is answered by re-reading the winner's record.
func ensureUser(ctx context.Context, repo core.UserRepository, identity domainauth.Identity) (*model.User, error) {
	email := domainauth.NormalizeEmail(identity.Email)
	if email == "" {
		return nil, errors.New("identity email is required")
	}

	u, err := repo.GetByEmail(ctx, email)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, model.ErrUserNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	req := &model.CreateUserRequest{Email: email}
	if name := strings.TrimSpace(identity.Name); name != "" {
		req.Name = &name
	}
	if pic := strings.TrimSpace(identity.Picture); pic != "" {
		req.Image = &pic
	}
	u, err = repo.Create(ctx, req)
	switch {
	case err == nil:
		return u, nil
	case errors.Is(err, model.ErrUserExists), apperrors.IsConflict(err):
		u, err = repo.GetByEmail(ctx, email)
		if err != nil {
			return nil, fmt.Errorf("re-read user after conflict: %w", err)
		}
		return u, nil
	default:
		return nil, fmt.Errorf("create user: %w", err)
	}
}

// GetByEmail looks a user up by email.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.repo.GetByEmail(ctx, email)
}

// GetByID looks a user up by id.
func (s *UserService) GetByID(ctx context.Context, id string) (*model.User, error) {
	return s.repo.GetByID(ctx, id)
}

// CompleteProfile validates the one-time profile form and marks the profile complete.
func (s *UserService) CompleteProfile(
	ctx context.Context,
	userID string,
	req *model.CompleteProfileRequest,
) (*model.User, error) {
	if userID == "" {
		return nil, apperrors.Unauthenticated("sign in to complete your profile")
	}
	if req == nil {
		return nil, apperrors.Validation("all fields are required")
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid profile")
	}
	u, err := s.repo.CompleteProfile(ctx, userID, req)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "profile completed", "user_id", u.ID)
	return u, nil
}

// SetRole assigns a role out of band. Coordinators must reference an existing club.
func (s *UserService) SetRole(ctx context.Context, req *model.SetRoleRequest) (*model.User, error) {
	if req == nil {
		return nil, apperrors.Validation("role assignment is required")
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid role assignment")
	}
	if req.Role == domainauth.RoleCoordinator && s.clubs != nil {
		if _, err := s.clubs.GetByID(ctx, *req.ClubID); err != nil {
			if errors.Is(err, model.ErrClubNotFound) {
				return nil, apperrors.ValidationField("clubId", "club does not exist")
			}
			return nil, fmt.Errorf("lookup club: %w", err)
		}
	}
	u, err := s.repo.SetRole(ctx, req)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "role assigned", "email", u.Email, "role", u.Role)
	return u, nil
}

// List returns a page of users.
func (s *UserService) List(ctx context.Context, opts model.UsersListOptions) ([]*model.User, error) {
	return s.repo.List(ctx, opts)
}
