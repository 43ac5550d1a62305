package service

import (
	"context"

	"github.com/campushub/eventhub/internal/core"
	"github.com/campushub/eventhub/internal/domain/model"
	apperrors "github.com/campushub/eventhub/internal/errors"
)

// ClubServiceOptions groups dependencies for ClubService.
type ClubServiceOptions struct {
	Repo core.ClubRepository
}

// ClubService exposes the club catalogue.
type ClubService struct {
	repo core.ClubRepository
}

// NewClubService constructs a new ClubService.
func NewClubService(opts ClubServiceOptions) *ClubService {
	return &ClubService{repo: opts.Repo}
}

// Create validates and stores a club.
func (s *ClubService) Create(ctx context.Context, req *model.CreateClubRequest) (*model.Club, error) {
	if req == nil {
		return nil, apperrors.Validation("name is required")
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.ValidationField("name", err.Error())
	}
	return s.repo.Create(ctx, req)
}

// GetByID retrieves a club by ID.
func (s *ClubService) GetByID(ctx context.Context, id string) (*model.Club, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns every club ordered by name.
func (s *ClubService) List(ctx context.Context) ([]*model.Club, error) {
	return s.repo.List(ctx)
}
