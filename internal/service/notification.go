package service

import (
	"context"
	"fmt"

	"github.com/campushub/eventhub/internal/core"
	"github.com/campushub/eventhub/internal/domain/model"
	apperrors "github.com/campushub/eventhub/internal/errors"
)

// FeedSize is how many notifications Feed returns.
const FeedSize = 10

// NotificationServiceOptions groups dependencies for NotificationService.
type NotificationServiceOptions struct {
	Repo core.NotificationRepository
}

// NotificationService serves the in-app notification feed.
type NotificationService struct {
	repo core.NotificationRepository
}

// NewNotificationService constructs a new NotificationService.
func NewNotificationService(opts NotificationServiceOptions) *NotificationService {
	return &NotificationService{repo: opts.Repo}
}

// Feed returns the latest notifications of userID and the unread count.
func (s *NotificationService) Feed(ctx context.Context, userID string) (*model.NotificationFeed, error) {
	if userID == "" {
		return nil, apperrors.Unauthenticated("Unauthorized")
	}
	items, err := s.repo.ListRecent(ctx, userID, FeedSize)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count unread notifications: %w", err)
	}
	if items == nil {
		items = []*model.Notification{}
	}
	return &model.NotificationFeed{Notifications: items, UnreadCount: unread}, nil
}

// MarkAllRead marks every unread notification of userID as read.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, apperrors.Unauthenticated("Unauthorized")
	}
	return s.repo.MarkAllRead(ctx, userID)
}
