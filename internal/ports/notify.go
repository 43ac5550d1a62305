package ports

import (
	"context"
	"errors"
	"time"

	"github.com/campushub/eventhub/internal/domain/model"
)

// ErrUndeliverable marks an email that no retry can deliver.
var ErrUndeliverable = errors.New("email rejected by provider")

// Notifier accepts an email for delivery. Implementations must not block on the
// remote provider; callers treat any error as non-fatal.
type Notifier interface {
	Notify(ctx context.Context, msg model.EventEmail) error
}

// MailSender delivers one email synchronously.
type MailSender interface {
	Send(ctx context.Context, msg model.EventEmail) error
}

// MailQueue is a durable outbox of emails awaiting delivery.
type MailQueue interface {
	Notifier
	// Pop blocks up to timeout for the next email. It returns (nil, nil) when the wait expires.
	Pop(ctx context.Context, timeout time.Duration) (*model.EventEmail, error)
	// Requeue puts a failed email back for another attempt.
	Requeue(ctx context.Context, msg model.EventEmail) error
}
