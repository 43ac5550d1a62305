package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/campushub/eventhub/internal/domain/model"
	"github.com/campushub/eventhub/internal/ports"
)

var _ ports.MailQueue = (*MailQueue)(nil)

// DefaultMailQueueKey is the list holding queued emails.
const DefaultMailQueueKey = "eventhub:mail:outbox"

// MailQueue is a FIFO email outbox on a Redis list: producers LPUSH, the mailer BRPOPs.
type MailQueue struct {
	client redis.UniversalClient
	key    string
	now    func() time.Time
}

// NewMailQueue creates a queue on key (DefaultMailQueueKey when empty).
func NewMailQueue(client redis.UniversalClient, key string) *MailQueue {
	if key == "" {
		key = DefaultMailQueueKey
	}
	return &MailQueue{client: client, key: key, now: time.Now}
}

// Notify validates msg, stamps an id and enqueue time, and pushes it.
func (q *MailQueue) Notify(ctx context.Context, msg model.EventEmail) error {
	if err := msg.Validate(); err != nil {
		return fmt.Errorf("invalid email: %w", err)
	}
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.EnqueuedAt.IsZero() {
		msg.EnqueuedAt = q.now().UTC()
	}
	return q.push(ctx, msg)
}

// Requeue pushes msg back for another attempt.
func (q *MailQueue) Requeue(ctx context.Context, msg model.EventEmail) error {
	return q.push(ctx, msg)
}

// Pop waits up to timeout for the oldest email. A timeout yields (nil, nil).
func (q *MailQueue) Pop(ctx context.Context, timeout time.Duration) (*model.EventEmail, error) {
	res, err := q.client.BRPop(ctx, timeout, q.key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis brpop: %w", err)
	}
	// BRPOP returns [key, value].
	if len(res) != 2 {
		return nil, fmt.Errorf("unexpected brpop reply length %d", len(res))
	}
	var msg model.EventEmail
	if err := json.Unmarshal([]byte(res[1]), &msg); err != nil {
		return nil, fmt.Errorf("unmarshal queued email: %w", err)
	}
	return &msg, nil
}

// Len reports how many emails are waiting.
func (q *MailQueue) Len(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.key).Result()
}

func (q *MailQueue) push(ctx context.Context, msg model.EventEmail) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal email: %w", err)
	}
	if err := q.client.LPush(ctx, q.key, data).Err(); err != nil {
		return fmt.Errorf("redis lpush: %w", err)
	}
	return nil
}
