package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/campushub/eventhub/internal/domain/model"
	"github.com/campushub/eventhub/internal/ports"
)

const (
	defaultMailPollTimeout = 5 * time.Second
	defaultMailMaxAttempts = 3
	mailErrorBackoff       = time.Second
)

// MailDispatcherOptions groups dependencies for MailDispatcher.
type MailDispatcherOptions struct {
	Queue  ports.MailQueue  // Required: outbox to drain
	Sender ports.MailSender // Required: delivers one email
	// PollTimeout bounds each blocking pop so shutdown is observed promptly.
	PollTimeout time.Duration
	// MaxAttempts is how many times one email is tried before it is dropped.
	MaxAttempts int
	Logger      *slog.Logger
}

// MailDispatcher drains the mail outbox and hands each email to the sender.
// Transient failures are requeued until MaxAttempts; permanent rejections are dropped.
type MailDispatcher struct {
	queue       ports.MailQueue
	sender      ports.MailSender
	pollTimeout time.Duration
	maxAttempts int
	logger      *slog.Logger
}

// NewMailDispatcher constructs a new MailDispatcher.
func NewMailDispatcher(opts MailDispatcherOptions) (*MailDispatcher, error) {
	if opts.Queue == nil {
		return nil, errors.New("mail queue is required")
	}
	if opts.Sender == nil {
		return nil, errors.New("mail sender is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	poll := opts.PollTimeout
	if poll <= 0 {
		poll = defaultMailPollTimeout
	}
	attempts := opts.MaxAttempts
	if attempts <= 0 {
		attempts = defaultMailMaxAttempts
	}
	return &MailDispatcher{
		queue:       opts.Queue,
		sender:      opts.Sender,
		pollTimeout: poll,
		maxAttempts: attempts,
		logger:      logger.With("component", "mail_dispatcher"),
	}, nil
}

// Run drains the queue until ctx is cancelled. It returns nil on graceful shutdown.
func (d *MailDispatcher) Run(ctx context.Context) error {
	d.logger.InfoContext(ctx, "starting mail dispatcher", "poll_timeout", d.pollTimeout)
	for {
		if ctx.Err() != nil {
			d.logger.InfoContext(ctx, "mail dispatcher stopping", "reason", ctx.Err())
			return nil
		}
		if err := d.ProcessOne(ctx); err != nil {
			if isContextCancellation(err) {
				continue
			}
			d.logger.WarnContext(ctx, "mail queue pop failed", "error", err)
			select {
			case <-ctx.Done():
			case <-time.After(mailErrorBackoff):
			}
		}
	}
}

// ProcessOne pops at most one email and delivers it. Delivery failures are
// handled here; only queue errors are returned.
func (d *MailDispatcher) ProcessOne(ctx context.Context) error {
	msg, err := d.queue.Pop(ctx, d.pollTimeout)
	if err != nil {
		return err
	}
	if msg == nil {
		return nil
	}
	d.deliver(ctx, *msg)
	return nil
}

func (d *MailDispatcher) deliver(ctx context.Context, msg model.EventEmail) {
	msg.Attempts++
	err := d.sender.Send(ctx, msg)
	if err == nil {
		d.logger.InfoContext(ctx, "email sent", "id", msg.ID, "kind", msg.Kind, "attempts", msg.Attempts)
		return
	}

	attrs := []any{"id", msg.ID, "kind", msg.Kind, "to", msg.To, "attempts", msg.Attempts, "error", err}
	if errors.Is(err, ports.ErrUndeliverable) || msg.Attempts >= d.maxAttempts {
		d.logger.ErrorContext(ctx, "email dropped", attrs...)
		return
	}
	// Requeue on a detached context so a shutdown mid-send does not lose the email.
	if rqErr := d.queue.Requeue(context.WithoutCancel(ctx), msg); rqErr != nil {
		d.logger.ErrorContext(ctx, "email requeue failed", append(attrs, "requeue_error", rqErr)...)
		return
	}
	d.logger.WarnContext(ctx, "email requeued", attrs...)
}

func isContextCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
