package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/campushub/eventhub/internal/domain/model"
	"github.com/campushub/eventhub/internal/ports"
)

var _ ports.Notifier = (*AsyncNotifier)(nil)

// AsyncNotifier delivers each email on its own goroutine so the caller never
// waits on the provider. It is the fallback when no mail queue is configured.
type AsyncNotifier struct {
	sender  ports.MailSender
	timeout time.Duration
	logger  *slog.Logger
	wg      sync.WaitGroup
}

// NewAsyncNotifier wraps sender. timeout bounds each delivery.
func NewAsyncNotifier(sender ports.MailSender, timeout time.Duration, logger *slog.Logger) *AsyncNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &AsyncNotifier{sender: sender, timeout: timeout, logger: logger.With("component", "async_notifier")}
}

// Notify validates msg and starts delivery in the background.
func (n *AsyncNotifier) Notify(ctx context.Context, msg model.EventEmail) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	// Delivery outlives the request that triggered it.
	bg := context.WithoutCancel(ctx)
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		sendCtx, cancel := context.WithTimeout(bg, n.timeout)
		defer cancel()
		if err := n.sender.Send(sendCtx, msg); err != nil {
			n.logger.WarnContext(sendCtx, "email delivery failed", "kind", msg.Kind, "to", msg.To, "error", err)
			return
		}
		n.logger.DebugContext(sendCtx, "email delivered", "kind", msg.Kind, "to", msg.To)
	}()
	return nil
}

// Wait blocks until every in-flight delivery has finished.
func (n *AsyncNotifier) Wait() { n.wg.Wait() }
