package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/campushub/eventhub/internal/domain/model"
	"github.com/campushub/eventhub/internal/mocks"
	"github.com/campushub/eventhub/internal/ports"
)

func testEmail() model.EventEmail {
	return model.EventEmail{
		ID:         "m-1",
		Kind:       model.EmailRegistrationConfirmed,
		To:         "a@students.college.edu",
		EventTitle: "Hack Night",
	}
}

func newTestDispatcher(t *testing.T, maxAttempts int) (*MailDispatcher, *mocks.MockMailQueue, *mocks.MockMailSender) {
	t.Helper()
	ctrl := gomock.NewController(t)
	queue := mocks.NewMockMailQueue(ctrl)
	sender := mocks.NewMockMailSender(ctrl)
	d, err := NewMailDispatcher(MailDispatcherOptions{
		Queue:       queue,
		Sender:      sender,
		PollTimeout: time.Second,
		MaxAttempts: maxAttempts,
	})
	require.NoError(t, err)
	return d, queue, sender
}

func TestMailDispatcher_ProcessOne(t *testing.T) {
	ctx := context.Background()

	t.Run("empty queue", func(t *testing.T) {
		d, queue, _ := newTestDispatcher(t, 3)
		queue.EXPECT().Pop(gomock.Any(), time.Second).Return(nil, nil)
		require.NoError(t, d.ProcessOne(ctx))
	})

	t.Run("delivered", func(t *testing.T) {
		d, queue, sender := newTestDispatcher(t, 3)
		msg := testEmail()
		queue.EXPECT().Pop(gomock.Any(), gomock.Any()).Return(&msg, nil)
		sender.EXPECT().Send(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, m model.EventEmail) error {
				assert.Equal(t, 1, m.Attempts)
				return nil
			})
		require.NoError(t, d.ProcessOne(ctx))
	})

	t.Run("transient failure is requeued", func(t *testing.T) {
		d, queue, sender := newTestDispatcher(t, 3)
		msg := testEmail()
		queue.EXPECT().Pop(gomock.Any(), gomock.Any()).Return(&msg, nil)
		sender.EXPECT().Send(gomock.Any(), gomock.Any()).Return(errors.New("503"))
		queue.EXPECT().Requeue(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, m model.EventEmail) error {
				assert.Equal(t, 1, m.Attempts)
				return nil
			})
		require.NoError(t, d.ProcessOne(ctx))
	})

	t.Run("attempts exhausted", func(t *testing.T) {
		d, queue, sender := newTestDispatcher(t, 2)
		msg := testEmail()
		msg.Attempts = 1
		queue.EXPECT().Pop(gomock.Any(), gomock.Any()).Return(&msg, nil)
		sender.EXPECT().Send(gomock.Any(), gomock.Any()).Return(errors.New("503"))
		require.NoError(t, d.ProcessOne(ctx))
	})

	t.Run("permanent rejection is dropped", func(t *testing.T) {
		d, queue, sender := newTestDispatcher(t, 3)
		msg := testEmail()
		queue.EXPECT().Pop(gomock.Any(), gomock.Any()).Return(&msg, nil)
		sender.EXPECT().Send(gomock.Any(), gomock.Any()).Return(fmt.Errorf("422: %w", ports.ErrUndeliverable))
		require.NoError(t, d.ProcessOne(ctx))
	})

	t.Run("queue error is returned", func(t *testing.T) {
		d, queue, _ := newTestDispatcher(t, 3)
		queue.EXPECT().Pop(gomock.Any(), gomock.Any()).Return(nil, errors.New("redis down"))
		assert.ErrorContains(t, d.ProcessOne(ctx), "redis down")
	})
}

func TestMailDispatcher_RunStopsOnCancel(t *testing.T) {
	d, queue, _ := newTestDispatcher(t, 3)
	ctx, cancel := context.WithCancel(context.Background())

	queue.EXPECT().Pop(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ time.Duration) (*model.EventEmail, error) {
			cancel()
			return nil, ctx.Err()
		}).MinTimes(1)

	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("dispatcher did not stop")
	}
}

func TestNewMailDispatcher_Validation(t *testing.T) {
	_, err := NewMailDispatcher(MailDispatcherOptions{})
	assert.ErrorContains(t, err, "mail queue is required")
}

type fakeSender struct {
	mu   sync.Mutex
	got  []model.EventEmail
	err  error
	wait time.Duration
}

func (s *fakeSender) Send(ctx context.Context, msg model.EventEmail) error {
	if s.wait > 0 {
		select {
		case <-time.After(s.wait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.got = append(s.got, msg)
	return s.err
}

func TestAsyncNotifier(t *testing.T) {
	sender := &fakeSender{wait: 10 * time.Millisecond}
	n := NewAsyncNotifier(sender, time.Second, nil)
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, n.Notify(ctx, testEmail()))
	cancel() // delivery must outlive the request context
	n.Wait()

	sender.mu.Lock()
	defer sender.mu.Unlock()
	require.Len(t, sender.got, 1)
	assert.Equal(t, "Hack Night", sender.got[0].EventTitle)

	err := n.Notify(context.Background(), model.EventEmail{Kind: model.EmailEventReminder})
	assert.ErrorContains(t, err, "recipient is required")
}

func TestAsyncNotifier_SendErrorIsNotReturned(t *testing.T) {
	n := NewAsyncNotifier(&fakeSender{err: errors.New("provider down")}, time.Second, nil)
	require.NoError(t, n.Notify(context.Background(), testEmail()))
	n.Wait()
}
