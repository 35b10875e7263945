package output

import (
	"context"
	"errors"
	"time"

	"hangout/internal/domain/entities"
)

// Notifier delivers one notification. Callers treat it as fire-and-forget.
type Notifier interface {
	Notify(ctx context.Context, n entities.Notification) error
}

// NotificationQueue is the persisted outbox drained by delivery adapters.
// ListPending returns notifications due at now, oldest first.
type NotificationQueue interface {
	Notifier
	ListPending(ctx context.Context, now time.Time, limit int) ([]entities.Notification, error)
	MarkDelivered(ctx context.Context, id string, at time.Time) error
	// RecordFailure stores the attempt count and defers the next attempt.
	RecordFailure(ctx context.Context, id string, attempts int, retryAt time.Time, lastErr string) error
	// DeadLetter stops retrying the notification.
	DeadLetter(ctx context.Context, id string, at time.Time, lastErr string) error
}

// ErrRecipientUnreachable tells the outbox relay that a notification can never
// be delivered on this channel and should not be retried.
var ErrRecipientUnreachable = errors.New("recipient unreachable")

// Deliverer pushes one queued notification to its recipient.
type Deliverer interface {
	Deliver(ctx context.Context, n entities.Notification) error
}
