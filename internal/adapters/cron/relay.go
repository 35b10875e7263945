package cron

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"hangout/internal/application"
	"hangout/internal/domain/entities"
	"hangout/internal/ports/output"
)

const (
	defaultBatchSize   = 50
	defaultMaxAttempts = 5
	defaultBackoff     = time.Minute
	maxBackoff         = time.Hour
)

// OutboxRelay drains the notification outbox through a Deliverer.
type OutboxRelay struct {
	Queue     output.NotificationQueue
	Deliverer output.Deliverer
	Clock     output.Clock
	BatchSize int
	// MaxAttempts failed deliveries dead-letter a notification.
	MaxAttempts int
	// Backoff is the delay after the first failure; it doubles per attempt.
	Backoff time.Duration
	Logger  *slog.Logger
}

// RunOnce delivers one batch of due notifications. A notification is marked
// delivered after a successful send or when its recipient can never be
// reached. Any other failure defers it with exponential backoff, and after
// MaxAttempts failures it is dead-lettered so it stops taking batch slots.
// It returns the number of notifications marked delivered.
func (r OutboxRelay) RunOnce(ctx context.Context) (int, error) {
	logger := application.ResolveLogger(r.Logger)
	limit := r.BatchSize
	if limit <= 0 {
		limit = defaultBatchSize
	}
	now := time.Now().UTC()
	if r.Clock != nil {
		now = r.Clock.Now().UTC()
	}

	pending, err := r.Queue.ListPending(ctx, now, limit)
	if err != nil {
		logger.Error("outbox list failed",
			"event", "outbox_list_failed",
			"error", err.Error(),
		)
		return 0, err
	}
	if len(pending) == 0 {
		return 0, nil
	}

	delivered := 0
	for _, n := range pending {
		if ctx.Err() != nil {
			return delivered, ctx.Err()
		}
		err := r.Deliverer.Deliver(ctx, n)
		switch {
		case err == nil:
		case errors.Is(err, output.ErrRecipientUnreachable):
			logger.Debug("notification recipient unreachable",
				"event", "outbox_recipient_unreachable",
				"notification_id", n.ID,
				"recipient", n.Recipient.String(),
			)
		default:
			if markErr := r.recordFailure(ctx, n, now, err); markErr != nil {
				return delivered, markErr
			}
			continue
		}
		if err := r.Queue.MarkDelivered(ctx, n.ID, now); err != nil {
			logger.Error("outbox mark delivered failed",
				"event", "outbox_mark_delivered_failed",
				"notification_id", n.ID,
				"error", err.Error(),
			)
			return delivered, err
		}
		delivered++
	}

	logger.Info("outbox relay cycle completed",
		"event", "outbox_relay_completed",
		"pending", len(pending),
		"delivered", delivered,
	)
	return delivered, nil
}

func (r OutboxRelay) recordFailure(ctx context.Context, n entities.Notification, now time.Time, cause error) error {
	logger := application.ResolveLogger(r.Logger)
	maxAttempts := r.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	attempts := n.Attempts + 1

	var err error
	if attempts >= maxAttempts {
		logger.Error("notification dead-lettered",
			"event", "outbox_dead_lettered",
			"notification_id", n.ID,
			"recipient", n.Recipient.String(),
			"attempts", attempts,
			"error", cause.Error(),
		)
		err = r.Queue.DeadLetter(ctx, n.ID, now, cause.Error())
	} else {
		retryAt := now.Add(r.backoff(attempts))
		logger.Warn("notification delivery failed",
			"event", "outbox_delivery_failed",
			"notification_id", n.ID,
			"recipient", n.Recipient.String(),
			"attempts", attempts,
			"retry_at", retryAt,
			"error", cause.Error(),
		)
		err = r.Queue.RecordFailure(ctx, n.ID, attempts, retryAt, cause.Error())
	}
	if err != nil {
		logger.Error("outbox record failure failed",
			"event", "outbox_record_failure_failed",
			"notification_id", n.ID,
			"error", err.Error(),
		)
	}
	return err
}

// backoff is the delay before attempt number attempts+1.
func (r OutboxRelay) backoff(attempts int) time.Duration {
	d := r.Backoff
	if d <= 0 {
		d = defaultBackoff
	}
	for i := 1; i < attempts && d < maxBackoff; i++ {
		d *= 2
	}
	return min(d, maxBackoff)
}

// LogDeliverer writes notifications to the log. It stands in for a real
// channel when no chat integration is configured.
type LogDeliverer struct {
	Logger *slog.Logger
}

func (d LogDeliverer) Deliver(_ context.Context, n entities.Notification) error {
	application.ResolveLogger(d.Logger).Info("notification",
		"event", "notification_logged",
		"notification_id", n.ID,
		"recipient", n.Recipient.String(),
		"hangout_id", n.HangoutID,
		"content", n.Content,
		"link", n.Link,
	)
	return nil
}
