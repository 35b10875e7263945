package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"hangout/internal/domain"
	"hangout/internal/domain/entities"
	"hangout/internal/ports/output"
)

var _ output.NotificationQueue = (*NotificationQueue)(nil)

// NotificationQueue is the persisted outbox of notifications awaiting
// delivery by a relay.
type NotificationQueue struct {
	db *DB
}

func NewNotificationQueue(db *DB) *NotificationQueue {
	return &NotificationQueue{db: db}
}

func (r *NotificationQueue) Notify(ctx context.Context, n entities.Notification) error {
	_, err := r.db.q(ctx).Exec(ctx, `
		INSERT INTO notifications (id, recipient_kind, recipient_id, hangout_id, kind, content, link, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		n.ID, string(n.Recipient.Kind), n.Recipient.ID, stringToText(n.HangoutID), string(n.Kind),
		n.Content, n.Link, timeToTimestamptz(n.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// ListPending returns notifications due at now. Rows waiting for a retry keep
// their place behind rows that are due.
func (r *NotificationQueue) ListPending(ctx context.Context, now time.Time, limit int) ([]entities.Notification, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.q(ctx).Query(ctx, `
		SELECT id, recipient_kind, recipient_id, hangout_id, kind, content, link, created_at,
			attempts, next_attempt_at, last_error
		FROM notifications
		WHERE delivered_at IS NULL AND failed_at IS NULL
			AND (next_attempt_at IS NULL OR next_attempt_at <= $1)
		ORDER BY created_at, id LIMIT $2`, timeToTimestamptz(now), limit)
	if err != nil {
		return nil, fmt.Errorf("list pending notifications: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (entities.Notification, error) {
		var n entities.Notification
		var recipientKind, kind string
		var hangoutID pgtype.Text
		var createdAt, nextAttemptAt pgtype.Timestamptz
		var attempts int32
		err := row.Scan(&n.ID, &recipientKind, &n.Recipient.ID, &hangoutID, &kind, &n.Content, &n.Link, &createdAt,
			&attempts, &nextAttemptAt, &n.LastError)
		n.Recipient.Kind = entities.IdentityKind(recipientKind)
		n.HangoutID = textToString(hangoutID)
		n.Kind = entities.NotificationKind(kind)
		n.CreatedAt = pgtypeTimestamptzToTime(createdAt)
		n.Attempts = int(attempts)
		n.NextAttemptAt = pgtypeTimestamptzToTime(nextAttemptAt)
		return n, err
	})
}

func (r *NotificationQueue) MarkDelivered(ctx context.Context, id string, at time.Time) error {
	return r.exec(ctx, "mark notification delivered",
		`UPDATE notifications SET delivered_at = $2 WHERE id = $1`, id, timeToTimestamptz(at))
}

func (r *NotificationQueue) RecordFailure(ctx context.Context, id string, attempts int, retryAt time.Time, lastErr string) error {
	return r.exec(ctx, "record notification failure",
		`UPDATE notifications SET attempts = $2, next_attempt_at = $3, last_error = $4 WHERE id = $1`,
		id, int32(attempts), timeToTimestamptz(retryAt), lastErr)
}

func (r *NotificationQueue) DeadLetter(ctx context.Context, id string, at time.Time, lastErr string) error {
	return r.exec(ctx, "dead-letter notification",
		`UPDATE notifications SET attempts = attempts + 1, failed_at = $2, last_error = $3 WHERE id = $1`,
		id, timeToTimestamptz(at), lastErr)
}

func (r *NotificationQueue) exec(ctx context.Context, op, query string, args ...any) error {
	tag, err := r.db.q(ctx).Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
