package memory

import (
	"context"
	"time"

	"hangout/internal/domain"
	"hangout/internal/domain/entities"
)

// Notify queues n for delivery.
func (s *Store) Notify(ctx context.Context, n entities.Notification) error {
	return s.mutate(ctx, func() ([]func(), error) {
		if _, dup := s.notifications[n.ID]; dup {
			return nil, domain.ErrAlreadyExists
		}
		prev := s.outbox
		s.outbox = append(s.outbox[:len(s.outbox):len(s.outbox)], n.ID)
		return []func(){
			put(s.notifications, n.ID, n),
			func() { s.outbox = prev },
		}, nil
	})
}

// ListPending returns the notifications due at now in queue order.
func (s *Store) ListPending(_ context.Context, now time.Time, limit int) ([]entities.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []entities.Notification
	for _, id := range s.outbox {
		n := s.notifications[id]
		if !n.Due(now) {
			continue
		}
		out = append(out, n)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *Store) MarkDelivered(ctx context.Context, id string, at time.Time) error {
	return s.mutate(ctx, func() ([]func(), error) {
		n, ok := s.notifications[id]
		if !ok {
			return nil, domain.ErrNotFound
		}
		n.DeliveredAt = at
		return []func(){put(s.notifications, id, n)}, nil
	})
}

func (s *Store) RecordFailure(ctx context.Context, id string, attempts int, retryAt time.Time, lastErr string) error {
	return s.updateNotification(ctx, id, func(n *entities.Notification) {
		n.Attempts = attempts
		n.NextAttemptAt = retryAt
		n.LastError = lastErr
	})
}

func (s *Store) DeadLetter(ctx context.Context, id string, at time.Time, lastErr string) error {
	return s.updateNotification(ctx, id, func(n *entities.Notification) {
		n.Attempts++
		n.FailedAt = at
		n.LastError = lastErr
	})
}

func (s *Store) updateNotification(ctx context.Context, id string, fn func(n *entities.Notification)) error {
	return s.mutate(ctx, func() ([]func(), error) {
		n, ok := s.notifications[id]
		if !ok {
			return nil, domain.ErrNotFound
		}
		fn(&n)
		return []func(){put(s.notifications, id, n)}, nil
	})
}

// Notifications returns every queued notification in queue order.
func (s *Store) Notifications() []entities.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entities.Notification, 0, len(s.outbox))
	for _, id := range s.outbox {
		out = append(out, s.notifications[id])
	}
	return out
}
