package memory

import (
	"cmp"
	"context"
	"slices"
	"time"

	"hangout/internal/domain"
	"hangout/internal/domain/entities"
)

func cloneHangout(h entities.Hangout) *entities.Hangout {
	h.VotingEndsAt = cloneTime(h.VotingEndsAt)
	h.ScheduledAt = cloneTime(h.ScheduledAt)
	return &h
}

func (s *Store) Create(ctx context.Context, hangout *entities.Hangout) error {
	return s.mutate(ctx, func() ([]func(), error) {
		if _, exists := s.hangouts[hangout.ID]; exists {
			return nil, domain.ErrAlreadyExists
		}
		return []func(){put(s.hangouts, hangout.ID, *cloneHangout(*hangout))}, nil
	})
}

func (s *Store) FindByID(_ context.Context, id string) (*entities.Hangout, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.hangouts[id]
	if !ok {
		return nil, domain.ErrHangoutNotFound
	}
	return cloneHangout(h), nil
}

// FindByIDForUpdate needs no row lock: transactions are already serialized.
func (s *Store) FindByIDForUpdate(ctx context.Context, id string) (*entities.Hangout, error) {
	return s.FindByID(ctx, id)
}

func (s *Store) UpdateIfStatus(ctx context.Context, hangout *entities.Hangout, expected entities.Status) error {
	return s.mutate(ctx, func() ([]func(), error) {
		current, ok := s.hangouts[hangout.ID]
		if !ok {
			return nil, domain.ErrHangoutNotFound
		}
		if current.Status != expected {
			return nil, domain.ErrResolutionConflict
		}
		return []func(){put(s.hangouts, hangout.ID, *cloneHangout(*hangout))}, nil
	})
}

func (s *Store) ListVotingExpired(_ context.Context, now time.Time) ([]entities.Hangout, error) {
	return s.listHangouts(func(h entities.Hangout) bool {
		return h.Status == entities.StatusVoting && h.DeadlineElapsed(now)
	}), nil
}

func (s *Store) ListConfirmedDue(_ context.Context, now time.Time) ([]entities.Hangout, error) {
	return s.listHangouts(func(h entities.Hangout) bool {
		return h.Status == entities.StatusConfirmed && h.ScheduledAt != nil && !h.ScheduledAt.After(now)
	}), nil
}

func (s *Store) listHangouts(keep func(entities.Hangout) bool) []entities.Hangout {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []entities.Hangout
	for _, h := range s.hangouts {
		if keep(h) {
			out = append(out, *cloneHangout(h))
		}
	}
	slices.SortFunc(out, func(a, b entities.Hangout) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}
