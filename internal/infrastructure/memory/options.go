package memory

import (
	"cmp"
	"context"
	"slices"

	"hangout/internal/domain"
	"hangout/internal/domain/entities"
)

// CreateActivity re-checks the hangout status under the write lock, so an
// option racing resolution is refused once the hangout is CONFIRMED.
func (s *Store) CreateActivity(ctx context.Context, option *entities.ActivityOption) error {
	return s.mutate(ctx, func() ([]func(), error) {
		if err := s.acceptsVotes(option.HangoutID); err != nil {
			return nil, err
		}
		next := 0
		for _, o := range s.activities {
			if o.HangoutID == option.HangoutID && o.DisplayOrder >= next {
				next = o.DisplayOrder + 1
			}
		}
		option.DisplayOrder = next
		return []func(){put(s.activities, option.ID, *option)}, nil
	})
}

func (s *Store) FindActivityByID(_ context.Context, id string) (*entities.ActivityOption, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.activities[id]
	if !ok {
		return nil, domain.ErrOptionNotFound
	}
	return &o, nil
}

func (s *Store) ListActivityByHangout(_ context.Context, hangoutID string) ([]entities.ActivityOption, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []entities.ActivityOption
	for _, o := range s.activities {
		if o.HangoutID == hangoutID {
			out = append(out, o)
		}
	}
	slices.SortFunc(out, func(a, b entities.ActivityOption) int {
		if c := cmp.Compare(a.DisplayOrder, b.DisplayOrder); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (s *Store) CreateTime(ctx context.Context, option *entities.TimeOption) error {
	return s.mutate(ctx, func() ([]func(), error) {
		if err := s.acceptsVotes(option.HangoutID); err != nil {
			return nil, err
		}
		next := 0
		for _, o := range s.timeOptions {
			if o.HangoutID == option.HangoutID && o.DisplayOrder >= next {
				next = o.DisplayOrder + 1
			}
		}
		option.DisplayOrder = next
		stored := *option
		stored.EndsAt = cloneTime(option.EndsAt)
		return []func(){put(s.timeOptions, option.ID, stored)}, nil
	})
}

func (s *Store) FindTimeByID(_ context.Context, id string) (*entities.TimeOption, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.timeOptions[id]
	if !ok {
		return nil, domain.ErrOptionNotFound
	}
	o.EndsAt = cloneTime(o.EndsAt)
	return &o, nil
}

func (s *Store) ListTimeByHangout(_ context.Context, hangoutID string) ([]entities.TimeOption, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []entities.TimeOption
	for _, o := range s.timeOptions {
		if o.HangoutID == hangoutID {
			o.EndsAt = cloneTime(o.EndsAt)
			out = append(out, o)
		}
	}
	slices.SortFunc(out, func(a, b entities.TimeOption) int {
		if c := cmp.Compare(a.DisplayOrder, b.DisplayOrder); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}
