package memory

import (
	"cmp"
	"context"
	"slices"

	"hangout/internal/domain"
	"hangout/internal/domain/entities"
)

// acceptsVotes reports whether the hangout still takes options and votes. It
// must be called with s.mu held.
func (s *Store) acceptsVotes(hangoutID string) error {
	h, ok := s.hangouts[hangoutID]
	if !ok {
		return domain.ErrHangoutNotFound
	}
	if !h.Status.AcceptsOptions() {
		return domain.ErrVotingClosed
	}
	return nil
}

// Upsert refuses the write once the hangout stopped accepting votes, so a
// vote racing resolution either lands before the tally or not at all.
func (r *Votes) Upsert(ctx context.Context, vote *entities.Vote) error {
	s := r.s
	return s.mutate(ctx, func() ([]func(), error) {
		option, ok := s.activities[vote.OptionID]
		if !ok {
			return nil, domain.ErrOptionNotFound
		}
		if err := s.acceptsVotes(option.HangoutID); err != nil {
			return nil, err
		}
		key := voteKey{optionID: vote.OptionID, voter: vote.Voter}
		stored := *vote
		stored.HangoutID = option.HangoutID
		if existing, ok := s.votes[key]; ok {
			stored.ID = existing.ID
			stored.CreatedAt = existing.CreatedAt
		}
		return []func(){put(s.votes, key, stored)}, nil
	})
}

func (r *Votes) Delete(ctx context.Context, optionID string, voter entities.ParticipantRef) error {
	s := r.s
	return s.mutate(ctx, func() ([]func(), error) {
		option, ok := s.activities[optionID]
		if !ok {
			return nil, domain.ErrOptionNotFound
		}
		if err := s.acceptsVotes(option.HangoutID); err != nil {
			return nil, err
		}
		return []func(){remove(s.votes, voteKey{optionID: optionID, voter: voter})}, nil
	})
}

func (r *Votes) ListByHangout(_ context.Context, hangoutID string) ([]entities.Vote, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []entities.Vote
	for _, v := range r.s.votes {
		if v.HangoutID == hangoutID {
			out = append(out, v)
		}
	}
	slices.SortFunc(out, func(a, b entities.Vote) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (r *Votes) Tally(_ context.Context, hangoutID string) (map[string]int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	tally := make(map[string]int)
	for id, o := range r.s.activities {
		if o.HangoutID == hangoutID {
			tally[id] = 0
		}
	}
	for _, v := range r.s.votes {
		if _, ok := tally[v.OptionID]; ok {
			tally[v.OptionID] += v.Value
		}
	}
	return tally, nil
}

func (r *Votes) UpsertTime(ctx context.Context, vote *entities.TimeVote) error {
	s := r.s
	return s.mutate(ctx, func() ([]func(), error) {
		option, ok := s.timeOptions[vote.TimeOptionID]
		if !ok {
			return nil, domain.ErrOptionNotFound
		}
		if err := s.acceptsVotes(option.HangoutID); err != nil {
			return nil, err
		}
		key := voteKey{optionID: vote.TimeOptionID, voter: vote.Voter}
		stored := *vote
		stored.HangoutID = option.HangoutID
		if existing, ok := s.timeVotes[key]; ok {
			stored.ID = existing.ID
			stored.CreatedAt = existing.CreatedAt
		}
		return []func(){put(s.timeVotes, key, stored)}, nil
	})
}

func (r *Votes) DeleteTime(ctx context.Context, timeOptionID string, voter entities.ParticipantRef) error {
	s := r.s
	return s.mutate(ctx, func() ([]func(), error) {
		option, ok := s.timeOptions[timeOptionID]
		if !ok {
			return nil, domain.ErrOptionNotFound
		}
		if err := s.acceptsVotes(option.HangoutID); err != nil {
			return nil, err
		}
		return []func(){remove(s.timeVotes, voteKey{optionID: timeOptionID, voter: voter})}, nil
	})
}

func (r *Votes) ListTimeByHangout(_ context.Context, hangoutID string) ([]entities.TimeVote, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []entities.TimeVote
	for _, v := range r.s.timeVotes {
		if v.HangoutID == hangoutID {
			out = append(out, v)
		}
	}
	slices.SortFunc(out, func(a, b entities.TimeVote) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (r *Votes) TallyTime(_ context.Context, hangoutID string) (map[string]int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	tally := make(map[string]int)
	for id, o := range r.s.timeOptions {
		if o.HangoutID == hangoutID {
			tally[id] = 0
		}
	}
	for _, v := range r.s.timeVotes {
		if _, ok := tally[v.TimeOptionID]; ok {
			tally[v.TimeOptionID] += v.Value
		}
	}
	return tally, nil
}

func (r *Votes) ReassignVoter(ctx context.Context, from, to entities.ParticipantRef) error {
	s := r.s
	return s.mutate(ctx, func() ([]func(), error) {
		var undo []func()
		for key, v := range s.votes {
			if key.voter != from {
				continue
			}
			undo = append(undo, remove(s.votes, key))
			target := voteKey{optionID: key.optionID, voter: to}
			if _, dup := s.votes[target]; dup {
				continue
			}
			v.Voter = to
			undo = append(undo, put(s.votes, target, v))
		}
		for key, v := range s.timeVotes {
			if key.voter != from {
				continue
			}
			undo = append(undo, remove(s.timeVotes, key))
			target := voteKey{optionID: key.optionID, voter: to}
			if _, dup := s.timeVotes[target]; dup {
				continue
			}
			v.Voter = to
			undo = append(undo, put(s.timeVotes, target, v))
		}
		return undo, nil
	})
}
