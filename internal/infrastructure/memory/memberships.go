package memory

import (
	"cmp"
	"context"
	"slices"

	"hangout/internal/domain"
	"hangout/internal/domain/entities"
)

func (r *Memberships) Create(ctx context.Context, m *entities.Membership) error {
	s := r.s
	return s.mutate(ctx, func() ([]func(), error) {
		if _, ok := s.hangouts[m.HangoutID]; !ok {
			return nil, domain.ErrHangoutNotFound
		}
		key := memberKey{hangoutID: m.HangoutID, ref: m.Participant}
		if _, dup := s.memberIndex[key]; dup {
			return nil, domain.ErrAlreadyMember
		}
		return []func(){
			put(s.memberships, m.ID, *m),
			put(s.memberIndex, key, m.ID),
		}, nil
	})
}

func (r *Memberships) FindByID(_ context.Context, id string) (*entities.Membership, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	m, ok := r.s.memberships[id]
	if !ok {
		return nil, domain.ErrMembershipNotFound
	}
	return &m, nil
}

func (r *Memberships) FindByHangoutAndParticipant(ctx context.Context, hangoutID string, participant entities.ParticipantRef) (*entities.Membership, error) {
	r.s.mu.RLock()
	id, ok := r.s.memberIndex[memberKey{hangoutID: hangoutID, ref: participant}]
	r.s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrMembershipNotFound
	}
	return r.FindByID(ctx, id)
}

func (r *Memberships) ListByHangout(_ context.Context, hangoutID string) ([]entities.Membership, error) {
	return r.list(func(m entities.Membership) bool { return m.HangoutID == hangoutID }), nil
}

func (r *Memberships) ListByParticipant(_ context.Context, participant entities.ParticipantRef) ([]entities.Membership, error) {
	return r.list(func(m entities.Membership) bool { return m.Participant == participant }), nil
}

func (r *Memberships) list(keep func(entities.Membership) bool) []entities.Membership {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []entities.Membership
	for _, m := range r.s.memberships {
		if keep(m) {
			out = append(out, m)
		}
	}
	slices.SortFunc(out, func(a, b entities.Membership) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

// Update rewrites role, mandatory flag and RSVP. Hangout and participant are
// fixed at creation.
func (r *Memberships) Update(ctx context.Context, m *entities.Membership) error {
	s := r.s
	return s.mutate(ctx, func() ([]func(), error) {
		current, ok := s.memberships[m.ID]
		if !ok {
			return nil, domain.ErrMembershipNotFound
		}
		current.Role = m.Role
		current.IsMandatory = m.IsMandatory
		current.RsvpStatus = m.RsvpStatus
		current.RespondedAt = m.RespondedAt
		current.UpdatedAt = m.UpdatedAt
		return []func(){put(s.memberships, m.ID, current)}, nil
	})
}

func (r *Memberships) Delete(ctx context.Context, id string) error {
	s := r.s
	return s.mutate(ctx, func() ([]func(), error) {
		m, ok := s.memberships[id]
		if !ok {
			return nil, domain.ErrMembershipNotFound
		}
		return []func(){
			remove(s.memberships, id),
			remove(s.memberIndex, memberKey{hangoutID: m.HangoutID, ref: m.Participant}),
		}, nil
	})
}

func (r *Memberships) Reassign(ctx context.Context, from, to entities.ParticipantRef) error {
	s := r.s
	return s.mutate(ctx, func() ([]func(), error) {
		var undo []func()
		for id, m := range s.memberships {
			if m.Participant != from {
				continue
			}
			oldKey := memberKey{hangoutID: m.HangoutID, ref: from}
			newKey := memberKey{hangoutID: m.HangoutID, ref: to}
			undo = append(undo, remove(s.memberIndex, oldKey))
			if _, dup := s.memberIndex[newKey]; dup {
				undo = append(undo, remove(s.memberships, id))
				continue
			}
			m.Participant = to
			undo = append(undo,
				put(s.memberships, id, m),
				put(s.memberIndex, newKey, id),
			)
		}
		return undo, nil
	})
}
