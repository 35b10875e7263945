package memory

import (
	"context"

	"hangout/internal/domain"
	"hangout/internal/domain/entities"
)

func (s *Store) GetOrCreate(ctx context.Context, invite entities.InviteToken) (entities.InviteToken, error) {
	stored := invite
	err := s.mutate(ctx, func() ([]func(), error) {
		if _, ok := s.hangouts[invite.HangoutID]; !ok {
			return nil, domain.ErrHangoutNotFound
		}
		if existing, ok := s.invites[invite.HangoutID]; ok {
			stored = existing
			return nil, nil
		}
		return []func(){
			put(s.invites, invite.HangoutID, invite),
			put(s.inviteByToken, invite.Token, invite.HangoutID),
		}, nil
	})
	if err != nil {
		return entities.InviteToken{}, err
	}
	return stored, nil
}

func (s *Store) FindByToken(_ context.Context, token string) (*entities.InviteToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	hangoutID, ok := s.inviteByToken[token]
	if !ok {
		return nil, domain.ErrInviteNotFound
	}
	invite := s.invites[hangoutID]
	return &invite, nil
}
