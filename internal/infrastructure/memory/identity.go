package memory

import (
	"context"

	"hangout/internal/domain"
	"hangout/internal/domain/entities"
)

func (p *Profiles) Create(ctx context.Context, profile *entities.RegisteredProfile) error {
	s := p.s
	return s.mutate(ctx, func() ([]func(), error) {
		if _, taken := s.profileByKey[profile.ExternalKey]; taken {
			return nil, domain.ErrAlreadyExists
		}
		return []func(){
			put(s.profiles, profile.ID, *profile),
			put(s.profileByKey, profile.ExternalKey, profile.ID),
		}, nil
	})
}

func (p *Profiles) FindByID(_ context.Context, id string) (*entities.RegisteredProfile, error) {
	p.s.mu.RLock()
	defer p.s.mu.RUnlock()
	profile, ok := p.s.profiles[id]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	return &profile, nil
}

func (p *Profiles) FindByExternalKey(ctx context.Context, externalKey string) (*entities.RegisteredProfile, error) {
	p.s.mu.RLock()
	id, ok := p.s.profileByKey[externalKey]
	p.s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	return p.FindByID(ctx, id)
}

func (p *Profiles) Update(ctx context.Context, profile *entities.RegisteredProfile) error {
	s := p.s
	return s.mutate(ctx, func() ([]func(), error) {
		if _, ok := s.profiles[profile.ID]; !ok {
			return nil, domain.ErrProfileNotFound
		}
		return []func(){put(s.profiles, profile.ID, *profile)}, nil
	})
}

func (g *Guests) Create(ctx context.Context, guest *entities.GuestProfile) error {
	s := g.s
	return s.mutate(ctx, func() ([]func(), error) {
		if _, taken := s.guestByToken[guest.Token]; taken {
			return nil, domain.ErrAlreadyExists
		}
		undo := []func(){
			put(s.guests, guest.ID, *guest),
			put(s.guestByToken, guest.Token, guest.ID),
		}
		if guest.JoinKey != "" {
			key := joinKey{hangoutID: guest.JoinHangoutID, key: guest.JoinKey}
			if _, replay := s.guestByJoin[key]; replay {
				return undo, domain.ErrDuplicateJoin
			}
			undo = append(undo, put(s.guestByJoin, key, guest.ID))
		}
		return undo, nil
	})
}

func (g *Guests) FindByID(_ context.Context, id string) (*entities.GuestProfile, error) {
	g.s.mu.RLock()
	defer g.s.mu.RUnlock()
	guest, ok := g.s.guests[id]
	if !ok {
		return nil, domain.ErrGuestNotFound
	}
	return &guest, nil
}

func (g *Guests) FindByToken(ctx context.Context, token string) (*entities.GuestProfile, error) {
	g.s.mu.RLock()
	id, ok := g.s.guestByToken[token]
	g.s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrGuestNotFound
	}
	return g.FindByID(ctx, id)
}

func (g *Guests) FindByJoinKey(ctx context.Context, hangoutID, key string) (*entities.GuestProfile, error) {
	g.s.mu.RLock()
	id, ok := g.s.guestByJoin[joinKey{hangoutID: hangoutID, key: key}]
	g.s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrGuestNotFound
	}
	return g.FindByID(ctx, id)
}

// Update rewrites mutable guest fields. Token and join key are immutable.
func (g *Guests) Update(ctx context.Context, guest *entities.GuestProfile) error {
	s := g.s
	return s.mutate(ctx, func() ([]func(), error) {
		current, ok := s.guests[guest.ID]
		if !ok {
			return nil, domain.ErrGuestNotFound
		}
		current.DisplayName = guest.DisplayName
		current.ExpiresAt = guest.ExpiresAt
		current.ConvertedToProfileID = guest.ConvertedToProfileID
		current.UpdatedAt = guest.UpdatedAt
		return []func(){put(s.guests, guest.ID, current)}, nil
	})
}
