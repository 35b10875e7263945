package application

import (
	"context"
	"errors"
	"strings"

	"hangout/internal/domain"
	"hangout/internal/domain/entities"
)

// IdentityService maps authenticated accounts and guest bearer tokens to
// participant identities. It never authenticates anything itself.
type IdentityService struct {
	base
}

// ResolveRegistered returns the profile for externalKey, creating it on first
// sight. Display name and avatar follow the external source on every call.
func (s *IdentityService) ResolveRegistered(ctx context.Context, externalKey, displayName, avatarURL string) (*entities.RegisteredProfile, error) {
	externalKey = strings.TrimSpace(externalKey)
	displayName = strings.TrimSpace(displayName)
	if externalKey == "" {
		return nil, domain.ErrProfileNotFound
	}
	if displayName == "" {
		displayName = externalKey
	}

	existing, err := s.d.Profiles.FindByExternalKey(ctx, externalKey)
	switch {
	case err == nil:
		if existing.DisplayName == displayName && existing.AvatarURL == avatarURL {
			return existing, nil
		}
		existing.DisplayName = displayName
		existing.AvatarURL = avatarURL
		existing.UpdatedAt = s.now()
		if err := s.d.Profiles.Update(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	case !isNotFound(err):
		return nil, err
	}

	now := s.now()
	profile := &entities.RegisteredProfile{
		ID:          s.d.IDs.NewID(),
		ExternalKey: externalKey,
		DisplayName: displayName,
		AvatarURL:   avatarURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.d.Profiles.Create(ctx, profile); err != nil {
		// Lost a race with another first login for the same account.
		if errors.Is(err, domain.ErrAlreadyExists) {
			return s.d.Profiles.FindByExternalKey(ctx, externalKey)
		}
		return nil, err
	}
	s.log().Info("registered profile created",
		"event", "identity_profile_created",
		"profile_id", profile.ID,
	)
	return profile, nil
}

// ResolveBearer maps a guest bearer token to the identity it stands for. A
// converted guest resolves to its registered profile.
func (s *IdentityService) ResolveBearer(ctx context.Context, token string) (entities.ParticipantRef, error) {
	guest, err := s.guestByToken(ctx, token)
	if err != nil {
		return entities.ParticipantRef{}, err
	}
	if guest.IsConverted() {
		return entities.Registered(guest.ConvertedToProfileID), nil
	}
	return guest.Ref(), nil
}

// Lookup returns the identity behind ref.
func (s *IdentityService) Lookup(ctx context.Context, ref entities.ParticipantRef) (entities.Identity, error) {
	switch ref.Kind {
	case entities.IdentityRegistered:
		p, err := s.d.Profiles.FindByID(ctx, ref.ID)
		if err != nil {
			return nil, err
		}
		return *p, nil
	case entities.IdentityGuest:
		g, err := s.d.Guests.FindByID(ctx, ref.ID)
		if err != nil {
			return nil, err
		}
		return *g, nil
	}
	return nil, domain.ErrProfileNotFound
}

func (s *IdentityService) guestByToken(ctx context.Context, token string) (*entities.GuestProfile, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, domain.ErrTokenInvalid
	}
	guest, err := s.d.Guests.FindByToken(ctx, token)
	if err != nil {
		if isNotFound(err) {
			return nil, domain.ErrTokenInvalid
		}
		return nil, err
	}
	if guest.Expired(s.now()) && !guest.IsConverted() {
		return nil, domain.ErrTokenExpired
	}
	return guest, nil
}
