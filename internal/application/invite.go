package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"hangout/internal/domain"
	"hangout/internal/domain/entities"
	"hangout/internal/ports/input"
)

// InviteService issues invite tokens and turns them into memberships.
type InviteService struct {
	base
	identity    *IdentityService
	memberships *MembershipService
}

// GetOrCreateInviteToken returns the hangout's invite token, minting it on the
// first request. Only members may request it.
func (s *InviteService) GetOrCreateInviteToken(ctx context.Context, hangoutID string, requester entities.ParticipantRef) (string, error) {
	if _, err := s.loadOpenHangout(ctx, hangoutID); err != nil {
		return "", err
	}
	if _, err := s.requireMember(ctx, hangoutID, requester); err != nil {
		return "", err
	}
	token, err := s.d.Tokens.NewToken()
	if err != nil {
		return "", fmt.Errorf("generate invite token: %w", err)
	}
	stored, err := s.d.Invites.GetOrCreate(ctx, entities.InviteToken{
		HangoutID: hangoutID,
		Token:     token,
		CreatedBy: requester,
		CreatedAt: s.now(),
	})
	if err != nil {
		return "", fmt.Errorf("store invite token: %w", err)
	}
	return stored.Token, nil
}

// JoinAsGuest creates a guest profile and its membership atomically.
// idempotencyKey identifies the caller's join intent; replaying a join with
// the same key returns the guest and membership created the first time.
func (s *InviteService) JoinAsGuest(ctx context.Context, token, displayName string, rsvp entities.RsvpStatus, idempotencyKey string) (*input.GuestJoin, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, domain.ErrEmptyDisplayName
	}
	if rsvp != entities.RsvpUnset && !rsvp.Valid() {
		return nil, domain.ErrInvalidRsvp
	}
	invite, err := s.inviteByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	hangoutID := invite.HangoutID
	if _, err := s.loadOpenHangout(ctx, hangoutID); err != nil {
		return nil, err
	}
	idempotencyKey = strings.TrimSpace(idempotencyKey)

	if idempotencyKey != "" {
		if join, err := s.replayedJoin(ctx, hangoutID, idempotencyKey); err == nil {
			return join, nil
		} else if !isNotFound(err) {
			return nil, err
		}
	}

	bearer, err := s.d.Tokens.NewToken()
	if err != nil {
		return nil, fmt.Errorf("generate guest token: %w", err)
	}
	now := s.now()
	guest := &entities.GuestProfile{
		ID:          s.d.IDs.NewID(),
		Token:       bearer,
		DisplayName: displayName,
		ExpiresAt:   now.Add(s.d.GuestTTL),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if idempotencyKey != "" {
		guest.JoinHangoutID = hangoutID
		guest.JoinKey = idempotencyKey
	}
	membership := &entities.Membership{
		ID:          s.d.IDs.NewID(),
		HangoutID:   hangoutID,
		Participant: guest.Ref(),
		Role:        entities.RoleMember,
		RsvpStatus:  rsvp,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if rsvp != entities.RsvpUnset {
		membership.RespondedAt = now
	}

	err = s.d.Tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.d.Guests.Create(ctx, guest); err != nil {
			return err
		}
		return s.d.Memberships.Create(ctx, membership)
	})
	if errors.Is(err, domain.ErrDuplicateJoin) {
		// A concurrent request with the same key committed first.
		return s.replayedJoin(ctx, hangoutID, idempotencyKey)
	}
	if err != nil {
		return nil, fmt.Errorf("join as guest: %w", err)
	}
	s.log().Info("guest joined",
		"event", "guest_joined",
		"hangout_id", hangoutID,
		"guest_id", guest.ID,
		"membership_id", membership.ID,
	)
	return &input.GuestJoin{Guest: guest, Membership: membership}, nil
}

// JoinWithInvite lets an already identified participant join through the
// invite token. An existing membership counts as success.
func (s *InviteService) JoinWithInvite(ctx context.Context, token string, participant entities.ParticipantRef, rsvp entities.RsvpStatus) (*entities.Membership, error) {
	invite, err := s.inviteByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	m, err := s.memberships.Join(ctx, invite.HangoutID, participant, entities.RoleMember, rsvp)
	if errors.Is(err, domain.ErrAlreadyMember) {
		return m, nil
	}
	return m, err
}

// Claim confirms that guestID belongs to the hangout, optionally renames it
// and hands back its bearer token.
func (s *InviteService) Claim(ctx context.Context, hangoutID, guestID string, newDisplayName *string) (string, error) {
	guest, err := s.d.Guests.FindByID(ctx, guestID)
	if err != nil {
		return "", err
	}
	if _, err := s.d.Memberships.FindByHangoutAndParticipant(ctx, hangoutID, guest.Ref()); err != nil {
		if isNotFound(err) {
			return "", domain.ErrGuestNotFound
		}
		return "", err
	}
	if guest.Expired(s.now()) && !guest.IsConverted() {
		return "", domain.ErrTokenExpired
	}
	if newDisplayName != nil {
		name := strings.TrimSpace(*newDisplayName)
		if name == "" {
			return "", domain.ErrEmptyDisplayName
		}
		if name != guest.DisplayName {
			guest.DisplayName = name
			guest.UpdatedAt = s.now()
			if err := s.d.Guests.Update(ctx, guest); err != nil {
				return "", fmt.Errorf("update guest: %w", err)
			}
		}
	}
	return guest.Token, nil
}

// ClaimWithInvite is Claim for callers holding only the hangout's invite
// token, which stands in for the hangout ID and proves the caller was invited.
func (s *InviteService) ClaimWithInvite(ctx context.Context, inviteToken, guestID string, newDisplayName *string) (string, error) {
	invite, err := s.inviteByToken(ctx, inviteToken)
	if err != nil {
		return "", err
	}
	return s.Claim(ctx, invite.HangoutID, guestID, newDisplayName)
}

// UpgradeGuest folds a guest into a registered profile once the person behind
// the bearer token authenticates. Memberships and votes move to the profile;
// where the profile already holds the same membership or vote, the guest's
// copy is dropped. Upgrading twice is a no-op for the same profile.
func (s *InviteService) UpgradeGuest(ctx context.Context, guestToken, profileID string) (*entities.GuestProfile, error) {
	guest, err := s.identity.guestByToken(ctx, guestToken)
	if err != nil {
		return nil, err
	}
	if guest.IsConverted() {
		if guest.ConvertedToProfileID == profileID {
			return guest, nil
		}
		return nil, domain.ErrGuestAlreadyConverted
	}
	if _, err := s.d.Profiles.FindByID(ctx, profileID); err != nil {
		return nil, err
	}
	from, to := guest.Ref(), entities.Registered(profileID)
	err = s.d.Tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.d.Memberships.Reassign(ctx, from, to); err != nil {
			return fmt.Errorf("reassign memberships: %w", err)
		}
		if err := s.d.Votes.ReassignVoter(ctx, from, to); err != nil {
			return fmt.Errorf("reassign votes: %w", err)
		}
		guest.ConvertedToProfileID = profileID
		guest.UpdatedAt = s.now()
		return s.d.Guests.Update(ctx, guest)
	})
	if err != nil {
		return nil, err
	}
	s.log().Info("guest upgraded",
		"event", "guest_upgraded",
		"guest_id", guest.ID,
		"profile_id", profileID,
	)
	return guest, nil
}

func (s *InviteService) inviteByToken(ctx context.Context, token string) (*entities.InviteToken, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, domain.ErrTokenInvalid
	}
	invite, err := s.d.Invites.FindByToken(ctx, token)
	if err != nil {
		if isNotFound(err) {
			return nil, domain.ErrTokenInvalid
		}
		return nil, err
	}
	return invite, nil
}

func (s *InviteService) replayedJoin(ctx context.Context, hangoutID, key string) (*input.GuestJoin, error) {
	guest, err := s.d.Guests.FindByJoinKey(ctx, hangoutID, key)
	if err != nil {
		return nil, err
	}
	m, err := s.d.Memberships.FindByHangoutAndParticipant(ctx, hangoutID, guest.Ref())
	if err != nil {
		return nil, err
	}
	return &input.GuestJoin{Guest: guest, Membership: m, Replayed: true}, nil
}
