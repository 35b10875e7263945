package application

import (
	"context"
	"errors"
	"fmt"

	"hangout/internal/domain"
	"hangout/internal/domain/entities"
)

type MembershipService struct {
	base
}

// Join adds participant to the hangout. On a duplicate it returns the existing
// membership together with domain.ErrAlreadyMember so callers that treat the
// join as idempotent can keep going.
func (s *MembershipService) Join(ctx context.Context, hangoutID string, participant entities.ParticipantRef, role entities.Role, rsvp entities.RsvpStatus) (*entities.Membership, error) {
	if role == "" {
		role = entities.RoleMember
	}
	if role == entities.RoleCreator {
		return nil, domain.ErrCreatorExists
	}
	if rsvp != entities.RsvpUnset && !rsvp.Valid() {
		return nil, domain.ErrInvalidRsvp
	}
	if _, err := s.loadOpenHangout(ctx, hangoutID); err != nil {
		return nil, err
	}

	now := s.now()
	m := &entities.Membership{
		ID:          s.d.IDs.NewID(),
		HangoutID:   hangoutID,
		Participant: participant,
		Role:        role,
		RsvpStatus:  rsvp,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if rsvp != entities.RsvpUnset {
		m.RespondedAt = now
	}
	if err := s.d.Memberships.Create(ctx, m); err != nil {
		if errors.Is(err, domain.ErrAlreadyMember) {
			existing, findErr := s.d.Memberships.FindByHangoutAndParticipant(ctx, hangoutID, participant)
			if findErr != nil {
				return nil, findErr
			}
			return existing, domain.ErrAlreadyMember
		}
		return nil, fmt.Errorf("create membership: %w", err)
	}
	s.log().Info("participant joined",
		"event", "membership_joined",
		"hangout_id", hangoutID,
		"participant", participant.String(),
		"membership_id", m.ID,
	)
	return m, nil
}

// SetMandatory flags a membership as mandatory. Creator-only.
func (s *MembershipService) SetMandatory(ctx context.Context, membershipID string, actor entities.ParticipantRef, mandatory bool) (*entities.Membership, error) {
	m, err := s.d.Memberships.FindByID(ctx, membershipID)
	if err != nil {
		return nil, err
	}
	h, err := s.loadOpenHangout(ctx, m.HangoutID)
	if err != nil {
		return nil, err
	}
	if !h.IsCreator(actor) {
		return nil, domain.ErrNotCreator
	}
	if m.IsMandatory == mandatory {
		return m, nil
	}
	m.IsMandatory = mandatory
	m.UpdatedAt = s.now()
	if err := s.d.Memberships.Update(ctx, m); err != nil {
		return nil, fmt.Errorf("update membership: %w", err)
	}
	return m, nil
}

// Leave removes the caller's own membership. The creator cannot leave.
func (s *MembershipService) Leave(ctx context.Context, hangoutID string, participant entities.ParticipantRef) error {
	if _, err := s.loadOpenHangout(ctx, hangoutID); err != nil {
		return err
	}
	m, err := s.requireMember(ctx, hangoutID, participant)
	if err != nil {
		return err
	}
	if m.IsCreator() {
		return domain.ErrCreatorCannotLeave
	}
	if err := s.d.Memberships.Delete(ctx, m.ID); err != nil {
		return fmt.Errorf("delete membership: %w", err)
	}
	return nil
}

// Remove deletes another participant's membership. Creator-only.
func (s *MembershipService) Remove(ctx context.Context, membershipID string, actor entities.ParticipantRef) (*entities.Membership, error) {
	m, err := s.d.Memberships.FindByID(ctx, membershipID)
	if err != nil {
		return nil, err
	}
	h, err := s.loadOpenHangout(ctx, m.HangoutID)
	if err != nil {
		return nil, err
	}
	if !h.IsCreator(actor) {
		return nil, domain.ErrNotCreator
	}
	if m.IsCreator() {
		return nil, domain.ErrCreatorCannotLeave
	}
	if err := s.d.Memberships.Delete(ctx, m.ID); err != nil {
		return nil, fmt.Errorf("delete membership: %w", err)
	}
	return m, nil
}

// Membership returns participant's membership on the hangout, failing with
// ErrHangoutNotFound or ErrNotAMember.
func (s *MembershipService) Membership(ctx context.Context, hangoutID string, participant entities.ParticipantRef) (*entities.Membership, error) {
	if _, err := s.d.Hangouts.FindByID(ctx, hangoutID); err != nil {
		return nil, err
	}
	return s.requireMember(ctx, hangoutID, participant)
}

func (s *MembershipService) ListMembers(ctx context.Context, hangoutID string) ([]entities.Membership, error) {
	return s.d.Memberships.ListByHangout(ctx, hangoutID)
}
