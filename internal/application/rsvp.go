package application

import (
	"context"
	"fmt"

	"hangout/internal/domain"
	"hangout/internal/domain/entities"
	"hangout/internal/ports/input"
)

// RsvpService tracks attendance intent independently of voting.
type RsvpService struct {
	base
}

// SetRsvp records status for participant and stamps RespondedAt. Invalid
// statuses are rejected before anything is read or written.
func (s *RsvpService) SetRsvp(ctx context.Context, hangoutID string, participant entities.ParticipantRef, status entities.RsvpStatus) (*entities.Membership, error) {
	if !status.Valid() {
		return nil, domain.ErrInvalidRsvp
	}
	if _, err := s.loadOpenHangout(ctx, hangoutID); err != nil {
		return nil, err
	}
	m, err := s.requireMember(ctx, hangoutID, participant)
	if err != nil {
		return nil, err
	}
	now := s.now()
	m.RsvpStatus = status
	m.RespondedAt = now
	m.UpdatedAt = now
	if err := s.d.Memberships.Update(ctx, m); err != nil {
		return nil, fmt.Errorf("update rsvp: %w", err)
	}
	s.log().Info("rsvp updated",
		"event", "rsvp_updated",
		"hangout_id", hangoutID,
		"participant", participant.String(),
		"rsvp", string(status),
	)
	return m, nil
}

func (s *RsvpService) Summary(ctx context.Context, hangoutID string) (input.RsvpSummary, error) {
	members, err := s.d.Memberships.ListByHangout(ctx, hangoutID)
	if err != nil {
		return input.RsvpSummary{}, err
	}
	var out input.RsvpSummary
	for _, m := range members {
		switch m.RsvpStatus {
		case entities.RsvpGoing:
			out.Going++
		case entities.RsvpMaybe:
			out.Maybe++
		case entities.RsvpNotGoing:
			out.NotGoing++
		default:
			out.Pending++
		}
	}
	return out, nil
}
