package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"hangout/internal/domain"
	"hangout/internal/domain/entities"
	"hangout/internal/ports/input"
)

// HangoutService drives the lifecycle transitions that do not pick a winner.
type HangoutService struct {
	base
}

// CreateHangout creates a PLANNING hangout and its creator membership in one
// transaction. The creator starts as GOING.
func (s *HangoutService) CreateHangout(ctx context.Context, creator entities.ParticipantRef, in input.CreateHangoutInput) (*entities.Hangout, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, domain.ErrEmptyTitle
	}
	if in.ConsensusThreshold < 0 || in.ConsensusThreshold > 100 {
		return nil, domain.ErrInvalidThreshold
	}
	if creator.IsZero() {
		return nil, domain.ErrProfileNotFound
	}
	now := s.now()
	hangout := &entities.Hangout{
		ID:                          s.d.IDs.NewID(),
		Title:                       title,
		Description:                 strings.TrimSpace(in.Description),
		Creator:                     creator,
		Status:                      entities.StatusPlanning,
		ConsensusThreshold:          in.ConsensusThreshold,
		AllowParticipantSuggestions: in.AllowParticipantSuggestions,
		CreatedAt:                   now,
		UpdatedAt:                   now,
	}
	err := s.d.Tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.d.Hangouts.Create(ctx, hangout); err != nil {
			return err
		}
		return s.d.Memberships.Create(ctx, &entities.Membership{
			ID:          s.d.IDs.NewID(),
			HangoutID:   hangout.ID,
			Participant: creator,
			Role:        entities.RoleCreator,
			RsvpStatus:  entities.RsvpGoing,
			RespondedAt: now,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("create hangout: %w", err)
	}
	s.log().Info("hangout created",
		"event", "hangout_created",
		"hangout_id", hangout.ID,
		"creator", creator.String(),
	)
	return hangout, nil
}

func (s *HangoutService) GetHangout(ctx context.Context, id string) (*entities.Hangout, error) {
	return s.d.Hangouts.FindByID(ctx, id)
}

// OpenVoting moves a PLANNING hangout to VOTING. endsAt is optional; when set
// it must lie in the future and the deadline sweep will resolve the hangout
// once it passes.
func (s *HangoutService) OpenVoting(ctx context.Context, hangoutID string, actor entities.ParticipantRef, endsAt *time.Time) (*entities.Hangout, error) {
	now := s.now()
	if endsAt != nil && !endsAt.After(now) {
		return nil, domain.ErrDeadlineInPast
	}
	return s.transition(ctx, hangoutID, &actor, entities.StatusPlanning, func(h *entities.Hangout) {
		h.Status = entities.StatusVoting
		if endsAt != nil {
			deadline := endsAt.UTC()
			h.VotingEndsAt = &deadline
		}
	})
}

// CancelHangout is creator-only and allowed from PLANNING or VOTING.
func (s *HangoutService) CancelHangout(ctx context.Context, hangoutID string, actor entities.ParticipantRef) (*entities.Hangout, error) {
	var updated *entities.Hangout
	err := s.d.Tx.WithinTx(ctx, func(ctx context.Context) error {
		h, err := s.d.Hangouts.FindByIDForUpdate(ctx, hangoutID)
		if err != nil {
			return err
		}
		if !h.IsCreator(actor) {
			return domain.ErrNotCreator
		}
		if !h.Status.AcceptsOptions() {
			return domain.ErrInvalidTransition
		}
		expected := h.Status
		h.Status = entities.StatusCancelled
		h.UpdatedAt = s.now()
		if err := s.d.Hangouts.UpdateIfStatus(ctx, h, expected); err != nil {
			return err
		}
		updated = h
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log().Info("hangout cancelled", "event", "hangout_cancelled", "hangout_id", hangoutID, "actor", actor.String())
	s.notifyMembers(ctx, hangoutID, &actor, s.d.Translator.T(s.d.Locale, "notification.hangout_cancelled", map[string]any{
		"Title": updated.Title,
	}))
	return updated, nil
}

// CompleteHangout marks a CONFIRMED hangout COMPLETED. It is the external
// scheduling signal's entry point and is not actor-gated. The hangout must
// have a scheduled time that has elapsed: an unscheduled hangout (no time
// option won) is rejected with ErrNotScheduled and stays CONFIRMED until the
// creator cancels it.
func (s *HangoutService) CompleteHangout(ctx context.Context, hangoutID string) (*entities.Hangout, error) {
	now := s.now()
	h, err := s.transition(ctx, hangoutID, nil, entities.StatusConfirmed, func(h *entities.Hangout) {
		h.Status = entities.StatusCompleted
	}, func(h *entities.Hangout) error {
		if h.ScheduledAt == nil {
			return domain.ErrNotScheduled
		}
		if h.ScheduledAt.After(now) {
			return domain.ErrNotYetDue
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return h, nil
}

// ListDueForResolution returns VOTING hangouts whose deadline has passed.
func (s *HangoutService) ListDueForResolution(ctx context.Context) ([]entities.Hangout, error) {
	return s.d.Hangouts.ListVotingExpired(ctx, s.now())
}

// ListDueForCompletion returns CONFIRMED hangouts whose scheduled time has passed.
func (s *HangoutService) ListDueForCompletion(ctx context.Context) ([]entities.Hangout, error) {
	return s.d.Hangouts.ListConfirmedDue(ctx, s.now())
}

// transition applies mutate to a hangout currently in from. A nil actor skips
// the creator check.
func (s *HangoutService) transition(
	ctx context.Context,
	hangoutID string,
	actor *entities.ParticipantRef,
	from entities.Status,
	mutate func(h *entities.Hangout),
	guards ...func(h *entities.Hangout) error,
) (*entities.Hangout, error) {
	var updated *entities.Hangout
	err := s.d.Tx.WithinTx(ctx, func(ctx context.Context) error {
		h, err := s.d.Hangouts.FindByIDForUpdate(ctx, hangoutID)
		if err != nil {
			return err
		}
		if actor != nil && !h.IsCreator(*actor) {
			return domain.ErrNotCreator
		}
		if h.Status != from {
			return domain.ErrInvalidTransition
		}
		for _, guard := range guards {
			if err := guard(h); err != nil {
				return err
			}
		}
		mutate(h)
		h.UpdatedAt = s.now()
		if err := s.d.Hangouts.UpdateIfStatus(ctx, h, from); err != nil {
			return err
		}
		updated = h
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log().Info("hangout status changed",
		"event", "hangout_status_changed",
		"hangout_id", hangoutID,
		"from", string(from),
		"to", string(updated.Status),
	)
	return updated, nil
}
