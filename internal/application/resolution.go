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

// ResolutionService closes voting and commits exactly one winner per hangout.
type ResolutionService struct {
	base
}

// Resolve is the deadline-driven trigger. It is not actor-gated and resolves
// only VOTING hangouts whose deadline has passed, so it is safe to call
// speculatively. A VOTING hangout without a deadline never becomes due: Resolve
// returns NOT_APPLICABLE for it and only the creator's EndVoting closes it.
// Every member is notified.
func (s *ResolutionService) Resolve(ctx context.Context, hangoutID string) (input.ResolutionResult, error) {
	return s.resolve(ctx, hangoutID, nil)
}

// EndVoting is the creator's "end voting now" trigger. The creator is not
// notified of their own action.
func (s *ResolutionService) EndVoting(ctx context.Context, hangoutID string, actor entities.ParticipantRef) (input.ResolutionResult, error) {
	return s.resolve(ctx, hangoutID, &actor)
}

func (s *ResolutionService) resolve(ctx context.Context, hangoutID string, actor *entities.ParticipantRef) (input.ResolutionResult, error) {
	result, err := s.resolveOnce(ctx, hangoutID, actor)
	if errors.Is(err, domain.ErrResolutionConflict) {
		// The conditional update lost to a concurrent writer; re-reading
		// observes the committed state.
		result, err = s.resolveOnce(ctx, hangoutID, actor)
	}
	if err != nil {
		s.log().Warn("hangout resolution failed",
			"event", "resolution_failed",
			"hangout_id", hangoutID,
			"error", err.Error(),
		)
		return input.ResolutionResult{}, err
	}
	if result.Outcome == input.OutcomeResolved {
		s.log().Info("hangout resolved",
			"event", "hangout_resolved",
			"hangout_id", hangoutID,
			"winner_option_id", result.Winner.ID,
			"final_option_id", result.Hangout.FinalOptionID,
			"explicit", actor != nil,
		)
		s.notifyResolved(ctx, result, actor)
	}
	return result, nil
}

func (s *ResolutionService) resolveOnce(ctx context.Context, hangoutID string, actor *entities.ParticipantRef) (input.ResolutionResult, error) {
	var result input.ResolutionResult
	err := s.d.Tx.WithinSerializableTx(ctx, func(ctx context.Context) error {
		h, err := s.d.Hangouts.FindByIDForUpdate(ctx, hangoutID)
		if err != nil {
			return err
		}
		if actor != nil && !h.IsCreator(*actor) {
			return domain.ErrNotCreator
		}
		now := s.now()

		switch {
		case h.IsResolved():
			result, err = s.existingResult(ctx, h)
			return err
		case h.Status != entities.StatusVoting:
			result = input.ResolutionResult{Outcome: input.OutcomeNotApplicable, Hangout: *h}
			return nil
		case actor == nil && !h.DeadlineElapsed(now):
			result = input.ResolutionResult{Outcome: input.OutcomeNotApplicable, Hangout: *h}
			return nil
		}

		ranked, err := s.rankActivities(ctx, h.ID)
		if err != nil {
			return err
		}
		if len(ranked) == 0 {
			return domain.ErrEmptyOptionSet
		}
		rankedTimes, err := s.rankTimes(ctx, h.ID)
		if err != nil {
			return err
		}

		winner := ranked[0].Option
		h.Status = entities.StatusConfirmed
		h.FinalOptionID = winner.ActivityRef
		if h.VotingEndsAt != nil && h.VotingEndsAt.After(now) {
			frozen := now
			h.VotingEndsAt = &frozen
		}
		var timeWinner *entities.TimeOption
		if len(rankedTimes) > 0 {
			t := rankedTimes[0].Option
			timeWinner = &t
			h.FinalTimeOptionID = t.ID
			startsAt := t.StartsAt
			h.ScheduledAt = &startsAt
		}
		h.UpdatedAt = now
		if err := s.d.Hangouts.UpdateIfStatus(ctx, h, entities.StatusVoting); err != nil {
			return err
		}
		result = input.ResolutionResult{
			Outcome:     input.OutcomeResolved,
			Hangout:     *h,
			Winner:      &winner,
			Ranked:      ranked,
			TimeWinner:  timeWinner,
			RankedTimes: rankedTimes,
		}
		return nil
	})
	if err != nil {
		return input.ResolutionResult{}, err
	}
	return result, nil
}

// existingResult rebuilds the result of an earlier resolution without
// recomputing the winner; the stored FinalOptionID is authoritative.
func (s *ResolutionService) existingResult(ctx context.Context, h *entities.Hangout) (input.ResolutionResult, error) {
	ranked, err := s.rankActivities(ctx, h.ID)
	if err != nil {
		return input.ResolutionResult{}, err
	}
	rankedTimes, err := s.rankTimes(ctx, h.ID)
	if err != nil {
		return input.ResolutionResult{}, err
	}
	result := input.ResolutionResult{
		Outcome:     input.OutcomeAlreadyResolved,
		Hangout:     *h,
		Ranked:      ranked,
		RankedTimes: rankedTimes,
	}
	for _, r := range ranked {
		if r.Option.ActivityRef == h.FinalOptionID {
			winner := r.Option
			result.Winner = &winner
			break
		}
	}
	for _, r := range rankedTimes {
		if r.Option.ID == h.FinalTimeOptionID {
			t := r.Option
			result.TimeWinner = &t
			break
		}
	}
	return result, nil
}

func (s *ResolutionService) rankActivities(ctx context.Context, hangoutID string) ([]entities.RankedOption, error) {
	options, err := s.d.Options.ListActivityByHangout(ctx, hangoutID)
	if err != nil {
		return nil, fmt.Errorf("list options: %w", err)
	}
	tally, err := s.d.Votes.Tally(ctx, hangoutID)
	if err != nil {
		return nil, fmt.Errorf("tally votes: %w", err)
	}
	return entities.RankOptions(options, tally), nil
}

func (s *ResolutionService) rankTimes(ctx context.Context, hangoutID string) ([]entities.RankedTimeOption, error) {
	options, err := s.d.Options.ListTimeByHangout(ctx, hangoutID)
	if err != nil {
		return nil, fmt.Errorf("list time options: %w", err)
	}
	if len(options) == 0 {
		return nil, nil
	}
	tally, err := s.d.Votes.TallyTime(ctx, hangoutID)
	if err != nil {
		return nil, fmt.Errorf("tally time votes: %w", err)
	}
	return entities.RankTimeOptions(options, tally), nil
}

// notifyResolved tells every member but the actor which option won.
func (s *ResolutionService) notifyResolved(ctx context.Context, result input.ResolutionResult, actor *entities.ParticipantRef) {
	h := result.Hangout
	winner := result.Winner.DisplayName
	if winner == "" {
		winner = result.Winner.ActivityRef
	}
	content := s.d.Translator.T(s.d.Locale, "notification.hangout_confirmed", map[string]any{
		"Title":  h.Title,
		"Winner": winner,
	})
	s.notifyMembers(ctx, h.ID, actor, content)
}

func hangoutLink(baseURL, hangoutID string) string {
	return strings.TrimRight(baseURL, "/") + "/hangouts/" + hangoutID
}
