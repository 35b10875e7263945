package application

import (
	"context"
	"fmt"

	"hangout/internal/domain"
	"hangout/internal/domain/entities"
)

// VoteService is the vote ledger for activity and time options. One voter has
// at most one vote per option; casting again overwrites, casting NoVote
// deletes. Nothing caps how many options a voter may support.
type VoteService struct {
	base
}

// CastVote upserts or deletes voter's vote on an activity option.
func (s *VoteService) CastVote(ctx context.Context, optionID string, voter entities.ParticipantRef, value int) error {
	option, err := s.d.Options.FindActivityByID(ctx, optionID)
	if err != nil {
		return err
	}
	if err := s.checkCanVote(ctx, option.HangoutID, voter); err != nil {
		return err
	}
	if value == entities.NoVote {
		if err := s.d.Votes.Delete(ctx, optionID, voter); err != nil {
			return fmt.Errorf("delete vote: %w", err)
		}
		s.logVote("vote_deleted", option.HangoutID, optionID, voter, value)
		return nil
	}
	now := s.now()
	vote := &entities.Vote{
		ID:        s.d.IDs.NewID(),
		HangoutID: option.HangoutID,
		OptionID:  optionID,
		Voter:     voter,
		Value:     value,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.d.Votes.Upsert(ctx, vote); err != nil {
		return fmt.Errorf("upsert vote: %w", err)
	}
	s.logVote("vote_cast", option.HangoutID, optionID, voter, value)
	return nil
}

// Tally sums vote values per activity option of the hangout.
func (s *VoteService) Tally(ctx context.Context, hangoutID string) (map[string]int, error) {
	if _, err := s.d.Hangouts.FindByID(ctx, hangoutID); err != nil {
		return nil, err
	}
	return s.d.Votes.Tally(ctx, hangoutID)
}

// CastTimeVote upserts or deletes voter's vote on a time option.
func (s *VoteService) CastTimeVote(ctx context.Context, timeOptionID string, voter entities.ParticipantRef, value int) error {
	option, err := s.d.Options.FindTimeByID(ctx, timeOptionID)
	if err != nil {
		return err
	}
	if err := s.checkCanVote(ctx, option.HangoutID, voter); err != nil {
		return err
	}
	if value == entities.NoVote {
		if err := s.d.Votes.DeleteTime(ctx, timeOptionID, voter); err != nil {
			return fmt.Errorf("delete time vote: %w", err)
		}
		s.logVote("time_vote_deleted", option.HangoutID, timeOptionID, voter, value)
		return nil
	}
	now := s.now()
	vote := &entities.TimeVote{
		ID:           s.d.IDs.NewID(),
		HangoutID:    option.HangoutID,
		TimeOptionID: timeOptionID,
		Voter:        voter,
		Value:        value,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.d.Votes.UpsertTime(ctx, vote); err != nil {
		return fmt.Errorf("upsert time vote: %w", err)
	}
	s.logVote("time_vote_cast", option.HangoutID, timeOptionID, voter, value)
	return nil
}

func (s *VoteService) TallyTime(ctx context.Context, hangoutID string) (map[string]int, error) {
	if _, err := s.d.Hangouts.FindByID(ctx, hangoutID); err != nil {
		return nil, err
	}
	return s.d.Votes.TallyTime(ctx, hangoutID)
}

func (s *VoteService) checkCanVote(ctx context.Context, hangoutID string, voter entities.ParticipantRef) error {
	h, err := s.d.Hangouts.FindByID(ctx, hangoutID)
	if err != nil {
		return err
	}
	if !h.Status.AcceptsOptions() {
		return domain.ErrVotingClosed
	}
	_, err = s.requireMember(ctx, hangoutID, voter)
	return err
}

func (s *VoteService) logVote(event, hangoutID, optionID string, voter entities.ParticipantRef, value int) {
	s.log().Info("vote recorded",
		"event", event,
		"hangout_id", hangoutID,
		"option_id", optionID,
		"voter", voter.String(),
		"value", value,
	)
}
