package output

import (
	"context"

	"hangout/internal/domain/entities"
)

type VoteRepository interface {
	// Upsert stores vote, replacing any vote by the same voter on the same option.
	Upsert(ctx context.Context, vote *entities.Vote) error
	// Delete removes the voter's vote on the option; absent votes are a no-op.
	Delete(ctx context.Context, optionID string, voter entities.ParticipantRef) error
	ListByHangout(ctx context.Context, hangoutID string) ([]entities.Vote, error)
	// Tally sums vote values per option for every option of the hangout,
	// including options without votes.
	Tally(ctx context.Context, hangoutID string) (map[string]int, error)

	UpsertTime(ctx context.Context, vote *entities.TimeVote) error
	DeleteTime(ctx context.Context, timeOptionID string, voter entities.ParticipantRef) error
	ListTimeByHangout(ctx context.Context, hangoutID string) ([]entities.TimeVote, error)
	TallyTime(ctx context.Context, hangoutID string) (map[string]int, error)

	// ReassignVoter moves votes of from to to, dropping those that would
	// collide with an existing vote of to on the same option.
	ReassignVoter(ctx context.Context, from, to entities.ParticipantRef) error
}
