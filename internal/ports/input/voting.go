package input

import (
	"context"
	"time"

	"hangout/internal/domain/entities"
)

type OptionUseCase interface {
	AddOption(ctx context.Context, hangoutID, activityRef, displayName string, requester entities.ParticipantRef) (*entities.ActivityOption, error)
	ListOptions(ctx context.Context, hangoutID string) ([]entities.ActivityOption, error)
	AddTimeOption(ctx context.Context, hangoutID string, startsAt time.Time, endsAt *time.Time, requester entities.ParticipantRef) (*entities.TimeOption, error)
	ListTimeOptions(ctx context.Context, hangoutID string) ([]entities.TimeOption, error)
}

type VoteUseCase interface {
	CastVote(ctx context.Context, optionID string, voter entities.ParticipantRef, value int) error
	Tally(ctx context.Context, hangoutID string) (map[string]int, error)
	CastTimeVote(ctx context.Context, timeOptionID string, voter entities.ParticipantRef, value int) error
	TallyTime(ctx context.Context, hangoutID string) (map[string]int, error)
}
