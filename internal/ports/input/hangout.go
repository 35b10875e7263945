package input

import (
	"context"
	"time"

	"hangout/internal/domain/entities"
)

type HangoutUseCase interface {
	CreateHangout(ctx context.Context, creator entities.ParticipantRef, in CreateHangoutInput) (*entities.Hangout, error)
	GetHangout(ctx context.Context, id string) (*entities.Hangout, error)
	OpenVoting(ctx context.Context, hangoutID string, actor entities.ParticipantRef, endsAt *time.Time) (*entities.Hangout, error)
	CancelHangout(ctx context.Context, hangoutID string, actor entities.ParticipantRef) (*entities.Hangout, error)
	CompleteHangout(ctx context.Context, hangoutID string) (*entities.Hangout, error)
	ListDueForResolution(ctx context.Context) ([]entities.Hangout, error)
	ListDueForCompletion(ctx context.Context) ([]entities.Hangout, error)
}

type ResolutionUseCase interface {
	Resolve(ctx context.Context, hangoutID string) (ResolutionResult, error)
	EndVoting(ctx context.Context, hangoutID string, actor entities.ParticipantRef) (ResolutionResult, error)
}

type StatusUseCase interface {
	Status(ctx context.Context, hangoutID string) (*HangoutStatus, error)
}
