package output

import (
	"context"
	"time"

	"hangout/internal/domain/entities"
)

type HangoutRepository interface {
	Create(ctx context.Context, hangout *entities.Hangout) error
	FindByID(ctx context.Context, id string) (*entities.Hangout, error)
	// FindByIDForUpdate reads the hangout and locks its row until the
	// surrounding transaction ends.
	FindByIDForUpdate(ctx context.Context, id string) (*entities.Hangout, error)
	// UpdateIfStatus persists hangout only when the stored status still equals
	// expected; otherwise it returns domain.ErrResolutionConflict.
	UpdateIfStatus(ctx context.Context, hangout *entities.Hangout, expected entities.Status) error
	ListVotingExpired(ctx context.Context, now time.Time) ([]entities.Hangout, error)
	ListConfirmedDue(ctx context.Context, now time.Time) ([]entities.Hangout, error)
}
