package output

import (
	"context"

	"hangout/internal/domain/entities"
)

type ProfileRepository interface {
	// Create returns domain.ErrAlreadyExists when the external key is taken.
	Create(ctx context.Context, profile *entities.RegisteredProfile) error
	FindByID(ctx context.Context, id string) (*entities.RegisteredProfile, error)
	FindByExternalKey(ctx context.Context, externalKey string) (*entities.RegisteredProfile, error)
	Update(ctx context.Context, profile *entities.RegisteredProfile) error
}

type GuestRepository interface {
	// Create returns domain.ErrDuplicateJoin when (JoinHangoutID, JoinKey) is
	// already recorded.
	Create(ctx context.Context, guest *entities.GuestProfile) error
	FindByID(ctx context.Context, id string) (*entities.GuestProfile, error)
	FindByToken(ctx context.Context, token string) (*entities.GuestProfile, error)
	FindByJoinKey(ctx context.Context, hangoutID, joinKey string) (*entities.GuestProfile, error)
	Update(ctx context.Context, guest *entities.GuestProfile) error
}
