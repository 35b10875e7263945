package output

import (
	"context"

	"hangout/internal/domain/entities"
)

type InviteRepository interface {
	// GetOrCreate inserts invite unless the hangout already has a token, and
	// returns whichever token is stored.
	GetOrCreate(ctx context.Context, invite entities.InviteToken) (entities.InviteToken, error)
	FindByToken(ctx context.Context, token string) (*entities.InviteToken, error)
}
