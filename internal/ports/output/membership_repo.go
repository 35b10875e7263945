package output

import (
	"context"

	"hangout/internal/domain/entities"
)

type MembershipRepository interface {
	// Create returns domain.ErrAlreadyMember on a duplicate (hangout, identity).
	Create(ctx context.Context, membership *entities.Membership) error
	FindByID(ctx context.Context, id string) (*entities.Membership, error)
	FindByHangoutAndParticipant(ctx context.Context, hangoutID string, participant entities.ParticipantRef) (*entities.Membership, error)
	ListByHangout(ctx context.Context, hangoutID string) ([]entities.Membership, error)
	ListByParticipant(ctx context.Context, participant entities.ParticipantRef) ([]entities.Membership, error)
	Update(ctx context.Context, membership *entities.Membership) error
	Delete(ctx context.Context, id string) error
	// Reassign moves every membership of from to to. Memberships on hangouts
	// where to is already a member are deleted instead.
	Reassign(ctx context.Context, from, to entities.ParticipantRef) error
}
