package input

import (
	"context"

	"hangout/internal/domain/entities"
)

type IdentityUseCase interface {
	ResolveRegistered(ctx context.Context, externalKey, displayName, avatarURL string) (*entities.RegisteredProfile, error)
	ResolveBearer(ctx context.Context, token string) (entities.ParticipantRef, error)
	Lookup(ctx context.Context, ref entities.ParticipantRef) (entities.Identity, error)
}

type MembershipUseCase interface {
	Join(ctx context.Context, hangoutID string, participant entities.ParticipantRef, role entities.Role, rsvp entities.RsvpStatus) (*entities.Membership, error)
	SetMandatory(ctx context.Context, membershipID string, actor entities.ParticipantRef, mandatory bool) (*entities.Membership, error)
	Leave(ctx context.Context, hangoutID string, participant entities.ParticipantRef) error
	Remove(ctx context.Context, membershipID string, actor entities.ParticipantRef) (*entities.Membership, error)
	ListMembers(ctx context.Context, hangoutID string) ([]entities.Membership, error)
	Membership(ctx context.Context, hangoutID string, participant entities.ParticipantRef) (*entities.Membership, error)
}

type RsvpUseCase interface {
	SetRsvp(ctx context.Context, hangoutID string, participant entities.ParticipantRef, status entities.RsvpStatus) (*entities.Membership, error)
	Summary(ctx context.Context, hangoutID string) (RsvpSummary, error)
}

type InviteUseCase interface {
	GetOrCreateInviteToken(ctx context.Context, hangoutID string, requester entities.ParticipantRef) (string, error)
	JoinAsGuest(ctx context.Context, token, displayName string, rsvp entities.RsvpStatus, idempotencyKey string) (*GuestJoin, error)
	JoinWithInvite(ctx context.Context, token string, participant entities.ParticipantRef, rsvp entities.RsvpStatus) (*entities.Membership, error)
	Claim(ctx context.Context, hangoutID, guestID string, newDisplayName *string) (string, error)
	ClaimWithInvite(ctx context.Context, inviteToken, guestID string, newDisplayName *string) (string, error)
	UpgradeGuest(ctx context.Context, guestToken, profileID string) (*entities.GuestProfile, error)
}
