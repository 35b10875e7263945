package entities

import "time"

// IdentityKind discriminates the two participant identity variants.
type IdentityKind string

const (
	IdentityRegistered IdentityKind = "registered"
	IdentityGuest      IdentityKind = "guest"
)

// ParticipantRef points at one participant identity. Memberships, votes and
// notifications only ever hold a ref, never the profile itself.
type ParticipantRef struct {
	Kind IdentityKind
	ID   string
}

func Registered(id string) ParticipantRef {
	return ParticipantRef{Kind: IdentityRegistered, ID: id}
}

func Guest(id string) ParticipantRef {
	return ParticipantRef{Kind: IdentityGuest, ID: id}
}

func (r ParticipantRef) IsZero() bool {
	return r.ID == ""
}

func (r ParticipantRef) IsGuest() bool {
	return r.Kind == IdentityGuest
}

func (r ParticipantRef) String() string {
	return string(r.Kind) + ":" + r.ID
}

// Identity is the sealed sum over RegisteredProfile and GuestProfile.
type Identity interface {
	Ref() ParticipantRef
	Name() string
	isIdentity()
}

// RegisteredProfile is an identity provisioned from an external account.
type RegisteredProfile struct {
	ID          string
	ExternalKey string
	DisplayName string
	AvatarURL   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (p RegisteredProfile) Ref() ParticipantRef { return Registered(p.ID) }
func (p RegisteredProfile) Name() string        { return p.DisplayName }
func (RegisteredProfile) isIdentity()           {}

// GuestProfile is a time-boxed anonymous identity authenticated by Token.
// JoinHangoutID/JoinKey record the invite join that created it so that a
// replayed join returns the same guest.
type GuestProfile struct {
	ID                   string
	Token                string
	DisplayName          string
	ExpiresAt            time.Time
	ConvertedToProfileID string
	JoinHangoutID        string
	JoinKey              string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

func (g GuestProfile) Ref() ParticipantRef { return Guest(g.ID) }
func (g GuestProfile) Name() string        { return g.DisplayName }
func (GuestProfile) isIdentity()           {}

func (g GuestProfile) Expired(now time.Time) bool {
	return !g.ExpiresAt.After(now)
}

func (g GuestProfile) IsConverted() bool {
	return g.ConvertedToProfileID != ""
}
