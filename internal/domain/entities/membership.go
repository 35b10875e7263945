package entities

import (
	"strings"
	"time"
)

type Role string

const (
	RoleCreator Role = "CREATOR"
	RoleMember  Role = "MEMBER"
)

// RsvpStatus is a participant's attendance intent. The zero value means the
// participant has not responded yet.
type RsvpStatus string

const (
	RsvpUnset    RsvpStatus = ""
	RsvpGoing    RsvpStatus = "GOING"
	RsvpMaybe    RsvpStatus = "MAYBE"
	RsvpNotGoing RsvpStatus = "NOT_GOING"
)

// Valid reports whether s is one of the three answerable statuses.
func (s RsvpStatus) Valid() bool {
	return s == RsvpGoing || s == RsvpMaybe || s == RsvpNotGoing
}

// ParseRsvp accepts the canonical labels case-insensitively.
func ParseRsvp(label string) (RsvpStatus, bool) {
	s := RsvpStatus(strings.ToUpper(strings.TrimSpace(label)))
	return s, s.Valid()
}

// Membership links one hangout to one participant identity.
type Membership struct {
	ID          string
	HangoutID   string
	Participant ParticipantRef
	Role        Role
	IsMandatory bool
	RsvpStatus  RsvpStatus
	RespondedAt time.Time // zero = never responded
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (m *Membership) IsCreator() bool {
	return m.Role == RoleCreator
}

// MemberView is a membership joined with the display identity of its
// participant, as returned by the status query.
type MemberView struct {
	Membership
	DisplayName string
	AvatarURL   string
}
