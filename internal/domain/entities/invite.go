package entities

import "time"

// InviteToken grants guest-join rights to one hangout. There is at most one
// per hangout and it is stable once created.
type InviteToken struct {
	HangoutID string
	Token     string
	CreatedBy ParticipantRef
	CreatedAt time.Time
}
