package entities

import "time"

// ActivityOption is one candidate "what to do" for a hangout. ActivityRef is
// an opaque reference into the external activity catalog.
type ActivityOption struct {
	ID           string
	HangoutID    string
	ActivityRef  string
	DisplayName  string
	DisplayOrder int
	SuggestedBy  ParticipantRef
	CreatedAt    time.Time
}

// TimeOption is one candidate time slot. EndsAt is optional.
type TimeOption struct {
	ID           string
	HangoutID    string
	StartsAt     time.Time
	EndsAt       *time.Time
	DisplayOrder int
	SuggestedBy  ParticipantRef
	CreatedAt    time.Time
}
