package entities

import "time"

// Status is the lifecycle state of a hangout.
type Status string

const (
	StatusPlanning  Status = "PLANNING"
	StatusVoting    Status = "VOTING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
	StatusCompleted Status = "COMPLETED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPlanning, StatusVoting, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// AcceptsOptions reports whether options and votes may still change.
func (s Status) AcceptsOptions() bool {
	return s == StatusPlanning || s == StatusVoting
}

// IsClosed reports whether memberships and RSVPs are frozen.
func (s Status) IsClosed() bool {
	return s == StatusCancelled || s == StatusCompleted
}

// Hangout is a group plan. FinalOptionID holds the activity reference of the
// winning option and is set exactly once, when the hangout is confirmed.
type Hangout struct {
	ID                          string
	Title                       string
	Description                 string
	Creator                     ParticipantRef
	Status                      Status
	ConsensusThreshold          int
	AllowParticipantSuggestions bool
	VotingEndsAt                *time.Time
	FinalOptionID               string
	FinalTimeOptionID           string
	ScheduledAt                 *time.Time
	CreatedAt                   time.Time
	UpdatedAt                   time.Time
}

func (h *Hangout) IsCreator(ref ParticipantRef) bool {
	return h.Creator == ref
}

func (h *Hangout) IsResolved() bool {
	return h.FinalOptionID != ""
}

// DeadlineElapsed reports whether a voting deadline exists and has passed.
func (h *Hangout) DeadlineElapsed(now time.Time) bool {
	return h.VotingEndsAt != nil && !h.VotingEndsAt.After(now)
}
