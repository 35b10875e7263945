package input

import "hangout/internal/domain/entities"

// CreateHangoutInput carries the creator-chosen settings of a new hangout.
type CreateHangoutInput struct {
	Title                       string
	Description                 string
	ConsensusThreshold          int
	AllowParticipantSuggestions bool
}

// RsvpSummary counts memberships per attendance intent.
type RsvpSummary struct {
	Going    int
	Maybe    int
	NotGoing int
	Pending  int
}

// ResolutionOutcome tells callers what a resolve call did.
type ResolutionOutcome string

const (
	// OutcomeNotApplicable: the hangout is not in a resolvable state, or its
	// deadline has not passed or was never set. Nothing was written.
	OutcomeNotApplicable ResolutionOutcome = "NOT_APPLICABLE"
	// OutcomeResolved: this call committed the winner.
	OutcomeResolved ResolutionOutcome = "RESOLVED"
	// OutcomeAlreadyResolved: an earlier call committed the winner; the stored
	// winner is returned unchanged.
	OutcomeAlreadyResolved ResolutionOutcome = "ALREADY_RESOLVED"
)

// ResolutionResult is the winner, the full ranking and the hangout after
// resolution. Winner is nil when the outcome is not applicable.
type ResolutionResult struct {
	Outcome     ResolutionOutcome
	Hangout     entities.Hangout
	Winner      *entities.ActivityOption
	Ranked      []entities.RankedOption
	TimeWinner  *entities.TimeOption
	RankedTimes []entities.RankedTimeOption
}

// GuestJoin is the outcome of a guest join. The bearer token is Guest.Token.
// Replayed reports that the join had already been performed under the same
// idempotency key.
type GuestJoin struct {
	Guest      *entities.GuestProfile
	Membership *entities.Membership
	Replayed   bool
}

// OptionStatus is an activity option with every ballot cast on it.
type OptionStatus struct {
	entities.ActivityOption
	Ballots []entities.Ballot
	Score   int
}

type TimeOptionStatus struct {
	entities.TimeOption
	Ballots []entities.Ballot
	Score   int
}

// HangoutStatus is the read-only poll view of a hangout: enough for a client
// to render live tallies without a push channel.
type HangoutStatus struct {
	Hangout     entities.Hangout
	Members     []entities.MemberView
	Options     []OptionStatus
	TimeOptions []TimeOptionStatus
	Rsvp        RsvpSummary
}
