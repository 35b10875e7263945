package entities

import "time"

// NoVote is the value that deletes a vote instead of storing it.
const NoVote = 0

// Vote is the single active vote of one identity on one activity option.
type Vote struct {
	ID        string
	HangoutID string
	OptionID  string
	Voter     ParticipantRef
	Value     int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TimeVote mirrors Vote for time options.
type TimeVote struct {
	ID           string
	HangoutID    string
	TimeOptionID string
	Voter        ParticipantRef
	Value        int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Ballot is a vote as exposed by the status query: value and voter only.
type Ballot struct {
	Value int
	Voter ParticipantRef
}
