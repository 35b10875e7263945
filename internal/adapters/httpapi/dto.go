package httpapi

import (
	"time"

	"hangout/internal/domain/entities"
	"hangout/internal/ports/input"
)

type participantJSON struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
}

type hangoutJSON struct {
	ID                          string          `json:"id"`
	Title                       string          `json:"title"`
	Description                 string          `json:"description,omitempty"`
	Creator                     participantJSON `json:"creator"`
	Status                      string          `json:"status"`
	ConsensusThreshold          int             `json:"consensus_threshold"`
	AllowParticipantSuggestions bool            `json:"allow_participant_suggestions"`
	VotingEndsAt                *time.Time      `json:"voting_ends_at,omitempty"`
	FinalOptionID               string          `json:"final_option_id,omitempty"`
	FinalTimeOptionID           string          `json:"final_time_option_id,omitempty"`
	ScheduledAt                 *time.Time      `json:"scheduled_at,omitempty"`
	CreatedAt                   time.Time       `json:"created_at"`
	UpdatedAt                   time.Time       `json:"updated_at"`
}

type membershipJSON struct {
	ID          string          `json:"id"`
	HangoutID   string          `json:"hangout_id"`
	Participant participantJSON `json:"participant"`
	Role        string          `json:"role"`
	IsMandatory bool            `json:"is_mandatory"`
	RsvpStatus  string          `json:"rsvp_status,omitempty"`
	RespondedAt *time.Time      `json:"responded_at,omitempty"`
	DisplayName string          `json:"display_name,omitempty"`
	AvatarURL   string          `json:"avatar_url,omitempty"`
}

type ballotJSON struct {
	Value int             `json:"value"`
	Voter participantJSON `json:"voter"`
}

type optionJSON struct {
	ID           string          `json:"id"`
	ActivityRef  string          `json:"activity_ref"`
	DisplayName  string          `json:"display_name,omitempty"`
	DisplayOrder int             `json:"display_order"`
	SuggestedBy  participantJSON `json:"suggested_by"`
	Score        *int            `json:"score,omitempty"`
	Ballots      []ballotJSON    `json:"ballots,omitempty"`
}

type timeOptionJSON struct {
	ID           string          `json:"id"`
	StartsAt     time.Time       `json:"starts_at"`
	EndsAt       *time.Time      `json:"ends_at,omitempty"`
	DisplayOrder int             `json:"display_order"`
	SuggestedBy  participantJSON `json:"suggested_by"`
	Score        *int            `json:"score,omitempty"`
	Ballots      []ballotJSON    `json:"ballots,omitempty"`
}

type rsvpJSON struct {
	Going    int `json:"going"`
	Maybe    int `json:"maybe"`
	NotGoing int `json:"not_going"`
	Pending  int `json:"pending"`
}

type statusJSON struct {
	Hangout     hangoutJSON      `json:"hangout"`
	Members     []membershipJSON `json:"members"`
	Options     []optionJSON     `json:"options"`
	TimeOptions []timeOptionJSON `json:"time_options"`
	Rsvp        rsvpJSON         `json:"rsvp"`
}

type resolutionJSON struct {
	Outcome     string           `json:"outcome"`
	Hangout     hangoutJSON      `json:"hangout"`
	Winner      *optionJSON      `json:"winner,omitempty"`
	Ranked      []optionJSON     `json:"ranked,omitempty"`
	TimeWinner  *timeOptionJSON  `json:"time_winner,omitempty"`
	RankedTimes []timeOptionJSON `json:"ranked_times,omitempty"`
}

func toParticipant(ref entities.ParticipantRef) participantJSON {
	return participantJSON{Kind: string(ref.Kind), ID: ref.ID}
}

func (p participantJSON) ref() entities.ParticipantRef {
	return entities.ParticipantRef{Kind: entities.IdentityKind(p.Kind), ID: p.ID}
}

func toHangout(h entities.Hangout) hangoutJSON {
	return hangoutJSON{
		ID:                          h.ID,
		Title:                       h.Title,
		Description:                 h.Description,
		Creator:                     toParticipant(h.Creator),
		Status:                      string(h.Status),
		ConsensusThreshold:          h.ConsensusThreshold,
		AllowParticipantSuggestions: h.AllowParticipantSuggestions,
		VotingEndsAt:                h.VotingEndsAt,
		FinalOptionID:               h.FinalOptionID,
		FinalTimeOptionID:           h.FinalTimeOptionID,
		ScheduledAt:                 h.ScheduledAt,
		CreatedAt:                   h.CreatedAt,
		UpdatedAt:                   h.UpdatedAt,
	}
}

func toMembership(m entities.Membership) membershipJSON {
	out := membershipJSON{
		ID:          m.ID,
		HangoutID:   m.HangoutID,
		Participant: toParticipant(m.Participant),
		Role:        string(m.Role),
		IsMandatory: m.IsMandatory,
		RsvpStatus:  string(m.RsvpStatus),
	}
	if !m.RespondedAt.IsZero() {
		t := m.RespondedAt
		out.RespondedAt = &t
	}
	return out
}

func toMemberView(v entities.MemberView) membershipJSON {
	out := toMembership(v.Membership)
	out.DisplayName = v.DisplayName
	out.AvatarURL = v.AvatarURL
	return out
}

func toBallots(ballots []entities.Ballot) []ballotJSON {
	out := make([]ballotJSON, 0, len(ballots))
	for _, b := range ballots {
		out = append(out, ballotJSON{Value: b.Value, Voter: toParticipant(b.Voter)})
	}
	return out
}

func toOption(o entities.ActivityOption) optionJSON {
	return optionJSON{
		ID:           o.ID,
		ActivityRef:  o.ActivityRef,
		DisplayName:  o.DisplayName,
		DisplayOrder: o.DisplayOrder,
		SuggestedBy:  toParticipant(o.SuggestedBy),
	}
}

func toTimeOption(o entities.TimeOption) timeOptionJSON {
	return timeOptionJSON{
		ID:           o.ID,
		StartsAt:     o.StartsAt,
		EndsAt:       o.EndsAt,
		DisplayOrder: o.DisplayOrder,
		SuggestedBy:  toParticipant(o.SuggestedBy),
	}
}

func scored(score int) *int {
	return &score
}

func toStatus(st *input.HangoutStatus) statusJSON {
	out := statusJSON{
		Hangout:     toHangout(st.Hangout),
		Members:     make([]membershipJSON, 0, len(st.Members)),
		Options:     make([]optionJSON, 0, len(st.Options)),
		TimeOptions: make([]timeOptionJSON, 0, len(st.TimeOptions)),
		Rsvp:        rsvpJSON(st.Rsvp),
	}
	for _, m := range st.Members {
		out.Members = append(out.Members, toMemberView(m))
	}
	for _, o := range st.Options {
		j := toOption(o.ActivityOption)
		j.Score = scored(o.Score)
		j.Ballots = toBallots(o.Ballots)
		out.Options = append(out.Options, j)
	}
	for _, o := range st.TimeOptions {
		j := toTimeOption(o.TimeOption)
		j.Score = scored(o.Score)
		j.Ballots = toBallots(o.Ballots)
		out.TimeOptions = append(out.TimeOptions, j)
	}
	return out
}

func toResolution(r input.ResolutionResult) resolutionJSON {
	out := resolutionJSON{
		Outcome: string(r.Outcome),
		Hangout: toHangout(r.Hangout),
	}
	if r.Winner != nil {
		w := toOption(*r.Winner)
		out.Winner = &w
	}
	for _, ranked := range r.Ranked {
		j := toOption(ranked.Option)
		j.Score = scored(ranked.Score)
		out.Ranked = append(out.Ranked, j)
	}
	if r.TimeWinner != nil {
		w := toTimeOption(*r.TimeWinner)
		out.TimeWinner = &w
	}
	for _, ranked := range r.RankedTimes {
		j := toTimeOption(ranked.Option)
		j.Score = scored(ranked.Score)
		out.RankedTimes = append(out.RankedTimes, j)
	}
	return out
}
