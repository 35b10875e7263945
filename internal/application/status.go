package application

import (
	"context"

	"hangout/internal/domain/entities"
	"hangout/internal/ports/input"
)

type StatusService struct {
	base
}

// Status assembles the poll view. Options keep DisplayOrder; members whose
// identity can no longer be looked up keep an empty display name.
func (s *StatusService) Status(ctx context.Context, hangoutID string) (*input.HangoutStatus, error) {
	h, err := s.d.Hangouts.FindByID(ctx, hangoutID)
	if err != nil {
		return nil, err
	}
	memberships, err := s.d.Memberships.ListByHangout(ctx, hangoutID)
	if err != nil {
		return nil, err
	}
	options, err := s.d.Options.ListActivityByHangout(ctx, hangoutID)
	if err != nil {
		return nil, err
	}
	votes, err := s.d.Votes.ListByHangout(ctx, hangoutID)
	if err != nil {
		return nil, err
	}
	timeOptions, err := s.d.Options.ListTimeByHangout(ctx, hangoutID)
	if err != nil {
		return nil, err
	}
	timeVotes, err := s.d.Votes.ListTimeByHangout(ctx, hangoutID)
	if err != nil {
		return nil, err
	}

	out := &input.HangoutStatus{Hangout: *h}
	for _, m := range memberships {
		view, err := s.memberView(ctx, m)
		if err != nil {
			return nil, err
		}
		out.Members = append(out.Members, view)
		switch m.RsvpStatus {
		case entities.RsvpGoing:
			out.Rsvp.Going++
		case entities.RsvpMaybe:
			out.Rsvp.Maybe++
		case entities.RsvpNotGoing:
			out.Rsvp.NotGoing++
		default:
			out.Rsvp.Pending++
		}
	}

	byOption := make(map[string][]entities.Ballot, len(options))
	for _, v := range votes {
		byOption[v.OptionID] = append(byOption[v.OptionID], entities.Ballot{Value: v.Value, Voter: v.Voter})
	}
	for _, o := range options {
		ballots := byOption[o.ID]
		out.Options = append(out.Options, input.OptionStatus{ActivityOption: o, Ballots: ballots, Score: sumBallots(ballots)})
	}

	byTime := make(map[string][]entities.Ballot, len(timeOptions))
	for _, v := range timeVotes {
		byTime[v.TimeOptionID] = append(byTime[v.TimeOptionID], entities.Ballot{Value: v.Value, Voter: v.Voter})
	}
	for _, o := range timeOptions {
		ballots := byTime[o.ID]
		out.TimeOptions = append(out.TimeOptions, input.TimeOptionStatus{TimeOption: o, Ballots: ballots, Score: sumBallots(ballots)})
	}
	return out, nil
}

func (s *StatusService) memberView(ctx context.Context, m entities.Membership) (entities.MemberView, error) {
	view := entities.MemberView{Membership: m}
	switch m.Participant.Kind {
	case entities.IdentityRegistered:
		p, err := s.d.Profiles.FindByID(ctx, m.Participant.ID)
		if err != nil {
			if isNotFound(err) {
				return view, nil
			}
			return view, err
		}
		view.DisplayName = p.DisplayName
		view.AvatarURL = p.AvatarURL
	case entities.IdentityGuest:
		g, err := s.d.Guests.FindByID(ctx, m.Participant.ID)
		if err != nil {
			if isNotFound(err) {
				return view, nil
			}
			return view, err
		}
		view.DisplayName = g.DisplayName
	}
	return view, nil
}

func sumBallots(ballots []entities.Ballot) int {
	total := 0
	for _, b := range ballots {
		total += b.Value
	}
	return total
}
