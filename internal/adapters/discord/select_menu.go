package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"hangout/internal/domain/entities"
	"hangout/internal/ports/input"
)

// ballotChanges turns a multi-select submission into vote writes: selected
// options get a vote, deselected options the voter had voted for lose it.
func ballotChanges(options []input.OptionStatus, selected []string, voter entities.ParticipantRef) map[string]int {
	picked := make(map[string]bool, len(selected))
	for _, id := range selected {
		picked[id] = true
	}
	changes := make(map[string]int)
	for _, o := range options {
		voted := false
		for _, b := range o.Ballots {
			if b.Voter == voter {
				voted = true
				break
			}
		}
		switch {
		case picked[o.ID] && !voted:
			changes[o.ID] = 1
		case !picked[o.ID] && voted:
			changes[o.ID] = entities.NoVote
		}
	}
	return changes
}

func (h *Handler) handleVoteSelect(s *discordgo.Session, i *discordgo.InteractionCreate, hangoutID string) {
	ctx := context.Background()
	voter, err := h.participantFor(ctx, i.Member, i.User)
	if err != nil {
		h.respondError(s, i, err)
		return
	}
	st, err := h.uc.Status.Status(ctx, hangoutID)
	if err != nil {
		h.respondError(s, i, err)
		return
	}
	for optionID, value := range ballotChanges(st.Options, i.MessageComponentData().Values, voter) {
		if err := h.uc.Votes.CastVote(ctx, optionID, voter, value); err != nil {
			h.respondError(s, i, err)
			return
		}
	}
	h.updateStatus(ctx, s, i, hangoutID)
}
