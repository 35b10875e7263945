package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"hangout/internal/domain/entities"
)

func (h *Handler) handleRsvpButton(s *discordgo.Session, i *discordgo.InteractionCreate, status, hangoutID string) {
	ctx := context.Background()
	actor, err := h.participantFor(ctx, i.Member, i.User)
	if err != nil {
		h.respondError(s, i, err)
		return
	}
	if _, err := h.uc.Rsvp.SetRsvp(ctx, hangoutID, actor, entities.RsvpStatus(status)); err != nil {
		h.respondError(s, i, err)
		return
	}
	h.updateStatus(ctx, s, i, hangoutID)
}

func (h *Handler) handleEndButton(s *discordgo.Session, i *discordgo.InteractionCreate, hangoutID string) {
	ctx := context.Background()
	actor, err := h.participantFor(ctx, i.Member, i.User)
	if err != nil {
		h.respondError(s, i, err)
		return
	}
	if _, err := h.uc.Resolution.EndVoting(ctx, hangoutID, actor); err != nil {
		h.respondError(s, i, err)
		return
	}
	h.updateStatus(ctx, s, i, hangoutID)
}
