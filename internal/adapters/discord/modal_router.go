package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// HandleModalSubmit routes modals by CustomID.
func (h *Handler) HandleModalSubmit(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ModalSubmitData()
	switch data.CustomID {
	case createHangoutModalID:
		h.handleCreateModalSubmit(s, i, data)
	default:
		// Unknown modal: ignore.
	}
}

// HandleComponent routes buttons and select menus by custom ID action.
func (h *Handler) HandleComponent(s *discordgo.Session, i *discordgo.InteractionCreate) {
	action, args := parseCustomID(i.MessageComponentData().CustomID)
	switch {
	case action == actionVote && len(args) == 1:
		h.handleVoteSelect(s, i, args[0])
	case action == actionRsvp && len(args) == 2:
		h.handleRsvpButton(s, i, args[0], args[1])
	case action == actionEnd && len(args) == 1:
		h.handleEndButton(s, i, args[0])
	case action == actionRefresh && len(args) == 1:
		h.updateStatus(context.Background(), s, i, args[0])
	}
}
