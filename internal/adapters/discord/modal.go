package discord

import (
	"context"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"hangout/internal/domain"
	"hangout/internal/ports/input"
	pkgdiscord "hangout/pkg/discord"
)

const createHangoutModalID = "create_hangout_modal"

func (h *Handler) openCreateModal(s *discordgo.Session, i *discordgo.InteractionCreate) {
	locale := h.locale(i)
	_ = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: createHangoutModalID,
			Title:    h.translate(locale, "modal.create.title", nil),
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.TextInput{CustomID: "title", Label: h.translate(locale, "modal.create.field_title", nil), Style: discordgo.TextInputShort, Required: true, MaxLength: 100},
				}},
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.TextInput{CustomID: "desc", Label: h.translate(locale, "modal.create.field_desc", nil), Style: discordgo.TextInputParagraph, Required: false},
				}},
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.TextInput{CustomID: "threshold", Label: h.translate(locale, "modal.create.field_threshold", nil), Style: discordgo.TextInputShort, Required: false, Placeholder: "60"},
				}},
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.TextInput{CustomID: "suggestions", Label: h.translate(locale, "modal.create.field_suggestions", nil), Style: discordgo.TextInputShort, Required: false, Placeholder: "yes / no"},
				}},
			},
		},
	})
}

// createInputFromModal reads the create modal. An empty threshold means 0,
// suggestions default to enabled.
func createInputFromModal(values map[string]string) (input.CreateHangoutInput, error) {
	in := input.CreateHangoutInput{
		Title:                       values["title"],
		Description:                 values["desc"],
		AllowParticipantSuggestions: true,
	}
	if raw := strings.TrimSpace(values["threshold"]); raw != "" {
		n, err := strconv.Atoi(strings.TrimSuffix(raw, "%"))
		if err != nil {
			return in, domain.ErrInvalidThreshold
		}
		in.ConsensusThreshold = n
	}
	switch strings.ToLower(strings.TrimSpace(values["suggestions"])) {
	case "no", "non", "n", "false", "0":
		in.AllowParticipantSuggestions = false
	}
	return in, nil
}

func (h *Handler) handleCreateModalSubmit(s *discordgo.Session, i *discordgo.InteractionCreate, data discordgo.ModalSubmitInteractionData) {
	ctx := context.Background()
	in, err := createInputFromModal(pkgdiscord.ModalValues(data))
	if err != nil {
		h.respondError(s, i, err)
		return
	}
	creator, err := h.participantFor(ctx, i.Member, i.User)
	if err != nil {
		h.respondError(s, i, err)
		return
	}
	hg, err := h.uc.Hangouts.CreateHangout(ctx, creator, in)
	if err != nil {
		h.respondError(s, i, err)
		return
	}
	h.respondStatus(ctx, s, i, hg.ID, h.translate(h.locale(i), "command.create.done", map[string]any{"ID": hg.ID}))
}
