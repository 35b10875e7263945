package discord

import (
	"context"
	"strings"

	"github.com/bwmarrin/discordgo"

	"hangout/internal/domain/entities"
	"hangout/internal/ports/input"
	pkgdiscord "hangout/pkg/discord"
)

// Custom IDs are "<action>:<arg>...". Hangout and option IDs never hold ':'.
const (
	actionVote    = "vote"
	actionRsvp    = "rsvp"
	actionEnd     = "end"
	actionRefresh = "refresh"

	// Discord caps select menus at 25 options.
	maxSelectOptions = 25
)

func customID(action string, args ...string) string {
	return strings.Join(append([]string{action}, args...), ":")
}

func parseCustomID(id string) (action string, args []string) {
	parts := strings.Split(id, ":")
	return parts[0], parts[1:]
}

// statusMessage renders the embed and controls of a hangout.
func (h *Handler) statusMessage(st *input.HangoutStatus, locale string) (*discordgo.MessageEmbed, []discordgo.MessageComponent) {
	embed := pkgdiscord.BuildStatusEmbed(st, h.tr, locale, h.loc)
	return embed, h.buildComponents(st, locale)
}

func (h *Handler) buildComponents(st *input.HangoutStatus, locale string) []discordgo.MessageComponent {
	hg := st.Hangout
	var components []discordgo.MessageComponent

	if hg.Status.AcceptsOptions() && len(st.Options) > 0 {
		options := make([]discordgo.SelectMenuOption, 0, len(st.Options))
		for _, o := range st.Options {
			if len(options) == maxSelectOptions {
				break
			}
			options = append(options, discordgo.SelectMenuOption{
				Label: pkgdiscord.OptionLabel(o.ActivityOption),
				Value: o.ID,
			})
		}
		minValues := 0
		components = append(components, discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.SelectMenu{
				CustomID:    customID(actionVote, hg.ID),
				Placeholder: h.translate(locale, "ui.vote_placeholder", nil),
				MinValues:   &minValues,
				MaxValues:   len(options),
				Options:     options,
			},
		}})
	}

	if !hg.Status.IsClosed() {
		components = append(components, discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{Label: h.translate(locale, "ui.rsvp_going", nil), Style: discordgo.SuccessButton, CustomID: customID(actionRsvp, string(entities.RsvpGoing), hg.ID)},
			discordgo.Button{Label: h.translate(locale, "ui.rsvp_maybe", nil), Style: discordgo.SecondaryButton, CustomID: customID(actionRsvp, string(entities.RsvpMaybe), hg.ID)},
			discordgo.Button{Label: h.translate(locale, "ui.rsvp_not_going", nil), Style: discordgo.SecondaryButton, CustomID: customID(actionRsvp, string(entities.RsvpNotGoing), hg.ID)},
		}})
	}

	controls := []discordgo.MessageComponent{
		discordgo.Button{Label: h.translate(locale, "ui.refresh", nil), Style: discordgo.SecondaryButton, CustomID: customID(actionRefresh, hg.ID)},
	}
	if hg.Status == entities.StatusVoting {
		controls = append(controls, discordgo.Button{Label: h.translate(locale, "ui.end_voting", nil), Style: discordgo.DangerButton, CustomID: customID(actionEnd, hg.ID)})
	}
	components = append(components, discordgo.ActionsRow{Components: controls})
	return components
}

// respondStatus posts the status message as the interaction response.
func (h *Handler) respondStatus(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, hangoutID string, content string) {
	st, err := h.uc.Status.Status(ctx, hangoutID)
	if err != nil {
		h.respondError(s, i, err)
		return
	}
	embed, components := h.statusMessage(st, h.locale(i))
	_ = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content:    content,
			Embeds:     []*discordgo.MessageEmbed{embed},
			Components: components,
		},
	})
}

// updateStatus rewrites the message a component interaction came from.
func (h *Handler) updateStatus(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, hangoutID string) {
	st, err := h.uc.Status.Status(ctx, hangoutID)
	if err != nil {
		h.respondError(s, i, err)
		return
	}
	embed, components := h.statusMessage(st, h.locale(i))
	_ = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{embed},
			Components: components,
		},
	})
}

// hangoutIDFromMessage reads the hangout ID stamped in a status embed footer.
func hangoutIDFromMessage(m *discordgo.Message) (string, bool) {
	if m == nil || len(m.Embeds) == 0 || m.Embeds[0].Footer == nil {
		return "", false
	}
	id := strings.TrimSpace(m.Embeds[0].Footer.Text)
	return id, id != ""
}
