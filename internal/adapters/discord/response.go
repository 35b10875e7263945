package discord

import (
	"context"
	"strings"

	"github.com/bwmarrin/discordgo"

	"hangout/internal/domain"
	"hangout/internal/domain/entities"
)

// externalKeyPrefix namespaces Discord user IDs among external account keys.
const externalKeyPrefix = "discord:"

// Nick > GlobalName > Username
func resolveDisplayName(member *discordgo.Member, user *discordgo.User) string {
	if member != nil && member.Nick != "" {
		return member.Nick
	}
	if member != nil && member.User != nil {
		user = member.User
	}
	if user == nil {
		return ""
	}
	if user.GlobalName != "" {
		return user.GlobalName
	}
	return user.Username
}

func interactionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

// participantFor maps the Discord account behind an interaction to its
// registered profile, provisioning it on first use.
func (h *Handler) participantFor(ctx context.Context, member *discordgo.Member, user *discordgo.User) (entities.ParticipantRef, error) {
	if member != nil && member.User != nil {
		user = member.User
	}
	if user == nil {
		return entities.ParticipantRef{}, domain.ErrProfileNotFound
	}
	profile, err := h.uc.Identity.ResolveRegistered(ctx, externalKeyPrefix+user.ID, resolveDisplayName(member, user), user.AvatarURL("256"))
	if err != nil {
		return entities.ParticipantRef{}, err
	}
	return profile.Ref(), nil
}

// discordUserID extracts the Discord user ID from an external account key.
func discordUserID(externalKey string) (string, bool) {
	id, ok := strings.CutPrefix(externalKey, externalKeyPrefix)
	return id, ok && id != ""
}

func (h *Handler) locale(i *discordgo.InteractionCreate) string {
	if i.Locale != "" {
		return string(i.Locale)
	}
	return h.defaultLocale
}

func respondEphemeral(s *discordgo.Session, i *discordgo.Interaction, content string) {
	_ = s.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}

// respondError replies with the localized message of err and logs anything
// that is not a domain error.
func (h *Handler) respondError(s *discordgo.Session, i *discordgo.InteractionCreate, err error) {
	if domain.Code(err) == "" {
		h.logger.Error("discord interaction failed",
			"event", "discord_interaction_failed",
			"interaction_type", i.Type.String(),
			"error", err.Error(),
		)
	}
	respondEphemeral(s, i.Interaction, "❌ "+h.tr.Error(h.locale(i), err))
}
