package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"hangout/internal/domain"
	"hangout/internal/domain/entities"
)

var reactionRsvp = map[string]entities.RsvpStatus{
	"✅": entities.RsvpGoing,
	"🤔": entities.RsvpMaybe,
	"❌": entities.RsvpNotGoing,
}

// HandleReactionAdd sets the reacting user's RSVP when they react on a
// hangout status message.
func (h *Handler) HandleReactionAdd(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
	if s.State != nil && s.State.User != nil && r.UserID == s.State.User.ID {
		return
	}
	status, ok := reactionRsvp[r.Emoji.Name]
	if !ok {
		return
	}
	msg, err := s.ChannelMessage(r.ChannelID, r.MessageID)
	if err != nil {
		return
	}
	hangoutID, ok := hangoutIDFromMessage(msg)
	if !ok || msg.Author == nil || s.State == nil || s.State.User == nil || msg.Author.ID != s.State.User.ID {
		return
	}

	ctx := context.Background()
	user := &discordgo.User{ID: r.UserID}
	if r.Member != nil && r.Member.User != nil {
		user = r.Member.User
	} else if u, err := s.User(r.UserID); err == nil {
		user = u
	}
	actor, err := h.participantFor(ctx, r.Member, user)
	if err != nil {
		h.logReactionError(hangoutID, err)
		return
	}
	if _, err := h.uc.Rsvp.SetRsvp(ctx, hangoutID, actor, status); err != nil {
		h.logReactionError(hangoutID, err)
		_ = s.MessageReactionRemove(r.ChannelID, r.MessageID, r.Emoji.APIName(), r.UserID)
	}
}

func (h *Handler) logReactionError(hangoutID string, err error) {
	level := h.logger.Warn
	if domain.Code(err) == "" {
		level = h.logger.Error
	}
	level("reaction rsvp failed", "event", "discord_reaction_rsvp_failed", "hangout_id", hangoutID, "error", err.Error())
}
