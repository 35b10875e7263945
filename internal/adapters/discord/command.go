package discord

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"hangout/internal/domain"
	"hangout/internal/domain/entities"
	"hangout/internal/ports/input"
	pkgdiscord "hangout/pkg/discord"
)

const commandName = "hangout"

const (
	subCreate = "create"
	subStatus = "status"
	subJoin   = "join"
	subOption = "option"
	subTime   = "time"
	subOpen   = "open"
	subRsvp   = "rsvp"
	subEnd    = "end"
	subCancel = "cancel"
	subInvite = "invite"
)

// Commands returns the slash command set, described in locale.
func (h *Handler) Commands(locale string) []*discordgo.ApplicationCommand {
	idOpt := func() *discordgo.ApplicationCommandOption {
		return &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "id",
			Description: h.translate(locale, "command.option.id", nil),
			Required:    true,
		}
	}
	str := func(name, key string, required bool) *discordgo.ApplicationCommandOption {
		return &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        name,
			Description: h.translate(locale, key, nil),
			Required:    required,
		}
	}
	sub := func(name string, opts ...*discordgo.ApplicationCommandOption) *discordgo.ApplicationCommandOption {
		return &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        name,
			Description: h.translate(locale, "command.hangout."+name, nil),
			Options:     opts,
		}
	}
	rsvp := str("status", "command.option.rsvp", true)
	rsvp.Choices = []*discordgo.ApplicationCommandOptionChoice{
		{Name: h.translate(locale, "ui.rsvp_going", nil), Value: string(entities.RsvpGoing)},
		{Name: h.translate(locale, "ui.rsvp_maybe", nil), Value: string(entities.RsvpMaybe)},
		{Name: h.translate(locale, "ui.rsvp_not_going", nil), Value: string(entities.RsvpNotGoing)},
	}

	return []*discordgo.ApplicationCommand{{
		Name:        commandName,
		Description: h.translate(locale, "command.hangout.description", nil),
		Options: []*discordgo.ApplicationCommandOption{
			sub(subCreate),
			sub(subStatus, idOpt()),
			sub(subJoin, idOpt()),
			sub(subOption, idOpt(), str("activity", "command.option.activity", true), str("name", "command.option.name", false)),
			sub(subTime, idOpt(), str("date", "command.option.date", true), str("time", "command.option.time", true)),
			sub(subOpen, idOpt(), str("date", "command.option.deadline_date", false), str("time", "command.option.deadline_time", false)),
			sub(subRsvp, idOpt(), rsvp),
			sub(subEnd, idOpt()),
			sub(subCancel, idOpt()),
			sub(subInvite, idOpt()),
		},
	}}
}

// subcommand returns the invoked subcommand and its options by name.
func subcommand(data discordgo.ApplicationCommandInteractionData) (string, map[string]string) {
	values := map[string]string{}
	if len(data.Options) == 0 {
		return "", values
	}
	sub := data.Options[0]
	for _, opt := range sub.Options {
		if opt.Type == discordgo.ApplicationCommandOptionString {
			values[opt.Name] = opt.StringValue()
		}
	}
	return sub.Name, values
}

func (h *Handler) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	name, opts := subcommand(i.ApplicationCommandData())
	if name == subCreate {
		h.openCreateModal(s, i)
		return
	}

	ctx := context.Background()
	locale := h.locale(i)
	actor, err := h.participantFor(ctx, i.Member, i.User)
	if err != nil {
		h.respondError(s, i, err)
		return
	}
	hangoutID := opts["id"]

	switch name {
	case subStatus:
		h.respondStatus(ctx, s, i, hangoutID, "")
	case subJoin:
		_, err := h.uc.Memberships.Join(ctx, hangoutID, actor, entities.RoleMember, entities.RsvpUnset)
		if err != nil && !errors.Is(err, domain.ErrAlreadyMember) {
			h.respondError(s, i, err)
			return
		}
		h.respondStatus(ctx, s, i, hangoutID, h.translate(locale, "command.join.done", nil))
	case subOption:
		if _, err := h.uc.Options.AddOption(ctx, hangoutID, opts["activity"], opts["name"], actor); err != nil {
			h.respondError(s, i, err)
			return
		}
		h.respondStatus(ctx, s, i, hangoutID, h.translate(locale, "command.option.added", nil))
	case subTime:
		startsAt, err := pkgdiscord.ParseDateTime(opts["date"], opts["time"], h.loc)
		if err != nil {
			h.respondError(s, i, err)
			return
		}
		if _, err := h.uc.Options.AddTimeOption(ctx, hangoutID, startsAt, nil, actor); err != nil {
			h.respondError(s, i, err)
			return
		}
		h.respondStatus(ctx, s, i, hangoutID, h.translate(locale, "command.time.added", nil))
	case subOpen:
		h.handleOpen(ctx, s, i, hangoutID, actor, opts)
	case subRsvp:
		if _, err := h.uc.Rsvp.SetRsvp(ctx, hangoutID, actor, entities.RsvpStatus(opts["status"])); err != nil {
			h.respondError(s, i, err)
			return
		}
		respondEphemeral(s, i.Interaction, h.translate(locale, "command.rsvp.saved", map[string]any{"Status": opts["status"]}))
	case subEnd:
		h.handleEnd(ctx, s, i, hangoutID, actor)
	case subCancel:
		if _, err := h.uc.Hangouts.CancelHangout(ctx, hangoutID, actor); err != nil {
			h.respondError(s, i, err)
			return
		}
		h.respondStatus(ctx, s, i, hangoutID, h.translate(locale, "command.cancel.done", nil))
	case subInvite:
		token, err := h.uc.Invites.GetOrCreateInviteToken(ctx, hangoutID, actor)
		if err != nil {
			h.respondError(s, i, err)
			return
		}
		respondEphemeral(s, i.Interaction, h.translate(locale, "command.invite.link", map[string]any{"Link": inviteLink(h.linkBaseURL, token)}))
	}
}

func (h *Handler) handleOpen(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, hangoutID string, actor entities.ParticipantRef, opts map[string]string) {
	var endsAt *time.Time
	if opts["date"] != "" || opts["time"] != "" {
		deadline, err := pkgdiscord.ParseDateTime(opts["date"], opts["time"], h.loc)
		if err != nil {
			h.respondError(s, i, err)
			return
		}
		endsAt = &deadline
	}
	if _, err := h.uc.Hangouts.OpenVoting(ctx, hangoutID, actor, endsAt); err != nil {
		h.respondError(s, i, err)
		return
	}
	h.respondStatus(ctx, s, i, hangoutID, h.translate(h.locale(i), "command.open.done", nil))
}

func (h *Handler) handleEnd(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, hangoutID string, actor entities.ParticipantRef) {
	res, err := h.uc.Resolution.EndVoting(ctx, hangoutID, actor)
	if err != nil {
		h.respondError(s, i, err)
		return
	}
	h.respondStatus(ctx, s, i, hangoutID, h.resolutionContent(h.locale(i), res))
}

func (h *Handler) resolutionContent(locale string, res input.ResolutionResult) string {
	winner := ""
	if res.Winner != nil {
		winner = pkgdiscord.OptionLabel(*res.Winner)
	}
	switch res.Outcome {
	case input.OutcomeResolved:
		return h.translate(locale, "command.end.done", map[string]any{"Winner": winner})
	case input.OutcomeAlreadyResolved:
		return h.translate(locale, "command.end.already", map[string]any{"Winner": winner})
	}
	return h.translate(locale, "command.end.not_applicable", nil)
}

func inviteLink(baseURL, token string) string {
	return strings.TrimRight(baseURL, "/") + "/invite/" + token
}
