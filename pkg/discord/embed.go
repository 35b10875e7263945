package discord

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"hangout/internal/domain/entities"
	"hangout/internal/ports/input"
	"hangout/internal/ports/output"
)

const (
	embedColor     = 0x5865F2
	confirmedColor = 0x57F287
	cancelledColor = 0xED4245

	// Discord rejects field values over 1024 characters.
	maxFieldLen = 1024
)

// BuildStatusEmbed renders the live poll view of a hangout.
func BuildStatusEmbed(st *input.HangoutStatus, tr output.T, locale string, loc *time.Location) *discordgo.MessageEmbed {
	h := st.Hangout
	embed := &discordgo.MessageEmbed{
		Title:       tr.T(locale, "status.title", map[string]any{"Title": h.Title}),
		Description: h.Description,
		Color:       statusColor(h.Status),
		Footer:      &discordgo.MessageEmbedFooter{Text: h.ID},
	}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:   tr.T(locale, "status.field.status", nil),
		Value:  string(h.Status),
		Inline: true,
	})
	if h.VotingEndsAt != nil && h.Status == entities.StatusVoting {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   tr.T(locale, "status.field.deadline", nil),
			Value:  FormatDateTime(*h.VotingEndsAt, loc),
			Inline: true,
		})
	}
	if winner := winnerName(st); winner != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   tr.T(locale, "status.field.winner", nil),
			Value:  winner,
			Inline: true,
		})
	}
	if h.ScheduledAt != nil {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   tr.T(locale, "status.field.scheduled", nil),
			Value:  FormatDateTime(*h.ScheduledAt, loc),
			Inline: true,
		})
	}

	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:  tr.T(locale, "status.field.options", nil),
		Value: optionLines(st.Options, tr, locale),
	})
	if len(st.TimeOptions) > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  tr.T(locale, "status.field.times", nil),
			Value: timeLines(st.TimeOptions, tr, locale, loc),
		})
	}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name: tr.T(locale, "status.field.rsvp", nil),
		Value: tr.T(locale, "status.rsvp_summary", map[string]any{
			"Going":    st.Rsvp.Going,
			"Maybe":    st.Rsvp.Maybe,
			"NotGoing": st.Rsvp.NotGoing,
			"Pending":  st.Rsvp.Pending,
		}),
	})
	return embed
}

// OptionLabel is the button/list label of an activity option.
func OptionLabel(o entities.ActivityOption) string {
	if o.DisplayName != "" {
		return o.DisplayName
	}
	return o.ActivityRef
}

func optionLines(options []input.OptionStatus, tr output.T, locale string) string {
	if len(options) == 0 {
		return tr.T(locale, "status.no_options", nil)
	}
	var b strings.Builder
	for i, o := range options {
		fmt.Fprintf(&b, "%d. **%s** %s\n", i+1, OptionLabel(o.ActivityOption),
			tr.T(locale, "status.votes", map[string]any{"Score": o.Score, "Count": len(o.Ballots)}))
	}
	return truncate(b.String())
}

func timeLines(options []input.TimeOptionStatus, tr output.T, locale string, loc *time.Location) string {
	var b strings.Builder
	for i, o := range options {
		fmt.Fprintf(&b, "%d. %s %s\n", i+1, FormatDateTime(o.StartsAt, loc),
			tr.T(locale, "status.votes", map[string]any{"Score": o.Score, "Count": len(o.Ballots)}))
	}
	return truncate(b.String())
}

func winnerName(st *input.HangoutStatus) string {
	if st.Hangout.FinalOptionID == "" {
		return ""
	}
	for _, o := range st.Options {
		if o.ActivityRef == st.Hangout.FinalOptionID {
			return OptionLabel(o.ActivityOption)
		}
	}
	return st.Hangout.FinalOptionID
}

func statusColor(s entities.Status) int {
	switch s {
	case entities.StatusConfirmed, entities.StatusCompleted:
		return confirmedColor
	case entities.StatusCancelled:
		return cancelledColor
	}
	return embedColor
}

func truncate(s string) string {
	runes := []rune(strings.TrimRight(s, "\n"))
	if len(runes) <= maxFieldLen {
		return string(runes)
	}
	return string(runes[:maxFieldLen-1]) + "…"
}
