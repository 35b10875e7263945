package discord

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"hangout/internal/domain"
	"hangout/internal/domain/entities"
	"hangout/internal/ports/input"
	"hangout/internal/ports/output"
)

var _ output.Deliverer = (*DMNotifier)(nil)

// dmSession is the part of *discordgo.Session DM delivery needs.
type dmSession interface {
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DMNotifier delivers queued notifications as Discord direct messages to
// registered participants whose account is a Discord account.
type DMNotifier struct {
	session  dmSession
	identity input.IdentityUseCase
}

func NewDMNotifier(session *discordgo.Session, identity input.IdentityUseCase) *DMNotifier {
	return &DMNotifier{session: session, identity: identity}
}

func (d *DMNotifier) Deliver(ctx context.Context, n entities.Notification) error {
	if n.Recipient.IsGuest() {
		return output.ErrRecipientUnreachable
	}
	identity, err := d.identity.Lookup(ctx, n.Recipient)
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("%w: %w", output.ErrRecipientUnreachable, err)
	}
	if err != nil {
		return err
	}
	profile, ok := identity.(entities.RegisteredProfile)
	if !ok {
		return output.ErrRecipientUnreachable
	}
	userID, ok := discordUserID(profile.ExternalKey)
	if !ok {
		return output.ErrRecipientUnreachable
	}

	ch, err := d.session.UserChannelCreate(userID)
	if err != nil {
		if permanentRESTError(err) {
			return fmt.Errorf("%w: %w", output.ErrRecipientUnreachable, err)
		}
		return fmt.Errorf("open dm channel: %w", err)
	}
	msg := &discordgo.MessageSend{Content: n.Content}
	if n.Link != "" {
		msg.Content += "\n" + n.Link
	}
	if _, err := d.session.ChannelMessageSendComplex(ch.ID, msg); err != nil {
		if permanentRESTError(err) {
			return fmt.Errorf("%w: %w", output.ErrRecipientUnreachable, err)
		}
		return fmt.Errorf("send dm: %w", err)
	}
	return nil
}

// permanentRESTError reports Discord errors that retrying cannot fix: the
// user no longer exists or does not accept DMs from the bot.
func permanentRESTError(err error) bool {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) || restErr.Message == nil {
		return false
	}
	switch restErr.Message.Code {
	case discordgo.ErrCodeUnknownUser, discordgo.ErrCodeUnknownChannel, discordgo.ErrCodeCannotSendMessagesToThisUser:
		return true
	}
	return false
}
