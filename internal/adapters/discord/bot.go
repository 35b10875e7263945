package discord

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"hangout/internal/application"
)

// Bot is the Discord adapter.
type Bot struct {
	session *discordgo.Session
	handler *Handler
	guildID string
	locale  string
	logger  *slog.Logger
}

// NewBot creates the session and wires interactions to handler. An empty
// guildID registers commands globally.
func NewBot(token, guildID string, handler *Handler, logger *slog.Logger) (*Bot, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	s.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessageReactions | discordgo.IntentsDirectMessages

	bot := &Bot{
		session: s,
		handler: handler,
		guildID: guildID,
		locale:  handler.defaultLocale,
		logger:  application.ResolveLogger(logger),
	}
	bot.setupHandlers()
	return bot, nil
}

// Session exposes the session for delivery adapters sharing the connection.
func (b *Bot) Session() *discordgo.Session {
	return b.session
}

func (b *Bot) setupHandlers() {
	b.session.AddHandler(b.handleInteraction)
	b.session.AddHandler(b.handler.HandleReactionAdd)
}

func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		if i.ApplicationCommandData().Name == commandName {
			b.handler.HandleCommand(s, i)
		}
	case discordgo.InteractionModalSubmit:
		b.handler.HandleModalSubmit(s, i)
	case discordgo.InteractionMessageComponent:
		b.handler.HandleComponent(s, i)
	}
}

// Start opens the gateway, registers the slash commands and blocks until ctx
// is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open discord session: %w", err)
	}
	defer b.session.Close()

	commands := b.handler.Commands(b.locale)
	if _, err := b.session.ApplicationCommandBulkOverwrite(b.session.State.User.ID, b.guildID, commands); err != nil {
		b.logger.Error("slash command registration failed", "event", "discord_commands_failed", "error", err.Error())
	}

	b.logger.Info("discord bot online", "event", "discord_ready", "user", b.session.State.User.Username, "guild_id", b.guildID)
	<-ctx.Done()
	return nil
}
