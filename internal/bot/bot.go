package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/pmurley/afl-trade-bot/internal/config"
	"github.com/pmurley/afl-trade-bot/internal/discord"
	"github.com/pmurley/afl-trade-bot/internal/service"
	"github.com/pmurley/afl-trade-bot/pkg/logger"
)

type Bot struct {
	session  *discordgo.Session
	logger   *logger.Logger
	handlers *discord.HandlerManager
}

func New(cfg *config.Config, log *logger.Logger, svc *service.Service) (*Bot, error) {
	if cfg.DiscordToken == "" {
		return nil, fmt.Errorf("DISCORD_TOKEN is not set")
	}

	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	// Guild and DM messages, plus message content for prefix commands
	session.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent

	b := &Bot{
		session: session,
		logger:  log,
	}

	b.handlers = discord.NewHandlerManager(b.session, cfg.CommandPrefix, log, svc)

	return b, nil
}

func (b *Bot) Start() error {
	b.handlers.RegisterHandlers()

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}

	b.logger.Info("Discord bot connected")
	return nil
}

func (b *Bot) Stop() error {
	return b.session.Close()
}
