package discord

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/pmurley/afl-trade-bot/internal/service"
	"github.com/pmurley/afl-trade-bot/pkg/logger"
)

const commandTimeout = 30 * time.Second

type HandlerManager struct {
	session  *discordgo.Session
	prefix   string
	logger   *logger.Logger
	svc      *service.Service
	commands map[string]CommandHandler
}

// reply is what a command sends back; Embed wins when both are set
type reply struct {
	Content string
	Embed   *discordgo.MessageEmbed
}

func textReply(format string, a ...interface{}) reply {
	return reply{Content: fmt.Sprintf(format, a...)}
}

type CommandHandler func(ctx context.Context, args []string) reply

func NewHandlerManager(
	session *discordgo.Session,
	prefix string,
	logger *logger.Logger,
	svc *service.Service,
) *HandlerManager {
	hm := &HandlerManager{
		session:  session,
		prefix:   prefix,
		logger:   logger,
		svc:      svc,
		commands: make(map[string]CommandHandler),
	}

	hm.registerCommands()

	return hm
}

func (hm *HandlerManager) RegisterHandlers() {
	hm.session.AddHandler(hm.messageCreate)
}

func (hm *HandlerManager) registerCommands() {
	hm.commands["help"] = hm.handleHelp
	hm.commands["reload"] = hm.handleReload
	hm.commands["team"] = hm.handleTeam
	hm.commands["trades"] = hm.handleTrades
	hm.commands["captain"] = hm.handleCaptain
	hm.commands["pool"] = hm.handlePool
	hm.commands["player"] = hm.handlePlayer
}

func (hm *HandlerManager) messageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || (s.State != nil && s.State.User != nil && m.Author.ID == s.State.User.ID) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	r, ok := hm.dispatch(ctx, m.Content)
	if !ok {
		return
	}

	var err error
	if r.Embed != nil {
		_, err = s.ChannelMessageSendEmbed(m.ChannelID, r.Embed)
	} else if r.Content != "" {
		_, err = s.ChannelMessageSend(m.ChannelID, r.Content)
	}
	if err != nil {
		hm.logger.Error("Failed to send Discord reply:", err)
	}
}

// dispatch parses a message and runs the matching command. ok is false when
// the message is not a known command.
func (hm *HandlerManager) dispatch(ctx context.Context, content string) (reply, bool) {
	if !strings.HasPrefix(content, hm.prefix) {
		return reply{}, false
	}

	parts := strings.Fields(strings.TrimPrefix(content, hm.prefix))
	if len(parts) == 0 {
		return reply{}, false
	}

	command := strings.ToLower(parts[0])
	handler, exists := hm.commands[command]
	if !exists {
		return reply{}, false
	}

	hm.logger.Debug("Discord command:", command)
	return handler(ctx, parts[1:]), true
}

func (hm *HandlerManager) handleHelp(ctx context.Context, args []string) reply {
	p := hm.prefix
	return reply{Content: `**AFL Trade Bot Commands:**
` + "```" + `
` + p + `help                   - Show this help message
` + p + `reload                 - Reload the player database
` + p + `team                   - Show the saved team
` + p + `trades [maxRookiePrice] - Best downgrade + upgrade pairs for the saved team
  Examples:
    ` + p + `trades
    ` + p + `trades 250k
` + p + `captain [n]            - Captain and vice-captain picks
` + p + `pool                   - Player database summary
` + p + `player <name>          - Search the player database
` + "```"}
}

func (hm *HandlerManager) handleReload(ctx context.Context, args []string) reply {
	result, err := hm.svc.ReloadPool(ctx)
	if err != nil {
		return textReply("Failed to reload data: %v", err)
	}
	return textReply("Data reloaded successfully! %d players loaded (%d rows skipped).", len(result.Players), result.Skipped)
}
