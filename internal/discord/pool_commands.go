package discord

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/pmurley/afl-trade-bot/internal/models"
	"github.com/pmurley/afl-trade-bot/internal/service"
)

const maxPlayerResults = 10

func (hm *HandlerManager) handlePool(ctx context.Context, args []string) reply {
	stats, err := hm.svc.PoolStats(ctx)
	if errors.Is(err, service.ErrPoolUnavailable) {
		return textReply("No player database configured. Set PLAYER_POOL_SOURCE and run `%sreload`.", hm.prefix)
	}
	if err != nil {
		return textReply("Failed to load player data: %v", err)
	}
	return reply{Embed: buildPoolEmbed(stats, hm.svc.PoolLoadedAt())}
}

func buildPoolEmbed(stats models.Stats, loadedAt time.Time) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       "Player Database",
		Color:       0x9b59b6,
		Description: fmt.Sprintf("**%d Players | Average Price: $%s**", stats.Count, formatNumber(stats.AveragePrice)),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Projected", Value: fmt.Sprintf("mean %.1f ± %.1f", stats.MeanProjected, stats.StdDevProjected), Inline: true},
			{Name: "Average", Value: fmt.Sprintf("mean %.1f", stats.MeanAverage), Inline: true},
		},
	}

	for _, pos := range positionOrder {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   positionNames[pos],
			Value:  fmt.Sprintf("%d", stats.CountByPosition[pos]),
			Inline: true,
		})
	}
	if !loadedAt.IsZero() {
		embed.Footer = &discordgo.MessageEmbedFooter{
			Text: "Loaded " + loadedAt.UTC().Format("2 Jan 15:04 MST"),
		}
	}
	return embed
}

// handlePlayer searches the player database by name
func (hm *HandlerManager) handlePlayer(ctx context.Context, args []string) reply {
	if len(args) == 0 {
		return textReply("Usage: `%splayer <name>`", hm.prefix)
	}
	query := strings.Join(args, " ")

	players, err := hm.svc.SearchPool(ctx, query, maxPlayerResults)
	if errors.Is(err, service.ErrPoolUnavailable) {
		return textReply("No player database configured. Set PLAYER_POOL_SOURCE and run `%sreload`.", hm.prefix)
	}
	if err != nil {
		return textReply("Failed to search players: %v", err)
	}
	if len(players) == 0 {
		return textReply("No players found matching '%s'", query)
	}

	var b strings.Builder
	for _, p := range players {
		label := string(p.Position)
		if p.Team != "" {
			label = p.Team + " " + label
		}
		fmt.Fprintf(&b, "**%s** (%s) - $%s, proj %.0f, avg %.1f\n",
			p.DisplayName(), label, formatNumberShort(p.Price), p.ProjectedScore, p.Average)
	}
	return reply{Embed: &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Players matching '%s'", query),
		Color:       0x3498db,
		Description: b.String(),
	}}
}
