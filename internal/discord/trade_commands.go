package discord

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/pmurley/afl-trade-bot/internal/models"
	"github.com/pmurley/afl-trade-bot/internal/service"
	"github.com/pmurley/afl-trade-bot/internal/storage"
)

// maxEmbedTrades keeps the embed under Discord's 25 field limit
const maxEmbedTrades = 5

// handleTrades runs the recommender on the saved team. The player database
// is searched when one is available, otherwise the team itself.
func (hm *HandlerManager) handleTrades(ctx context.Context, args []string) reply {
	maxPrice := hm.svc.DefaultMaxRookiePrice()
	if len(args) > 0 {
		p, err := models.ParsePrice(args[0])
		if err != nil || p <= 0 {
			return textReply("Usage: `%strades [maxRookiePrice]` e.g. `%strades 250k`", hm.prefix, hm.prefix)
		}
		maxPrice = p
	}

	result, err := hm.svc.Recommend(ctx, service.RecommendRequest{
		UseSavedTeam:   true,
		UsePlayerPool:  hm.svc.HasPool(),
		MaxRookiePrice: maxPrice,
		Source:         service.SourceDiscord,
	})
	if errors.Is(err, storage.ErrTeamNotFound) {
		return textReply("No saved team yet. Save one with `PUT /api/team` first.")
	}
	if err != nil {
		return textReply("Failed to run trade recommendations: %v", err)
	}
	if result.Status != service.StatusOK {
		return textReply("%s", result.Message)
	}
	if len(result.Combinations) == 0 {
		return textReply("No affordable downgrade + upgrade pairs found with rookies up to $%s.", formatNumberShort(maxPrice))
	}

	return reply{Embed: buildTradesEmbed(result.Combinations, maxPrice)}
}

func buildTradesEmbed(combos []models.Combination, maxPrice int) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       "Trade Recommendations",
		Color:       0x3498db,
		Description: fmt.Sprintf("**%d combinations** | rookies up to $%s", len(combos), formatNumberShort(maxPrice)),
		Fields:      []*discordgo.MessageEmbedField{},
	}

	shown := combos
	if len(shown) > maxEmbedTrades {
		shown = shown[:maxEmbedTrades]
	}

	for i, c := range shown {
		var b strings.Builder
		fmt.Fprintf(&b, "⬇️ **%s** → **%s** (%s, frees $%s, %s pts)\n",
			c.Downgrade.From.DisplayName(), c.Downgrade.To.DisplayName(), c.Downgrade.From.Position,
			formatNumberShort(c.Downgrade.CashFreed), formatSigned(c.Downgrade.ScoreImpact))
		fmt.Fprintf(&b, "⬆️ **%s** → **%s** (%s, costs $%s, %s pts)\n",
			c.Upgrade.From.DisplayName(), c.Upgrade.To.DisplayName(), c.Upgrade.From.Position,
			formatNumberShort(c.Upgrade.CashNeeded), formatSigned(c.Upgrade.ScoreImpact))
		fmt.Fprintf(&b, "Net cash: %s | Net score: %s", formatSignedMoney(c.NetCash), formatSigned(c.NetScore))

		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  fmt.Sprintf("#%d · score %.1f", i+1, c.OverallScore),
			Value: b.String(),
		})
	}

	if len(combos) > len(shown) {
		embed.Footer = &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Showing top %d of %d", len(shown), len(combos)),
		}
	}

	return embed
}
