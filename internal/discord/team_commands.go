package discord

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/pmurley/afl-trade-bot/internal/captain"
	"github.com/pmurley/afl-trade-bot/internal/models"
	"github.com/pmurley/afl-trade-bot/internal/storage"
)

var positionOrder = []models.Position{models.Defender, models.Midfielder, models.Ruck, models.Forward}

var positionNames = map[models.Position]string{
	models.Defender:   "Defenders",
	models.Midfielder: "Midfielders",
	models.Ruck:       "Rucks",
	models.Forward:    "Forwards",
}

// handleTeam displays the saved team grouped by position
func (hm *HandlerManager) handleTeam(ctx context.Context, args []string) reply {
	team, err := hm.svc.LoadTeam(ctx)
	if errors.Is(err, storage.ErrTeamNotFound) {
		return textReply("No saved team yet. Save one with `PUT /api/team` first.")
	}
	if err != nil {
		return textReply("Failed to load team: %v", err)
	}
	if len(team) == 0 {
		return textReply("The saved team is empty.")
	}

	return reply{Embed: buildTeamEmbed(models.PlayerList(team))}
}

func buildTeamEmbed(players models.PlayerList) *discordgo.MessageEmbed {
	groups := players.GroupByPosition()
	total := 0
	for _, p := range players {
		total += p.Price
	}

	embed := &discordgo.MessageEmbed{
		Title:       "Current Team",
		Color:       0x2ecc71,
		Description: fmt.Sprintf("**%d Players | Team Value: $%s**", len(players), formatNumber(total)),
		Fields:      []*discordgo.MessageEmbedField{},
	}

	for _, pos := range positionOrder {
		group := groups[pos]
		if len(group) == 0 {
			continue
		}
		group.SortByPrice()

		var b strings.Builder
		for _, p := range group {
			fmt.Fprintf(&b, "**%s** - $%s (avg %.1f, proj %.0f)\n",
				p.DisplayName(), formatNumberShort(p.Price), p.Average, p.ProjectedScore)
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   fmt.Sprintf("%s (%d)", positionNames[pos], len(group)),
			Value:  b.String(),
			Inline: true,
		})
	}

	embed.Footer = &discordgo.MessageEmbedFooter{
		Text: fmt.Sprintf("Average Price: $%s", formatNumber(total/len(players))),
	}
	return embed
}

func (hm *HandlerManager) handleCaptain(ctx context.Context, args []string) reply {
	n := 3
	if len(args) > 0 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v < 1 {
			return textReply("Usage: `%scaptain [n]`", hm.prefix)
		}
		n = v
	}

	s, err := hm.svc.Captain(ctx, n)
	switch {
	case errors.Is(err, storage.ErrTeamNotFound):
		return textReply("No saved team yet. Save one with `PUT /api/team` first.")
	case errors.Is(err, captain.ErrEmptyRoster):
		return textReply("The saved team is empty.")
	case err != nil:
		return textReply("Failed to rank captains: %v", err)
	}

	return reply{Embed: buildCaptainEmbed(s)}
}

func buildCaptainEmbed(s captain.Suggestion) *discordgo.MessageEmbed {
	desc := fmt.Sprintf("**C:** %s (%s, proj %.0f)", s.Captain.DisplayName(), s.Captain.Position, s.Captain.ProjectedScore)
	if s.ViceCaptain != nil {
		desc += fmt.Sprintf("\n**VC:** %s (%s, proj %.0f)", s.ViceCaptain.DisplayName(), s.ViceCaptain.Position, s.ViceCaptain.ProjectedScore)
	}

	var b strings.Builder
	for i, p := range s.Ranked {
		fmt.Fprintf(&b, "%d. %s - proj %.0f, avg %.1f\n", i+1, p.DisplayName(), p.ProjectedScore, p.Average)
	}

	return &discordgo.MessageEmbed{
		Title:       "Captain Picks",
		Color:       0xf1c40f,
		Description: desc,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Ranking", Value: b.String()},
		},
	}
}
