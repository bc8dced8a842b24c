package discord

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pmurley/afl-trade-bot/internal/cache"
	"github.com/pmurley/afl-trade-bot/internal/models"
	"github.com/pmurley/afl-trade-bot/internal/playerdb"
	"github.com/pmurley/afl-trade-bot/internal/service"
	"github.com/pmurley/afl-trade-bot/internal/storage"
	"github.com/pmurley/afl-trade-bot/pkg/logger"
)

const poolCSV = `id,name,position,price,projected,average
d700,Jake Lever,DEF,700000,70,80
m600,Tom Green,MID,600000,80,85
d220,Rookie Def,DEF,220000,65,0
m900,Marcus Bontempelli,MID,900000,110,95
`

func savedTeam() []models.Player {
	return []models.Player{
		{ID: "d700", Name: "Jake Lever", Position: models.Defender, Price: 700000, ProjectedScore: 70, Average: 80},
		{ID: "m600", Name: "Tom Green", Position: models.Midfielder, Price: 600000, ProjectedScore: 80, Average: 85},
	}
}

func newTestManager(t *testing.T, poolSource string) (*HandlerManager, *service.Service) {
	t.Helper()
	teams, err := storage.NewJSONTeamStore(t.TempDir())
	require.NoError(t, err)

	svc := service.New(service.Options{
		Teams:  teams,
		Pool:   cache.New(time.Minute),
		Loader: playerdb.NewClient(poolSource),
		Logger: logger.Nop(),
	})
	return NewHandlerManager(nil, "!", logger.Nop(), svc), svc
}

func writePool(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pool.csv")
	require.NoError(t, os.WriteFile(path, []byte(poolCSV), 0644))
	return path
}

func TestDispatch_IgnoresNonCommands(t *testing.T) {
	hm, _ := newTestManager(t, "")
	ctx := context.Background()

	for _, msg := range []string{"hello", "!", "!   ", "!unknown", "?help"} {
		_, ok := hm.dispatch(ctx, msg)
		assert.False(t, ok, msg)
	}

	r, ok := hm.dispatch(ctx, "!HELP")
	require.True(t, ok)
	assert.Contains(t, r.Content, "!trades [maxRookiePrice]")
}

func TestTradesCommand(t *testing.T) {
	hm, svc := newTestManager(t, writePool(t))
	ctx := context.Background()

	r, _ := hm.dispatch(ctx, "!trades")
	assert.Contains(t, r.Content, "No saved team")

	require.NoError(t, svc.SaveTeam(ctx, savedTeam()))

	r, _ = hm.dispatch(ctx, "!trades 250k")
	require.NotNil(t, r.Embed, r.Content)
	assert.Equal(t, "Trade Recommendations", r.Embed.Title)
	require.Len(t, r.Embed.Fields, 1)
	assert.Contains(t, r.Embed.Fields[0].Value, "Jake Lever")
	assert.Contains(t, r.Embed.Fields[0].Value, "Marcus Bontempelli")
	assert.Contains(t, r.Embed.Fields[0].Value, "Net cash: +$180K")

	r, _ = hm.dispatch(ctx, "!trades 200000")
	assert.Equal(t, "No viable rookie options found with the given price limit", r.Content)

	r, _ = hm.dispatch(ctx, "!trades cheap")
	assert.Contains(t, r.Content, "Usage")
}

func TestTradesCommand_TeamAsPool(t *testing.T) {
	hm, svc := newTestManager(t, "")
	ctx := context.Background()

	require.NoError(t, svc.SaveTeam(ctx, savedTeam()))
	r, _ := hm.dispatch(ctx, "!trades")
	assert.Equal(t, "No viable rookie options found with the given price limit", r.Content)
}

func TestTeamAndCaptainCommands(t *testing.T) {
	hm, svc := newTestManager(t, "")
	ctx := context.Background()

	r, _ := hm.dispatch(ctx, "!team")
	assert.Contains(t, r.Content, "No saved team")

	require.NoError(t, svc.SaveTeam(ctx, savedTeam()))

	r, _ = hm.dispatch(ctx, "!team")
	require.NotNil(t, r.Embed)
	assert.Contains(t, r.Embed.Description, "2 Players")
	assert.Contains(t, r.Embed.Description, "$1,300,000")
	require.Len(t, r.Embed.Fields, 2)
	assert.Equal(t, "Defenders (1)", r.Embed.Fields[0].Name)

	r, _ = hm.dispatch(ctx, "!captain 1")
	require.NotNil(t, r.Embed)
	assert.Contains(t, r.Embed.Description, "**C:** Tom Green")
	assert.Contains(t, r.Embed.Description, "**VC:** Jake Lever")

	r, _ = hm.dispatch(ctx, "!captain x")
	assert.Contains(t, r.Content, "Usage")
}

func TestPoolAndReloadCommands(t *testing.T) {
	hm, _ := newTestManager(t, "")
	ctx := context.Background()

	r, _ := hm.dispatch(ctx, "!pool")
	assert.Contains(t, r.Content, "No player database configured")
	r, _ = hm.dispatch(ctx, "!reload")
	assert.Contains(t, r.Content, "Failed to reload data")

	hm, _ = newTestManager(t, writePool(t))
	r, _ = hm.dispatch(ctx, "!reload")
	assert.Contains(t, r.Content, "4 players loaded")

	r, _ = hm.dispatch(ctx, "!pool")
	require.NotNil(t, r.Embed)
	assert.Contains(t, r.Embed.Description, "4 Players")
	require.NotNil(t, r.Embed.Footer)
	assert.Contains(t, r.Embed.Footer.Text, "Loaded")
}

func TestPlayerCommand(t *testing.T) {
	hm, _ := newTestManager(t, "")
	ctx := context.Background()

	r, _ := hm.dispatch(ctx, "!player lever")
	assert.Contains(t, r.Content, "No player database configured")

	hm, _ = newTestManager(t, writePool(t))

	r, _ = hm.dispatch(ctx, "!player")
	assert.Contains(t, r.Content, "Usage")

	r, _ = hm.dispatch(ctx, "!player jake lever")
	require.NotNil(t, r.Embed, r.Content)
	assert.Contains(t, r.Embed.Description, "**Jake Lever** (DEF) - $700K")

	r, _ = hm.dispatch(ctx, "!player e")
	require.NotNil(t, r.Embed)
	lines := strings.Split(strings.TrimSpace(r.Embed.Description), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "Marcus Bontempelli")

	r, _ = hm.dispatch(ctx, "!player nobody")
	assert.Equal(t, "No players found matching 'nobody'", r.Content)
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "1,300,000", formatNumber(1300000))
	assert.Equal(t, "-50,000", formatNumber(-50000))
	assert.Equal(t, "1.05M", formatNumberShort(1050000))
	assert.Equal(t, "250K", formatNumberShort(250000))
	assert.Equal(t, "-$50K", formatSignedMoney(-50000))
	assert.Equal(t, "+$180K", formatSignedMoney(180000))
	assert.Equal(t, "+25.0", formatSigned(25))
	assert.Equal(t, "0", formatSigned(0.01))
}
