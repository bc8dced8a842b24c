package scheduler

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/pmurley/afl-trade-bot/internal/archive"
	"github.com/pmurley/afl-trade-bot/internal/cache"
	"github.com/pmurley/afl-trade-bot/internal/playerdb"
)

const jobTimeout = 2 * time.Minute

// PoolLoader is satisfied by *playerdb.Client
type PoolLoader interface {
	LoadInitialData(ctx context.Context, cache *cache.Cache) (*playerdb.Result, error)
}

// PoolRefreshJob reloads the candidate pool into the cache
type PoolRefreshJob struct {
	loader PoolLoader
	cache  *cache.Cache
	log    zerolog.Logger
}

func NewPoolRefreshJob(loader PoolLoader, c *cache.Cache, log zerolog.Logger) *PoolRefreshJob {
	return &PoolRefreshJob{loader: loader, cache: c, log: log}
}

func (j *PoolRefreshJob) Name() string { return "pool_refresh" }

func (j *PoolRefreshJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	result, err := j.loader.LoadInitialData(ctx, j.cache)
	if err != nil {
		return err
	}
	j.log.Info().
		Int("players", len(result.Players)).
		Int("skipped", result.Skipped).
		Msg("Player pool refreshed")
	return nil
}

// HistorySource is satisfied by *storage.HistoryStorage
type HistorySource interface {
	Snapshot(w io.Writer) error
}

// ArchiveJob uploads a snapshot of the history CSV
type ArchiveJob struct {
	uploader archive.Uploader
	history  HistorySource
	now      func() time.Time
}

func NewArchiveJob(uploader archive.Uploader, history HistorySource) *ArchiveJob {
	return &ArchiveJob{uploader: uploader, history: history, now: time.Now}
}

func (j *ArchiveJob) Name() string { return "history_archive" }

func (j *ArchiveJob) Run() error {
	var buf bytes.Buffer
	if err := j.history.Snapshot(&buf); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	return j.uploader.Upload(ctx, archive.HistoryKey(j.now()), &buf, "text/csv")
}
