package scheduler

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pmurley/afl-trade-bot/internal/cache"
	"github.com/pmurley/afl-trade-bot/internal/models"
	"github.com/pmurley/afl-trade-bot/internal/playerdb"
	"github.com/pmurley/afl-trade-bot/internal/storage"
)

type countingJob struct {
	runs atomic.Int32
	err  error
}

func (j *countingJob) Name() string { return "counting" }

func (j *countingJob) Run() error {
	j.runs.Add(1)
	return j.err
}

func TestScheduler_AddJob(t *testing.T) {
	s := New(zerolog.Nop())

	require.NoError(t, s.AddJob("@every 30m", &countingJob{}))
	require.NoError(t, s.AddJob("0 3 * * *", &countingJob{}))
	require.NoError(t, s.AddJob("*/10 * * * * *", &countingJob{}))
	assert.Equal(t, 3, s.Entries())

	assert.Error(t, s.AddJob("not a schedule", &countingJob{}))
}

func TestScheduler_RunsJobs(t *testing.T) {
	s := New(zerolog.Nop())
	job := &countingJob{err: errors.New("boom")}
	require.NoError(t, s.AddJob("@every 1s", job))

	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool { return job.runs.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
}

type blockingJob struct {
	runs    atomic.Int32
	release chan struct{}
}

func (j *blockingJob) Name() string { return "blocking" }

func (j *blockingJob) Run() error {
	j.runs.Add(1)
	<-j.release
	return nil
}

func TestScheduler_SkipsOverlappingRuns(t *testing.T) {
	s := New(zerolog.Nop())
	job := &blockingJob{release: make(chan struct{})}
	require.NoError(t, s.AddJob("* * * * * *", job))

	s.Start()
	assert.Eventually(t, func() bool { return job.runs.Load() == 1 }, 3*time.Second, 20*time.Millisecond)
	time.Sleep(1500 * time.Millisecond)
	assert.Equal(t, int32(1), job.runs.Load())

	close(job.release)
	s.Stop()
}

type fakeLoader struct {
	players []models.Player
	err     error
}

func (f *fakeLoader) LoadInitialData(ctx context.Context, c *cache.Cache) (*playerdb.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	c.SetPool(f.players)
	return &playerdb.Result{Players: f.players}, nil
}

func TestPoolRefreshJob(t *testing.T) {
	c := cache.New(time.Minute)
	loader := &fakeLoader{players: []models.Player{{ID: "1", Position: models.Forward, Price: 200000}}}
	job := NewPoolRefreshJob(loader, c, zerolog.Nop())

	assert.Equal(t, "pool_refresh", job.Name())
	require.NoError(t, job.Run())

	pool, ok := c.GetPool()
	require.True(t, ok)
	assert.Len(t, pool, 1)

	loader.err = errors.New("source offline")
	assert.ErrorContains(t, job.Run(), "source offline")
}

type memUploader struct {
	key         string
	contentType string
	body        []byte
}

func (m *memUploader) Upload(ctx context.Context, key string, body io.Reader, contentType string) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.key, m.contentType, m.body = key, contentType, data
	return nil
}

type stubHistory struct {
	data string
	err  error
}

func (h stubHistory) Snapshot(w io.Writer) error {
	if h.err != nil {
		return h.err
	}
	_, err := io.WriteString(w, h.data)
	return err
}

func TestArchiveJob(t *testing.T) {
	up := &memUploader{}
	job := NewArchiveJob(up, stubHistory{data: "RunID,Timestamp\nabc,2026-04-02T13:30:00Z\n"})
	job.now = func() time.Time { return time.Date(2026, 4, 2, 13, 30, 0, 0, time.UTC) }

	require.NoError(t, job.Run())
	assert.Equal(t, "history/2026/04/02/history-1775136600.csv", up.key)
	assert.Equal(t, "text/csv", up.contentType)
	assert.Contains(t, string(up.body), "abc,2026-04-02T13:30:00Z")

	failing := NewArchiveJob(&memUploader{}, stubHistory{err: errors.New("disk gone")})
	assert.ErrorContains(t, failing.Run(), "disk gone")
}

func TestArchiveJob_UploadsHistoryStorage(t *testing.T) {
	hs, err := storage.NewHistoryStorage(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, hs.Add(&storage.HistoryEntry{RunID: "run-1", Source: "http", Status: "ok"}))

	up := &memUploader{}
	require.NoError(t, NewArchiveJob(up, hs).Run())
	assert.Contains(t, string(up.body), "RunID,Timestamp")
	assert.Contains(t, string(up.body), "run-1,")
}
