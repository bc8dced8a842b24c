// Package scheduler runs the background jobs: pool refresh and the
// history archive upload.
package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

type Job interface {
	Run() error
	Name() string
}

type Scheduler struct {
	cron *cron.Cron
	log  zerolog.Logger
}

// New accepts five-field specs, six-field specs with leading seconds, and
// descriptors like "@every 30m" or "@daily". A job still running when its
// next tick fires is skipped for that tick.
func New(log zerolog.Logger) *Scheduler {
	log = log.With().Str("component", "scheduler").Logger()
	parser := cron.NewParser(
		cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
	)
	cronLog := cronLogger{log: log}
	return &Scheduler{
		cron: cron.New(
			cron.WithParser(parser),
			cron.WithLogger(cronLog),
			cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
		),
		log: log,
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Int("jobs", s.Entries()).Msg("Scheduler started")
}

// Stop blocks until in-flight jobs return.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info().Msg("Scheduler stopped")
}

func (s *Scheduler) AddJob(schedule string, job Job) error {
	if _, err := s.cron.AddFunc(schedule, func() { s.run(job) }); err != nil {
		return err
	}
	s.log.Info().Str("job", job.Name()).Str("schedule", schedule).Msg("Job registered")
	return nil
}

func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

func (s *Scheduler) run(job Job) {
	start := time.Now()
	err := job.Run()
	ev := s.log.Debug()
	if err != nil {
		ev = s.log.Error().Err(err)
	}
	ev.Str("job", job.Name()).Dur("took", time.Since(start)).Msg("Job finished")
}

// cronLogger routes robfig/cron's own messages (skips, recovered panics)
// through zerolog.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
