// Package jobs runs the periodic maintenance tasks of the academy
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/yigit/academy/internal/app/services"
)

const defaultJobTimeout = 2 * time.Minute

// Job is one scheduled task. Run reports how many rows it touched.
type Job struct {
	Name    string
	Spec    string
	Timeout time.Duration
	Run     func(ctx context.Context) (int64, error)
}

// Scheduler wraps a cron runner whose entries never overlap themselves
type Scheduler struct {
	cron   *cron.Cron
	logger zerolog.Logger
}

// NewScheduler creates a scheduler evaluating specs in loc
func NewScheduler(logger zerolog.Logger, loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	cronLogger := cronLogAdapter{logger: logger}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		logger: logger,
	}
}

// Add registers job. An empty spec leaves the job disabled.
func (s *Scheduler) Add(job Job) error {
	if job.Spec == "" {
		s.logger.Info().Str("job", job.Name).Msg("Job disabled, no schedule configured")
		return nil
	}
	if _, err := s.cron.AddFunc(job.Spec, func() { s.execute(job) }); err != nil {
		return fmt.Errorf("schedule %s (%q): %w", job.Name, job.Spec, err)
	}
	s.logger.Info().Str("job", job.Name).Str("spec", job.Spec).Msg("Job scheduled")
	return nil
}

// Start runs the scheduler in its own goroutine
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop prevents new runs and waits for running jobs, or for ctx to end
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn().Msg("Scheduler stop timed out with jobs still running")
	}
}

// Entries reports how many jobs are scheduled
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

func (s *Scheduler) execute(job Job) {
	timeout := job.Timeout
	if timeout <= 0 {
		timeout = defaultJobTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	start := time.Now()
	n, err := job.Run(ctx)
	if err != nil {
		s.logger.Error().Err(err).Str("job", job.Name).Dur("took", time.Since(start)).Msg("Job failed")
		return
	}
	s.logger.Info().Str("job", job.Name).Int64("affected", n).Dur("took", time.Since(start)).Msg("Job finished")
}

// CampaignCloser completes active campaigns whose end date has passed
func CampaignCloser(fundraising services.FundraisingService, spec string) Job {
	return Job{
		Name: "campaign-closer",
		Spec: spec,
		Run:  fundraising.CloseExpiredCampaigns,
	}
}

// TokenCleanup purges expired refresh and password reset tokens
func TokenCleanup(authService services.AuthService, spec string) Job {
	return Job{
		Name: "token-cleanup",
		Spec: spec,
		Run:  authService.CleanupExpiredTokens,
	}
}

// cronLogAdapter satisfies cron.Logger on top of zerolog
type cronLogAdapter struct {
	logger zerolog.Logger
}

func (a cronLogAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.logger.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (a cronLogAdapter) Error(err error, msg string, keysAndValues ...interface{}) {
	a.logger.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
