package app

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/bobmcallan/basket/internal/common"
)

// Job is a unit of scheduled background work.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Scheduler runs jobs on cron schedules. Specs accept an optional leading
// seconds field and descriptors such as "@every 15m" or "@hourly".
type Scheduler struct {
	cron   *cron.Cron
	logger *common.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

// cronParser accepts both 5 and 6 field specs.
var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// NewScheduler creates a stopped scheduler. Overlapping runs of the same job are skipped.
func NewScheduler(logger *common.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	cl := cronLogger{logger: logger}
	return &Scheduler{
		cron: cron.New(
			cron.WithParser(cronParser),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// AddJob registers job on schedule.
func (s *Scheduler) AddJob(schedule string, job Job) error {
	_, err := s.cron.AddFunc(schedule, func() {
		if err := s.RunNow(job); err != nil {
			s.logger.Error().Err(err).Str("job", job.Name()).Msg("Job failed")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q for %s: %w", schedule, job.Name(), err)
	}

	s.logger.Info().
		Str("schedule", schedule).
		Str("job", job.Name()).
		Msg("Job registered")
	return nil
}

// RunNow executes job immediately, outside its schedule.
func (s *Scheduler) RunNow(job Job) error {
	start := time.Now()
	s.logger.Debug().Str("job", job.Name()).Msg("Running job")
	if err := job.Run(s.ctx); err != nil {
		return err
	}
	s.logger.Debug().Str("job", job.Name()).Dur("elapsed", time.Since(start)).Msg("Job completed")
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info().Int("jobs", len(s.cron.Entries())).Msg("Scheduler started")
}

// Stop cancels running jobs and waits for them to return.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
	s.logger.Info().Msg("Scheduler stopped")
}

// cronLogger adapts common.Logger to cron.Logger.
type cronLogger struct {
	logger *common.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Trace().Fields(keysAndValues).Msg("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}

// basketRefresher is the part of the basket service the refresh job needs.
type basketRefresher interface {
	RefreshAll(ctx context.Context) (int, error)
}

// priceRefreshJob updates stored LTPs for every open basket.
type priceRefreshJob struct {
	baskets basketRefresher
	logger  *common.Logger
	timeout time.Duration
}

func (j *priceRefreshJob) Name() string { return "price_refresh" }

func (j *priceRefreshJob) Run(ctx context.Context) error {
	start := time.Now()
	if j.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.timeout)
		defer cancel()
	}

	n, err := j.baskets.RefreshAll(ctx)
	if err != nil {
		return fmt.Errorf("price refresh: %w", err)
	}

	j.logger.Info().
		Int("baskets", n).
		Dur("elapsed", time.Since(start)).
		Msg("Price refresh: complete")
	return nil
}
