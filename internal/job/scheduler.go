package job

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"signage/internal/logger"
)

// Scheduler runs jobs on fixed intervals. Each job is wrapped once so a tick
// is skipped while the previous run is still going and panics are recovered
// inside that guard. The same wrapped job serves the optional start-up run.
type Scheduler struct {
	cron *cron.Cron
	log  cron.Logger
}

// NewScheduler creates a stopped scheduler.
func NewScheduler() *Scheduler {
	l := cronLogger{}
	return &Scheduler{
		cron: cron.New(cron.WithLocation(time.UTC), cron.WithLogger(l)),
		log:  l,
	}
}

// Every schedules job every interval. When runNow is set the job also runs
// once as soon as the scheduler starts.
func (s *Scheduler) Every(interval time.Duration, job cron.Job, runNow bool) error {
	if interval <= 0 {
		return fmt.Errorf("invalid interval %s", interval)
	}
	wrapped := cron.NewChain(cron.SkipIfStillRunning(s.log), cron.Recover(s.log)).Then(job)
	s.cron.Schedule(cron.Every(interval), wrapped)
	if runNow {
		s.cron.Schedule(&onceSchedule{}, wrapped)
	}
	return nil
}

// Start starts the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops scheduling and waits for running jobs until ctx ends.
func (s *Scheduler) Stop(ctx context.Context) error {
	select {
	case <-s.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run starts the scheduler and stops it when ctx ends.
func (s *Scheduler) Run(ctx context.Context) error {
	s.Start()
	<-ctx.Done()
	stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.Stop(stopCtx)
}

// onceSchedule fires immediately and then never again.
type onceSchedule struct {
	fired bool
}

func (o *onceSchedule) Next(t time.Time) time.Time {
	if o.fired {
		return time.Time{}
	}
	o.fired = true
	return t
}

// cronLogger routes scheduler messages into the process logger.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.Debugf("[cron] %s %v", msg, keysAndValues)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.Errorf("[cron] %s: %v %v", msg, err, keysAndValues)
}
