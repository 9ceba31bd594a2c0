// Package job holds the background jobs run by the server's scheduler.
package job

import (
	"context"
	"sort"
	"time"

	"signage/internal/logger"
	"signage/internal/metrics"
	"signage/internal/repository"
	"signage/internal/service"
)

// DefaultSweepTimeout bounds one sweeper pass when none is configured.
const DefaultSweepTimeout = 30 * time.Second

// SweepResult summarizes one pass.
type SweepResult struct {
	Archived int
	Failed   int
	Tenants  []string
}

// ArchiveExpiredSlidesJob archives slides whose expiry has passed.
type ArchiveExpiredSlidesJob struct {
	repo     repository.SlideRepository
	notifier service.DisplayNotifier
	timeout  time.Duration
	now      func() time.Time
}

// NewArchiveExpiredSlidesJob creates the sweeper job.
func NewArchiveExpiredSlidesJob(repo repository.SlideRepository, notifier service.DisplayNotifier, timeout time.Duration) *ArchiveExpiredSlidesJob {
	if timeout <= 0 {
		timeout = DefaultSweepTimeout
	}
	return &ArchiveExpiredSlidesJob{
		repo:     repo,
		notifier: notifier,
		timeout:  timeout,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Run implements cron.Job.
func (j *ArchiveExpiredSlidesJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	result, err := j.Sweep(ctx)
	if err != nil {
		logger.Error("[sweeper] list expired slides:", err)
		return
	}
	if result.Archived > 0 || result.Failed > 0 {
		logger.Infof("[sweeper] archived %d expired slide(s), %d failure(s)", result.Archived, result.Failed)
	}
}

// Sweep runs one pass. A slide that fails to archive is logged and counted
// and the pass moves on; only a failed candidate query aborts the pass.
func (j *ArchiveExpiredSlidesJob) Sweep(ctx context.Context) (SweepResult, error) {
	var result SweepResult
	now := j.now()

	candidates, err := j.repo.ListExpirable(ctx, now)
	if err != nil {
		metrics.SweepFinished(0, 1)
		return result, err
	}

	tenants := map[string]struct{}{}
	for _, slide := range candidates {
		if err := ctx.Err(); err != nil {
			logger.Warningf("[sweeper] pass cut short: %v", err)
			break
		}
		changed, err := j.repo.ArchiveExpired(ctx, slide.ID, now)
		if err != nil {
			result.Failed++
			logger.Warningf("[sweeper] archive slide %d: %v", slide.ID, err)
			continue
		}
		if changed {
			result.Archived++
			tenants[slide.Tenant] = struct{}{}
		}
	}

	for tenant := range tenants {
		result.Tenants = append(result.Tenants, tenant)
	}
	sort.Strings(result.Tenants)
	if j.notifier != nil {
		for _, tenant := range result.Tenants {
			j.notifier.Touch(ctx, tenant)
		}
	}

	metrics.SweepFinished(result.Archived, result.Failed)
	return result, nil
}
