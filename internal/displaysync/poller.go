package displaysync

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"signage/internal/errors"
	"signage/internal/logger"
	"signage/internal/model"
)

// Poll intervals for unattended displays and for admin screens.
const (
	DisplayPollInterval = 5 * time.Second
	AdminPollInterval   = 30 * time.Second
)

// Retry policy for a single poll.
const (
	retryInitialInterval = time.Second
	retryMaxInterval     = 30 * time.Second
	retryMultiplier      = 2
	maxRetries           = 3
)

// FetchFunc loads a fresh snapshot.
type FetchFunc func(ctx context.Context) (*model.DisplaySnapshot, error)

// Poller fetches snapshots on a fixed interval and on demand. A failed poll
// keeps the last good snapshot.
type Poller struct {
	fetch      FetchFunc
	interval   time.Duration
	onUpdate   func(*model.DisplaySnapshot)
	newBackOff func() backoff.BackOff

	invalidate chan struct{}

	mu   sync.RWMutex
	last *model.DisplaySnapshot
}

// NewPoller creates a poller. onUpdate runs after every successful poll and
// may be nil.
func NewPoller(fetch FetchFunc, interval time.Duration, onUpdate func(*model.DisplaySnapshot)) *Poller {
	if interval <= 0 {
		interval = DisplayPollInterval
	}
	if onUpdate == nil {
		onUpdate = func(*model.DisplaySnapshot) {}
	}
	return &Poller{
		fetch:      fetch,
		interval:   interval,
		onUpdate:   onUpdate,
		newBackOff: defaultBackOff,
		invalidate: make(chan struct{}, 1),
	}
}

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = retryInitialInterval
	b.Multiplier = retryMultiplier
	b.MaxInterval = retryMaxInterval
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// Invalidate asks for an immediate poll. Calls made before the poll starts
// collapse into one.
func (p *Poller) Invalidate() {
	select {
	case p.invalidate <- struct{}{}:
	default:
	}
}

// Last returns the newest good snapshot, or nil before the first success.
func (p *Poller) Last() *model.DisplaySnapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.last
}

// Run polls until ctx ends. It returns ErrUnauthorized when the server
// rejects the credentials so the caller can log in again.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		if err := p.Poll(ctx); err != nil {
			if errors.Is(err, errors.ErrUnauthorized) {
				return err
			}
			if ctx.Err() != nil {
				return nil
			}
			logger.Warningf("[displaysync] poll failed, keeping last snapshot: %v", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		case <-p.invalidate:
			ticker.Reset(p.interval)
		}
	}
}

// Poll fetches once, retrying transient failures.
func (p *Poller) Poll(ctx context.Context) error {
	op := func() (*model.DisplaySnapshot, error) {
		snap, err := p.fetch(ctx)
		if err != nil && errors.Is(err, errors.ErrUnauthorized) {
			return nil, backoff.Permanent(err)
		}
		return snap, err
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(p.newBackOff(), maxRetries), ctx)
	notify := func(err error, wait time.Duration) {
		logger.Debugf("[displaysync] fetch failed, retrying in %s: %v", wait, err)
	}

	snap, err := backoff.RetryNotifyWithData(op, policy, notify)
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.last = snap
	p.mu.Unlock()
	p.onUpdate(snap)
	return nil
}
