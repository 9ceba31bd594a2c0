package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"signage/internal/config"
	"signage/internal/displaysync"
	"signage/internal/errors"
	"signage/internal/logger"
	"signage/internal/model"
)

// reloginDelay spaces out failed login attempts.
const reloginDelay = 5 * time.Second

func main() {
	cfg := config.LoadDisplay()
	flag.StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "signage server base URL")
	flag.StringVar(&cfg.Username, "user", cfg.Username, "display account username")
	flag.StringVar(&cfg.Password, "password", cfg.Password, "display account password")
	flag.DurationVar(&cfg.PollInterval, "interval", cfg.PollInterval, "poll interval")
	flag.Parse()
	logger.InitLogger(logger.ParseLevel(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := displaysync.NewClient(cfg.ServerURL, nil)
	rotator := displaysync.NewRotator(func(s model.Slide) {
		logger.Infof("showing slide %d %q for %ds", s.ID, s.Title, s.Duration)
	})
	poller := displaysync.NewPoller(client.Snapshot, cfg.PollInterval, func(snap *model.DisplaySnapshot) {
		logger.Debugf("snapshot v%d for %s: %d slides, %d fixed blocks",
			snap.Version, snap.Tenant, len(snap.Slides), len(snap.FixedContent))
		rotator.Update(snap)
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return rotator.Run(gctx) })
	g.Go(func() error { return runSession(gctx, cfg, client, poller) })

	logger.Infof("display connected to %s", cfg.ServerURL)
	if err := g.Wait(); err != nil {
		logger.Fatalf("display: %v", err)
	}
}

// runSession logs in when credentials are configured, then polls and
// watches until ctx ends. The watcher is started only once the token is in
// place, so it subscribes to the display's own tenant. When the server
// rejects the token both are stopped and the session starts over.
func runSession(ctx context.Context, cfg *config.DisplayConfig, client *displaysync.Client, poller *displaysync.Poller) error {
	for {
		if !login(ctx, cfg, client) {
			return nil
		}

		sessionCtx, cancel := context.WithCancel(ctx)
		watchDone := make(chan struct{})
		go func() {
			defer close(watchDone)
			_ = displaysync.Watch(sessionCtx, client.WatchURL, poller)
		}()

		err := poller.Run(sessionCtx)
		cancel()
		<-watchDone

		if err == nil || !errors.Is(err, errors.ErrUnauthorized) {
			return err
		}
		if cfg.Username == "" {
			// Anonymous access was refused; nothing to retry with.
			return err
		}
		logger.Warning("server rejected the display token, logging in again")
		client.SetToken("")
	}
}

// login retries until it succeeds or ctx ends. Without a username there is
// nothing to do.
func login(ctx context.Context, cfg *config.DisplayConfig, client *displaysync.Client) bool {
	if cfg.Username == "" {
		return ctx.Err() == nil
	}
	for {
		err := client.Login(ctx, cfg.Username, cfg.Password)
		if err == nil {
			return true
		}
		if ctx.Err() != nil {
			return false
		}
		logger.Warningf("login as %s failed: %v", cfg.Username, err)
		if !sleep(ctx, reloginDelay) {
			return false
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
