package displaysync

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/coder/websocket"
	"github.com/goccy/go-json"

	"signage/internal/display"
	"signage/internal/logger"
)

// Watch keeps a websocket open to the server and turns every invalidate
// message into p.Invalidate. It reconnects with backoff until ctx ends and
// forces a poll after each (re)connect, since messages may have been missed.
// urlFn is called per attempt so a refreshed token is picked up.
func Watch(ctx context.Context, urlFn func() string, p *Poller) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = retryInitialInterval
	b.Multiplier = retryMultiplier
	b.MaxInterval = retryMaxInterval
	b.MaxElapsedTime = 0
	b.Reset()

	for {
		connected, err := watchOnce(ctx, urlFn(), p)
		if ctx.Err() != nil {
			return nil
		}
		if connected {
			b.Reset()
		}
		wait := b.NextBackOff()
		logger.Warningf("[displaysync] watch disconnected, reconnecting in %s: %v", wait, err)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(wait):
		}
	}
}

// watchOnce runs one connection and reports whether it got past the hello.
func watchOnce(ctx context.Context, url string, p *Poller) (bool, error) {
	dialCtx, cancel := context.WithTimeout(ctx, defaultHTTPTimeout)
	conn, _, err := websocket.Dial(dialCtx, url, nil)
	cancel()
	if err != nil {
		return false, err
	}
	defer conn.CloseNow()

	connected := false
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return connected, err
		}
		var msg display.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			logger.Debugf("[displaysync] ignoring malformed message: %v", err)
			continue
		}
		switch msg.Type {
		case display.MessageHello:
			connected = true
			p.Invalidate()
		case display.MessageInvalidate:
			p.Invalidate()
		}
	}
}
