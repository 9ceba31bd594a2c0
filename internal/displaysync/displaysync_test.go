package displaysync

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signage/internal/display"
	"signage/internal/errors"
	"signage/internal/model"
)

func snapshotServer(t *testing.T, status *atomic.Int32, hits *atomic.Int32) *httptest.Server {
	return authSnapshotServer(t, status, hits, &atomic.Value{})
}

func authSnapshotServer(t *testing.T, status *atomic.Int32, hits *atomic.Int32, auth *atomic.Value) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		auth.Store(r.Header.Get("Authorization"))
		if code := int(status.Load()); code != 0 && code != http.StatusOK {
			w.WriteHeader(code)
			_, _ = w.Write([]byte(`{"error":"nope","code":"X"}`))
			return
		}
		switch r.URL.Path {
		case "/api/display":
			_ = json.NewEncoder(w).Encode(model.DisplaySnapshot{
				Tenant:  "default",
				Version: int64(hits.Load()),
				Slides:  []model.Slide{{ID: 1, Title: "Welcome", IsActive: true, Duration: 5}},
			})
		case "/api/display/version":
			_, _ = w.Write([]byte(`{"tenant":"default","version":7}`))
		case "/api/auth/login":
			_, _ = w.Write([]byte(`{"access_token":"tok","refresh_token":"r"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_SnapshotAndToken(t *testing.T) {
	var status, hits atomic.Int32
	var gotAuth atomic.Value
	srv := authSnapshotServer(t, &status, &hits, &gotAuth)

	c := NewClient(srv.URL+"/", nil)
	require.NoError(t, c.Login(context.Background(), "tv", "viewer123"))

	snap, err := c.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "default", snap.Tenant)
	require.Len(t, snap.Slides, 1)
	assert.Equal(t, "Bearer tok", gotAuth.Load())

	v, err := c.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(7), v)

	assert.Contains(t, c.WatchURL(), "ws://")
	assert.Contains(t, c.WatchURL(), "/ws/display?access_token=tok")
}

func TestClient_UnauthorizedStatuses(t *testing.T) {
	for _, code := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		var status, hits atomic.Int32
		status.Store(int32(code))
		srv := snapshotServer(t, &status, &hits)

		_, err := NewClient(srv.URL, nil).Snapshot(context.Background())
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrUnauthorized), "status %d", code)
	}

	var status, hits atomic.Int32
	status.Store(http.StatusInternalServerError)
	srv := snapshotServer(t, &status, &hits)
	_, err := NewClient(srv.URL, nil).Snapshot(context.Background())
	require.Error(t, err)
	assert.False(t, errors.Is(err, errors.ErrUnauthorized))
}

func newTestPoller(fetch FetchFunc, onUpdate func(*model.DisplaySnapshot)) *Poller {
	p := NewPoller(fetch, time.Hour, onUpdate)
	p.newBackOff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }
	return p
}

func TestPoller_RetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	fetch := func(context.Context) (*model.DisplaySnapshot, error) {
		if calls.Add(1) < 3 {
			return nil, &StatusError{Status: http.StatusBadGateway}
		}
		return &model.DisplaySnapshot{Tenant: "default", Version: 3}, nil
	}
	p := newTestPoller(fetch, nil)

	require.NoError(t, p.Poll(context.Background()))
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, int64(3), p.Last().Version)
}

func TestPoller_KeepsLastGoodSnapshot(t *testing.T) {
	var fail atomic.Bool
	var calls atomic.Int32
	fetch := func(context.Context) (*model.DisplaySnapshot, error) {
		calls.Add(1)
		if fail.Load() {
			return nil, &StatusError{Status: http.StatusServiceUnavailable}
		}
		return &model.DisplaySnapshot{Version: 1}, nil
	}
	p := newTestPoller(fetch, nil)
	require.NoError(t, p.Poll(context.Background()))

	fail.Store(true)
	calls.Store(0)
	assert.Error(t, p.Poll(context.Background()))
	assert.Equal(t, int32(maxRetries+1), calls.Load())
	require.NotNil(t, p.Last())
	assert.Equal(t, int64(1), p.Last().Version)
}

func TestPoller_UnauthorizedIsPermanent(t *testing.T) {
	var calls atomic.Int32
	fetch := func(context.Context) (*model.DisplaySnapshot, error) {
		calls.Add(1)
		return nil, &StatusError{Status: http.StatusUnauthorized}
	}
	p := newTestPoller(fetch, nil)

	done := make(chan error, 1)
	go func() { done <- p.Run(context.Background()) }()

	select {
	case err := <-done:
		assert.True(t, errors.Is(err, errors.ErrUnauthorized))
	case <-time.After(5 * time.Second):
		t.Fatal("Run kept going after 401")
	}
	assert.Equal(t, int32(1), calls.Load(), "no retries on 401")
	assert.Nil(t, p.Last())
}

func TestPoller_InvalidateForcesPoll(t *testing.T) {
	var status, hits atomic.Int32
	srv := snapshotServer(t, &status, &hits)
	client := NewClient(srv.URL, nil)

	updates := make(chan int64, 10)
	p := newTestPoller(client.Snapshot, func(s *model.DisplaySnapshot) { updates <- s.Version })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = p.Run(ctx) }()

	select {
	case <-updates:
	case <-time.After(5 * time.Second):
		t.Fatal("no initial poll")
	}

	p.Invalidate()
	select {
	case <-updates:
	case <-time.After(5 * time.Second):
		t.Fatal("invalidate did not trigger a poll")
	}
	assert.Equal(t, int32(2), hits.Load())
}

func TestPoller_InvalidationsCoalesce(t *testing.T) {
	p := NewPoller(nil, time.Hour, nil)
	p.Invalidate()
	p.Invalidate()
	p.Invalidate()
	assert.Len(t, p.invalidate, 1)
}

func TestWatch_RelaysInvalidations(t *testing.T) {
	hub := display.NewHub()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.Serve(r.Context(), w, r, "default", display.Message{Type: display.MessageHello, Tenant: "default"})
	}))
	t.Cleanup(srv.Close)

	var polls atomic.Int32
	fetch := func(context.Context) (*model.DisplaySnapshot, error) {
		polls.Add(1)
		return &model.DisplaySnapshot{}, nil
	}
	p := newTestPoller(fetch, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = p.Run(ctx) }()
	client := NewClient(srv.URL, nil)
	go func() { _ = Watch(ctx, client.WatchURL, p) }()

	// Initial poll plus the one forced by hello.
	assert.Eventually(t, func() bool { return polls.Load() >= 2 && hub.ConnectionCount() == 1 }, 5*time.Second, 10*time.Millisecond)

	before := polls.Load()
	hub.Broadcast(display.Message{Type: display.MessageInvalidate, Tenant: "default", Version: 9})
	assert.Eventually(t, func() bool { return polls.Load() > before }, 5*time.Second, 10*time.Millisecond)
}

type showLog struct {
	mu  sync.Mutex
	ids []uint
}

func (l *showLog) show(s model.Slide) {
	l.mu.Lock()
	l.ids = append(l.ids, s.ID)
	l.mu.Unlock()
}

func (l *showLog) snapshot() []uint {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]uint(nil), l.ids...)
}

func TestRotator_CyclesInOrder(t *testing.T) {
	log := &showLog{}
	r := NewRotator(log.show)
	r.unit = 10 * time.Millisecond
	past := time.Now().UTC().Add(-time.Minute)
	r.Update(&model.DisplaySnapshot{Slides: []model.Slide{
		{ID: 1, Duration: 1, IsActive: true},
		{ID: 2, Duration: 2, IsActive: true},
		{ID: 3, Duration: 1, IsActive: true, ExpiresAt: &past},
	}})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = r.Run(ctx) }()

	assert.Eventually(t, func() bool { return len(log.snapshot()) >= 4 }, 5*time.Second, 5*time.Millisecond)
	ids := log.snapshot()
	assert.Equal(t, []uint{1, 2, 1, 2}, ids[:4], "expired slides are skipped")
}

func TestRotator_WaitsForContent(t *testing.T) {
	log := &showLog{}
	r := NewRotator(log.show)
	r.unit = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = r.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, log.snapshot())

	r.Update(&model.DisplaySnapshot{Slides: []model.Slide{{ID: 5, Duration: 1, IsActive: true}}})
	assert.Eventually(t, func() bool { return len(log.snapshot()) > 0 }, 5*time.Second, 5*time.Millisecond)
	assert.Equal(t, uint(5), log.snapshot()[0])
}
