package display

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHubServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tenant := r.URL.Query().Get("tenant")
		_ = hub.Serve(r.Context(), w, r, tenant, Message{Type: MessageHello, Tenant: tenant})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, tenant string) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?tenant=" + tenant
	c, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close(websocket.StatusNormalClosure, "") })
	return c
}

func readMessage(t *testing.T, c *websocket.Conn, timeout time.Duration) (Message, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	_, data, err := c.Read(ctx)
	if err != nil {
		return Message{}, err
	}
	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg, nil
}

func TestHub_BroadcastIsTenantScoped(t *testing.T) {
	hub := NewHub()
	srv := newHubServer(t, hub)
	notifier := NewNotifier(nil, hub)

	mine := dial(t, srv, "t1")
	theirs := dial(t, srv, "t2")

	hello, err := readMessage(t, mine, 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, MessageHello, hello.Type)
	_, err = readMessage(t, theirs, 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, 2, hub.ConnectionCount())

	notifier.Touch(context.Background(), "t1")

	msg, err := readMessage(t, mine, 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, MessageInvalidate, msg.Type)
	assert.Equal(t, "t1", msg.Tenant)
	assert.Equal(t, notifier.Version(context.Background(), "t1"), msg.Version)

	_, err = readMessage(t, theirs, 200*time.Millisecond)
	assert.Error(t, err, "other tenants are not told")
}

func TestHub_DropsClosedConnections(t *testing.T) {
	hub := NewHub()
	srv := newHubServer(t, hub)

	c := dial(t, srv, "t1")
	_, err := readMessage(t, c, 5*time.Second)
	require.NoError(t, err)
	require.NoError(t, c.Close(websocket.StatusNormalClosure, "bye"))

	assert.Eventually(t, func() bool { return hub.ConnectionCount() == 0 }, 5*time.Second, 10*time.Millisecond)
	hub.Broadcast(Message{Type: MessageInvalidate, Tenant: "t1"})
}

func TestNotifier_TouchSurvivesCancelledRequest(t *testing.T) {
	hub := NewHub()
	srv := newHubServer(t, hub)
	notifier := NewNotifier(nil, hub)

	first := dial(t, srv, "t1")
	second := dial(t, srv, "t1")
	for _, c := range []*websocket.Conn{first, second} {
		_, err := readMessage(t, c, 5*time.Second)
		require.NoError(t, err)
	}
	require.Equal(t, 2, hub.ConnectionCount())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	notifier.Touch(ctx, "t1")

	for _, c := range []*websocket.Conn{first, second} {
		msg, err := readMessage(t, c, 5*time.Second)
		require.NoError(t, err)
		assert.Equal(t, MessageInvalidate, msg.Type)
	}
	assert.Equal(t, 2, hub.ConnectionCount())
}

func TestHub_BroadcastDoesNotWaitForSlowDisplays(t *testing.T) {
	hub := NewHub()
	srv := newHubServer(t, hub)

	// Never read past the hello, so queued frames pile up.
	c := dial(t, srv, "t1")
	_, err := readMessage(t, c, 5*time.Second)
	require.NoError(t, err)

	start := time.Now()
	for i := 0; i < 100; i++ {
		hub.Broadcast(Message{Type: MessageInvalidate, Tenant: "t1", Version: int64(i)})
	}
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, 1, hub.ConnectionCount())
}

func TestNotifier_VersionsMoveForward(t *testing.T) {
	n := NewNotifier(nil, nil)
	fixed := time.UnixMilli(1_700_000_000_000)
	n.now = func() time.Time { return fixed }
	ctx := context.Background()

	assert.Zero(t, n.Version(ctx, "t1"))

	n.Touch(ctx, "t1")
	first := n.Version(ctx, "t1")
	assert.Equal(t, fixed.UnixMilli(), first)

	n.Touch(ctx, "t1")
	assert.Greater(t, n.Version(ctx, "t1"), first, "two changes in the same millisecond still differ")
	assert.Zero(t, n.Version(ctx, "t2"))
}

func TestNotifier_HandleRemote(t *testing.T) {
	n := NewNotifier(nil, nil)
	ctx := context.Background()

	own, err := json.Marshal(update{Tenant: "t1", Version: 99, Origin: n.origin})
	require.NoError(t, err)
	n.handleRemote(ctx, own)
	assert.Zero(t, n.Version(ctx, "t1"), "own updates are ignored")

	remote, err := json.Marshal(update{Tenant: "t1", Version: 42, Origin: "other"})
	require.NoError(t, err)
	n.handleRemote(ctx, remote)
	assert.Equal(t, int64(42), n.Version(ctx, "t1"))

	n.handleRemote(ctx, []byte("not json"))
	assert.Equal(t, int64(42), n.Version(ctx, "t1"))
}

func TestNotifier_RunWithoutRedisStopsWithContext(t *testing.T) {
	n := NewNotifier(nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- n.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
