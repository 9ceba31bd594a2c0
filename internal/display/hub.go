// Package display tells connected displays when their content changed.
package display

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/goccy/go-json"

	"signage/internal/logger"
	"signage/internal/metrics"
)

// Message types sent to display clients.
const (
	MessageHello      = "hello"
	MessageInvalidate = "invalidate"
)

const (
	writeTimeout = 5 * time.Second
	// sendQueueSize bounds pending messages per display. Invalidations
	// coalesce on the client, so a full queue drops the newest one.
	sendQueueSize = 4
)

// Message is the envelope of every websocket frame sent to displays.
type Message struct {
	Type    string `json:"type"`
	Tenant  string `json:"tenant"`
	Version int64  `json:"version"`
}

type conn struct {
	ws     *websocket.Conn
	tenant string
	send   chan Message
	cancel context.CancelFunc
}

// Hub holds open display connections grouped by tenant.
type Hub struct {
	mu    sync.RWMutex
	conns map[*conn]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{conns: make(map[*conn]struct{})}
}

// Serve upgrades the request, sends hello and keeps the connection registered
// for tenant until the client goes away or ctx ends. It blocks for the
// lifetime of the connection.
func (h *Hub) Serve(ctx context.Context, w http.ResponseWriter, r *http.Request, tenant string, hello Message) error {
	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // origin checks are done by the CORS middleware
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	c := &conn{ws: ws, tenant: tenant, send: make(chan Message, sendQueueSize), cancel: cancel}
	h.add(c)
	defer func() {
		h.remove(c)
		_ = ws.Close(websocket.StatusNormalClosure, "")
	}()

	if err := h.write(ctx, c, hello); err != nil {
		return nil
	}
	// Messages queued before this point are delivered after the hello.
	go h.writeLoop(ctx, c)

	// Displays never send anything meaningful; reading only detects disconnects.
	for {
		if _, _, err := ws.Read(ctx); err != nil {
			return nil
		}
	}
}

// Broadcast queues msg for every connection of msg.Tenant and never blocks.
// Each connection is written by its own goroutine; one that cannot be
// written is dropped there.
func (h *Hub) Broadcast(msg Message) {
	h.mu.RLock()
	targets := make([]*conn, 0, len(h.conns))
	for c := range h.conns {
		if c.tenant == msg.Tenant {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range targets {
		select {
		case c.send <- msg:
		default:
			logger.Debugf("display send queue full for %s, dropping %s", c.tenant, msg.Type)
		}
	}
}

// writeLoop delivers queued messages on the connection's own context.
func (h *Hub) writeLoop(ctx context.Context, c *conn) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-c.send:
			if err := h.write(ctx, c, msg); err != nil {
				logger.Debugf("display websocket write failed: %v", err)
				h.remove(c)
				return
			}
		}
	}
}

// ConnectionCount returns the number of open connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Close disconnects every display.
func (h *Hub) Close() {
	h.mu.RLock()
	all := make([]*conn, 0, len(h.conns))
	for c := range h.conns {
		all = append(all, c)
	}
	h.mu.RUnlock()
	for _, c := range all {
		h.remove(c)
	}
}

func (h *Hub) write(ctx context.Context, c *conn, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return c.ws.Write(ctx, websocket.MessageText, data)
}

func (h *Hub) add(c *conn) {
	h.mu.Lock()
	h.conns[c] = struct{}{}
	h.mu.Unlock()
	metrics.DisplayConnected(1)
}

func (h *Hub) remove(c *conn) {
	h.mu.Lock()
	_, ok := h.conns[c]
	delete(h.conns, c)
	h.mu.Unlock()
	if ok {
		c.cancel()
		metrics.DisplayConnected(-1)
	}
}
