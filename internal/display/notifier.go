package display

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"signage/internal/cache"
	"signage/internal/logger"
	"signage/internal/metrics"
)

const (
	versionKeyPrefix = "display:version:"
	updatesChannel   = "display:updates"
)

// update is published on the updates channel for other instances.
type update struct {
	Tenant  string `json:"tenant"`
	Version int64  `json:"version"`
	Origin  string `json:"origin"`
}

// Notifier keeps a per-tenant content version and fans changes out to the
// local hub and, through Redis, to other instances. Versions are unix
// milliseconds and only move forward.
type Notifier struct {
	cache  *cache.Client
	hub    *Hub
	origin string
	now    func() time.Time

	mu       sync.Mutex
	versions map[string]int64
}

// NewNotifier creates a notifier. cache may be nil for a single instance.
func NewNotifier(cache *cache.Client, hub *Hub) *Notifier {
	return &Notifier{
		cache:    cache,
		hub:      hub,
		origin:   uuid.NewString(),
		now:      time.Now,
		versions: make(map[string]int64),
	}
}

// Touch records that tenant's content changed and tells its displays.
// Redis failures are logged; local displays are always told. The change is
// already committed, so a cancelled ctx does not stop the fan-out.
func (n *Notifier) Touch(ctx context.Context, tenant string) {
	ctx = context.WithoutCancel(ctx)
	version := n.bump(tenant, n.now().UnixMilli())

	if err := n.cache.Set(ctx, versionKeyPrefix+tenant, []byte(strconv.FormatInt(version, 10)), 0); err != nil {
		logger.Warningf("store display version for %s: %v", tenant, err)
	}
	if payload, err := json.Marshal(update{Tenant: tenant, Version: version, Origin: n.origin}); err == nil {
		if err := n.cache.Publish(ctx, updatesChannel, payload); err != nil {
			logger.Warningf("publish display update for %s: %v", tenant, err)
		}
	}

	metrics.DisplayInvalidated("local")
	n.broadcast(tenant, version)
}

// Version returns the newest known version of tenant's content, or 0 if it
// never changed since start.
func (n *Notifier) Version(ctx context.Context, tenant string) int64 {
	n.mu.Lock()
	version := n.versions[tenant]
	n.mu.Unlock()

	if data, _ := n.cache.Get(ctx, versionKeyPrefix+tenant); data != nil {
		if remote, err := strconv.ParseInt(string(data), 10, 64); err == nil && remote > version {
			version = n.bump(tenant, remote)
		}
	}
	return version
}

// Run relays updates published by other instances to the local hub until
// ctx ends. Without Redis it only waits for ctx.
func (n *Notifier) Run(ctx context.Context) error {
	sub := n.cache.Subscribe(ctx, updatesChannel)
	if sub == nil {
		<-ctx.Done()
		return nil
	}
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			n.handleRemote(ctx, []byte(msg.Payload))
		}
	}
}

func (n *Notifier) handleRemote(ctx context.Context, payload []byte) {
	var u update
	if err := json.Unmarshal(payload, &u); err != nil {
		logger.Warningf("malformed display update: %v", err)
		return
	}
	if u.Origin == n.origin || u.Tenant == "" {
		return
	}
	version := n.bump(u.Tenant, u.Version)
	metrics.DisplayInvalidated("remote")
	n.broadcast(u.Tenant, version)
}

// bump raises tenant's version to at least candidate and returns the result.
// A local change always produces a strictly newer version.
func (n *Notifier) bump(tenant string, candidate int64) int64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	current := n.versions[tenant]
	if candidate <= current {
		candidate = current + 1
	}
	n.versions[tenant] = candidate
	return candidate
}

func (n *Notifier) broadcast(tenant string, version int64) {
	if n.hub == nil {
		return
	}
	n.hub.Broadcast(Message{Type: MessageInvalidate, Tenant: tenant, Version: version})
}
