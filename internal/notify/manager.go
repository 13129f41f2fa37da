// Package notify relays Copperx deposit events, delivered over Pusher private channels,
// to the chat of the user who owns the organization.
package notify

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"copperx-bot/internal/log"
)

// Options configures the Pusher connection.
type Options struct {
	Key     string
	Cluster string
	// Endpoint overrides the websocket base URL (e.g. ws://127.0.0.1:1234); the app path is appended.
	Endpoint string
}

// URL returns the Pusher websocket URL for the app key, speaking protocol 7.
func (o Options) URL() string {
	base := strings.TrimSuffix(o.Endpoint, "/")
	if base == "" {
		cluster := o.Cluster
		if cluster == "" {
			cluster = "mt1"
		}
		base = fmt.Sprintf("wss://ws-%s.pusher.com", cluster)
	}
	q := url.Values{}
	q.Set("protocol", "7")
	q.Set("client", "copperx-bot")
	q.Set("version", "1.0")
	return base + "/app/" + url.PathEscape(o.Key) + "?" + q.Encode()
}

// Manager owns at most one deposit subscription per identity.
type Manager struct {
	opts   Options
	auth   Authorizer
	sender Sender
	dialer *websocket.Dialer

	ctx    context.Context
	cancel context.CancelFunc

	mu   sync.Mutex
	subs map[int64]*handle
	wg   sync.WaitGroup
}

type handle struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// NewManager returns a Manager. A Manager with an empty key is disabled: Start is a no-op.
func NewManager(opts Options, auth Authorizer, sender Sender) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		opts:   opts,
		auth:   auth,
		sender: sender,
		dialer: &websocket.Dialer{HandshakeTimeout: 15 * time.Second},
		ctx:    ctx,
		cancel: cancel,
		subs:   make(map[int64]*handle),
	}
}

// Enabled reports whether notifications are configured.
func (m *Manager) Enabled() bool {
	return m != nil && strings.TrimSpace(m.opts.Key) != ""
}

// Start subscribes identity to its organization's deposit channel, replacing any previous subscription.
func (m *Manager) Start(identity int64, token, orgID string) {
	if !m.Enabled() || orgID == "" {
		return
	}
	m.Stop(identity)

	ctx, cancel := context.WithCancel(m.ctx)
	ctx = log.WithContext(ctx, func(c zerolog.Context) zerolog.Context {
		return c.Int64("identity", identity).Str("org_id", orgID)
	})
	h := &handle{cancel: cancel, done: make(chan struct{})}
	sub := &subscription{
		identity: identity,
		token:    token,
		orgID:    orgID,
		url:      m.opts.URL(),
		dialer:   m.dialer,
		auth:     m.auth,
		sender:   m.sender,
	}

	m.mu.Lock()
	m.subs[identity] = h
	m.wg.Add(1)
	m.mu.Unlock()

	go func() {
		defer m.wg.Done()
		defer close(h.done)
		sub.run(ctx)
	}()
}

// Stop cancels the identity's subscription and waits for it to exit. No-op when none exists.
func (m *Manager) Stop(identity int64) {
	if m == nil {
		return
	}
	m.mu.Lock()
	h, ok := m.subs[identity]
	delete(m.subs, identity)
	m.mu.Unlock()
	if !ok {
		return
	}
	h.cancel()
	<-h.done
}

// Active reports whether identity has a running subscription.
func (m *Manager) Active(identity int64) bool {
	if m == nil {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.subs[identity]
	return ok
}

// Close stops every subscription and waits for them to exit.
func (m *Manager) Close() {
	if m == nil {
		return
	}
	m.cancel()
	m.mu.Lock()
	m.subs = make(map[int64]*handle)
	m.mu.Unlock()
	m.wg.Wait()
}
