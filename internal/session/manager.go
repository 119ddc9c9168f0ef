// ABOUTME: Manages live gateway sessions, one per bot id, and owns state transitions.
// ABOUTME: Coalesces concurrent connects and reacts to adapter-pushed disconnects.

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/botdeck/botdeck/internal/gateway"
	"github.com/botdeck/botdeck/internal/store"
)

// ErrNotConnected indicates an operation required an online session that
// isn't present.
var ErrNotConnected = errors.New("bot is not connected")

// ErrConnectFailed indicates a login attempt failed for a reason other than
// a rejected credential (network error, timeout).
var ErrConnectFailed = errors.New("connect failed")

// DefaultConnectTimeout bounds a login attempt so a bot cannot stick in the
// connecting state forever.
const DefaultConnectTimeout = 15 * time.Second

// Session is the live, process-lifetime representation of one bot's
// connection to the platform.
type Session struct {
	BotID     string
	Handle    gateway.Handle
	StartedAt time.Time
}

// Uptime returns how long the session has been alive.
func (s *Session) Uptime() time.Duration {
	return time.Since(s.StartedAt)
}

// attempt tracks an in-flight login so concurrent connects for the same bot
// collapse to a single attempt.
type attempt struct {
	done chan struct{}
	err  error
}

// Manager is the sole authority on which bots are connected and the sole
// holder of connection handles. At most one Session exists per bot id.
type Manager struct {
	registry store.Store
	dialer   gateway.Dialer
	timeout  time.Duration
	logger   *slog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
	inflight map[string]*attempt
}

// NewManager creates a session manager backed by the given registry and
// dialer. A non-positive timeout falls back to DefaultConnectTimeout.
func NewManager(registry store.Store, dialer gateway.Dialer, timeout time.Duration, logger *slog.Logger) *Manager {
	if timeout <= 0 {
		timeout = DefaultConnectTimeout
	}
	return &Manager{
		registry: registry,
		dialer:   dialer,
		timeout:  timeout,
		logger:   logger,
		sessions: make(map[string]*Session),
		inflight: make(map[string]*attempt),
	}
}

// Connect establishes a gateway session for the bot. It is idempotent: a
// bot with a live, ready session returns success immediately, and a connect
// racing an in-flight attempt waits for that attempt's outcome instead of
// starting a second login.
//
// Returns store.ErrNotFound for an unknown bot, gateway.ErrAuthFailed for a
// rejected credential, and ErrConnectFailed for anything else.
func (m *Manager) Connect(ctx context.Context, botID string) error {
	bot, err := m.registry.GetBot(ctx, botID)
	if err != nil {
		return err
	}

	m.mu.Lock()
	if sess, ok := m.sessions[botID]; ok && sess.Handle.IsReady() {
		m.mu.Unlock()
		return nil
	}
	if a, ok := m.inflight[botID]; ok {
		m.mu.Unlock()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-a.done:
			return a.err
		}
	}
	a := &attempt{done: make(chan struct{})}
	m.inflight[botID] = a
	m.mu.Unlock()

	a.err = m.dial(ctx, bot)

	m.mu.Lock()
	delete(m.inflight, botID)
	m.mu.Unlock()
	close(a.done)

	return a.err
}

// dial performs the actual login and state bookkeeping for Connect.
func (m *Manager) dial(ctx context.Context, bot *store.BotRecord) error {
	m.setState(bot.ID, store.StateConnecting)

	dialCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	handle, err := m.dialer.Login(dialCtx, bot.Token)
	if err != nil {
		m.setState(bot.ID, store.StateOffline)
		if errors.Is(err, gateway.ErrAuthFailed) {
			m.logger.Warn("login rejected", "bot_id", bot.ID)
			return err
		}
		m.logger.Error("login failed", "bot_id", bot.ID, "error", err)
		return fmt.Errorf("%w: %v", ErrConnectFailed, err)
	}

	sess := &Session{
		BotID:     bot.ID,
		Handle:    handle,
		StartedAt: time.Now(),
	}
	m.mu.Lock()
	prev := m.sessions[bot.ID]
	m.sessions[bot.ID] = sess
	m.mu.Unlock()

	// A stale, no-longer-ready session may still occupy the slot; its
	// connection must not outlive the replacement.
	if prev != nil {
		prev.Handle.Destroy()
	}

	handle.OnDisconnect(func() {
		m.handleRemoteDisconnect(bot.ID)
	})

	// The bot may have been deleted while the login was in flight; in that
	// case tear the fresh session straight back down.
	if _, err := m.registry.UpdateBot(context.Background(), bot.ID, store.BotUpdate{State: statePtr(store.StateOnline)}); err != nil {
		m.logger.Warn("bot vanished during connect, destroying session", "bot_id", bot.ID, "error", err)
		m.removeSession(bot.ID)
		return fmt.Errorf("%w: %v", ErrConnectFailed, err)
	}

	m.logger.Info("bot connected", "bot_id", bot.ID, "name", bot.Name)
	return nil
}

// Disconnect tears down the bot's session if one exists and marks the bot
// offline. It is idempotent and safe to call for unknown or already-offline
// bots.
func (m *Manager) Disconnect(ctx context.Context, botID string) {
	if removed := m.removeSession(botID); removed {
		m.logger.Info("bot disconnected", "bot_id", botID)
	}
	m.setState(botID, store.StateOffline)
}

// handleRemoteDisconnect reacts to a disconnect pushed by the adapter,
// producing the same end state as an explicit Disconnect.
func (m *Manager) handleRemoteDisconnect(botID string) {
	if removed := m.removeSession(botID); removed {
		m.logger.Warn("gateway connection lost", "bot_id", botID)
	}
	m.setState(botID, store.StateOffline)
}

// removeSession removes and destroys the session for a bot, if present.
func (m *Manager) removeSession(botID string) bool {
	m.mu.Lock()
	sess, ok := m.sessions[botID]
	delete(m.sessions, botID)
	m.mu.Unlock()

	if !ok {
		return false
	}
	sess.Handle.Destroy()
	return true
}

// Session returns the live session for a bot, or false if none exists.
func (m *Manager) Session(botID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[botID]
	return sess, ok
}

// Online reports whether the bot has a live, ready session.
func (m *Manager) Online(botID string) bool {
	sess, ok := m.Session(botID)
	return ok && sess.Handle.IsReady()
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// CloseAll destroys every live session and marks the bots offline.
// Called during server shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	for _, id := range ids {
		m.Disconnect(context.Background(), id)
	}
}

// setState records a connection state in the registry. A missing bot is not
// an error here: deletion tears sessions down first, so the record may
// legitimately be gone by the time the state write lands.
func (m *Manager) setState(botID string, state store.ConnectionState) {
	_, err := m.registry.UpdateBot(context.Background(), botID, store.BotUpdate{State: &state})
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		m.logger.Error("failed to update bot state", "bot_id", botID, "state", state, "error", err)
	}
}

func statePtr(s store.ConnectionState) *store.ConnectionState {
	return &s
}
