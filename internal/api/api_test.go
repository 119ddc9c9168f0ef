// ABOUTME: Shared test fixture for API handler tests
// ABOUTME: Wires a memory registry, fake dialer and session manager behind the mux

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/botdeck/botdeck/internal/config"
	"github.com/botdeck/botdeck/internal/gateway"
	"github.com/botdeck/botdeck/internal/session"
	"github.com/botdeck/botdeck/internal/store"
)

type sentMessage struct {
	channelID string
	content   string
}

// fakeHandle implements gateway.Handle with canned data.
type fakeHandle struct {
	mu           sync.Mutex
	ready        bool
	err          error
	guilds       []gateway.Guild
	channels     map[string][]gateway.Channel
	messages     map[string][]gateway.Message
	sent         []sentMessage
	onDisconnect func()
}

func (h *fakeHandle) IsReady() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.ready
}

func (h *fakeHandle) OnDisconnect(fn func()) {
	h.mu.Lock()
	h.onDisconnect = fn
	h.mu.Unlock()
}

func (h *fakeHandle) Destroy() {
	h.mu.Lock()
	h.ready = false
	h.mu.Unlock()
}

func (h *fakeHandle) Guilds(_ context.Context) ([]gateway.Guild, error) {
	if h.err != nil {
		return nil, h.err
	}
	return h.guilds, nil
}

func (h *fakeHandle) Channels(_ context.Context, guildID string) ([]gateway.Channel, error) {
	if h.err != nil {
		return nil, h.err
	}
	return h.channels[guildID], nil
}

func (h *fakeHandle) Messages(_ context.Context, channelID string, limit int) ([]gateway.Message, error) {
	if h.err != nil {
		return nil, h.err
	}
	msgs := h.messages[channelID]
	if len(msgs) > limit {
		msgs = msgs[:limit]
	}
	return msgs, nil
}

func (h *fakeHandle) Send(_ context.Context, channelID, content string) (*gateway.Message, error) {
	if h.err != nil {
		return nil, h.err
	}
	h.mu.Lock()
	h.sent = append(h.sent, sentMessage{channelID: channelID, content: content})
	h.mu.Unlock()
	return &gateway.Message{
		ID:        "sent-1",
		Content:   content,
		Author:    gateway.Author{ID: "bot-user", Username: "testbot", IsBot: true},
		Timestamp: time.Now().UTC(),
	}, nil
}

func (h *fakeHandle) Channel(_ context.Context, channelID string) (*gateway.Channel, error) {
	if h.err != nil {
		return nil, h.err
	}
	for _, chans := range h.channels {
		for _, c := range chans {
			if c.ID == channelID {
				return &c, nil
			}
		}
	}
	return &gateway.Channel{ID: channelID, Kind: gateway.ChannelText}, nil
}

func (h *fakeHandle) Latency() time.Duration { return 42 * time.Millisecond }

// fakeDialer hands out fakeHandles, failing with err when set.
type fakeDialer struct {
	mu     sync.Mutex
	err    error
	handle *fakeHandle
}

func (d *fakeDialer) Login(_ context.Context, _ string) (gateway.Handle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return nil, d.err
	}
	if d.handle == nil {
		d.handle = &fakeHandle{ready: true}
	}
	d.handle.ready = true
	return d.handle, nil
}

type fixture struct {
	t        *testing.T
	cfg      *config.Config
	store    store.Store
	dialer   *fakeDialer
	sessions *session.Manager
	mux      *http.ServeMux
}

func newFixture(t *testing.T, opts ...func(*config.Config)) *fixture {
	t.Helper()

	cfg := &config.Config{
		Server:   config.ServerConfig{HTTPAddr: "localhost:0"},
		Database: config.DatabaseConfig{Driver: "memory"},
		Discord: config.DiscordConfig{
			ConnectTimeout: time.Second,
			MessageLimit:   config.DefaultMessageLimit,
		},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st := store.NewMemoryStore()
	dialer := &fakeDialer{}
	sessions := session.NewManager(st, dialer, cfg.Discord.ConnectTimeout, logger)

	srv := New(cfg, st, sessions, logger)
	mux := http.NewServeMux()
	srv.RegisterRoutes(mux)

	return &fixture{
		t:        t,
		cfg:      cfg,
		store:    st,
		dialer:   dialer,
		sessions: sessions,
		mux:      mux,
	}
}

// do performs a request against the fixture mux with an optional JSON body.
func (f *fixture) do(method, path string, body any, headers ...http.Header) *httptest.ResponseRecorder {
	f.t.Helper()

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(f.t, err)
		reqBody = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reqBody)
	for _, h := range headers {
		for k, vs := range h {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}
	}
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)
	return rec
}

// decode unmarshals a recorder body into out.
func (f *fixture) decode(rec *httptest.ResponseRecorder, out any) {
	f.t.Helper()
	require.NoError(f.t, json.Unmarshal(rec.Body.Bytes(), out))
}

// createBot registers a bot through the API and returns its id.
func (f *fixture) createBot(name, token string) string {
	f.t.Helper()

	rec := f.do(http.MethodPost, "/api/bots", map[string]string{"name": name, "token": token})
	require.Equal(f.t, http.StatusCreated, rec.Code, rec.Body.String())

	var bot botResponse
	f.decode(rec, &bot)
	return bot.ID
}

// connectBot brings a bot online through the API.
func (f *fixture) connectBot(id string) {
	f.t.Helper()
	rec := f.do(http.MethodPost, "/api/bots/"+id+"/connect", nil)
	require.Equal(f.t, http.StatusOK, rec.Code, rec.Body.String())
}

// botStatus reads a bot's status back through the API.
func (f *fixture) botStatus(id string) string {
	f.t.Helper()
	rec := f.do(http.MethodGet, "/api/bots/"+id, nil)
	require.Equal(f.t, http.StatusOK, rec.Code, rec.Body.String())
	var bot botResponse
	f.decode(rec, &bot)
	return bot.Status
}
