// ABOUTME: Tests for the guild/channel/message proxy endpoints
// ABOUTME: Covers filtering, ordering, content limits and upstream error mapping

package api

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/botdeck/botdeck/internal/gateway"
)

func onlineBot(t *testing.T, f *fixture) (string, *fakeHandle) {
	t.Helper()
	id := f.createBot("proxybot", "tok")
	f.connectBot(id)
	return id, f.dialer.handle
}

func TestListGuilds(t *testing.T) {
	t.Run("not connected", func(t *testing.T) {
		f := newFixture(t)
		id := f.createBot("offline", "tok")

		rec := f.do(http.MethodGet, "/api/bots/"+id+"/guilds", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "not_connected")
	})

	t.Run("unknown bot", func(t *testing.T) {
		f := newFixture(t)
		rec := f.do(http.MethodGet, "/api/bots/missing/guilds", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("lists guilds", func(t *testing.T) {
		f := newFixture(t)
		id, handle := onlineBot(t, f)
		handle.guilds = []gateway.Guild{
			{ID: "g1", Name: "Gaming Lounge", Icon: "abc", MemberCount: 120},
			{ID: "g2", Name: "Dev Server", MemberCount: 8},
		}

		rec := f.do(http.MethodGet, "/api/bots/"+id+"/guilds", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var guilds []guildResponse
		f.decode(rec, &guilds)
		require.Len(t, guilds, 2)
		assert.Equal(t, "Gaming Lounge", guilds[0].Name)
		assert.Equal(t, 120, guilds[0].MemberCount)
	})
}

func TestListChannels(t *testing.T) {
	f := newFixture(t)
	id, handle := onlineBot(t, f)
	handle.channels = map[string][]gateway.Channel{
		"g1": {
			{ID: "c3", Name: "general", Kind: gateway.ChannelText, Position: 2},
			{ID: "c1", Name: "voice-chat", Kind: gateway.ChannelVoice, Position: 0},
			{ID: "c2", Name: "announcements", Kind: gateway.ChannelText, Position: 1},
			{ID: "c4", Name: "Category", Kind: gateway.ChannelCategory, Position: 3},
		},
	}

	rec := f.do(http.MethodGet, "/api/bots/"+id+"/guilds/g1/channels", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Voice and category channels are filtered out; the rest sort by position.
	var channels []channelResponse
	f.decode(rec, &channels)
	require.Len(t, channels, 2)
	assert.Equal(t, "announcements", channels[0].Name)
	assert.Equal(t, "general", channels[1].Name)

	t.Run("upstream not found", func(t *testing.T) {
		handle.err = gateway.ErrNotFound
		defer func() { handle.err = nil }()

		rec := f.do(http.MethodGet, "/api/bots/"+id+"/guilds/nope/channels", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "not_found")
	})
}

func TestListMessages(t *testing.T) {
	f := newFixture(t)
	id, handle := onlineBot(t, f)

	// Newest first, the way the platform returns them.
	now := time.Now().UTC()
	handle.messages = map[string][]gateway.Message{
		"c1": {
			{ID: "m3", Content: "third", Author: gateway.Author{ID: "u1", Username: "alice"}, Timestamp: now},
			{ID: "m2", Content: "second **bold**", Author: gateway.Author{ID: "u2", Username: "bob"}, Timestamp: now.Add(-time.Minute)},
			{ID: "m1", Content: "first", Author: gateway.Author{ID: "u1", Username: "alice"}, Timestamp: now.Add(-2 * time.Minute)},
		},
	}

	rec := f.do(http.MethodGet, "/api/bots/"+id+"/channels/c1/messages", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var messages []messageResponse
	f.decode(rec, &messages)
	require.Len(t, messages, 3)

	t.Run("non-text channel rejected", func(t *testing.T) {
		handle.channels = map[string][]gateway.Channel{
			"g1": {{ID: "v1", Name: "voice", Kind: gateway.ChannelVoice}},
		}
		rec := f.do(http.MethodGet, "/api/bots/"+id+"/channels/v1/messages", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "invalid_input")
	})

	// Oldest first for transcript rendering.
	assert.Equal(t, "m1", messages[0].ID)
	assert.Equal(t, "m2", messages[1].ID)
	assert.Equal(t, "m3", messages[2].ID)

	// Markdown rendered alongside the raw content.
	assert.Equal(t, "second **bold**", messages[1].Content)
	assert.Contains(t, messages[1].ContentHTML, "<strong>bold</strong>")

	assert.Equal(t, "alice", messages[0].Author.Username)
}

func TestSendMessage(t *testing.T) {
	f := newFixture(t)
	id, handle := onlineBot(t, f)

	t.Run("success", func(t *testing.T) {
		rec := f.do(http.MethodPost, "/api/bots/"+id+"/channels/c1/messages",
			map[string]string{"content": "hello there"})
		require.Equal(t, http.StatusCreated, rec.Code)

		var msg messageResponse
		f.decode(rec, &msg)
		assert.Equal(t, "hello there", msg.Content)
		assert.True(t, msg.Author.IsBot)

		require.Len(t, handle.sent, 1)
		assert.Equal(t, "c1", handle.sent[0].channelID)
		assert.Equal(t, "hello there", handle.sent[0].content)
	})

	t.Run("empty content", func(t *testing.T) {
		rec := f.do(http.MethodPost, "/api/bots/"+id+"/channels/c1/messages",
			map[string]string{"content": ""})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "invalid_input")
	})

	t.Run("content at the limit", func(t *testing.T) {
		rec := f.do(http.MethodPost, "/api/bots/"+id+"/channels/c1/messages",
			map[string]string{"content": strings.Repeat("a", 2000)})
		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("content over the limit", func(t *testing.T) {
		rec := f.do(http.MethodPost, "/api/bots/"+id+"/channels/c1/messages",
			map[string]string{"content": strings.Repeat("a", 2001)})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "invalid_input")
	})

	t.Run("validation precedes connection check", func(t *testing.T) {
		offline := f.createBot("offline", "tok2")
		rec := f.do(http.MethodPost, "/api/bots/"+offline+"/channels/c1/messages",
			map[string]string{"content": ""})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "invalid_input")
	})

	t.Run("non-text channel rejected", func(t *testing.T) {
		handle.channels = map[string][]gateway.Channel{
			"g1": {{ID: "v1", Name: "voice", Kind: gateway.ChannelVoice}},
		}
		defer func() { handle.channels = nil }()
		sends := len(handle.sent)

		rec := f.do(http.MethodPost, "/api/bots/"+id+"/channels/v1/messages",
			map[string]string{"content": "hi"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "invalid_input")
		assert.Len(t, handle.sent, sends, "nothing must be sent to a voice channel")
	})

	t.Run("missing permissions", func(t *testing.T) {
		handle.err = gateway.ErrForbidden
		defer func() { handle.err = nil }()

		rec := f.do(http.MethodPost, "/api/bots/"+id+"/channels/c1/messages",
			map[string]string{"content": "hi"})
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Contains(t, rec.Body.String(), "forbidden")
	})

	t.Run("not connected", func(t *testing.T) {
		offline := f.createBot("offline2", "tok3")
		rec := f.do(http.MethodPost, "/api/bots/"+offline+"/channels/c1/messages",
			map[string]string{"content": "hi"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "not_connected")
	})
}
