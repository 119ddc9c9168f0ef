// ABOUTME: discordgo-backed implementation of the gateway Dialer and Handle
// ABOUTME: Translates Discord REST/gateway calls and errors into gateway types

package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/botdeck/botdeck/internal/gateway"
)

// guildPageSize is the maximum page size Discord allows for the user
// guilds endpoint.
const guildPageSize = 200

// Adapter implements gateway.Dialer using the Discord gateway and REST API.
type Adapter struct {
	logger *slog.Logger
}

// NewAdapter creates a Discord adapter.
func NewAdapter(logger *slog.Logger) *Adapter {
	return &Adapter{logger: logger}
}

// Login opens a gateway connection with the given bot token and blocks
// until the session reports ready or the context is done.
func (a *Adapter) Login(ctx context.Context, credential string) (gateway.Handle, error) {
	sess, err := discordgo.New("Bot " + credential)
	if err != nil {
		return nil, fmt.Errorf("creating discord session: %w", err)
	}

	sess.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMembers |
		discordgo.IntentMessageContent

	// The session manager owns reconnect policy: a dropped connection must
	// surface as offline, not silently heal behind the manager's back.
	sess.ShouldReconnectOnError = false

	h := &handle{sess: sess, logger: a.logger}

	ready := make(chan struct{})
	sess.AddHandlerOnce(func(_ *discordgo.Session, _ *discordgo.Ready) {
		h.ready.Store(true)
		close(ready)
	})
	sess.AddHandler(func(_ *discordgo.Session, _ *discordgo.Disconnect) {
		h.handleDisconnect()
	})

	if err := sess.Open(); err != nil {
		return nil, classifyLogin(err)
	}

	select {
	case <-ready:
	case <-ctx.Done():
		_ = sess.Close()
		return nil, fmt.Errorf("waiting for ready: %w", ctx.Err())
	}

	return h, nil
}

// handle wraps a single live discordgo session.
type handle struct {
	sess   *discordgo.Session
	logger *slog.Logger

	ready       atomic.Bool
	destroyed   atomic.Bool
	destroyOnce sync.Once

	mu           sync.Mutex
	onDisconnect func()
	dropped      bool
	notified     bool
}

// IsReady reports whether the gateway connection is established.
func (h *handle) IsReady() bool {
	return h.ready.Load()
}

// OnDisconnect registers the disconnect callback. If the gateway already
// dropped before registration, the callback fires immediately so the drop is
// never lost.
func (h *handle) OnDisconnect(fn func()) {
	h.mu.Lock()
	h.onDisconnect = fn
	fire := fn != nil && h.dropped && !h.notified && !h.destroyed.Load()
	if fire {
		h.notified = true
	}
	h.mu.Unlock()
	if fire {
		fn()
	}
}

// handleDisconnect fires the registered callback at most once, unless the
// handle was explicitly destroyed. A drop arriving before any callback is
// registered is remembered, not swallowed.
func (h *handle) handleDisconnect() {
	h.ready.Store(false)
	if h.destroyed.Load() {
		return
	}
	h.mu.Lock()
	h.dropped = true
	fn := h.onDisconnect
	if fn == nil || h.notified {
		h.mu.Unlock()
		return
	}
	h.notified = true
	h.mu.Unlock()
	fn()
}

// Guilds fetches the guilds the bot is a member of, with member counts.
func (h *handle) Guilds(ctx context.Context) ([]gateway.Guild, error) {
	userGuilds, err := h.sess.UserGuilds(guildPageSize, "", "", true, discordgo.WithContext(ctx))
	if err != nil {
		return nil, classifyREST(err)
	}

	guilds := make([]gateway.Guild, 0, len(userGuilds))
	for _, g := range userGuilds {
		guilds = append(guilds, gateway.Guild{
			ID:          g.ID,
			Name:        g.Name,
			Icon:        g.Icon,
			MemberCount: g.ApproximateMemberCount,
		})
	}
	return guilds, nil
}

// Channels fetches all channels of a guild.
func (h *handle) Channels(ctx context.Context, guildID string) ([]gateway.Channel, error) {
	chans, err := h.sess.GuildChannels(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, classifyREST(err)
	}

	channels := make([]gateway.Channel, 0, len(chans))
	for _, c := range chans {
		channels = append(channels, convertChannel(c))
	}
	return channels, nil
}

// Channel fetches a single channel by id.
func (h *handle) Channel(ctx context.Context, channelID string) (*gateway.Channel, error) {
	c, err := h.sess.Channel(channelID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, classifyREST(err)
	}
	ch := convertChannel(c)
	return &ch, nil
}

// Messages fetches up to limit recent messages, newest first (Discord's
// native order).
func (h *handle) Messages(ctx context.Context, channelID string, limit int) ([]gateway.Message, error) {
	msgs, err := h.sess.ChannelMessages(channelID, limit, "", "", "", discordgo.WithContext(ctx))
	if err != nil {
		return nil, classifyREST(err)
	}

	messages := make([]gateway.Message, 0, len(msgs))
	for _, m := range msgs {
		messages = append(messages, convertMessage(m))
	}
	return messages, nil
}

// Send posts a message to a channel.
func (h *handle) Send(ctx context.Context, channelID, content string) (*gateway.Message, error) {
	m, err := h.sess.ChannelMessageSend(channelID, content, discordgo.WithContext(ctx))
	if err != nil {
		return nil, classifyREST(err)
	}
	msg := convertMessage(m)
	return &msg, nil
}

// Latency reports the heartbeat round-trip time. This is a local read;
// no network call is made.
func (h *handle) Latency() time.Duration {
	return h.sess.HeartbeatLatency()
}

// Destroy closes the gateway connection without firing the disconnect
// callback. Idempotent.
func (h *handle) Destroy() {
	h.destroyOnce.Do(func() {
		h.destroyed.Store(true)
		h.ready.Store(false)
		if err := h.sess.Close(); err != nil {
			h.logger.Debug("closing discord session", "error", err)
		}
	})
}

// convertChannel maps a discordgo channel to the gateway projection.
func convertChannel(c *discordgo.Channel) gateway.Channel {
	return gateway.Channel{
		ID:       c.ID,
		Name:     c.Name,
		Kind:     convertChannelKind(c.Type),
		ParentID: c.ParentID,
		Position: c.Position,
	}
}

func convertChannelKind(t discordgo.ChannelType) gateway.ChannelKind {
	switch t {
	case discordgo.ChannelTypeGuildText:
		return gateway.ChannelText
	case discordgo.ChannelTypeGuildVoice:
		return gateway.ChannelVoice
	case discordgo.ChannelTypeGuildCategory:
		return gateway.ChannelCategory
	default:
		return gateway.ChannelOther
	}
}

// convertMessage maps a discordgo message to the gateway projection,
// dropping the adapter-internal fields the console does not surface.
func convertMessage(m *discordgo.Message) gateway.Message {
	msg := gateway.Message{
		ID:        m.ID,
		Content:   m.Content,
		Timestamp: m.Timestamp,
	}
	if m.Author != nil {
		msg.Author = gateway.Author{
			ID:       m.Author.ID,
			Username: m.Author.Username,
			Avatar:   m.Author.Avatar,
			IsBot:    m.Author.Bot,
		}
	}
	for _, att := range m.Attachments {
		msg.Attachments = append(msg.Attachments, gateway.Attachment{
			ID:       att.ID,
			URL:      att.URL,
			Filename: att.Filename,
		})
	}
	return msg
}

// classifyLogin maps a login failure onto the gateway error taxonomy.
// Discord rejects bad tokens either with an HTTP 401 on the gateway
// endpoint or with close code 4004 during the identify handshake.
func classifyLogin(err error) error {
	if errors.Is(err, discordgo.ErrUnauthorized) {
		return fmt.Errorf("%w: %v", gateway.ErrAuthFailed, err)
	}
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Response != nil && restErr.Response.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%w: %v", gateway.ErrAuthFailed, err)
	}
	msg := err.Error()
	if strings.Contains(msg, "4004") || strings.Contains(msg, "Authentication failed") {
		return fmt.Errorf("%w: %v", gateway.ErrAuthFailed, err)
	}
	return err
}

// classifyREST maps a REST failure onto the gateway error taxonomy.
func classifyREST(err error) error {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) {
		return err
	}

	if restErr.Message != nil {
		switch restErr.Message.Code {
		case discordgo.ErrCodeUnknownChannel, discordgo.ErrCodeUnknownGuild, discordgo.ErrCodeMissingAccess:
			return fmt.Errorf("%w: %s", gateway.ErrNotFound, restErr.Message.Message)
		case discordgo.ErrCodeMissingPermissions:
			return fmt.Errorf("%w: %s", gateway.ErrForbidden, restErr.Message.Message)
		}
	}

	if restErr.Response != nil {
		switch restErr.Response.StatusCode {
		case http.StatusNotFound:
			return fmt.Errorf("%w: %v", gateway.ErrNotFound, err)
		case http.StatusForbidden:
			return fmt.Errorf("%w: %v", gateway.ErrForbidden, err)
		case http.StatusUnauthorized:
			return fmt.Errorf("%w: %v", gateway.ErrAuthFailed, err)
		}
	}
	return err
}
