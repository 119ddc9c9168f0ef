// ABOUTME: Capability interface for the remote chat platform client.
// ABOUTME: Defines Dialer/Handle contracts and the projected remote entity types.

package gateway

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors used to classify adapter failures. Implementations wrap
// the underlying client error with one of these so callers can map them to
// a response without inspecting platform-specific types.
var (
	// ErrAuthFailed indicates the platform rejected the bot credential.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrNotFound indicates the requested guild or channel does not exist
	// or is not visible to the bot.
	ErrNotFound = errors.New("not found upstream")

	// ErrForbidden indicates the bot lacks permission for the operation.
	ErrForbidden = errors.New("permission denied")
)

// ChannelKind identifies the type of a channel as reported by the platform.
type ChannelKind int

// Channel kinds. Only text channels are surfaced by the console.
const (
	ChannelText ChannelKind = iota
	ChannelVoice
	ChannelCategory
	ChannelOther
)

// Guild is a read-through projection of a server the bot belongs to.
// It is fetched on demand and never cached by this system.
type Guild struct {
	ID          string
	Name        string
	Icon        string
	MemberCount int
}

// Channel is a read-through projection of a guild channel.
type Channel struct {
	ID       string
	Name     string
	Kind     ChannelKind
	ParentID string
	Position int
}

// Author identifies the sender of a message.
type Author struct {
	ID       string
	Username string
	Avatar   string
	IsBot    bool
}

// Attachment is a file attached to a message.
type Attachment struct {
	ID       string
	URL      string
	Filename string
}

// Message is a read-through projection of a channel message.
type Message struct {
	ID          string
	Content     string
	Author      Author
	Timestamp   time.Time
	Attachments []Attachment
}

// Dialer opens authenticated connections to the chat platform.
// The production implementation lives in internal/discord; tests inject fakes.
type Dialer interface {
	// Login authenticates with the given credential and establishes a live
	// gateway connection. It blocks until the connection is ready or the
	// context is done. On failure the returned error wraps ErrAuthFailed
	// when the credential was rejected.
	Login(ctx context.Context, credential string) (Handle, error)
}

// Handle is a live connection to the platform for a single bot.
// All data methods perform their own network I/O against the platform;
// nothing is cached on this side.
type Handle interface {
	// IsReady reports whether the connection is established and usable.
	IsReady() bool

	// OnDisconnect registers a callback invoked once when the underlying
	// connection drops for any reason other than an explicit Destroy.
	OnDisconnect(fn func())

	// Guilds returns the guilds the bot is a member of.
	Guilds(ctx context.Context) ([]Guild, error)

	// Channels returns all channels of a guild, unfiltered and unsorted.
	Channels(ctx context.Context, guildID string) ([]Channel, error)

	// Messages returns up to limit recent messages from a channel in the
	// platform's native order (newest first).
	Messages(ctx context.Context, channelID string, limit int) ([]Message, error)

	// Send posts a message to a channel and returns the created message.
	Send(ctx context.Context, channelID, content string) (*Message, error)

	// Channel returns a single channel by id.
	Channel(ctx context.Context, channelID string) (*Channel, error)

	// Latency reports the current heartbeat round-trip time.
	Latency() time.Duration

	// Destroy tears down the connection. It is idempotent and does not
	// fire the OnDisconnect callback.
	Destroy()
}
