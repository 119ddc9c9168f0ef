// ABOUTME: Store interface and data types for bot registry persistence
// ABOUTME: Defines BotRecord, connection states and the Store interface

package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a requested bot does not exist
var ErrNotFound = errors.New("not found")

// ConnectionState describes whether a bot currently has a live gateway session.
type ConnectionState string

// Connection states. Connecting is transient and only held while an
// asynchronous login is in flight.
const (
	StateOffline    ConnectionState = "offline"
	StateConnecting ConnectionState = "connecting"
	StateOnline     ConnectionState = "online"
)

// BotRecord is a registered bot. Token is the platform credential and must
// never be returned across the HTTP boundary or written to logs.
type BotRecord struct {
	ID    string
	Name  string
	Token string
	State ConnectionState
}

// BotUpdate holds partial updates for a bot record. Nil fields are left
// unchanged.
type BotUpdate struct {
	Name  *string
	Token *string
	State *ConnectionState
}

// Store defines the interface for bot registry persistence.
// Input validation (non-empty name/token) is the caller's responsibility.
type Store interface {
	// ListBots returns all registered bots.
	ListBots(ctx context.Context) ([]*BotRecord, error)

	// GetBot returns a bot by id, or ErrNotFound.
	GetBot(ctx context.Context, id string) (*BotRecord, error)

	// CreateBot inserts a new bot record. The caller assigns the id and
	// initial state.
	CreateBot(ctx context.Context, bot *BotRecord) error

	// UpdateBot applies a partial update and returns the updated record,
	// or ErrNotFound.
	UpdateBot(ctx context.Context, id string, upd BotUpdate) (*BotRecord, error)

	// DeleteBot removes a bot record. Returns ErrNotFound if no such bot.
	DeleteBot(ctx context.Context, id string) error

	// Close releases any resources held by the store
	Close() error
}
