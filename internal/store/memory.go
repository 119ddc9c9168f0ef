// ABOUTME: In-memory implementation of the bot registry Store interface
// ABOUTME: Volatile map keyed by bot id, guarded by a RWMutex

package store

import (
	"context"
	"sync"
)

// MemoryStore implements Store with a process-local map. All records are
// lost on restart.
type MemoryStore struct {
	mu   sync.RWMutex
	bots map[string]*BotRecord
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		bots: make(map[string]*BotRecord),
	}
}

// ListBots returns all registered bots.
func (s *MemoryStore) ListBots(ctx context.Context) ([]*BotRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bots := make([]*BotRecord, 0, len(s.bots))
	for _, b := range s.bots {
		c := *b
		bots = append(bots, &c)
	}
	return bots, nil
}

// GetBot returns a bot by id, or ErrNotFound.
func (s *MemoryStore) GetBot(ctx context.Context, id string) (*BotRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.bots[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := *b
	return &c, nil
}

// CreateBot inserts a new bot record.
func (s *MemoryStore) CreateBot(ctx context.Context, bot *BotRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := *bot
	s.bots[bot.ID] = &c
	return nil
}

// UpdateBot applies a partial update and returns the updated record.
func (s *MemoryStore) UpdateBot(ctx context.Context, id string, upd BotUpdate) (*BotRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bots[id]
	if !ok {
		return nil, ErrNotFound
	}
	if upd.Name != nil {
		b.Name = *upd.Name
	}
	if upd.Token != nil {
		b.Token = *upd.Token
	}
	if upd.State != nil {
		b.State = *upd.State
	}
	c := *b
	return &c, nil
}

// DeleteBot removes a bot record.
func (s *MemoryStore) DeleteBot(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.bots[id]; !ok {
		return ErrNotFound
	}
	delete(s.bots, id)
	return nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}
