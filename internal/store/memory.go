package store

import (
	"context"
	"sync"
	"time"
)

// Memory keeps games in a map. Entries idle longer than ttl are dropped on access.
type Memory struct {
	mu    sync.Mutex
	games map[string]Game
	ttl   time.Duration
	now   func() time.Time
}

// NewMemory returns an empty store. A zero ttl keeps games forever.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{games: make(map[string]Game), ttl: ttl, now: time.Now}
}

func (m *Memory) Save(_ context.Context, g Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.games[g.ID] = g
	return nil
}

func (m *Memory) Load(_ context.Context, id string) (Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[id]
	if !ok {
		return Game{}, ErrNotFound
	}
	if m.ttl > 0 && m.now().Sub(g.Updated) > m.ttl {
		delete(m.games, id)
		return Game{}, ErrNotFound
	}
	return g, nil
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.games[id]; !ok {
		return ErrNotFound
	}
	delete(m.games, id)
	return nil
}
