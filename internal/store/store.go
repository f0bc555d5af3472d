package store

import (
	"context"
	"errors"
	"time"

	"github.com/jaminalder/timetravel-tic-tac-toe/internal/domain"
)

var ErrNotFound = errors.New("game not found")

// Game is the stored record for one game.
type Game struct {
	ID      string         `json:"id"`
	Session domain.Session `json:"session"`
	Created time.Time      `json:"created"`
	Updated time.Time      `json:"updated"`
}

// Store persists games by ID. Save replaces the whole record.
type Store interface {
	Save(ctx context.Context, g Game) error
	Load(ctx context.Context, id string) (Game, error)
	Delete(ctx context.Context, id string) error
}
