package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "game:"

type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis stores games as JSON under "game:<id>". Every save refreshes the ttl.
func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

// Connect opens a client and pings it.
func Connect(ctx context.Context, opts *redis.Options) (*redis.Client, error) {
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

func (that *Redis) Save(ctx context.Context, g Game) error {
	b, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("could not marshal game: %w", err)
	}
	if err = that.client.Set(ctx, keyPrefix+g.ID, b, that.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set game: %w", err)
	}
	return nil
}

func (that *Redis) Load(ctx context.Context, id string) (Game, error) {
	raw, err := that.client.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return Game{}, ErrNotFound
	}
	if err != nil {
		return Game{}, fmt.Errorf("failed to get game: %w", err)
	}

	var g Game
	if err = json.Unmarshal(raw, &g); err != nil {
		return Game{}, fmt.Errorf("failed to unmarshal game: %w", err)
	}
	if err = g.Session.Validate(); err != nil {
		return Game{}, fmt.Errorf("stored game %s is corrupt: %w", id, err)
	}
	return g, nil
}

func (that *Redis) Delete(ctx context.Context, id string) error {
	n, err := that.client.Del(ctx, keyPrefix+id).Result()
	if err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
