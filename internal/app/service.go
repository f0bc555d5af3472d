package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jaminalder/timetravel-tic-tac-toe/internal/domain"
	"github.com/jaminalder/timetravel-tic-tac-toe/internal/metrics"
	"github.com/jaminalder/timetravel-tic-tac-toe/internal/store"
)

// ErrNotFound is returned for unknown game IDs.
var ErrNotFound = store.ErrNotFound

// GameState is the stored state of one game.
type GameState = store.Game

type subscriber struct {
	ch        chan []byte
	closeOnce sync.Once
}

func (s *subscriber) close() { s.closeOnce.Do(func() { close(s.ch) }) }

// Service owns game sessions and pushes re-rendered boards to subscribers.
type Service struct {
	// tx serializes load/transition/save so one event is handled at a time.
	tx sync.Mutex

	mu     sync.Mutex
	subs   map[string]map[*subscriber]struct{}
	render func(GameState) []byte

	store   store.Store
	log     *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

type Option func(*Service)

func WithLogger(l *zap.Logger) Option { return func(s *Service) { s.log = l } }

func WithMetrics(m *metrics.Metrics) Option { return func(s *Service) { s.metrics = m } }

// WithRenderer sets the broadcast payload renderer.
func WithRenderer(r func(GameState) []byte) Option {
	return func(s *Service) { s.SetRenderer(r) }
}

// NewService creates a service on top of st.
func NewService(st store.Store, opts ...Option) *Service {
	s := &Service{
		subs:    make(map[string]map[*subscriber]struct{}),
		render:  func(GameState) []byte { return nil },
		store:   st,
		log:     zap.NewNop(),
		metrics: metrics.New(),
		now:     time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// SetRenderer replaces the broadcast renderer function.
func (s *Service) SetRenderer(renderer func(GameState) []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if renderer == nil {
		s.render = func(GameState) []byte { return nil }
		return
	}
	s.render = renderer
}

// CreateGame creates and stores a new game.
func (s *Service) CreateGame(ctx context.Context) (*GameState, error) {
	now := s.now()
	gs := GameState{ID: newID(), Session: domain.New(), Created: now, Updated: now}
	if err := s.store.Save(ctx, gs); err != nil {
		s.log.Error("create game", zap.Error(err))
		return nil, fmt.Errorf("create game: %w", err)
	}
	s.metrics.GamesCreated.Inc()
	s.log.Debug("game created", zap.String("game", gs.ID))
	return &gs, nil
}

// Get returns the stored game.
func (s *Service) Get(ctx context.Context, id string) (*GameState, error) {
	gs, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	return &gs, nil
}

// Play applies a move for whoever is next. Illegal moves leave the game unchanged and are not errors.
func (s *Service) Play(ctx context.Context, id string, cell int) (*GameState, error) {
	accepted := false
	gs, err := s.update(ctx, id, func(cur domain.Session) (domain.Session, error) {
		accepted = domain.CanPlay(cur, cell)
		return domain.ApplyMove(cur, cell), nil
	})
	if err != nil {
		return nil, err
	}

	if !accepted {
		s.metrics.Moves.WithLabelValues("rejected").Inc()
		s.log.Debug("move ignored", zap.String("game", id), zap.Int("cell", cell), zap.Int("step", gs.Session.Step))
		return gs, nil
	}
	s.metrics.Moves.WithLabelValues("accepted").Inc()
	if out := domain.OutcomeOf(gs.Session); out != domain.InProgress {
		s.metrics.Outcomes.WithLabelValues(string(out)).Inc()
	}
	s.log.Debug("move played", zap.String("game", id), zap.Int("cell", cell), zap.Int("step", gs.Session.Step))
	return gs, nil
}

// Jump moves the game to a history step without changing the history.
func (s *Service) Jump(ctx context.Context, id string, step int) (*GameState, error) {
	gs, err := s.update(ctx, id, func(cur domain.Session) (domain.Session, error) {
		return domain.JumpTo(cur, step)
	})
	if err != nil {
		return gs, err
	}
	s.metrics.Jumps.Inc()
	s.log.Debug("jumped", zap.String("game", id), zap.Int("step", step))
	return gs, nil
}

// Restart replaces the session with a fresh one. The game keeps its ID.
func (s *Service) Restart(ctx context.Context, id string) (*GameState, error) {
	gs, err := s.update(ctx, id, func(domain.Session) (domain.Session, error) {
		return domain.New(), nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.Restarts.Inc()
	s.log.Debug("restarted", zap.String("game", id))
	return gs, nil
}

// update loads a game, applies fn and stores and broadcasts the result when it changed.
// On an error from fn the loaded state is returned alongside it.
func (s *Service) update(ctx context.Context, id string, fn func(domain.Session) (domain.Session, error)) (*GameState, error) {
	s.tx.Lock()
	gs, err := s.store.Load(ctx, id)
	if err != nil {
		s.tx.Unlock()
		if !errors.Is(err, store.ErrNotFound) {
			s.log.Error("load game", zap.String("game", id), zap.Error(err))
		}
		return nil, err
	}

	next, err := fn(gs.Session)
	if err != nil {
		s.tx.Unlock()
		return &gs, err
	}
	if next.Step == gs.Session.Step && len(next.History) == len(gs.Session.History) {
		s.tx.Unlock()
		return &gs, nil
	}

	gs.Session = next
	gs.Updated = s.now()
	if err = s.store.Save(ctx, gs); err != nil {
		s.tx.Unlock()
		s.log.Error("save game", zap.String("game", id), zap.Error(err))
		return nil, fmt.Errorf("save game: %w", err)
	}
	s.tx.Unlock()

	s.broadcast(gs)
	return &gs, nil
}

// broadcast sends without blocking, under mu so a send never races an unsubscribe close.
func (s *Service) broadcast(gs GameState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	payload := s.render(gs)
	dropped := 0
	for sub := range s.subs[gs.ID] {
		select {
		case sub.ch <- payload:
		default:
			// drop slow subscriber
			sub.close()
			delete(s.subs[gs.ID], sub)
			s.metrics.Subscribers.Dec()
			dropped++
		}
	}
	if dropped > 0 {
		s.log.Debug("dropped slow subscribers", zap.String("game", gs.ID), zap.Int("count", dropped))
	}
}

// Subscribe registers a subscriber for a game. Returns a channel and an unsubscribe func.
// The subscription ends when ctx is done.
func (s *Service) Subscribe(ctx context.Context, id string) (<-chan []byte, func(), error) {
	if _, err := s.store.Load(ctx, id); err != nil {
		return nil, nil, err
	}

	s.mu.Lock()
	set := s.subs[id]
	if set == nil {
		set = make(map[*subscriber]struct{})
		s.subs[id] = set
	}
	sub := &subscriber{ch: make(chan []byte, 1)}
	set[sub] = struct{}{}
	s.metrics.Subscribers.Inc()
	s.mu.Unlock()

	unsubOnce := &sync.Once{}
	unsub := func() {
		unsubOnce.Do(func() {
			s.mu.Lock()
			if set, ok := s.subs[id]; ok {
				if _, present := set[sub]; present {
					delete(set, sub)
					s.metrics.Subscribers.Dec()
				}
				if len(set) == 0 {
					delete(s.subs, id)
				}
			}
			sub.close()
			s.mu.Unlock()
		})
	}
	go func() {
		<-ctx.Done()
		unsub()
	}()
	return sub.ch, unsub, nil
}
