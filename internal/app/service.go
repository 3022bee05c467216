package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/MetalTurtle18/tic-tac-toe/internal/domain"
	"github.com/MetalTurtle18/tic-tac-toe/internal/view"
	"github.com/google/uuid"
)

// Errors exposed by the service layer.
var ErrNotFound = errors.New("game not found")

// Session is one browser's game. Game is replaced, never mutated, on each action.
type Session struct {
	ID      string
	Game    domain.Game
	Created time.Time
	Updated time.Time
}

type subscriber struct {
	mu     sync.Mutex
	ch     chan []byte
	closed bool
}

// offer delivers payload without blocking; it reports false when the
// subscriber is full or already closed.
func (s *subscriber) offer(payload []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	select {
	case s.ch <- payload:
		return true
	default:
		return false
	}
}

func (s *subscriber) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}

// Service keeps session snapshots and pushes re-rendered frames to subscribers.
type Service struct {
	mu       sync.Mutex
	sessions map[string]*Session
	subs     map[string]map[*subscriber]struct{}
	render   func(Session) []byte
	now      func() time.Time
	log      *slog.Logger
}

// NewService creates a service with a renderer that encodes nothing.
func NewService(logger *slog.Logger) *Service {
	return NewServiceWithRenderer(logger, nil)
}

// NewServiceWithRenderer allows injecting a renderer for broadcast payloads.
func NewServiceWithRenderer(logger *slog.Logger, renderer func(Session) []byte) *Service {
	if renderer == nil {
		renderer = func(Session) []byte { return nil }
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		sessions: make(map[string]*Session),
		subs:     make(map[string]map[*subscriber]struct{}),
		render:   renderer,
		now:      time.Now,
		log:      logger.With("component", "sessions"),
	}
}

// SetRenderer replaces the broadcast renderer function.
func (s *Service) SetRenderer(renderer func(Session) []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if renderer == nil {
		s.render = func(Session) []byte { return nil }
		return
	}
	s.render = renderer
}

// CreateGame starts a session with a fresh game.
func (s *Service) CreateGame() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	sess := &Session{ID: uuid.NewString(), Game: domain.New(), Created: now, Updated: now}
	s.sessions[sess.ID] = sess
	s.log.Debug("session created", "id", sess.ID)
	return *sess
}

// Get returns a copy of the session if present.
func (s *Service) Get(id string) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return Session{}, false
	}
	return *sess, true
}

// Dispatch applies an action to the session's game, stores the new snapshot
// and broadcasts it. Ignored moves still succeed and leave the game as is.
func (s *Service) Dispatch(id string, a view.Action) (Session, error) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	if !ok {
		s.mu.Unlock()
		return Session{}, ErrNotFound
	}
	next := *sess
	next.Game = view.Update(sess.Game, a)
	next.Updated = s.now()
	s.sessions[id] = &next

	// Fan-out under the lock so frames reach subscribers in dispatch order.
	// Sends never block; slow subscribers are closed and dropped.
	payload := s.render(next)
	dropped := 0
	for sub := range s.subs[id] {
		if !sub.offer(payload) {
			sub.close()
			delete(s.subs[id], sub)
			dropped++
		}
	}
	s.mu.Unlock()

	if dropped > 0 {
		s.log.Debug("dropped slow subscribers", "id", id, "count", dropped)
	}
	return next, nil
}

// Subscribe registers a subscriber for a session. Returns a channel and an unsubscribe func.
func (s *Service) Subscribe(ctx context.Context, id string) (<-chan []byte, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return nil, func() {}, ErrNotFound
	}
	set := s.subs[id]
	if set == nil {
		set = make(map[*subscriber]struct{})
		s.subs[id] = set
	}
	sub := &subscriber{ch: make(chan []byte, 1)}
	set[sub] = struct{}{}

	unsubOnce := &sync.Once{}
	unsub := func() {
		unsubOnce.Do(func() {
			s.mu.Lock()
			if set, ok := s.subs[id]; ok {
				delete(set, sub)
				if len(set) == 0 {
					delete(s.subs, id)
				}
			}
			s.mu.Unlock()
			sub.close()
		})
	}
	go func() {
		<-ctx.Done()
		unsub()
	}()
	return sub.ch, unsub, nil
}

// Sweep evicts sessions not updated since cutoff and closes their subscribers.
func (s *Service) Sweep(cutoff time.Time) int {
	var closing []*subscriber

	s.mu.Lock()
	evicted := 0
	for id, sess := range s.sessions {
		if !sess.Updated.Before(cutoff) {
			continue
		}
		delete(s.sessions, id)
		for sub := range s.subs[id] {
			closing = append(closing, sub)
		}
		delete(s.subs, id)
		evicted++
	}
	s.mu.Unlock()

	for _, sub := range closing {
		sub.close()
	}
	if evicted > 0 {
		s.log.Info("sessions evicted", "count", evicted)
	}
	return evicted
}

// RunSweeper evicts sessions idle longer than ttl every interval until ctx is done.
func (s *Service) RunSweeper(ctx context.Context, ttl, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(s.now().Add(-ttl))
		}
	}
}
