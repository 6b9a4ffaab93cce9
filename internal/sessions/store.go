// Package sessions keeps the per-session agents alive between web
// requests and evicts the ones nobody has talked to for a while.
package sessions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bbdragon2023/aiSDR/internal/agent"
	"github.com/bbdragon2023/aiSDR/internal/events"
)

// ErrBusy reports a session that already has a turn in flight.
var ErrBusy = errors.New("session busy")

// Factory builds the agent for a new session.
type Factory func(ctx context.Context, sessionID string) (*agent.Agent, error)

// Session pairs an agent with its liveness bookkeeping. One turn may
// be in flight at a time; callers must Acquire before driving the
// agent and Release when the turn ends.
type Session struct {
	ID    string
	Agent *agent.Agent

	mu       sync.Mutex
	busy     bool
	lastSeen time.Time
}

// Acquire claims the session for one turn. It fails immediately with
// ErrBusy instead of queueing: the web layer turns that into a 409.
func (s *Session) Acquire() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return ErrBusy
	}
	s.busy = true
	s.lastSeen = time.Now()
	return nil
}

// Release ends the in-flight turn.
func (s *Session) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
	s.lastSeen = time.Now()
}

// Touch refreshes liveness without claiming the session.
func (s *Session) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = time.Now()
}

func (s *Session) expired(now time.Time, ttl time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.busy && now.Sub(s.lastSeen) > ttl
}

// Store is the in-memory session registry. A zero TTL disables
// eviction.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session

	ttl     time.Duration
	factory Factory
	bus     *events.Bus

	stopOnce sync.Once
	stop     chan struct{}
}

// NewStore builds a store around factory. ttl bounds idle session
// lifetime; pass 0 to keep sessions forever.
func NewStore(ttl time.Duration, factory Factory, bus *events.Bus) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		factory:  factory,
		bus:      bus,
		stop:     make(chan struct{}),
	}
}

// NewSessionID returns a fresh opaque session key.
func NewSessionID() string {
	return "sess_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:12]
}

// GetOrCreate returns the session for id, creating it on first use.
// An empty id gets a generated one.
func (st *Store) GetOrCreate(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		id = NewSessionID()
	}

	st.mu.Lock()
	if s, ok := st.sessions[id]; ok {
		st.mu.Unlock()
		s.Touch()
		return s, nil
	}
	st.mu.Unlock()

	// build outside the lock, the factory may dial out
	a, err := st.factory(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("create session %s: %w", id, err)
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if s, ok := st.sessions[id]; ok {
		// lost the race, keep the winner
		return s, nil
	}
	s := &Session{ID: id, Agent: a, lastSeen: time.Now()}
	st.sessions[id] = s

	if st.bus != nil {
		st.bus.Publish(events.New(events.EventSessionCreated, events.SourceStore, id, nil))
	}
	slog.Debug("session created", "session", id)
	return s, nil
}

// Get returns an existing session without creating one.
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	return s, ok
}

// Remove drops a session explicitly.
func (st *Store) Remove(id string) {
	st.mu.Lock()
	_, ok := st.sessions[id]
	delete(st.sessions, id)
	st.mu.Unlock()

	if ok && st.bus != nil {
		st.bus.Publish(events.New(events.EventSessionClosed, events.SourceStore, id, nil))
	}
}

// Len reports the live session count.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Sweep evicts sessions idle longer than the TTL as of now and
// returns the evicted ids. Busy sessions are never evicted.
func (st *Store) Sweep(now time.Time) []string {
	if st.ttl <= 0 {
		return nil
	}

	st.mu.Lock()
	var evicted []string
	for id, s := range st.sessions {
		if s.expired(now, st.ttl) {
			delete(st.sessions, id)
			evicted = append(evicted, id)
		}
	}
	st.mu.Unlock()

	for _, id := range evicted {
		slog.Debug("session evicted", "session", id)
		if st.bus != nil {
			st.bus.Publish(events.New(events.EventSessionClosed, events.SourceStore, id, nil))
		}
	}
	return evicted
}

// StartJanitor launches the background eviction loop. It stops when
// ctx is done or Close is called.
func (st *Store) StartJanitor(ctx context.Context) {
	if st.ttl <= 0 {
		return
	}

	interval := st.ttl / 4
	if interval < time.Second {
		interval = time.Second
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-st.stop:
				return
			case now := <-ticker.C:
				st.Sweep(now)
			}
		}
	}()
}

// Close stops the janitor. Sessions remain readable.
func (st *Store) Close() {
	st.stopOnce.Do(func() { close(st.stop) })
}
