package sessions

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bbdragon2023/aiSDR/internal/agent"
	"github.com/bbdragon2023/aiSDR/internal/config"
	"github.com/bbdragon2023/aiSDR/internal/events"
	"github.com/bbdragon2023/aiSDR/internal/skills"
)

func testFactory(t *testing.T) Factory {
	t.Helper()
	registry := skills.NewRegistry(t.TempDir())
	return func(_ context.Context, id string) (*agent.Agent, error) {
		cfg := &config.Config{}
		dispatcher := agent.NewDispatcher(registry, nil, nil, 5)
		return agent.New(cfg, id, registry, nil, dispatcher, nil), nil
	}
}

func TestGetOrCreateGeneratesID(t *testing.T) {
	store := NewStore(0, testFactory(t), nil)

	s, err := store.GetOrCreate(context.Background(), "")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if !strings.HasPrefix(s.ID, "sess_") {
		t.Errorf("ID = %q, want sess_ prefix", s.ID)
	}
	if s.Agent == nil {
		t.Error("agent not built")
	}
	if store.Len() != 1 {
		t.Errorf("Len = %d, want 1", store.Len())
	}
}

func TestGetOrCreateReusesSession(t *testing.T) {
	store := NewStore(0, testFactory(t), nil)

	a, err := store.GetOrCreate(context.Background(), "sess_a")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	b, err := store.GetOrCreate(context.Background(), "sess_a")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if a != b {
		t.Error("expected same session instance")
	}
	if store.Len() != 1 {
		t.Errorf("Len = %d, want 1", store.Len())
	}
}

func TestAcquireRejectsConcurrentTurn(t *testing.T) {
	store := NewStore(0, testFactory(t), nil)

	s, err := store.GetOrCreate(context.Background(), "sess_a")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}

	if err := s.Acquire(); err != nil {
		t.Fatalf("first Acquire: %v", err)
	}
	if err := s.Acquire(); !errors.Is(err, ErrBusy) {
		t.Fatalf("second Acquire = %v, want ErrBusy", err)
	}

	s.Release()
	if err := s.Acquire(); err != nil {
		t.Fatalf("Acquire after Release: %v", err)
	}
}

func TestSweepEvictsIdleSessions(t *testing.T) {
	bus := events.NewBus(8)
	defer bus.Close()
	store := NewStore(10*time.Minute, testFactory(t), bus)

	idle, err := store.GetOrCreate(context.Background(), "sess_idle")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	busy, err := store.GetOrCreate(context.Background(), "sess_busy")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if err := busy.Acquire(); err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	evicted := store.Sweep(time.Now().Add(time.Hour))
	if len(evicted) != 1 || evicted[0] != idle.ID {
		t.Fatalf("evicted = %v, want [%s]", evicted, idle.ID)
	}
	if _, ok := store.Get("sess_busy"); !ok {
		t.Error("busy session evicted")
	}
	if _, ok := store.Get("sess_idle"); ok {
		t.Error("idle session survived")
	}
}

func TestSweepDisabledWithoutTTL(t *testing.T) {
	store := NewStore(0, testFactory(t), nil)

	if _, err := store.GetOrCreate(context.Background(), "sess_a"); err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if evicted := store.Sweep(time.Now().Add(24 * time.Hour)); evicted != nil {
		t.Fatalf("evicted = %v, want nil", evicted)
	}
}

func TestTouchDelaysEviction(t *testing.T) {
	store := NewStore(10*time.Minute, testFactory(t), nil)

	s, err := store.GetOrCreate(context.Background(), "sess_a")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}

	base := time.Now()
	s.Touch()
	if evicted := store.Sweep(base.Add(5 * time.Minute)); len(evicted) != 0 {
		t.Fatalf("evicted before TTL: %v", evicted)
	}
	if evicted := store.Sweep(base.Add(15 * time.Minute)); len(evicted) != 1 {
		t.Fatalf("evicted = %v, want one", evicted)
	}
}
