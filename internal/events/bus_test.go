package events

import (
	"sync"
	"testing"
	"time"
)

func TestPublishReachesSubscriber(t *testing.T) {
	bus := NewBus(16)
	defer bus.Close()

	var mu sync.Mutex
	var got []Event
	done := make(chan struct{})

	bus.Subscribe(func(e Event) {
		mu.Lock()
		got = append(got, e)
		mu.Unlock()
		close(done)
	}, EventToolCall)

	bus.Publish(NewTyped(SourceAgent, "s1", ThinkingPayload{Status: "processing"}))
	bus.Publish(NewTyped(SourceAgent, "s1", ToolCallPayload{Name: "web_search"}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber never received tool.call")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 {
		t.Fatalf("got %d events, want 1 (filter should drop thinking)", len(got))
	}
	payload, ok := GetToolCallPayload(got[0])
	if !ok || payload.Name != "web_search" {
		t.Errorf("payload = %+v ok=%v, want web_search", payload, ok)
	}
}

func TestHistoryKeepsOrder(t *testing.T) {
	bus := NewBus(4)
	defer bus.Close()

	for i := 0; i < 6; i++ {
		bus.Publish(NewTyped(SourceAgent, "s1", ThinkingPayload{Status: "processing"}))
	}

	// dispatch is async; give the goroutine a beat
	deadline := time.Now().Add(2 * time.Second)
	for len(bus.History(0)) < 4 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	events := bus.History(0)
	if len(events) != 4 {
		t.Fatalf("History len = %d, want 4 (ring capacity)", len(events))
	}
	for i := 1; i < len(events); i++ {
		if events[i].Timestamp.Before(events[i-1].Timestamp) {
			t.Errorf("events out of order at %d", i)
		}
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	bus := NewBus(4)
	bus.Close()
	bus.Close()
	bus.Publish(NewTyped(SourceAgent, "", ThinkingPayload{}))
}
