package events

import (
	"sync"
	"testing"
	"time"
)

func TestBusDeliversInOrder(t *testing.T) {
	bus := NewBus(16)

	var mu sync.Mutex
	var got []Type
	bus.Subscribe(func(e Event) {
		mu.Lock()
		got = append(got, e.Type)
		mu.Unlock()
	})

	bus.Publish(Event{Type: RequestStarted})
	bus.Publish(Event{Type: Error})
	bus.Publish(Event{Type: Response})
	bus.Close()

	mu.Lock()
	defer mu.Unlock()
	want := []Type{RequestStarted, Error, Response}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestBusPublishNeverBlocks(t *testing.T) {
	bus := NewBus(1)
	release := make(chan struct{})
	bus.Subscribe(func(e Event) { <-release })

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			bus.Publish(Event{Type: Response})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a slow subscriber")
	}

	if bus.Dropped() == 0 {
		t.Error("expected dropped events with a full buffer")
	}
	close(release)
	bus.Close()
}

func TestBusSurvivesPanickingHandler(t *testing.T) {
	bus := NewBus(4)
	delivered := make(chan struct{}, 1)
	bus.Subscribe(func(e Event) { panic("boom") })
	bus.Subscribe(func(e Event) { delivered <- struct{}{} })

	bus.Publish(Event{Type: RateLimited})

	select {
	case <-delivered:
	case <-time.After(time.Second):
		t.Fatal("second handler not called after first panicked")
	}
	bus.Close()
}

func TestNilBusIsNoop(t *testing.T) {
	var bus *Bus
	bus.Publish(Event{Type: Response})
	bus.Subscribe(func(Event) {})
	bus.Close()
	if bus.Dropped() != 0 {
		t.Error("nil bus should report zero drops")
	}
}
