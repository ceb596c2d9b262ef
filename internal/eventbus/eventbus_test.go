package eventbus

import (
	"testing"
	"time"

	"github.com/ChrisCryptoBot/meddropdispatch-sub004/core/events"
)

func TestBusPublishSubscribe(t *testing.T) {
	bus := New()
	ch := bus.Subscribe()
	bus.Publish(events.AssignmentEvent{LoadID: "l1", DriverID: "d1", At: time.Now()})
	v := <-ch
	ev, ok := v.(events.AssignmentEvent)
	if !ok || ev.LoadID != "l1" {
		t.Fatalf("expected the assignment event back, got %v", v)
	}
	bus.Unsubscribe(ch)
}

func TestBusFanOut(t *testing.T) {
	bus := New()
	ch1 := bus.Subscribe()
	ch2 := bus.Subscribe()
	bus.Publish(events.AssignmentEvent{LoadID: "l1"})
	for _, ch := range []<-chan Event{ch1, ch2} {
		ev := (<-ch).(events.AssignmentEvent)
		if ev.LoadID != "l1" {
			t.Fatalf("subscriber missed the event, got %v", ev)
		}
	}
	bus.Close()
}

func TestBusSlowSubscriberNeverBlocks(t *testing.T) {
	bus := New()
	bus.Subscribe() // never drained
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			bus.Publish(events.AssignmentEvent{LoadID: "l1"})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}
	bus.Close()
}

func TestBusClose(t *testing.T) {
	bus := New()
	ch1 := bus.Subscribe()
	ch2 := bus.Subscribe()
	bus.Close()
	if _, ok := <-ch1; ok {
		t.Fatalf("expected ch1 closed")
	}
	if _, ok := <-ch2; ok {
		t.Fatalf("expected ch2 closed")
	}
}

func TestBusUnsubscribeAfterClose(t *testing.T) {
	bus := New()
	ch := bus.Subscribe()
	bus.Close()
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("panic on Unsubscribe after Close: %v", r)
		}
	}()
	bus.Unsubscribe(ch)
}
