package realtime

import (
	"testing"
)

func TestBroadcaster_PublishDeliversToSubscriber(t *testing.T) {
	b := NewBroadcaster()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.Publish("round")
	got := <-ch
	if got != "round" {
		t.Errorf("got event %q, want %q", got, "round")
	}
}

func TestBroadcaster_PublishDeliversToMultipleSubscribers(t *testing.T) {
	b := NewBroadcaster()
	ch1 := b.Subscribe()
	ch2 := b.Subscribe()
	defer b.Unsubscribe(ch1)
	defer b.Unsubscribe(ch2)

	b.Publish("stats")
	if got := <-ch1; got != "stats" {
		t.Errorf("ch1 got %q, want stats", got)
	}
	if got := <-ch2; got != "stats" {
		t.Errorf("ch2 got %q, want stats", got)
	}
}

func TestBroadcaster_UnsubscribeClosesChannel(t *testing.T) {
	b := NewBroadcaster()
	ch := b.Subscribe()
	b.Unsubscribe(ch)
	_, open := <-ch
	if open {
		t.Error("channel should be closed after Unsubscribe")
	}
	// A second unsubscribe is a no-op.
	b.Unsubscribe(ch)
}

func TestBroadcaster_PublishDropsWhenLagging(t *testing.T) {
	b := NewBroadcaster()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	for i := 0; i < subscriberBuffer+5; i++ {
		b.Publish("tick")
	}
	if got := len(ch); got != subscriberBuffer {
		t.Errorf("buffered %d events, want %d", got, subscriberBuffer)
	}
}

func TestBroadcaster_LenAndClose(t *testing.T) {
	b := NewBroadcaster()
	ch1 := b.Subscribe()
	ch2 := b.Subscribe()
	if b.Len() != 2 {
		t.Fatalf("Len %d, want 2", b.Len())
	}
	b.Close()
	if b.Len() != 0 {
		t.Errorf("Len after Close %d, want 0", b.Len())
	}
	if _, open := <-ch1; open {
		t.Error("ch1 should be closed")
	}
	if _, open := <-ch2; open {
		t.Error("ch2 should be closed")
	}
}
