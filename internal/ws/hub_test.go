package ws

import (
	"errors"
	"sync"
	"testing"
	"time"
)

// stubSubscriber records deliveries over a channel so tests can block on them.
type stubSubscriber struct {
	payloads  chan []byte
	failSend  bool
	closeOnce sync.Once
	closed    chan struct{}
}

func newStubSubscriber() *stubSubscriber {
	return &stubSubscriber{
		payloads: make(chan []byte, 8),
		closed:   make(chan struct{}),
	}
}

func (s *stubSubscriber) Send(payload []byte) error {
	if s.failSend {
		return errors.New("connection gone")
	}
	s.payloads <- payload
	return nil
}

func (s *stubSubscriber) Close() {
	s.closeOnce.Do(func() { close(s.closed) })
}

func (s *stubSubscriber) waitPayload(t *testing.T) []byte {
	t.Helper()
	select {
	case payload := <-s.payloads:
		return payload
	case <-time.After(time.Second):
		t.Fatalf("no payload delivered within a second")
		return nil
	}
}

func TestBroadcastReachesProjectSubscribers(t *testing.T) {
	hub := NewHub()
	first := newStubSubscriber()
	second := newStubSubscriber()
	other := newStubSubscriber()

	hub.Register("proj-1", first)
	hub.Register("proj-1", second)
	hub.Register("proj-2", other)

	hub.Broadcast("proj-1", []byte(`{"outcome":"succeeded"}`))

	for _, sub := range []*stubSubscriber{first, second} {
		if got := string(sub.waitPayload(t)); got != `{"outcome":"succeeded"}` {
			t.Fatalf("delivered payload %q", got)
		}
	}
	select {
	case payload := <-other.payloads:
		t.Fatalf("subscriber on another project received %q", payload)
	default:
	}
}

func TestUnregisteredSubscriberStopsReceiving(t *testing.T) {
	hub := NewHub()
	sub := newStubSubscriber()

	hub.Register("proj-1", sub)
	hub.Broadcast("proj-1", []byte("one"))
	sub.waitPayload(t)

	hub.Unregister("proj-1", sub)
	hub.Broadcast("proj-1", []byte("two"))

	select {
	case payload := <-sub.payloads:
		t.Fatalf("unregistered subscriber received %q", payload)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestFailedSendEvictsSubscriber(t *testing.T) {
	hub := NewHub()
	broken := newStubSubscriber()
	broken.failSend = true
	healthy := newStubSubscriber()

	hub.Register("proj-1", broken)
	hub.Register("proj-1", healthy)

	hub.Broadcast("proj-1", []byte("deploy"))
	healthy.waitPayload(t)

	select {
	case <-broken.closed:
	case <-time.After(time.Second):
		t.Fatalf("failing subscriber was not closed")
	}

	// A later broadcast must still reach the surviving subscriber only.
	hub.Broadcast("proj-1", []byte("again"))
	healthy.waitPayload(t)
}
