package events

import (
	"testing"

	"frontdesk/internal/domain"
)

func TestHubEmitDeliversInSubscriptionOrder(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	var got []string
	hub.Subscribe(domain.EventCallStart, func(domain.CallEvent) { got = append(got, "first") })
	hub.Subscribe(domain.EventCallStart, func(domain.CallEvent) { got = append(got, "second") })
	hub.Subscribe(domain.EventCallEnd, func(domain.CallEvent) { got = append(got, "other") })

	hub.Emit(domain.CallEvent{Name: domain.EventCallStart})

	if len(got) != 2 || got[0] != "first" || got[1] != "second" {
		t.Fatalf("unexpected delivery: %v", got)
	}
}

func TestHubUnsubscribeRemovesOnlyThatHandler(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	calls := map[string]int{}
	unsubA := hub.Subscribe(domain.EventVolumeLevel, func(domain.CallEvent) { calls["a"]++ })
	hub.Subscribe(domain.EventVolumeLevel, func(domain.CallEvent) { calls["b"]++ })

	unsubA()
	unsubA()
	hub.Emit(domain.CallEvent{Name: domain.EventVolumeLevel, Volume: 0.5})

	if calls["a"] != 0 || calls["b"] != 1 {
		t.Fatalf("unexpected calls: %v", calls)
	}
	if hub.Len(domain.EventVolumeLevel) != 1 {
		t.Fatalf("expected one remaining handler, got %d", hub.Len(domain.EventVolumeLevel))
	}
}

func TestHubHandlerMayUnsubscribeDuringEmit(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	var unsub func()
	calls := 0
	unsub = hub.Subscribe(domain.EventError, func(domain.CallEvent) {
		calls++
		unsub()
	})

	hub.Emit(domain.CallEvent{Name: domain.EventError})
	hub.Emit(domain.CallEvent{Name: domain.EventError})

	if calls != 1 {
		t.Fatalf("expected single call, got %d", calls)
	}
}

func TestHubSubscribeNilHandler(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	unsub := hub.Subscribe(domain.EventCallEnd, nil)
	unsub()
	if hub.Len(domain.EventCallEnd) != 0 {
		t.Fatalf("nil handler must not register")
	}
}
