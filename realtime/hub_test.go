package realtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recvEvent(t *testing.T, ch <-chan Event, timeout time.Duration) Event {
	t.Helper()
	select {
	case event := <-ch:
		return event
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for event")
	}
	return Event{}
}

func assertNoEvent(t *testing.T, ch <-chan Event) {
	t.Helper()
	select {
	case event, ok := <-ch:
		if ok {
			t.Fatalf("unexpected event: %+v", event)
		}
	default:
	}
}

func TestPublishDeliversToRoomMembers(t *testing.T) {
	hub := NewHub()
	a := hub.NewClient()
	b := hub.NewClient()
	hub.JoinRoom(a, "order-1")
	hub.JoinRoom(b, "order-1")

	hub.Publish("order-1", Event{Event: "orderStatusUpdated", Data: "confirmed"})

	for _, client := range []*Client{a, b} {
		event := recvEvent(t, client.Outbound, time.Second)
		assert.Equal(t, "orderStatusUpdated", event.Event)
		assert.Equal(t, "order-1", event.OrderID)
	}
}

func TestPublishScopedToRoom(t *testing.T) {
	hub := NewHub()
	a := hub.NewClient()
	b := hub.NewClient()
	hub.JoinRoom(a, "order-1")
	hub.JoinRoom(b, "order-2")

	hub.Publish("order-1", Event{Event: "orderStatusUpdated"})

	recvEvent(t, a.Outbound, time.Second)
	assertNoEvent(t, b.Outbound)
}

func TestLateJoinerMissesEarlierPublish(t *testing.T) {
	hub := NewHub()
	hub.Publish("order-1", Event{Event: "orderStatusUpdated"})

	late := hub.NewClient()
	hub.JoinRoom(late, "order-1")
	assertNoEvent(t, late.Outbound)

	// Later publishes do arrive.
	hub.Publish("order-1", Event{Event: "liveTrackingUpdates"})
	event := recvEvent(t, late.Outbound, time.Second)
	assert.Equal(t, "liveTrackingUpdates", event.Event)
}

func TestJoinRoomIdempotent(t *testing.T) {
	hub := NewHub()
	client := hub.NewClient()
	hub.JoinRoom(client, "order-1")
	hub.JoinRoom(client, "order-1")

	assert.Equal(t, 1, hub.RoomSize("order-1"))

	hub.Publish("order-1", Event{Event: "orderStatusUpdated"})
	recvEvent(t, client.Outbound, time.Second)
	assertNoEvent(t, client.Outbound)
}

func TestUnregisterRemovesFromAllRooms(t *testing.T) {
	hub := NewHub()
	client := hub.NewClient()
	hub.JoinRoom(client, "order-1")
	hub.JoinRoom(client, "order-2")

	hub.Unregister(client)
	assert.Equal(t, 0, hub.RoomSize("order-1"))
	assert.Equal(t, 0, hub.RoomSize("order-2"))

	// The outbound channel is closed and nothing is delivered afterwards.
	_, ok := <-client.Outbound
	require.False(t, ok)
	hub.Publish("order-1", Event{Event: "orderStatusUpdated"})
}

func TestEmptyRoomRecreatedOnJoin(t *testing.T) {
	hub := NewHub()
	first := hub.NewClient()
	hub.JoinRoom(first, "order-1")
	hub.Unregister(first)
	require.Equal(t, 0, hub.RoomSize("order-1"))

	second := hub.NewClient()
	hub.JoinRoom(second, "order-1")
	assert.Equal(t, 1, hub.RoomSize("order-1"))

	hub.Publish("order-1", Event{Event: "orderStatusUpdated"})
	event := recvEvent(t, second.Outbound, time.Second)
	assert.Equal(t, "order-1", event.OrderID)
}

func TestSlowMemberDoesNotBlockOthers(t *testing.T) {
	hub := NewHub()
	slow := hub.NewClient()
	fast := hub.NewClient()
	hub.JoinRoom(slow, "order-1")
	hub.JoinRoom(fast, "order-1")

	// Overfill the queues; every publish must return immediately even once
	// the slow member stops draining.
	done := make(chan struct{})
	go func() {
		for i := 0; i < cap(slow.Outbound)+5; i++ {
			hub.Publish("order-1", Event{Event: "liveTrackingUpdates", Data: i})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a slow member")
	}

	// One more publish after the fast member made room still arrives.
	recvEvent(t, fast.Outbound, time.Second)
	hub.Publish("order-1", Event{Event: "orderStatusUpdated"})
	for {
		event := recvEvent(t, fast.Outbound, time.Second)
		if event.Event == "orderStatusUpdated" {
			break
		}
	}
}
