// Package realtime implements the in-memory order rooms. A room is keyed by
// order id and exists only while it has members; nothing here is persisted,
// clients re-join after a restart.
package realtime

import (
	"sync"

	"github.com/google/uuid"
)

// Event is one message pushed to a room.
type Event struct {
	Event   string `json:"event"`
	OrderID string `json:"orderId"`
	Data    any    `json:"data,omitempty"`
}

// Client is one connected subscriber. The transport owns the underlying
// connection; the hub only holds the membership bookkeeping and the
// outbound queue.
type Client struct {
	ID       uuid.UUID
	Outbound chan Event

	rooms  map[string]bool // guarded by the hub mutex
	closed bool            // guarded by the hub mutex
}

// Hub maps order ids to the clients currently in their room. Both sides of
// the relation (room to clients, client to rooms) are updated under one
// lock so they never disagree.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*Client]bool
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[*Client]bool)}
}

// NewClient returns a client ready to join rooms. The outbound channel is
// buffered; a reader that stops draining loses events rather than blocking
// publishes to everyone else.
func (h *Hub) NewClient() *Client {
	return &Client{
		ID:       uuid.New(),
		Outbound: make(chan Event, 16),
		rooms:    make(map[string]bool),
	}
}

// JoinRoom adds the client to the order's room, creating the room lazily.
// Joining a room twice is a no-op.
func (h *Hub) JoinRoom(client *Client, orderID string) {
	if orderID == "" {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if client.closed {
		return
	}
	members, ok := h.rooms[orderID]
	if !ok {
		members = make(map[*Client]bool)
		h.rooms[orderID] = members
	}
	members[client] = true
	client.rooms[orderID] = true
}

// Unregister removes the client from every room it joined and closes its
// outbound channel. Rooms left empty are discarded; a later join recreates
// them. No event is delivered to the client after Unregister returns.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if client.closed {
		return
	}
	for orderID := range client.rooms {
		if members, ok := h.rooms[orderID]; ok {
			delete(members, client)
			if len(members) == 0 {
				delete(h.rooms, orderID)
			}
		}
	}
	client.rooms = make(map[string]bool)
	client.closed = true
	close(client.Outbound)
}

// Publish delivers the event to every current member of the order's room.
// Best effort, at most once: clients that joined after the call see
// nothing, and a member with a full queue is skipped instead of blocking
// the rest.
func (h *Hub) Publish(orderID string, event Event) {
	event.OrderID = orderID

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.rooms[orderID] {
		select {
		case client.Outbound <- event:
		default:
		}
	}
}

// RoomSize returns the current member count of an order's room.
func (h *Hub) RoomSize(orderID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[orderID])
}
