package relay

import (
	"encoding/json"
	"log/slog"
)

// Broadcaster fans events out to the members of a room.
// Delivery is best effort: a recipient whose queue is full misses the event.
type Broadcaster struct {
	registry *Registry
	log      *slog.Logger
}

// NewBroadcaster creates a Broadcaster reading membership from registry.
func NewBroadcaster(registry *Registry, log *slog.Logger) *Broadcaster {
	return &Broadcaster{registry: registry, log: log}
}

// BroadcastToRoom sends the event to every member of room except exclude.
// An empty exclude excludes nobody. It returns how many members accepted the event.
func (b *Broadcaster) BroadcastToRoom(room RoomID, kind string, payload json.RawMessage, exclude ConnID) int {
	msg := &Message{Type: kind, RoomID: room, Payload: payload}

	delivered := 0
	for _, conn := range b.registry.Members(room) {
		if exclude != "" && conn.ID() == exclude {
			continue
		}
		if !conn.Deliver(msg) {
			b.log.Debug("dropped event for slow recipient", "room", room, "type", kind, "conn", conn.ID())
			continue
		}
		delivered++
	}
	return delivered
}

// BroadcastToRoomInclusive sends the event to every member of room, including the originator.
func (b *Broadcaster) BroadcastToRoomInclusive(room RoomID, kind string, payload json.RawMessage) int {
	return b.BroadcastToRoom(room, kind, payload, "")
}
