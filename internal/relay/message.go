package relay

import "encoding/json"

// Message defines the structure for all client-to-relay and relay-to-client
// websocket frames.
type Message struct {
	Type          string          `json:"type"`
	RoomID        RoomID          `json:"room_id,omitempty"`
	ParticipantID string          `json:"participant_id,omitempty"`
	Payload       json.RawMessage `json:"payload,omitempty"`
}

// Inbound event kinds (client to relay).
const (
	EventJoinRoom = "join-room"
	EventMessage  = "message"
)

// Outbound event kinds (relay to client).
const (
	EventUserConnected    = "user-connected"
	EventUserDisconnected = "user-disconnected"
	EventCreateMessage    = "createMessage"
)

// RoomID is an opaque, client-chosen room token.
type RoomID string

// ConnID identifies one open connection. It is assigned by the transport.
type ConnID string

// chatMessage is the validated body of a message event.
type chatMessage struct {
	Payload json.RawMessage `validate:"required"`
}

// participantPayload encodes a participant identifier as a JSON string payload.
func participantPayload(participant string) json.RawMessage {
	b, _ := json.Marshal(participant)
	return b
}
