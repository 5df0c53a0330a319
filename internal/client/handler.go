package client

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/anushkanegi003/google-meet/internal/relay"
)

// EventKind classifies what the relay told us.
type EventKind int

const (
	EventPeerJoined EventKind = iota
	EventPeerLeft
	EventChat
)

// ChatPayload is the chat body this client sends and expects.
// Other clients may send anything; unknown shapes are kept raw.
type ChatPayload struct {
	From string `json:"from,omitempty"`
	Text string `json:"text"`
}

// Event is a decoded relay notification.
type Event struct {
	Kind        EventKind
	Room        string
	Participant string
	Chat        ChatPayload
	Raw         json.RawMessage
}

// Decode turns a relay message into an Event.
func Decode(msg *relay.Message) (Event, error) {
	ev := Event{Room: string(msg.RoomID), Raw: msg.Payload}

	switch msg.Type {
	case relay.EventUserConnected, relay.EventUserDisconnected:
		ev.Kind = EventPeerJoined
		if msg.Type == relay.EventUserDisconnected {
			ev.Kind = EventPeerLeft
		}
		if err := json.Unmarshal(msg.Payload, &ev.Participant); err != nil {
			return Event{}, fmt.Errorf("decode %s payload: %w", msg.Type, err)
		}

	case relay.EventCreateMessage:
		ev.Kind = EventChat
		// A payload that is not a ChatPayload object is shown as raw JSON.
		if err := json.Unmarshal(msg.Payload, &ev.Chat); err != nil || ev.Chat.Text == "" {
			ev.Chat = ChatPayload{Text: string(msg.Payload)}
		}

	default:
		return Event{}, fmt.Errorf("unexpected event type %q", msg.Type)
	}

	return ev, nil
}

// Handler decodes incoming relay messages into Events.
type Handler struct {
	client *Client
	Events chan Event
	Errors chan error
}

// NewHandler creates a handler reading from client.
func NewHandler(client *Client) *Handler {
	return &Handler{
		client: client,
		Events: make(chan Event, 32),
		Errors: make(chan error, 8),
	}
}

// Start routes incoming messages until the connection ends, then closes
// both channels.
func (h *Handler) Start() {
	defer func() {
		close(h.Events)
		close(h.Errors)
	}()

	for msg := range h.client.Incoming() {
		ev, err := Decode(msg)
		if err != nil {
			select {
			case h.Errors <- err:
			default:
			}
			continue
		}
		h.Events <- ev
	}
}

// LogErrors logs every decode failure at debug level until the handler stops.
func (h *Handler) LogErrors(log *slog.Logger) {
	for err := range h.Errors {
		log.Debug("dropping relay event", "err", err)
	}
}
