package relay

import (
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
)

// State is the lifecycle position of one connection.
type State int

const (
	StateConnected State = iota
	StateInRoom
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnected:
		return "connected"
	case StateInRoom:
		return "in_room"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

type session struct {
	conn  Conn
	state State
}

// Router maps inbound connection events to registry updates and broadcasts.
// Like the Registry, it is driven from a single goroutine.
type Router struct {
	registry    *Registry
	broadcaster *Broadcaster
	sessions    map[ConnID]*session
	validate    *validator.Validate
	log         *slog.Logger
}

// NewRouter creates a Router over the given registry and broadcaster.
func NewRouter(registry *Registry, broadcaster *Broadcaster, log *slog.Logger) *Router {
	return &Router{
		registry:    registry,
		broadcaster: broadcaster,
		sessions:    make(map[ConnID]*session),
		validate:    validator.New(),
		log:         log,
	}
}

// Connect starts tracking conn in the Connected state.
func (r *Router) Connect(conn Conn) {
	r.sessions[conn.ID()] = &session{conn: conn, state: StateConnected}
}

// State reports the lifecycle state of id. Unknown connections are Closed.
func (r *Router) State(id ConnID) State {
	s, ok := r.sessions[id]
	if !ok {
		return StateClosed
	}
	return s.state
}

// Handle applies one inbound event from connection id.
func (r *Router) Handle(id ConnID, msg *Message) error {
	s, ok := r.sessions[id]
	if !ok {
		return newEventError("handle", msg.Type, ErrUnknownConn)
	}

	switch msg.Type {
	case EventJoinRoom:
		return r.join(s, msg)
	case EventMessage:
		return r.message(s, msg)
	default:
		return newEventError("handle", msg.Type, ErrUnknownEvent)
	}
}

func (r *Router) join(s *session, msg *Message) error {
	if s.state != StateConnected {
		return newEventError("join", msg.Type, ErrAlreadyJoined)
	}

	// Room and participant ids are opaque: any string, the empty one included.
	if err := r.registry.Join(s.conn, msg.RoomID, msg.ParticipantID); err != nil {
		return newEventError("join", msg.Type, err)
	}
	s.state = StateInRoom

	// The joiner has nothing to echo yet; only existing members are told.
	n := r.broadcaster.BroadcastToRoom(msg.RoomID, EventUserConnected, participantPayload(msg.ParticipantID), s.conn.ID())
	r.log.Info("joined room", "conn", s.conn.ID(), "room", msg.RoomID, "participant", msg.ParticipantID, "notified", n)

	return nil
}

func (r *Router) message(s *session, msg *Message) error {
	if s.state != StateInRoom {
		return newEventError("message", msg.Type, ErrNotJoined)
	}

	req := chatMessage{Payload: msg.Payload}
	if err := r.validate.Struct(req); err != nil {
		return newEventError("message", msg.Type, fmt.Errorf("%w: %v", ErrInvalidEvent, err))
	}

	room, _ := r.registry.RoomOf(s.conn.ID())
	n := r.broadcaster.BroadcastToRoomInclusive(room, EventCreateMessage, req.Payload)
	r.log.Debug("relayed message", "conn", s.conn.ID(), "room", room, "recipients", n)

	return nil
}

// Disconnect closes the session of id. Members of its room, if any, are told
// the participant left. Calling Disconnect again for the same id does nothing.
func (r *Router) Disconnect(id ConnID) {
	s, ok := r.sessions[id]
	if !ok {
		return
	}
	delete(r.sessions, id)

	if s.state == StateInRoom {
		if m, ok := r.registry.Membership(id); ok {
			n := r.broadcaster.BroadcastToRoom(m.Room, EventUserDisconnected, participantPayload(m.Participant), id)
			r.registry.Leave(id)
			r.log.Info("left room", "conn", id, "room", m.Room, "participant", m.Participant, "notified", n)
		}
	}
	s.state = StateClosed
}

// Sessions returns the number of open sessions.
func (r *Router) Sessions() int {
	return len(r.sessions)
}
