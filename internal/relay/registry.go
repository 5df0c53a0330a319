package relay

import (
	"sort"

	"github.com/samber/lo"
)

// Conn is the relay's view of one open connection.
// Deliver must not block; it reports false when the event was dropped.
type Conn interface {
	ID() ConnID
	Deliver(msg *Message) bool
}

// Membership is what the registry knows about one joined connection.
type Membership struct {
	Conn        Conn
	Room        RoomID
	Participant string
}

// RoomStat is a point-in-time summary of one occupied room.
type RoomStat struct {
	RoomID  RoomID `json:"room_id"`
	Members int    `json:"members"`
}

// Registry is the authoritative mapping from connection to room membership.
// Rooms exist only while they have members.
//
// Registry is not safe for concurrent use; the hub goroutine owns it.
type Registry struct {
	members map[ConnID]*Membership
	rooms   map[RoomID]map[ConnID]struct{}
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		members: make(map[ConnID]*Membership),
		rooms:   make(map[RoomID]map[ConnID]struct{}),
	}
}

// Join records that conn is now a member of room, creating the room lazily.
// A connection joins at most once; a second join returns ErrAlreadyJoined.
func (r *Registry) Join(conn Conn, room RoomID, participant string) error {
	id := conn.ID()
	if _, ok := r.members[id]; ok {
		return ErrAlreadyJoined
	}

	r.members[id] = &Membership{Conn: conn, Room: room, Participant: participant}

	set, ok := r.rooms[room]
	if !ok {
		set = make(map[ConnID]struct{})
		r.rooms[room] = set
	}
	set[id] = struct{}{}

	return nil
}

// Leave removes any room association for id and returns it.
// It is a no-op returning false if id had not joined.
func (r *Registry) Leave(id ConnID) (Membership, bool) {
	m, ok := r.members[id]
	if !ok {
		return Membership{}, false
	}
	delete(r.members, id)

	if set, ok := r.rooms[m.Room]; ok {
		delete(set, id)
		if len(set) == 0 {
			delete(r.rooms, m.Room)
		}
	}

	return *m, true
}

// RoomOf returns the room id has joined, if any.
func (r *Registry) RoomOf(id ConnID) (RoomID, bool) {
	m, ok := r.members[id]
	if !ok {
		return "", false
	}
	return m.Room, true
}

// Membership returns the full membership record of id.
func (r *Registry) Membership(id ConnID) (Membership, bool) {
	m, ok := r.members[id]
	if !ok {
		return Membership{}, false
	}
	return *m, true
}

// Members returns the connections currently joined to room, in no particular order.
func (r *Registry) Members(room RoomID) []Conn {
	set := r.rooms[room]
	return lo.MapToSlice(set, func(id ConnID, _ struct{}) Conn {
		return r.members[id].Conn
	})
}

// Size returns the number of members of room.
func (r *Registry) Size(room RoomID) int {
	return len(r.rooms[room])
}

// Len returns the number of joined connections across all rooms.
func (r *Registry) Len() int {
	return len(r.members)
}

// Rooms summarizes every occupied room, sorted by room id.
func (r *Registry) Rooms() []RoomStat {
	stats := lo.MapToSlice(r.rooms, func(room RoomID, set map[ConnID]struct{}) RoomStat {
		return RoomStat{RoomID: room, Members: len(set)}
	})
	sort.Slice(stats, func(i, j int) bool { return stats[i].RoomID < stats[j].RoomID })
	return stats
}
