package relay

import (
	"context"
	"errors"
	"log/slog"
)

// inbound pairs a decoded frame with the client that sent it.
type inbound struct {
	client *Client
	msg    *Message
}

// Hub is the single event loop of the relay. It owns the registry,
// broadcaster and router; nothing else touches them.
type Hub struct {
	registry    *Registry
	broadcaster *Broadcaster
	router      *Router

	// clients tracks every registered client so shutdown can close their queues.
	clients map[ConnID]*Client

	register   chan *Client
	unregister chan *Client
	inbound    chan inbound
	queries    chan func()

	done chan struct{}
	log  *slog.Logger
}

// NewHub creates a Hub. Call Run to start processing.
func NewHub(log *slog.Logger) *Hub {
	registry := NewRegistry()
	broadcaster := NewBroadcaster(registry, log)
	return &Hub{
		registry:    registry,
		broadcaster: broadcaster,
		router:      NewRouter(registry, broadcaster, log),
		clients:     make(map[ConnID]*Client),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		inbound:     make(chan inbound),
		queries:     make(chan func()),
		done:        make(chan struct{}),
		log:         log,
	}
}

// Run processes hub events until ctx is cancelled.
// On return every client's outbound queue has been closed.
func (h *Hub) Run(ctx context.Context) error {
	defer h.shutdown()

	for {
		select {
		case <-ctx.Done():
			return nil

		case c := <-h.register:
			h.clients[c.id] = c
			h.router.Connect(c)
			h.log.Debug("client registered", "conn", c.id, "remote", c.remote)

		case c := <-h.unregister:
			if _, ok := h.clients[c.id]; !ok {
				continue
			}
			h.router.Disconnect(c.id)
			delete(h.clients, c.id)
			close(c.send)
			h.log.Debug("client unregistered", "conn", c.id, "remote", c.remote)

		case in := <-h.inbound:
			if err := h.router.Handle(in.client.id, in.msg); err != nil {
				h.logRejected(in, err)
			}

		case q := <-h.queries:
			q()
		}
	}
}

func (h *Hub) logRejected(in inbound, err error) {
	switch {
	case errors.Is(err, ErrNotJoined), errors.Is(err, ErrAlreadyJoined):
		h.log.Debug("event ignored", "conn", in.client.id, "err", err)
	default:
		h.log.Warn("event rejected", "conn", in.client.id, "err", err)
	}
}

func (h *Hub) shutdown() {
	close(h.done)
	for id, c := range h.clients {
		h.router.Disconnect(id)
		close(c.send)
		delete(h.clients, id)
	}
	h.log.Info("hub stopped")
}

// Done is closed once the hub has stopped.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// query runs fn on the hub goroutine and waits for it to finish.
func (h *Hub) query(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	wrapped := func() {
		fn()
		close(finished)
	}

	select {
	case h.queries <- wrapped:
	case <-h.done:
		return ErrHubStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	<-finished
	return nil
}

// Stats returns the number of open connections and a summary of occupied rooms.
func (h *Hub) Stats(ctx context.Context) (int, []RoomStat, error) {
	var (
		conns int
		rooms []RoomStat
	)
	err := h.query(ctx, func() {
		conns = h.router.Sessions()
		rooms = h.registry.Rooms()
	})
	return conns, rooms, err
}

// RoomSize returns the number of members currently in room.
func (h *Hub) RoomSize(ctx context.Context, room RoomID) (int, error) {
	var n int
	err := h.query(ctx, func() {
		n = h.registry.Size(room)
	})
	return n, err
}

// RoomOccupied reports whether room currently has members.
func (h *Hub) RoomOccupied(ctx context.Context, room RoomID) (bool, error) {
	n, err := h.RoomSize(ctx, room)
	return n > 0, err
}
