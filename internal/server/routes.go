package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/anushkanegi003/google-meet/internal/relay"
)

// Options configures the HTTP surface of the relay.
type Options struct {
	// AllowedOrigins lists accepted Origin hosts. Empty allows any origin.
	AllowedOrigins  []string
	ReadBufferSize  int
	WriteBufferSize int
	Client          relay.ClientOptions
	RoomIDStyle     relay.RoomIDStyle
}

// Server wires the relay hub to HTTP routes.
type Server struct {
	hub      *relay.Hub
	opts     Options
	upgrader websocket.Upgrader
	rooms    *relay.RoomIDGenerator
	log      *slog.Logger
}

// New creates a Server for hub.
func New(hub *relay.Hub, opts Options, log *slog.Logger) *Server {
	s := &Server{hub: hub, opts: opts, log: log}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  opts.ReadBufferSize,
		WriteBufferSize: opts.WriteBufferSize,
		Subprotocols:    relay.Subprotocols,
		CheckOrigin:     s.checkOrigin,
	}
	s.rooms = relay.NewRoomIDGenerator(opts.RoomIDStyle, hub.RoomOccupied)
	return s
}

// Routes returns the relay's HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", healthCheckHandler)
	r.Get("/ws", s.ServeWs)
	r.Get("/stats", s.stats)
	r.Get("/rooms/{roomID}", s.room)
	r.Get("/", s.newRoom)

	return r
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Room relay is healthy."))
}

// ServeWs upgrades the request to a websocket and hands it to the hub.
func (s *Server) ServeWs(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already written an HTTP error response.
		s.log.Debug("failed to upgrade connection", "remote", r.RemoteAddr, "err", err)
		return
	}

	client := relay.NewClient(s.hub, conn, relay.CodecFor(conn.Subprotocol()), s.opts.Client)
	if !client.Serve() {
		s.log.Debug("rejected connection after hub stopped", "remote", r.RemoteAddr)
	}
}

// newRoom sends the caller to a freshly generated room.
func (s *Server) newRoom(w http.ResponseWriter, r *http.Request) {
	id, err := s.rooms.New(r.Context())
	if err != nil {
		s.log.Error("failed to generate room id", "err", err)
		http.Error(w, "could not allocate room", http.StatusServiceUnavailable)
		return
	}
	http.Redirect(w, r, "/rooms/"+url.PathEscape(string(id)), http.StatusFound)
}

type roomResponse struct {
	RoomID  relay.RoomID `json:"room_id"`
	Members int          `json:"members"`
	WSPath  string       `json:"ws_path"`
}

func (s *Server) room(w http.ResponseWriter, r *http.Request) {
	id := relay.RoomID(chi.URLParam(r, "roomID"))

	n, err := s.hub.RoomSize(r.Context(), id)
	if err != nil {
		http.Error(w, "relay unavailable", http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, roomResponse{RoomID: id, Members: n, WSPath: "/ws"})
}

// StatsResponse is the body of GET /stats.
type StatsResponse struct {
	Connections int              `json:"connections"`
	Rooms       []relay.RoomStat `json:"rooms"`
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	conns, rooms, err := s.hub.Stats(r.Context())
	if err != nil {
		http.Error(w, "relay unavailable", http.StatusServiceUnavailable)
		return
	}
	if rooms == nil {
		rooms = []relay.RoomStat{}
	}

	writeJSON(w, StatsResponse{Connections: conns, Rooms: rooms})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("failed to write response", "err", err)
	}
}

func (s *Server) checkOrigin(r *http.Request) bool {
	if len(s.opts.AllowedOrigins) == 0 {
		return true
	}

	origin := r.Header.Get("Origin")
	if origin == "" {
		// Non-browser clients do not send an Origin.
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return slices.Contains(s.opts.AllowedOrigins, u.Host)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		s.log.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
