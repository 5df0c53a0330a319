package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/anushkanegi003/google-meet/internal/relay"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T, opts Options) *httptest.Server {
	t.Helper()

	hub := relay.NewHub(discardLogger())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	if opts.Client == (relay.ClientOptions{}) {
		opts.Client = relay.DefaultClientOptions()
	}
	srv := httptest.NewServer(New(hub, opts, discardLogger()).Routes())

	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return srv
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
}

func dial(t *testing.T, server *httptest.Server, subprotocols ...string) *websocket.Conn {
	t.Helper()
	dialer := websocket.Dialer{Subprotocols: subprotocols}
	conn, _, err := dialer.Dial(wsURL(server), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, msg relay.Message) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(msg))
}

func read(t *testing.T, conn *websocket.Conn) relay.Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg relay.Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

// expectSilence asserts that nothing arrives on conn for a short while.
func expectSilence(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(150 * time.Millisecond))
	_, data, err := conn.ReadMessage()
	require.Error(t, err, "unexpected frame: %s", data)
}

// waitForMembers polls /rooms/{room} until it reports want members.
func waitForMembers(t *testing.T, server *httptest.Server, room string, want int) {
	t.Helper()
	require.Eventually(t, func() bool {
		resp, err := http.Get(server.URL + "/rooms/" + room)
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		var body roomResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return false
		}
		return body.Members == want
	}, 2*time.Second, 10*time.Millisecond)
}

func payloadString(t *testing.T, msg relay.Message) string {
	t.Helper()
	var s string
	require.NoError(t, json.Unmarshal(msg.Payload, &s))
	return s
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, Options{})

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	require.Contains(t, string(body), "healthy")
}

func TestRoomScenario(t *testing.T) {
	srv := newTestServer(t, Options{})
	c1 := dial(t, srv)
	c2 := dial(t, srv)

	send(t, c1, relay.Message{Type: relay.EventJoinRoom, RoomID: "abc", ParticipantID: "p1"})
	waitForMembers(t, srv, "abc", 1)

	// c1's first frame must be about p2: its own join produced nothing.
	send(t, c2, relay.Message{Type: relay.EventJoinRoom, RoomID: "abc", ParticipantID: "p2"})
	got := read(t, c1)
	require.Equal(t, relay.EventUserConnected, got.Type)
	require.Equal(t, "p2", payloadString(t, got))

	send(t, c2, relay.Message{Type: relay.EventMessage, Payload: json.RawMessage(`{"text":"hi"}`)})
	for _, conn := range []*websocket.Conn{c1, c2} {
		got := read(t, conn)
		require.Equal(t, relay.EventCreateMessage, got.Type)
		require.JSONEq(t, `{"text":"hi"}`, string(got.Payload))
	}

	require.NoError(t, c1.Close())
	got = read(t, c2)
	require.Equal(t, relay.EventUserDisconnected, got.Type)
	require.Equal(t, "p1", payloadString(t, got))
	expectSilence(t, c2)
}

func TestUnjoinedDisconnectIsSilent(t *testing.T) {
	srv := newTestServer(t, Options{})
	member := dial(t, srv)
	lurker := dial(t, srv)

	send(t, member, relay.Message{Type: relay.EventJoinRoom, RoomID: "abc", ParticipantID: "p1"})
	waitForMembers(t, srv, "abc", 1)

	// A message before joining is ignored, then the lurker leaves.
	send(t, lurker, relay.Message{Type: relay.EventMessage, Payload: json.RawMessage(`"psst"`)})
	require.NoError(t, lurker.Close())

	expectSilence(t, member)
}

func TestRoomsDoNotCrossDeliver(t *testing.T) {
	srv := newTestServer(t, Options{})
	a := dial(t, srv)
	x := dial(t, srv)

	send(t, a, relay.Message{Type: relay.EventJoinRoom, RoomID: "abc", ParticipantID: "pa"})
	send(t, x, relay.Message{Type: relay.EventJoinRoom, RoomID: "xyz", ParticipantID: "px"})
	waitForMembers(t, srv, "abc", 1)
	waitForMembers(t, srv, "xyz", 1)

	send(t, a, relay.Message{Type: relay.EventMessage, Payload: json.RawMessage(`"abc only"`)})
	got := read(t, a)
	require.JSONEq(t, `"abc only"`, string(got.Payload))
	expectSilence(t, x)
}

func TestMixedCodecsShareARoom(t *testing.T) {
	srv := newTestServer(t, Options{})
	js := dial(t, srv)
	mp := dial(t, srv, relay.CodecMsgpack)
	require.Equal(t, relay.CodecMsgpack, mp.Subprotocol())

	send(t, js, relay.Message{Type: relay.EventJoinRoom, RoomID: "abc", ParticipantID: "json-user"})
	waitForMembers(t, srv, "abc", 1)

	join, err := msgpack.Marshal(map[string]any{"type": relay.EventJoinRoom, "room_id": "abc", "participant_id": "mp-user"})
	require.NoError(t, err)
	require.NoError(t, mp.WriteMessage(websocket.BinaryMessage, join))

	got := read(t, js)
	require.Equal(t, relay.EventUserConnected, got.Type)
	require.Equal(t, "mp-user", payloadString(t, got))

	send(t, js, relay.Message{Type: relay.EventMessage, Payload: json.RawMessage(`{"text":"hello"}`)})

	mp.SetReadDeadline(time.Now().Add(2 * time.Second))
	frameType, data, err := mp.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, websocket.BinaryMessage, frameType)

	var frame struct {
		Type    string         `msgpack:"type"`
		Payload map[string]any `msgpack:"payload"`
	}
	require.NoError(t, msgpack.Unmarshal(data, &frame))
	require.Equal(t, relay.EventCreateMessage, frame.Type)
	require.Equal(t, "hello", frame.Payload["text"])
}

func TestStats(t *testing.T) {
	srv := newTestServer(t, Options{})
	c1 := dial(t, srv)
	dial(t, srv)

	send(t, c1, relay.Message{Type: relay.EventJoinRoom, RoomID: "abc", ParticipantID: "p1"})
	waitForMembers(t, srv, "abc", 1)

	var stats StatsResponse
	require.Eventually(t, func() bool {
		resp, err := http.Get(srv.URL + "/stats")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		stats = StatsResponse{}
		return json.NewDecoder(resp.Body).Decode(&stats) == nil && stats.Connections == 2
	}, 2*time.Second, 10*time.Millisecond)

	require.Equal(t, []relay.RoomStat{{RoomID: "abc", Members: 1}}, stats.Rooms)
}

func TestNewRoomRedirect(t *testing.T) {
	srv := newTestServer(t, Options{RoomIDStyle: relay.RoomIDWords})

	httpClient := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	resp, err := httpClient.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusFound, resp.StatusCode)
	loc := resp.Header.Get("Location")
	require.True(t, strings.HasPrefix(loc, "/rooms/"), loc)
	require.Len(t, strings.Split(strings.TrimPrefix(loc, "/rooms/"), "-"), 4)
}

func TestAllowedOrigins(t *testing.T) {
	srv := newTestServer(t, Options{AllowedOrigins: []string{"meet.example.com"}})

	header := http.Header{"Origin": {"https://evil.example.com"}}
	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv), header)
	require.Error(t, err)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	header = http.Header{"Origin": {"https://meet.example.com"}}
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv), header)
	require.NoError(t, err)
	conn.Close()
}
