package relay

import (
	"encoding/json"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func TestCodecFor(t *testing.T) {
	require.Equal(t, CodecMsgpack, CodecFor("msgpack").Name())
	require.Equal(t, CodecJSON, CodecFor("json").Name())
	require.Equal(t, CodecJSON, CodecFor("").Name())
	require.Equal(t, CodecJSON, CodecFor("soap").Name())

	require.Equal(t, websocket.BinaryMessage, MsgpackCodec{}.FrameType())
	require.Equal(t, websocket.TextMessage, JSONCodec{}.FrameType())
}

func TestJSONCodec_WireShape(t *testing.T) {
	data, err := JSONCodec{}.Encode(&Message{Type: EventUserConnected, RoomID: "abc", Payload: participantPayload("p2")})
	require.NoError(t, err)
	require.JSONEq(t, `{"type":"user-connected","room_id":"abc","payload":"p2"}`, string(data))

	var msg Message
	require.NoError(t, JSONCodec{}.Decode([]byte(`{"type":"join-room","room_id":"abc","participant_id":"p1"}`), &msg))
	require.Equal(t, EventJoinRoom, msg.Type)
	require.Equal(t, RoomID("abc"), msg.RoomID)
	require.Equal(t, "p1", msg.ParticipantID)
}

func TestMsgpackCodec_TranscodesPayload(t *testing.T) {
	// A msgpack client sends a chat message...
	in, err := msgpack.Marshal(map[string]any{
		"type":    "message",
		"payload": map[string]any{"text": "hi", "n": 3},
	})
	require.NoError(t, err)

	var msg Message
	require.NoError(t, MsgpackCodec{}.Decode(in, &msg))
	require.Equal(t, EventMessage, msg.Type)
	require.JSONEq(t, `{"text":"hi","n":3}`, string(msg.Payload))

	// ...and it reaches another msgpack client intact.
	out, err := MsgpackCodec{}.Encode(&Message{Type: EventCreateMessage, RoomID: "abc", Payload: msg.Payload})
	require.NoError(t, err)

	var frame struct {
		Type    string         `msgpack:"type"`
		RoomID  string         `msgpack:"room_id"`
		Payload map[string]any `msgpack:"payload"`
	}
	require.NoError(t, msgpack.Unmarshal(out, &frame))
	require.Equal(t, EventCreateMessage, frame.Type)
	require.Equal(t, "abc", frame.RoomID)
	require.Equal(t, "hi", frame.Payload["text"])
}

func TestMsgpackCodec_KeepsNumbersExact(t *testing.T) {
	payload := json.RawMessage(`{"id":9007199254740993,"max":18446744073709551615,"neg":-9007199254740993,"ratio":0.25,"list":[1,2.5]}`)

	out, err := MsgpackCodec{}.Encode(&Message{Type: EventCreateMessage, Payload: payload})
	require.NoError(t, err)

	var frame struct {
		Payload struct {
			ID    int64   `msgpack:"id"`
			Max   uint64  `msgpack:"max"`
			Neg   int64   `msgpack:"neg"`
			Ratio float64 `msgpack:"ratio"`
		} `msgpack:"payload"`
	}
	require.NoError(t, msgpack.Unmarshal(out, &frame))
	require.Equal(t, int64(9007199254740993), frame.Payload.ID)
	require.Equal(t, uint64(18446744073709551615), frame.Payload.Max)
	require.Equal(t, int64(-9007199254740993), frame.Payload.Neg)
	require.Equal(t, 0.25, frame.Payload.Ratio)

	// Back through a msgpack member, the JSON side sees the same payload.
	var msg Message
	require.NoError(t, MsgpackCodec{}.Decode(out, &msg))
	require.JSONEq(t, string(payload), string(msg.Payload))
	require.Contains(t, string(msg.Payload), `"id":9007199254740993`)
	require.Contains(t, string(msg.Payload), `"max":18446744073709551615`)
}

func TestMsgpackCodec_NoPayload(t *testing.T) {
	in, err := msgpack.Marshal(map[string]any{"type": "join-room", "room_id": "abc", "participant_id": "p1"})
	require.NoError(t, err)

	var msg Message
	require.NoError(t, MsgpackCodec{}.Decode(in, &msg))
	require.Equal(t, RoomID("abc"), msg.RoomID)
	require.Equal(t, "p1", msg.ParticipantID)
	require.Nil(t, msg.Payload)
}

func TestMsgpackCodec_RejectsGarbage(t *testing.T) {
	var msg Message
	require.Error(t, MsgpackCodec{}.Decode([]byte{0xc1}, &msg))
	require.Error(t, JSONCodec{}.Decode([]byte(`{`), &msg))

	_, err := MsgpackCodec{}.Encode(&Message{Type: "x", Payload: json.RawMessage(`{broken`)})
	require.Error(t, err)
}
