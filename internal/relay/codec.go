package relay

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"
)

// Codec turns messages into websocket frames and back.
type Codec interface {
	// Name is the websocket subprotocol that selects the codec.
	Name() string
	// FrameType is the websocket frame type the codec writes.
	FrameType() int
	Encode(msg *Message) ([]byte, error)
	Decode(data []byte, msg *Message) error
}

// Subprotocol names.
const (
	CodecJSON    = "json"
	CodecMsgpack = "msgpack"
)

// Subprotocols lists the subprotocols the relay accepts, in preference order.
var Subprotocols = []string{CodecMsgpack, CodecJSON}

// CodecFor returns the codec for a negotiated subprotocol.
// An empty or unknown name selects JSON.
func CodecFor(name string) Codec {
	if name == CodecMsgpack {
		return MsgpackCodec{}
	}
	return JSONCodec{}
}

// JSONCodec writes text frames holding JSON.
type JSONCodec struct{}

func (JSONCodec) Name() string   { return CodecJSON }
func (JSONCodec) FrameType() int { return websocket.TextMessage }

func (JSONCodec) Encode(msg *Message) ([]byte, error) {
	return json.Marshal(msg)
}

func (JSONCodec) Decode(data []byte, msg *Message) error {
	return json.Unmarshal(data, msg)
}

// MsgpackCodec writes binary frames holding msgpack. Payloads are kept as
// JSON inside the relay, so they are transcoded on the way in and out.
type MsgpackCodec struct{}

// msgpackFrame is the msgpack shape of Message. Payload holds any value.
type msgpackFrame struct {
	Type          string             `msgpack:"type"`
	RoomID        RoomID             `msgpack:"room_id,omitempty"`
	ParticipantID string             `msgpack:"participant_id,omitempty"`
	Payload       msgpack.RawMessage `msgpack:"payload,omitempty"`
}

func (MsgpackCodec) Name() string   { return CodecMsgpack }
func (MsgpackCodec) FrameType() int { return websocket.BinaryMessage }

func (MsgpackCodec) Encode(msg *Message) ([]byte, error) {
	frame := msgpackFrame{
		Type:          msg.Type,
		RoomID:        msg.RoomID,
		ParticipantID: msg.ParticipantID,
	}

	if len(msg.Payload) > 0 {
		v, err := decodeJSONPayload(msg.Payload)
		if err != nil {
			return nil, fmt.Errorf("decode json payload: %w", err)
		}
		raw, err := msgpack.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode msgpack payload: %w", err)
		}
		frame.Payload = raw
	}

	return msgpack.Marshal(&frame)
}

func (MsgpackCodec) Decode(data []byte, msg *Message) error {
	var frame msgpackFrame
	if err := msgpack.Unmarshal(data, &frame); err != nil {
		return err
	}

	msg.Type = frame.Type
	msg.RoomID = frame.RoomID
	msg.ParticipantID = frame.ParticipantID
	msg.Payload = nil

	if len(frame.Payload) > 0 {
		var v any
		if err := msgpack.Unmarshal(frame.Payload, &v); err != nil {
			return fmt.Errorf("decode msgpack payload: %w", err)
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode json payload: %w", err)
		}
		msg.Payload = raw
	}

	return nil
}

// decodeJSONPayload parses a JSON payload keeping integers exact: they come
// back as int64 or uint64, and only non-integral numbers become float64.
func decodeJSONPayload(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return exactNumbers(v)
}

func exactNumbers(v any) (any, error) {
	switch v := v.(type) {
	case json.Number:
		if n, err := strconv.ParseInt(v.String(), 10, 64); err == nil {
			return n, nil
		}
		if n, err := strconv.ParseUint(v.String(), 10, 64); err == nil {
			return n, nil
		}
		return v.Float64()
	case map[string]any:
		for k, item := range v {
			out, err := exactNumbers(item)
			if err != nil {
				return nil, err
			}
			v[k] = out
		}
		return v, nil
	case []any:
		for i, item := range v {
			out, err := exactNumbers(item)
			if err != nil {
				return nil, err
			}
			v[i] = out
		}
		return v, nil
	default:
		return v, nil
	}
}
