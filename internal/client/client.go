package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/anushkanegi003/google-meet/internal/relay"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

// Client manages one websocket connection to the relay.
type Client struct {
	conn      *websocket.Conn
	serverURL string
	codec     relay.Codec
	incoming  chan *relay.Message
	outgoing  chan *relay.Message
	done      chan struct{}
	closeOnce sync.Once
}

// New creates a client for serverURL speaking the named codec.
func New(serverURL, codec string) *Client {
	return &Client{
		serverURL: serverURL,
		codec:     relay.CodecFor(codec),
		incoming:  make(chan *relay.Message, 64),
		outgoing:  make(chan *relay.Message, 16),
		done:      make(chan struct{}),
	}
}

// Connect dials the relay and starts the read and write pumps.
func (c *Client) Connect(ctx context.Context) error {
	u, err := url.Parse(c.serverURL)
	if err != nil {
		return newError("connect", fmt.Errorf("invalid server URL: %w", err))
	}

	dialer := *websocket.DefaultDialer
	dialer.Subprotocols = []string{c.codec.Name()}

	conn, _, err := dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return newError("connect", err)
	}

	// The relay falls back to JSON when it does not know our subprotocol.
	c.codec = relay.CodecFor(conn.Subprotocol())
	c.conn = conn
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	go c.readPump()
	go c.writePump()

	return nil
}

// Codec returns the name of the negotiated codec.
func (c *Client) Codec() string {
	return c.codec.Name()
}

// readPump reads frames from the connection until it fails.
func (c *Client) readPump() {
	defer func() {
		c.conn.Close()
		close(c.incoming)
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var msg relay.Message
		if err := c.codec.Decode(data, &msg); err != nil {
			continue
		}

		select {
		case c.incoming <- &msg:
		case <-c.done:
			return
		}
	}
}

// writePump writes queued messages and sends periodic pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.outgoing:
			data, err := c.codec.Encode(msg)
			if err != nil {
				continue
			}
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(c.codec.FrameType(), data); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// SendMessage queues msg for the relay.
func (c *Client) SendMessage(msg *relay.Message) error {
	if c.conn == nil {
		return newError("send", ErrNotConnected)
	}
	select {
	case <-c.done:
		return newError("send", ErrClosed)
	default:
	}
	select {
	case c.outgoing <- msg:
		return nil
	case <-c.done:
		return newError("send", ErrClosed)
	}
}

// Join asks the relay to place this connection in room as participant.
func (c *Client) Join(room, participant string) error {
	return c.SendMessage(&relay.Message{
		Type:          relay.EventJoinRoom,
		RoomID:        relay.RoomID(room),
		ParticipantID: participant,
	})
}

// Say relays payload to the whole room, this client included.
func (c *Client) Say(payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return newError("say", err)
	}
	return c.SendMessage(&relay.Message{Type: relay.EventMessage, Payload: raw})
}

// Incoming returns the channel of messages from the relay.
// It is closed when the connection ends.
func (c *Client) Incoming() <-chan *relay.Message {
	return c.incoming
}

// Close ends the connection. It is safe to call more than once.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}
