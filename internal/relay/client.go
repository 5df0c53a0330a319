package relay

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// ClientOptions tunes the per-connection pumps.
type ClientOptions struct {
	// WriteWait is the time allowed to write a frame to the peer.
	WriteWait time.Duration
	// PongWait is the time allowed to read the next pong from the peer.
	PongWait time.Duration
	// MaxMessageSize caps inbound frame size.
	MaxMessageSize int64
	// SendBufferSize is the outbound queue length per connection.
	SendBufferSize int
}

// DefaultClientOptions returns the settings used when none are configured.
func DefaultClientOptions() ClientOptions {
	return ClientOptions{
		WriteWait:      10 * time.Second,
		PongWait:       60 * time.Second,
		MaxMessageSize: 64 * 1024,
		SendBufferSize: 256,
	}
}

// pingPeriod must stay below PongWait.
func (o ClientOptions) pingPeriod() time.Duration {
	return (o.PongWait * 9) / 10
}

// Client is a wrapper for a single websocket connection.
type Client struct {
	id     ConnID
	remote string
	hub    *Hub
	conn   *websocket.Conn
	codec  Codec
	opts   ClientOptions

	// send is the outbound queue. Only the hub writes to or closes it;
	// WritePump drains it.
	send chan *Message

	log *slog.Logger
}

// NewClient wraps conn for use with hub. The connection gets a fresh random id.
func NewClient(hub *Hub, conn *websocket.Conn, codec Codec, opts ClientOptions) *Client {
	id := ConnID(uuid.NewString())
	return &Client{
		id:     id,
		remote: conn.RemoteAddr().String(),
		hub:    hub,
		conn:   conn,
		codec:  codec,
		opts:   opts,
		send:   make(chan *Message, opts.SendBufferSize),
		log:    hub.log.With("conn", id),
	}
}

// ID implements Conn.
func (c *Client) ID() ConnID {
	return c.id
}

// Deliver implements Conn. It never blocks: when the queue is full the
// message is dropped for this client.
func (c *Client) Deliver(msg *Message) bool {
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// Serve registers the client with the hub and starts its pumps.
// It returns false if the hub has already stopped.
func (c *Client) Serve() bool {
	select {
	case c.hub.register <- c:
	case <-c.hub.done:
		c.conn.Close()
		return false
	}

	go c.WritePump()
	go c.ReadPump()
	return true
}

// ReadPump pumps frames from the websocket connection to the hub.
//
// The application runs ReadPump in a per-connection goroutine. It is the only
// reader of the connection.
func (c *Client) ReadPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(c.opts.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.opts.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.opts.PongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debug("read failed", "err", err)
			}
			return
		}

		var msg Message
		if err := c.codec.Decode(data, &msg); err != nil {
			c.log.Warn("dropping undecodable frame", "codec", c.codec.Name(), "err", err)
			continue
		}

		select {
		case c.hub.inbound <- inbound{client: c, msg: &msg}:
		case <-c.hub.done:
			return
		}
	}
}

// WritePump pumps messages from the hub to the websocket connection.
//
// A goroutine running WritePump is started for each connection. It is the
// only writer of the connection, which keeps per-connection delivery FIFO.
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.opts.pingPeriod())

	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteWait))
			if !ok {
				// The hub closed the queue.
				c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}

			data, err := c.codec.Encode(msg)
			if err != nil {
				c.log.Warn("dropping unencodable event", "type", msg.Type, "err", err)
				continue
			}
			if err := c.conn.WriteMessage(c.codec.FrameType(), data); err != nil {
				c.log.Debug("write failed", "err", err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
