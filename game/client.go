package game

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	sendBufferSize = 256
	pongWait       = time.Minute
	pingInterval   = 30 * time.Second
	writeWait      = 10 * time.Second
)

// Client is one websocket connection, identified by a hub-minted
// connection id that doubles as the lobby's opaque connection handle.
type Client struct {
	id      string
	socket  *websocket.Conn
	send    chan Envelope
	limiter *rate.Limiter
}

func newClient(id string, socket *websocket.Conn) *Client {
	return &Client{
		id:      id,
		socket:  socket,
		send:    make(chan Envelope, sendBufferSize),
		limiter: rate.NewLimiter(5, 10),
	}
}

func (c *Client) Id() string {
	return c.id
}

type clientEnvelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// ReadPump delivers inbound envelopes to handle until the connection
// dies. Messages beyond the per-connection rate are dropped with an
// error event rather than processed.
func (c *Client) ReadPump(handle func(event string, data json.RawMessage)) {
	c.socket.SetReadDeadline(time.Now().Add(pongWait))
	c.socket.SetPongHandler(func(string) error {
		c.socket.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var env clientEnvelope
		if err := c.socket.ReadJSON(&env); err != nil {
			return
		}

		if !c.limiter.Allow() {
			enqueue(c, Envelope{Event: EventError, Data: ErrorPayload{Message: "too-many-messages"}})
			continue
		}

		handle(env.Event, env.Data)
	}
}

// WritePump drains the send queue onto the socket and keeps the
// connection alive with pings. Exits when the hub closes the queue or
// a write fails, and closes the socket either way.
func (c *Client) WritePump() {
	pings := time.NewTicker(pingInterval)
	defer pings.Stop()
	defer c.socket.Close()

	for {
		select {
		case env, ok := <-c.send:
			if !ok {
				c.socket.SetWriteDeadline(time.Now().Add(writeWait))
				c.socket.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.socket.WriteJSON(env); err != nil {
				log.Debug().Err(err).Str("conn_id", c.id).Msg("write failed")
				return
			}
		case <-pings.C:
			c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.socket.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
