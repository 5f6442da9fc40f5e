package game

import (
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Hub tracks every live websocket client and implements Broadcaster.
// Sends enqueue into per-client buffers; a client that cannot keep up
// loses messages instead of stalling the room.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]*Client)}
}

// Register wraps a raw websocket connection into a Client with a fresh
// connection id. The caller owns starting the write pump.
func (h *Hub) Register(socket *websocket.Conn) *Client {
	client := newClient(uuid.NewString(), socket)

	h.mu.Lock()
	h.clients[client.id] = client
	h.mu.Unlock()

	return client
}

// Remove drops the client and closes its send queue, ending the write
// pump. Safe to call for ids already removed.
func (h *Hub) Remove(connId string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	client, ok := h.clients[connId]
	if !ok {
		return
	}
	delete(h.clients, connId)
	close(client.send)
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) SendTo(connId string, event string, payload any) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if client, ok := h.clients[connId]; ok {
		enqueue(client, Envelope{Event: event, Data: payload})
	}
}

func (h *Hub) SendToAllExcept(connId string, event string, payload any) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for id, client := range h.clients {
		if id == connId {
			continue
		}
		enqueue(client, Envelope{Event: event, Data: payload})
	}
}

func (h *Hub) SendToAll(event string, payload any) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients {
		enqueue(client, Envelope{Event: event, Data: payload})
	}
}

func enqueue(client *Client, env Envelope) {
	select {
	case client.send <- env:
	default:
		log.Warn().Str("conn_id", client.id).Str("event", env.Event).Msg("send buffer full, dropping event")
	}
}
