package websocket

import (
	"log/slog"
	"sync"

	"github.com/mirocommunity/submit-service/internal/types"
)

// Hub maintains the set of connected moderators and broadcasts submission
// events to all of them.
type Hub struct {
	// Registered moderator connections
	clients map[*Client]bool

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Mutex to protect clients map
	mu sync.RWMutex

	// Channel of events to broadcast
	broadcast chan *types.Event
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *types.Event, 16),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			slog.Info("Moderator connected", slog.String("user_id", client.userID))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				slog.Info("Moderator disconnected", slog.String("user_id", client.userID))
			}
			h.mu.Unlock()

		case event := <-h.broadcast:
			h.broadcastEvent(event)
		}
	}
}

// RegisterClient registers a new client
func (h *Hub) RegisterClient(client *Client) {
	h.register <- client
}

// UnregisterClient unregisters a client
func (h *Hub) UnregisterClient(client *Client) {
	h.unregister <- client
}

// BroadcastToAdmins queues an event for every connected moderator.
func (h *Hub) BroadcastToAdmins(event *types.Event) {
	select {
	case h.broadcast <- event:
	default:
		slog.Warn("Broadcast channel is full, dropping event")
	}
}

func (h *Hub) broadcastEvent(event *types.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		if err := client.SendEvent(event); err != nil {
			slog.Error("Failed to send event to moderator",
				slog.String("user_id", client.userID),
				slog.String("error", err.Error()))
			go func(c *Client) {
				h.unregister <- c
			}(client)
		}
	}
}
