package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Hub is the broadcast router. It owns the connection-to-room delivery map
// and fans events out to every live connection bound to a room. Delivery is
// fire-and-forget: nothing is awaited and nothing is retried, a disconnected
// recipient simply misses the event.
type Hub struct {
	rooms   map[string]map[*Client]struct{}
	clients map[string]*Client
	mu      sync.RWMutex

	dispatcher   *Dispatcher
	onDisconnect func(ctx context.Context, connID string)

	ctx    context.Context
	cancel context.CancelFunc

	stats   HubStats
	statsMu sync.RWMutex
}

type HubStats struct {
	TotalRooms       int       `json:"total_rooms"`
	TotalClients     int       `json:"total_clients"`
	TotalConnections int64     `json:"total_connections"`
	EventsSent       int64     `json:"events_sent"`
	LastReset        time.Time `json:"last_reset"`
}

func NewHub(dispatcher *Dispatcher) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		rooms:      make(map[string]map[*Client]struct{}),
		clients:    make(map[string]*Client),
		dispatcher: dispatcher,
		ctx:        ctx,
		cancel:     cancel,
		stats: HubStats{
			LastReset: time.Now(),
		},
	}
}

// OnDisconnect registers the callback invoked when a connection dies. Set
// once at wiring time.
func (h *Hub) OnDisconnect(fn func(ctx context.Context, connID string)) {
	h.onDisconnect = fn
}

// Register adds a freshly upgraded connection and starts its pumps.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	h.clients[client.ID] = client
	h.mu.Unlock()

	h.updateStats(func(stats *HubStats) {
		stats.TotalConnections++
	})

	client.Start()

	log.Info().Str("connID", client.ID).Msg("ws: client registered")
}

// JoinRoom binds the connection to a room for delivery.
func (h *Hub) JoinRoom(room, connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	client, ok := h.clients[connID]
	if !ok {
		return
	}

	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*Client]struct{})
	}
	h.rooms[room][client] = struct{}{}
}

// LeaveRoom removes the connection from a room's delivery set.
func (h *Hub) LeaveRoom(room, connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	client, ok := h.clients[connID]
	if !ok {
		return
	}

	if clients, ok := h.rooms[room]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.rooms, room)
		}
	}
}

// BroadcastToRoom sends an event to all connections currently bound to room.
func (h *Hub) BroadcastToRoom(room string, message OutgoingMessage) {
	h.broadcastToRoomInternal(room, message, "")
}

// BroadcastToRoomExcept sends an event to all connections in a room except
// the named one. Used for typing indicators and entry/exit notices.
func (h *Hub) BroadcastToRoomExcept(room string, message OutgoingMessage, exceptConnID string) {
	h.broadcastToRoomInternal(room, message, exceptConnID)
}

func (h *Hub) broadcastToRoomInternal(room string, message OutgoingMessage, exceptConnID string) {
	message.Room = room

	data, err := json.Marshal(message)
	if err != nil {
		log.Error().Err(err).Str("room", room).Msg("ws: failed to marshal broadcast message")
		return
	}

	// Snapshot targets, then send outside the lock.
	h.mu.RLock()
	var targets []*Client
	if clients, ok := h.rooms[room]; ok {
		targets = make([]*Client, 0, len(clients))
		for client := range clients {
			if exceptConnID != "" && client.ID == exceptConnID {
				continue
			}
			targets = append(targets, client)
		}
	}
	h.mu.RUnlock()

	if len(targets) == 0 {
		return
	}

	for _, client := range targets {
		select {
		case client.Send <- data:
		case <-client.ctx.Done():
		default:
			// Slow consumer - drop the event and cut the connection loose.
			log.Warn().Str("room", room).Str("connID", client.ID).Msg("ws: slow consumer, dropping message")
			go client.Close()
		}
	}

	h.updateStats(func(stats *HubStats) {
		stats.EventsSent += int64(len(targets))
	})

	log.Debug().Str("room", room).Int("targets", len(targets)).Str("event", message.Event).Msg("ws: broadcast completed")
}

// SendToClient delivers an event to a single connection. Used for rejection
// notices that only the sender should see.
func (h *Hub) SendToClient(connID string, message OutgoingMessage) {
	h.mu.RLock()
	client, ok := h.clients[connID]
	h.mu.RUnlock()

	if !ok {
		return
	}

	data, err := json.Marshal(message)
	if err != nil {
		log.Error().Err(err).Str("connID", connID).Msg("ws: failed to marshal client message")
		return
	}

	select {
	case client.Send <- data:
	case <-client.ctx.Done():
	default:
		log.Warn().Str("connID", connID).Msg("ws: client buffer full")
	}
}

// GetHubStats returns overall hub statistics.
func (h *Hub) GetHubStats() HubStats {
	h.statsMu.RLock()
	defer h.statsMu.RUnlock()

	h.mu.RLock()
	h.stats.TotalRooms = len(h.rooms)
	h.stats.TotalClients = len(h.clients)
	h.mu.RUnlock()

	return h.stats
}

func (h *Hub) updateStats(fn func(*HubStats)) {
	h.statsMu.Lock()
	fn(&h.stats)
	h.statsMu.Unlock()
}

// handleDisconnect runs when a client's read pump exits. The presence
// callback fires first so roster notifications can still enumerate the
// affected rooms, then the connection is dropped from every delivery set.
func (h *Hub) handleDisconnect(c *Client) {
	if h.onDisconnect != nil {
		h.onDisconnect(h.ctx, c.ID)
	}

	h.mu.Lock()
	delete(h.clients, c.ID)
	for room, clients := range h.rooms {
		delete(clients, c)
		if len(clients) == 0 {
			delete(h.rooms, room)
		}
	}
	h.mu.Unlock()

	c.Close()

	log.Info().Str("connID", c.ID).Msg("ws: client disconnected")
}

// Close gracefully shuts down the hub.
func (h *Hub) Close() {
	log.Info().Msg("ws: shutting down hub")

	h.cancel()

	h.mu.RLock()
	allClients := make([]*Client, 0, len(h.clients))
	for _, client := range h.clients {
		allClients = append(allClients, client)
	}
	h.mu.RUnlock()

	for _, client := range allClients {
		client.Close()
	}

	log.Info().Int("clients", len(allClients)).Msg("ws: hub shutdown completed")
}
