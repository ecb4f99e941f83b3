package websocket

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

type BalanceUpdate struct {
	ClientID string `json:"client_id"`
	Balance  string `json:"balance"`
	Source   string `json:"source"`
}

// Hub fans balance updates out to every connected staff session.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
	}
}

func (h *Hub) Register(userID string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[userID] == nil {
		h.clients[userID] = make(map[*Client]struct{})
	}
	h.clients[userID][client] = struct{}{}
}

func (h *Hub) Unregister(userID string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[userID] == nil {
		return
	}
	delete(h.clients[userID], client)
	if len(h.clients[userID]) == 0 {
		delete(h.clients, userID)
	}
}

func (h *Hub) Sessions() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	total := 0
	for _, sessions := range h.clients {
		total += len(sessions)
	}
	return total
}

// BroadcastBalance never blocks; a session whose buffer is full misses the update.
func (h *Hub) BroadcastBalance(update BalanceUpdate) {
	payload, err := json.Marshal(update)
	if err != nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for userID, sessions := range h.clients {
		for client := range sessions {
			select {
			case client.send <- payload:
			default:
				zap.L().Warn("dropping balance update for slow session",
					zap.String("user_id", userID),
					zap.String("client_id", update.ClientID),
				)
			}
		}
	}
}
