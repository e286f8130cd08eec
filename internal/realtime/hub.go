// Package realtime streams bot activity (dispatched polls, reconciled
// answers) to connected dashboard clients over WebSocket.
package realtime

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

const (
	// PingInterval and PongWait are used for heartbeat.
	PingInterval = 30
	PongWait     = 60
)

// Hub maintains chat_id -> set of connections and broadcasts events.
// Uses Redis pub/sub for horizontal scaling: local broadcast + publish to Redis.
type Hub struct {
	// chatID -> map[clientID]*Client
	chats  map[int64]map[string]*Client
	subs   map[int64]func() // cancel Redis subscription per chat
	mu     sync.RWMutex
	logger *zap.Logger
	pub    RedisPublisher
	sub    RedisSubscriber
}

// RedisPublisher publishes chat events to Redis for cross-instance broadcast.
type RedisPublisher interface {
	PublishChatEvent(chatID int64, event string, payload []byte) error
}

// RedisSubscriber subscribes to chat channels and invokes handler for incoming events.
type RedisSubscriber interface {
	SubscribeChat(chatID int64, handler func(event string, payload []byte)) (cancel func(), err error)
}

// NewHub creates a new WebSocket hub.
func NewHub(logger *zap.Logger, pub RedisPublisher, sub RedisSubscriber) *Hub {
	return &Hub{
		chats:  make(map[int64]map[string]*Client),
		subs:   make(map[int64]func()),
		logger: logger,
		pub:    pub,
		sub:    sub,
	}
}

// Register adds a client to a chat room. Starts the Redis subscription for
// the chat when the first client joins.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	if h.chats[c.ChatID] == nil {
		h.chats[c.ChatID] = make(map[string]*Client)
		if h.sub != nil {
			cancel, err := h.sub.SubscribeChat(c.ChatID, func(event string, payload []byte) {
				h.BroadcastToChat(c.ChatID, event, json.RawMessage(payload))
			})
			if err != nil {
				h.logger.Warn("chat feed subscription failed; events from other instances will be missed",
					zap.Int64("chat_id", c.ChatID), zap.Error(err))
			} else {
				h.subs[c.ChatID] = cancel
			}
		}
	}
	h.chats[c.ChatID][c.ID] = c
	h.mu.Unlock()
	h.logger.Debug("client joined chat feed", zap.String("client_id", c.ID), zap.Int64("chat_id", c.ChatID))
}

// Unregister removes a client. Cancels the Redis subscription when the last
// client for the chat leaves.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if m, ok := h.chats[c.ChatID]; ok {
		delete(m, c.ID)
		if len(m) == 0 {
			delete(h.chats, c.ChatID)
			if cancel, ok := h.subs[c.ChatID]; ok {
				cancel()
				delete(h.subs, c.ChatID)
			}
		}
	}
	h.mu.Unlock()
	h.logger.Debug("client left chat feed", zap.String("client_id", c.ID), zap.Int64("chat_id", c.ChatID))
}

// BroadcastToChat sends an event to all local clients watching a chat.
func (h *Hub) BroadcastToChat(chatID int64, event string, payload interface{}) {
	var data []byte
	switch v := payload.(type) {
	case []byte:
		data = v
	case json.RawMessage:
		data = v
	default:
		data, _ = json.Marshal(payload)
	}
	msg := WSMessage{Event: event, Data: data}

	// Sends are non-blocking, so the read lock is held across the whole
	// iteration; Register/Unregister mutate the same map.
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.chats[chatID] {
		select {
		case c.send <- msg:
		default:
			// buffer full, skip
		}
	}
}

// BroadcastToChatAndPublish sends to local clients and publishes to Redis for
// other instances.
func (h *Hub) BroadcastToChatAndPublish(chatID int64, event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	h.BroadcastToChat(chatID, event, payload)
	if h.pub != nil {
		_ = h.pub.PublishChatEvent(chatID, event, data)
	}
}

// ViewerCount returns the number of connected clients watching a chat.
func (h *Hub) ViewerCount(chatID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.chats[chatID])
}
