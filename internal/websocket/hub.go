package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"ai-docchat-be/internal/model"
	"ai-docchat-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// relayChannel is the redis pub/sub channel used to fan notifications
// out to every running instance. The wildcard user id "*" marks a
// message addressed to all connected clients.
const (
	relayChannel    = "docchat_notify"
	broadcastUserID = "*"
)

// relayEnvelope is the cross-instance wire format on relayChannel.
type relayEnvelope struct {
	TargetUserID string          `json:"target_user_id"`
	Message      json.RawMessage `json:"message"`
}

// Hub tracks live websocket clients per user. A user may hold several
// connections at once (multiple tabs or devices), so each entry is a
// slice. When redis is configured, every delivery is also relayed so
// clients connected to other instances receive it too.
type Hub struct {
	clients map[uuid.UUID][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	rdb    *redis.Client
	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[uuid.UUID][]*Client),
		rdb:        rdb,
		logger:     log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.consumeRelay()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = append(h.clients[client.UserID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"user_id": client.UserID})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.UserID]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.UserID] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.UserID]) == 0 {
					delete(h.clients, client.UserID)
					h.logger.Info("Hub", "Last connection closed", map[string]interface{}{"user_id": client.UserID})
				}
			}
			h.mu.Unlock()
		}
	}
}

// Send delivers a notification to every connection the user holds on
// this instance, then relays it for other instances. Implements
// service.NotificationDelivery.
func (h *Hub) Send(userID uuid.UUID, notification model.Notification) {
	data := encodeFrame(notification)

	h.mu.RLock()
	clients := h.clients[userID]
	h.mu.RUnlock()
	h.deliver(clients, data)

	h.relay(userID.String(), data)
}

// Broadcast delivers a notification to every connected client on every
// instance.
func (h *Hub) Broadcast(notification model.Notification) {
	data := encodeFrame(notification)

	h.mu.RLock()
	for _, clients := range h.clients {
		h.deliver(clients, data)
	}
	h.mu.RUnlock()

	h.relay(broadcastUserID, data)
}

func encodeFrame(notification model.Notification) []byte {
	data, _ := json.Marshal(map[string]interface{}{
		"type": "notification",
		"data": notification,
	})
	return data
}

// deliver writes to each client's buffered channel. A full buffer
// means the reader is gone or stuck, so the connection is dropped.
// Unregistration happens on a separate goroutine because callers may
// hold the read lock the Run loop needs.
func (h *Hub) deliver(clients []*Client, data []byte) {
	for _, client := range clients {
		select {
		case client.Send <- data:
		default:
			h.logger.Warn("Hub", "Send buffer full, dropping connection", map[string]interface{}{"user_id": client.UserID})
			go func(c *Client) { h.unregister <- c }(client)
		}
	}
}

func (h *Hub) relay(targetUserID string, data []byte) {
	if h.rdb == nil {
		return
	}
	payload, _ := json.Marshal(relayEnvelope{
		TargetUserID: targetUserID,
		Message:      data,
	})
	if err := h.rdb.Publish(context.Background(), relayChannel, payload).Err(); err != nil {
		h.logger.Warn("Hub", "Failed to relay notification", map[string]interface{}{"error": err.Error()})
	}
}

// consumeRelay receives envelopes published by other instances and
// delivers them to matching local clients. Messages this instance
// relayed itself come back too; local clients already got them through
// their channel buffer, and a duplicate write is harmless because the
// frontend dedupes on notification id.
func (h *Hub) consumeRelay() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, relayChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var envelope relayEnvelope
		if err := json.Unmarshal([]byte(msg.Payload), &envelope); err != nil {
			h.logger.Warn("Hub", "Bad relay envelope", map[string]interface{}{"error": err.Error()})
			continue
		}

		if envelope.TargetUserID == broadcastUserID {
			h.mu.RLock()
			for _, clients := range h.clients {
				h.deliver(clients, envelope.Message)
			}
			h.mu.RUnlock()
			continue
		}

		uid, err := uuid.Parse(envelope.TargetUserID)
		if err != nil {
			continue
		}

		h.mu.RLock()
		clients := h.clients[uid]
		h.mu.RUnlock()
		h.deliver(clients, envelope.Message)
	}
}
