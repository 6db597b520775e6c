package realtime

import (
	"context"
	"encoding/json"
	"expvar"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const bookingChannelPrefix = "hostelhub:bookings:"

var (
	wsConnectionsGauge   = expvar.NewInt("websocket_connections")
	wsEventsSentTotal    = expvar.NewInt("websocket_events_sent_total")
	wsEventsDroppedTotal = expvar.NewInt("websocket_events_dropped_total")
)

// Connection is one subscribed WebSocket client.
type Connection struct {
	UserID string
	Conn   *websocket.Conn
	Send   chan []byte

	role  string
	token string
}

type envelope struct {
	Origin string          `json:"origin"`
	Event  json.RawMessage `json:"event"`
}

// Hub fans booking events out to subscribers, across instances when Redis is set.
type Hub struct {
	// topic (hostel id or TopicAll) -> local connections
	topics map[string]map[*Connection]bool
	conns  map[*Connection]bool

	redis  *redis.Client
	pubsub *redis.PubSub

	mu sync.RWMutex

	register   chan *Connection
	unregister chan *Connection

	ctx    context.Context
	cancel context.CancelFunc

	instanceID string
}

// NewHub creates a hub. A nil client keeps fan-out in process.
func NewHub(redisClient *redis.Client) *Hub {
	ctx, cancel := context.WithCancel(context.Background())

	h := &Hub{
		topics:     make(map[string]map[*Connection]bool),
		conns:      make(map[*Connection]bool),
		redis:      redisClient,
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		ctx:        ctx,
		cancel:     cancel,
		instanceID: uuid.NewString(),
	}

	if redisClient != nil {
		h.pubsub = redisClient.PSubscribe(ctx, bookingChannelPrefix+"*")
	}
	return h
}

// Run starts the hub (call in goroutine)
func (h *Hub) Run() {
	if h.pubsub != nil {
		go h.runRedisSubscriber()
	}

	for {
		select {
		case <-h.ctx.Done():
			return

		case conn := <-h.register:
			h.mu.Lock()
			h.conns[conn] = true
			h.mu.Unlock()
			wsConnectionsGauge.Add(1)
			log.Debug().Str("user_id", conn.UserID).Msg("Client connected to booking events")

		case conn := <-h.unregister:
			h.mu.Lock()
			if h.conns[conn] {
				delete(h.conns, conn)
				close(conn.Send)
				wsConnectionsGauge.Add(-1)
			}
			for topic, subs := range h.topics {
				delete(subs, conn)
				if len(subs) == 0 {
					delete(h.topics, topic)
				}
			}
			h.mu.Unlock()
			log.Debug().Str("user_id", conn.UserID).Msg("Client disconnected from booking events")
		}
	}
}

func (h *Hub) runRedisSubscriber() {
	ch := h.pubsub.Channel()
	for {
		select {
		case <-h.ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			hostelID := strings.TrimPrefix(msg.Channel, bookingChannelPrefix)

			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				continue
			}
			// Already delivered locally by the publisher.
			if env.Origin == h.instanceID {
				continue
			}
			h.broadcastLocal(hostelID, env.Event)
		}
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	select {
	case h.register <- conn:
	case <-h.ctx.Done():
	}
}

// Unregister removes a connection and all of its subscriptions
func (h *Hub) Unregister(conn *Connection) {
	select {
	case h.unregister <- conn:
	case <-h.ctx.Done():
	}
}

// Subscribe adds conn to a hostel topic (or TopicAll).
func (h *Hub) Subscribe(conn *Connection, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.topics[topic] == nil {
		h.topics[topic] = make(map[*Connection]bool)
	}
	h.topics[topic][conn] = true
}

func (h *Hub) Unsubscribe(conn *Connection, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if subs := h.topics[topic]; subs != nil {
		delete(subs, conn)
		if len(subs) == 0 {
			delete(h.topics, topic)
		}
	}
}

// PublishBookingUpdated delivers ev to local subscribers and, with Redis,
// to subscribers on the other instances.
func (h *Hub) PublishBookingUpdated(ctx context.Context, ev BookingUpdated) {
	if ev.Type == "" {
		ev.Type = EventBookingUpdated
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}

	data, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal booking event")
		return
	}

	h.broadcastLocal(ev.HostelID, data)

	if h.redis == nil {
		return
	}
	payload, err := json.Marshal(envelope{Origin: h.instanceID, Event: data})
	if err != nil {
		return
	}
	channel := bookingChannelPrefix + ev.HostelID
	if err := h.redis.Publish(ctx, channel, payload).Err(); err != nil {
		log.Error().Err(err).Str("channel", channel).Msg("Redis publish failed")
	}
}

// broadcastLocal sends data to connections of this instance subscribed to
// the hostel or to TopicAll. Each connection receives the event once.
func (h *Hub) broadcastLocal(hostelID string, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	seen := make(map[*Connection]bool)
	for _, topic := range []string{hostelID, TopicAll} {
		for conn := range h.topics[topic] {
			if seen[conn] || !h.conns[conn] {
				continue
			}
			seen[conn] = true
			select {
			case conn.Send <- data:
				wsEventsSentTotal.Add(1)
			default:
				wsEventsDroppedTotal.Add(1)
				log.Warn().Str("user_id", conn.UserID).Msg("WebSocket send buffer full")
			}
		}
	}
}

// ConnectionCount returns number of local connections
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// SubscriberCount returns number of local subscribers of topic.
func (h *Hub) SubscriberCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}

// Shutdown gracefully shuts down the hub
func (h *Hub) Shutdown() {
	h.cancel()
	if h.pubsub != nil {
		_ = h.pubsub.Close()
	}
}
