package websocket

import (
	"context"
	"encoding/json"
	"sync/atomic"

	"haley-companion-be/internal/pkg/logger"
	"haley-companion-be/internal/pkg/metrics"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const clusterChannel = "haley:realtime_events"

// clusterEnvelope is what instances exchange over Redis. Origin lets an
// instance ignore its own publications, which it already delivered locally.
type clusterEnvelope struct {
	Origin  string          `json:"origin"`
	UserID  string          `json:"user_id"`
	Message json.RawMessage `json:"message"`
}

type delivery struct {
	userID uuid.UUID
	data   []byte
}

// Hub keeps the open realtime connections of this instance, keyed by user.
// Only the Run goroutine touches the clients map.
type Hub struct {
	clients map[uuid.UUID]map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	deliver    chan delivery
	done       chan struct{}

	count atomic.Int64

	// Redis connection for cross-instance communication
	rdb    *redis.Client
	origin string

	logger  logger.ILogger
	metrics *metrics.Metrics
}

func NewHub(rdb *redis.Client, log logger.ILogger, m *metrics.Metrics) *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		deliver:    make(chan delivery, 256),
		done:       make(chan struct{}),
		rdb:        rdb,
		origin:     uuid.NewString(),
		logger:     log,
		metrics:    m,
	}
}

// Run owns the client registry until ctx is cancelled. On shutdown every
// client's send channel is closed so its write pump exits.
func (h *Hub) Run(ctx context.Context) {
	if h.rdb != nil {
		go h.subscribeToRedis(ctx)
	}

	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for userID, set := range h.clients {
				for client := range set {
					close(client.send)
				}
				delete(h.clients, userID)
			}
			h.setCount(0)
			return

		case client := <-h.register:
			set, ok := h.clients[client.userID]
			if !ok {
				set = make(map[*Client]struct{})
				h.clients[client.userID] = set
			}
			set[client] = struct{}{}
			h.setCount(h.count.Load() + 1)
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"user_id": client.userID})

		case client := <-h.unregister:
			if h.remove(client) {
				h.logger.Info("Hub", "Client unregistered", map[string]interface{}{"user_id": client.userID})
			}

		case d := <-h.deliver:
			for client := range h.clients[d.userID] {
				select {
				case client.send <- d.data:
				default:
					h.logger.Warn("Hub", "Client send buffer full, dropping connection", map[string]interface{}{"user_id": d.userID})
					h.remove(client)
				}
			}
		}
	}
}

// remove drops client from the registry and closes its send channel. It
// reports false when the client was already gone.
func (h *Hub) remove(client *Client) bool {
	set, ok := h.clients[client.userID]
	if !ok {
		return false
	}
	if _, ok := set[client]; !ok {
		return false
	}
	delete(set, client)
	close(client.send)
	if len(set) == 0 {
		delete(h.clients, client.userID)
	}
	h.setCount(h.count.Load() - 1)
	return true
}

func (h *Hub) setCount(n int64) {
	h.count.Store(n)
	if h.metrics != nil {
		h.metrics.SetRealtimeClients(int(n))
	}
}

// ClientCount reports the open connections on this instance.
func (h *Hub) ClientCount() int {
	return int(h.count.Load())
}

// Frame encodes one event the way clients receive it.
func Frame(eventType string, data interface{}) ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"type": eventType,
		"data": data,
	})
}

// Send pushes {"type": eventType, "data": data} to every connection of
// userID, here and, through Redis, on the other instances.
func (h *Hub) Send(ctx context.Context, userID uuid.UUID, eventType string, data interface{}) error {
	msg, err := Frame(eventType, data)
	if err != nil {
		return err
	}

	h.enqueue(delivery{userID: userID, data: msg})

	if h.rdb != nil {
		payload, err := json.Marshal(clusterEnvelope{
			Origin:  h.origin,
			UserID:  userID.String(),
			Message: msg,
		})
		if err != nil {
			return err
		}
		if err := h.rdb.Publish(ctx, clusterChannel, payload).Err(); err != nil {
			h.logger.Warn("Hub", "Redis publish failed", map[string]interface{}{"error": err.Error()})
		}
	}
	return nil
}

func (h *Hub) enqueue(d delivery) {
	select {
	case h.deliver <- d:
	case <-h.done:
	}
}

func (h *Hub) subscribeToRedis(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, clusterChannel)
	go func() {
		<-ctx.Done()
		pubsub.Close()
	}()

	for msg := range pubsub.Channel() {
		var env clusterEnvelope
		if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
			h.logger.Warn("Hub", "Redis message parse error", map[string]interface{}{"error": err.Error()})
			continue
		}
		if env.Origin == h.origin {
			continue
		}
		uid, err := uuid.Parse(env.UserID)
		if err != nil {
			continue
		}
		h.enqueue(delivery{userID: uid, data: env.Message})
	}
}
