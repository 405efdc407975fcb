// Package stream serves the running game to spectators: every rendered pass
// is broadcast as a msgpack frame over websocket, and the latest snapshot is
// available as JSON.
package stream

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/zeusync/timepilot/internal/core/entity"
	"github.com/zeusync/timepilot/internal/core/observability/log"
	"github.com/zeusync/timepilot/internal/render"
	"github.com/zeusync/timepilot/pkg/concurrent"
)

type ClientID string

// Frame is one broadcast message.
type Frame struct {
	Tick     uint64           `msgpack:"tick" json:"tick"`
	Commands []render.Command `msgpack:"commands" json:"commands"`
	Entities []entity.Record  `msgpack:"entities" json:"entities"`
}

type client struct {
	id          ClientID
	conn        *websocket.Conn
	connectedAt time.Time
	writeMu     sync.Mutex
}

func (c *client) write(payload []byte, timeout time.Duration) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if timeout > 0 {
		_ = c.conn.SetWriteDeadline(time.Now().Add(timeout))
	}
	return c.conn.WriteMessage(websocket.BinaryMessage, payload)
}

// HubMetrics counts broadcast activity.
type HubMetrics struct {
	Frames  uint64
	Bytes   uint64
	Dropped uint64
	Clients int
}

// Hub fans frames out to every connected spectator. A spectator whose write
// fails or times out is disconnected.
type Hub struct {
	maxClients   int
	writeTimeout time.Duration
	logger       log.Log

	mu      sync.RWMutex
	clients map[ClientID]*client

	frames  atomic.Uint64
	bytes   atomic.Uint64
	dropped atomic.Uint64
}

func NewHub(maxClients int, writeTimeout time.Duration, logger log.Log) *Hub {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Hub{
		maxClients:   maxClients,
		writeTimeout: writeTimeout,
		logger:       logger.With(log.Component("hub")),
		clients:      make(map[ClientID]*client),
	}
}

// Full reports whether another spectator would exceed the cap.
func (h *Hub) Full() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.maxClients > 0 && len(h.clients) >= h.maxClients
}

// Add registers conn and returns its id.
func (h *Hub) Add(conn *websocket.Conn) (ClientID, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.maxClients > 0 && len(h.clients) >= h.maxClients {
		return "", ErrMaxClientsReached
	}
	c := &client{
		id:          ClientID(uuid.NewString()),
		conn:        conn,
		connectedAt: time.Now(),
	}
	h.clients[c.id] = c

	h.logger.Info("Spectator connected",
		log.String("client_id", string(c.id)),
		log.String("remote_addr", conn.RemoteAddr().String()),
		log.Int("total_clients", len(h.clients)))
	return c.id, nil
}

// Remove disconnects a spectator. It reports false for unknown ids.
func (h *Hub) Remove(id ClientID) bool {
	h.mu.Lock()
	c, ok := h.clients[id]
	delete(h.clients, id)
	total := len(h.clients)
	h.mu.Unlock()
	if !ok {
		return false
	}

	_ = c.conn.Close()
	h.logger.Info("Spectator disconnected",
		log.String("client_id", string(id)),
		log.Duration("connected_for", time.Since(c.connectedAt)),
		log.Int("total_clients", total))
	return true
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast encodes frame once and writes it to every spectator. Only an
// encoding failure is returned; broken spectators are dropped.
func (h *Hub) Broadcast(frame Frame) error {
	h.mu.RLock()
	targets := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		targets = append(targets, c)
	}
	h.mu.RUnlock()
	if len(targets) == 0 {
		return nil
	}

	payload, err := msgpack.Marshal(&frame)
	if err != nil {
		return fmt.Errorf("encode frame %d: %w", frame.Tick, err)
	}

	errs := concurrent.ParallelCollect(targets, 0, func(c *client) error {
		return c.write(payload, h.writeTimeout)
	})
	for i, werr := range errs {
		if werr == nil {
			continue
		}
		h.dropped.Add(1)
		h.logger.Warn("Dropping spectator",
			log.String("client_id", string(targets[i].id)),
			log.Tick(frame.Tick),
			log.Error(werr))
		h.Remove(targets[i].id)
	}

	h.frames.Add(1)
	h.bytes.Add(uint64(len(payload)) * uint64(len(targets)))
	return nil
}

// Close disconnects every spectator.
func (h *Hub) Close() {
	h.mu.RLock()
	ids := make([]ClientID, 0, len(h.clients))
	for id := range h.clients {
		ids = append(ids, id)
	}
	h.mu.RUnlock()

	for _, id := range ids {
		h.Remove(id)
	}
}

func (h *Hub) Metrics() HubMetrics {
	return HubMetrics{
		Frames:  h.frames.Load(),
		Bytes:   h.bytes.Load(),
		Dropped: h.dropped.Load(),
		Clients: h.Count(),
	}
}
