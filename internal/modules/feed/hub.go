package feed

import (
	"encoding/json"
	"log"
	"sync"

	"astroseva/internal/domain"
)

type GaugeRecorder interface {
	FeedClients(delta float64)
}

// Hub fans booking changes out to connected clients. It implements the
// booking store's change sink.
type Hub struct {
	clients map[*Client]struct{}
	mutex   sync.RWMutex
	metrics GaugeRecorder
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*Client]struct{})}
}

func (h *Hub) WithMetrics(m GaugeRecorder) *Hub {
	h.metrics = m
	return h
}

func (h *Hub) Register(c *Client) {
	h.mutex.Lock()
	h.clients[c] = struct{}{}
	h.mutex.Unlock()
	if h.metrics != nil {
		h.metrics.FeedClients(1)
	}
}

func (h *Hub) Unregister(c *Client) {
	h.mutex.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
		c.close()
	}
	h.mutex.Unlock()
	if ok && h.metrics != nil {
		h.metrics.FeedClients(-1)
	}
}

func (h *Hub) GetOnlineCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// PublishBookingChange delivers change to every client whose listing it
// touches. Clients that cannot keep up are disconnected.
func (h *Hub) PublishBookingChange(change domain.BookingChange) {
	h.mutex.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mutex.RUnlock()

	var slow []*Client
	for _, c := range clients {
		msg, ok := eventFor(c.Actor(), change)
		if !ok {
			continue
		}
		if !c.enqueue(msg) {
			slow = append(slow, c)
		}
	}
	for _, c := range slow {
		log.Printf("feed: dropping slow client actor_id=%s", c.Actor().ID)
		h.Unregister(c)
	}
}

func (h *Hub) Close() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for c := range h.clients {
		c.close()
		delete(h.clients, c)
	}
}

func encode(msg *WSServerMessage) ([]byte, error) {
	return json.Marshal(msg)
}
