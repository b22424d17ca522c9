// Package broadcast fans summary messages out to open stream subscribers.
package broadcast

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Message types
const (
	TypeConnected = "connected"
	TypeSummary   = "summary"
)

// Message is one stream event
type Message struct {
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
}

// Publisher delivers a message to every subscriber it can reach
type Publisher interface {
	Publish(ctx context.Context, msg Message) error
}

var subscribers = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "chaindash",
	Name:      "summary_subscribers",
	Help:      "Open summary stream subscriptions.",
})

// DefaultBuffer is the per-subscriber queue length
const DefaultBuffer = 16

// Hub holds the open subscriptions of this process
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]chan Message
	buffer int
	logger *slog.Logger
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{
		subs:   make(map[string]chan Message),
		buffer: DefaultBuffer,
		logger: slog.Default().With("component", "broadcast"),
	}
}

// Subscribe registers a subscriber. cancel removes it and closes the
// channel; calling it more than once is safe.
func (h *Hub) Subscribe() (id string, ch <-chan Message, cancel func()) {
	id = uuid.NewString()
	c := make(chan Message, h.buffer)

	h.mu.Lock()
	h.subs[id] = c
	h.mu.Unlock()
	subscribers.Inc()
	h.logger.Debug("subscriber added", "id", id)

	var once sync.Once
	cancel = func() {
		once.Do(func() {
			h.mu.Lock()
			if _, ok := h.subs[id]; ok {
				delete(h.subs, id)
				close(c)
				subscribers.Dec()
			}
			h.mu.Unlock()
			h.logger.Debug("subscriber removed", "id", id)
		})
	}
	return id, c, cancel
}

// Broadcast delivers msg to local subscribers and returns how many got it.
// A subscriber whose queue is full misses the message.
func (h *Hub) Broadcast(msg Message) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for id, c := range h.subs {
		select {
		case c <- msg:
			delivered++
		default:
			h.logger.Warn("subscriber queue full, dropping message", "id", id)
		}
	}
	return delivered
}

// Publish implements Publisher for a single process
func (h *Hub) Publish(_ context.Context, msg Message) error {
	n := h.Broadcast(msg)
	h.logger.Info("summary broadcast", "subscribers", n)
	return nil
}

// Count returns the number of open subscriptions
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close drops every subscriber
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.subs {
		delete(h.subs, id)
		close(c)
		subscribers.Dec()
	}
}
