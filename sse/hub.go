package sse

import (
	"sync"

	"github.com/kbukum/stagekit/logger"
)

// clientBuffer is the number of events queued per client before new ones
// are dropped.
const clientBuffer = 16

// Client is one connected stream.
type Client struct {
	id     string
	events chan Event
}

// NewClient creates a client with an empty event queue.
func NewClient(id string) *Client {
	return &Client{
		id:     id,
		events: make(chan Event, clientBuffer),
	}
}

// ID returns the client's identifier.
func (c *Client) ID() string { return c.id }

// Events returns the client's queue. It is closed when the client is
// unregistered or the hub stops.
func (c *Client) Events() <-chan Event { return c.events }

// send queues e without blocking and reports whether it was queued. A slow
// client misses snapshots rather than stalling the hub.
func (c *Client) send(e Event) bool {
	select {
	case c.events <- e:
		return true
	default:
		return false
	}
}

// Hub tracks connected clients and fans events out to them from a single
// goroutine.
type Hub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan Event
	done       chan struct{}
	stopOnce   sync.Once
	mu         sync.RWMutex
	log        *logger.Logger
}

var _ Broadcaster = (*Hub)(nil)

// NewHub creates a hub. Call Run to start delivering events.
func NewHub(log *logger.Logger) *Hub {
	if log == nil {
		log = logger.Get("sse")
	}
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan Event, clientBuffer),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run delivers events until Stop is called, then closes every client.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			h.closeAll()
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c.id] = c
			n := len(h.clients)
			h.mu.Unlock()
			h.log.Debug("Stream client registered", logger.Fields("client_id", c.id, "clients", n))

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c.id]; ok {
				delete(h.clients, c.id)
				close(c.events)
			}
			n := len(h.clients)
			h.mu.Unlock()
			h.log.Debug("Stream client unregistered", logger.Fields("client_id", c.id, "clients", n))

		case e := <-h.broadcast:
			h.deliver(e)
		}
	}
}

// Stop makes Run return. Safe to call more than once.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// Register adds c. It returns false, with c's queue closed, when the hub
// has stopped.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		close(c.events)
		return false
	}
}

// Unregister removes c and closes its queue.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Broadcast queues e for every client. It drops e when the hub is stopped.
func (h *Hub) Broadcast(e Event) {
	select {
	case h.broadcast <- e:
	case <-h.done:
	}
}

func (h *Hub) deliver(e Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, c := range h.clients {
		if !c.send(e) {
			h.log.Warn("Stream client queue full, dropping event", logger.Fields("client_id", id, "event", e.Name))
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		close(c.events)
		delete(h.clients, id)
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
