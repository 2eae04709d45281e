package hub

import (
	"encoding/json"
	"sync"

	"github.com/teslashibe/go-emotimeter/internal/log"
)

// Options tune a Hub.
type Options struct {
	// Retain replays the latest message to clients as they connect, so a
	// spectator joining mid-round sees the current state at once.
	Retain bool

	// ClientBuffer is the per-client queue length before the client is
	// dropped as too slow.
	ClientBuffer int
}

// Hub maintains the set of active clients and broadcasts messages to them.
type Hub struct {
	name string
	opts Options

	clients    map[*Client]bool
	broadcast  chan Message
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	stopOnce   sync.Once

	last *Message // Owned by Run

	mu    sync.RWMutex
	count int
}

// New creates a hub. Call Run in a goroutine before registering clients.
func New(name string, opts Options) *Hub {
	if opts.ClientBuffer <= 0 {
		opts.ClientBuffer = 64
	}
	return &Hub{
		name:       name,
		opts:       opts,
		clients:    make(map[*Client]bool),
		broadcast:  make(chan Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run is the hub's main loop. It returns after Stop.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.setCount(0)
			return

		case client := <-h.register:
			h.clients[client] = true
			if h.last != nil {
				client.send <- *h.last
			}
			h.setCount(len(h.clients))
			log.Debug("spectator connected", "hub", h.name, "clients", len(h.clients))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.setCount(len(h.clients))
			log.Debug("spectator disconnected", "hub", h.name, "clients", len(h.clients))

		case message := <-h.broadcast:
			// Retained only once dispatched, so a client registering while
			// the message is still queued receives it exactly once.
			if h.opts.Retain {
				h.last = &message
			}
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					close(client.send)
					delete(h.clients, client)
					log.Warn("dropped slow spectator", "hub", h.name)
				}
			}
			h.setCount(len(h.clients))
		}
	}
}

// Stop ends Run and closes every client queue.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// Broadcast queues a message for every client. It never blocks; when the
// hub is backed up the message is dropped.
func (h *Hub) Broadcast(msg Message) {
	select {
	case h.broadcast <- msg:
	default:
		log.Debug("broadcast queue full, dropping message", "hub", h.name)
	}
}

// BroadcastJSON encodes and broadcasts v.
func (h *Hub) BroadcastJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	h.Broadcast(NewJSONMessage(data))
	return nil
}

// BroadcastBinary broadcasts binary data such as a JPEG frame.
func (h *Hub) BroadcastBinary(data []byte) {
	h.Broadcast(NewBinaryMessage(data))
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}

func (h *Hub) setCount(n int) {
	h.mu.Lock()
	h.count = n
	h.mu.Unlock()
}
