package stream

import (
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Stock event types pushed to connected clients.
const (
	EventLotCreated  = "lot_created"
	EventLotConsumed = "lot_consumed"
	EventShortfall   = "shortfall"
)

// Event is one stock change broadcast to every connected client. The
// desktop UI listens to refresh its inventory views.
type Event struct {
	Type         string    `json:"type"`
	IngredientID uint      `json:"ingredient_id"`
	LotNumber    string    `json:"lot_number,omitempty"`
	Quantity     string    `json:"quantity,omitempty"`
	Unit         string    `json:"unit,omitempty"`
	At           time.Time `json:"at"`
}

// Hub fans stock events out to websocket clients. A nil *Hub drops
// events, so wiring it up stays optional.
type Hub struct {
	register   chan *client
	unregister chan *client
	broadcast  chan []byte
	clients    map[*client]bool
	mu         sync.Mutex
	log        *zap.Logger
}

// NewHub creates a stock event hub. Call Run on its own goroutine.
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan []byte, 64),
		clients:    make(map[*client]bool),
		log:        logger,
	}
}

// Run dispatches registrations and broadcasts until the hub is garbage
// collected with the process.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			h.mu.Unlock()
		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
		case message := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients {
				select {
				case c.send <- message:
				default:
					// slow client, drop it
					delete(h.clients, c)
					close(c.send)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Publish broadcasts one event to every connected client.
func (h *Hub) Publish(ev Event) {
	if h == nil {
		return
	}
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		h.log.Warn("dropping unmarshalable stock event", zap.Error(err))
		return
	}
	select {
	case h.broadcast <- payload:
	default:
		h.log.Warn("stock event buffer full, dropping event", zap.String("type", ev.Type))
	}
}
