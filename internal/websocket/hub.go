package websocket

import (
	"encoding/json"
	"sync"

	"github.com/dom/pokedex/internal/domain"
	"go.uber.org/zap"
)

// Hub fans change events out to every connected view. It implements
// service.Notifier.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan *Message
	stop       chan struct{}
	done       chan struct{} // closed when Run() exits
	stopped    bool
	seq        int
	logger     *zap.Logger
	mu         sync.RWMutex
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *Message, 64),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.stop:
			h.mu.Lock()
			h.stopped = true
			for client := range h.clients {
				client.Close()
			}
			h.clients = make(map[*Client]bool)
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.logger.Debug("client registered", zap.String("client", client.id))

			if msg, err := NewMessage(MessageTypeConnected, ConnectedPayload{ClientID: client.id}); err == nil {
				client.Send(msg)
			}

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.Close()
				h.logger.Debug("client unregistered", zap.String("client", client.id))
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.seq++
			msg.Seq = h.seq
			data, err := json.Marshal(msg)
			if err != nil {
				h.logger.Error("marshal broadcast", zap.Error(err))
				continue
			}

			h.mu.Lock()
			for client := range h.clients {
				if !client.trySend(data) {
					// Slow consumer; drop it rather than stall every other view.
					delete(h.clients, client)
					client.Close()
					h.logger.Warn("dropping slow client", zap.String("client", client.id))
				}
			}
			h.mu.Unlock()
		}
	}
}

// Stop closes every client and blocks until Run has returned
func (h *Hub) Stop() {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return
	}
	h.stopped = true
	h.mu.Unlock()

	close(h.stop)
	<-h.done
}

// Publish queues event for every connected client. It never blocks once the
// hub has stopped.
func (h *Hub) Publish(event domain.Event) {
	msg, err := NewEventMessage(event)
	if err != nil {
		h.logger.Error("marshal event", zap.String("type", string(event.Type)), zap.Error(err))
		return
	}

	select {
	case h.broadcast <- msg:
	case <-h.done:
	}
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		client.Close()
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
