// Package events доставляет события бронирований подписчикам: websocket клиентам и брокеру.
package events

import (
	"context"
	"sync"
)

// clientBuffer размер очереди исходящих сообщений одного клиента
const clientBuffer = 64

// Client websocket подписчик
type Client struct {
	send chan []byte
}

// NewClient создает клиента
func NewClient() *Client {
	return &Client{send: make(chan []byte, clientBuffer)}
}

// Send канал исходящих сообщений. Закрывается, когда хаб отключает клиента.
func (c *Client) Send() <-chan []byte {
	return c.send
}

// Hub хранит подключенных клиентов и рассылает им сообщения
type Hub struct {
	clients    map[*Client]struct{}
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	logger     Logger

	mu sync.RWMutex
}

// NewHub создает хаб
func NewHub(logger Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run основной цикл хаба, завершается по отмене ctx и отключает всех клиентов
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = struct{}{}
			total := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("Hub: client connected (total: %d)", total)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			total := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("Hub: client disconnected (total: %d)", total)

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Клиент не успевает читать: отключаем, он догонит через /events?since
					close(client.send)
					delete(h.clients, client)
					h.logger.Warn("Hub: slow client dropped")
				}
			}
			h.mu.Unlock()
		}
	}
}

// Register подключает клиента
func (h *Hub) Register(ctx context.Context, client *Client) {
	select {
	case h.register <- client:
	case <-ctx.Done():
		close(client.send)
	case <-h.done:
		close(client.send)
	}
}

// Unregister отключает клиента
func (h *Hub) Unregister(ctx context.Context, client *Client) {
	select {
	case h.unregister <- client:
	case <-ctx.Done():
	case <-h.done:
	}
}

// Broadcast ставит сообщение в очередь рассылки. Не блокируется:
// при переполненной очереди возвращает false.
func (h *Hub) Broadcast(message []byte) bool {
	select {
	case h.broadcast <- message:
		return true
	default:
		return false
	}
}

// ClientCount количество подключенных клиентов
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
