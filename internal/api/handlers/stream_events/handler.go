package stream_events

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/m04kA/SMC-ParkingService/internal/api/middleware"
	"github.com/m04kA/SMC-ParkingService/internal/events"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

type Handler struct {
	hub      Hub
	upgrader websocket.Upgrader
	logger   Logger
}

// NewHandler allowedOrigins - список Origin браузерных клиентов; пустой список пропускает всех
func NewHandler(hub Hub, allowedOrigins []string, logger Logger) *Handler {
	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin(allowedOrigins),
		},
		logger: logger,
	}
}

// Handle GET /api/v1/events/stream
// Отдает события бронирований по мере коммита. Пропущенные события клиент догружает через GET /events?since.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgrader уже ответил клиенту ошибкой
		h.logger.Warn("GET /events/stream - Upgrade failed: user_id=%s, error=%v", userID, err)
		return
	}

	// отключение от хаба должно пройти, даже если контекст запроса уже отменен
	ctx := context.WithoutCancel(r.Context())

	client := events.NewClient()
	h.hub.Register(ctx, client)
	h.logger.Info("GET /events/stream - Client connected: user_id=%s", userID)

	go writePump(conn, client)
	readPump(conn)

	h.hub.Unregister(ctx, client)
	h.logger.Info("GET /events/stream - Client disconnected: user_id=%s", userID)
}

// writePump пишет сообщения хаба в соединение и держит его живым пингами
func writePump(conn *websocket.Conn, client *events.Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case message, ok := <-client.Send():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// хаб отключил клиента
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump читает входящие кадры до закрытия соединения. Поток только на запись, сообщения клиента отбрасываются.
func readPump(conn *websocket.Conn) {
	defer conn.Close()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func checkOrigin(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || strings.EqualFold(a, origin) {
				return true
			}
		}
		return false
	}
}
