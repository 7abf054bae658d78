package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"go-hotel-dashboard/models"
	"go-hotel-dashboard/notification"
	"go-hotel-dashboard/views"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	EventViews     = "views"
	EventAlert     = "alert"
	EventPlaySound = "playSound"
	EventError     = "error"
)

const writeWait = 10 * time.Second

// Message is the envelope pushed to operator screens.
type Message struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"payload"`
}

// Hub fans dashboard updates and alerts out to the connected operator
// screens. It is the sound and alert capability of the notification sink:
// with no screen connected both report notification.ErrUnsupported.
type Hub struct {
	upgrader websocket.Upgrader
	logger   *zap.Logger

	mu      sync.Mutex
	clients map[*websocket.Conn]bool
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		logger:  logger,
		clients: make(map[*websocket.Conn]bool),
	}
}

// Serve upgrades the request, sends greeting first if given, and keeps the
// client registered until it disconnects.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, greeting *Message) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	h.mu.Lock()
	if greeting != nil {
		if err := h.write(conn, *greeting); err != nil {
			h.mu.Unlock()
			return err
		}
	}
	h.clients[conn] = true
	h.mu.Unlock()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.mu.Lock()
			delete(h.clients, conn)
			h.mu.Unlock()
			return nil
		}
	}
}

func (h *Hub) write(conn *websocket.Conn, msg Message) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(msg)
}

// Broadcast sends msg to every client and reports how many received it.
// Clients that fail a write are dropped.
func (h *Hub) Broadcast(msg Message) int {
	messageBytes, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("Failed to marshal message", zap.String("event", msg.Event), zap.Error(err))
		return 0
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	sent := 0
	for client := range h.clients {
		client.SetWriteDeadline(time.Now().Add(writeWait))
		if err := client.WriteMessage(websocket.TextMessage, messageBytes); err != nil {
			h.logger.Debug("Dropping websocket client", zap.Error(err))
			client.Close()
			delete(h.clients, client)
			continue
		}
		sent++
	}
	return sent
}

func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) PlaySound(ctx context.Context) error {
	if h.Broadcast(Message{Event: EventPlaySound}) == 0 {
		return notification.ErrUnsupported
	}
	return nil
}

func (h *Hub) ShowAlert(ctx context.Context, n models.Notification) error {
	event := EventAlert
	if n.Kind == models.AlertError {
		event = EventError
	}
	if h.Broadcast(Message{Event: event, Payload: n}) == 0 {
		return notification.ErrUnsupported
	}
	return nil
}

// PublishView pushes the whole view after any of its parts changed.
func (h *Hub) PublishView(kind views.Kind, v views.View) {
	h.Broadcast(Message{Event: EventViews, Payload: v})
}

// WebSocket attaches an operator screen. Browsers cannot set headers on
// the upgrade request, so the token travels as a query parameter.
func (ctl *Controller) WebSocket() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := ctl.Tokens.ValidateToken(c.Query("token"))
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		if claims.Uid != ctl.Sessions.Current() {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "operator is not signed in"})
			return
		}
		greeting := Message{Event: EventViews, Payload: ctl.Views.Snapshot()}
		if err := ctl.Hub.Serve(c.Writer, c.Request, &greeting); err != nil {
			ctl.Logger.Debug("Websocket closed", zap.Error(err))
		}
	}
}
