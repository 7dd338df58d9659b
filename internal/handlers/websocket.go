package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"referral-miniapp-backend/internal/metrics"
	"referral-miniapp-backend/internal/models"
	"referral-miniapp-backend/internal/services"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	clientSendSize = 16
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketHandler streams connection registry stats to dashboards.
type WebSocketHandler struct {
	registry *services.ConnectionRegistry
	hub      *WebSocketHub
	logger   *zap.Logger
}

type WebSocketHub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan *Message
	done       chan struct{}
	stopOnce   sync.Once
}

type Client struct {
	conn *websocket.Conn
	send chan *Message
}

type Message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

func NewWebSocketHandler(registry *services.ConnectionRegistry, logger *zap.Logger) *WebSocketHandler {
	hub := &WebSocketHub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *Message, 100),
		done:       make(chan struct{}),
	}

	go hub.run()

	return &WebSocketHandler{
		registry: registry,
		hub:      hub,
		logger:   logger,
	}
}

func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("failed to upgrade to websocket", zap.Error(err))
		return
	}

	client := &Client{
		conn: conn,
		send: make(chan *Message, clientSendSize),
	}
	client.send <- statsMessage(h.registry.Stats())

	select {
	case h.hub.register <- client:
	case <-h.hub.done:
		conn.Close()
		return
	}

	go h.writePump(client)
	h.readPump(client)
}

func (h *WebSocketHandler) readPump(client *Client) {
	defer func() {
		select {
		case h.hub.unregister <- client:
		case <-h.hub.done:
		}
		client.conn.Close()
	}()

	client.conn.SetReadLimit(4096)
	client.conn.SetReadDeadline(time.Now().Add(pongWait))
	client.conn.SetPongHandler(func(string) error {
		return client.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg Message
		if err := client.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("websocket read error", zap.Error(err))
			}
			return
		}

		switch msg.Type {
		case "PING":
			h.hub.sendTo(client, &Message{Type: "PONG", Data: gin.H{"timestamp": time.Now().Unix()}})
		case "STATS":
			h.hub.sendTo(client, statsMessage(h.registry.Stats()))
		}
	}
}

func (h *WebSocketHandler) writePump(client *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		client.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-client.send:
			client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				client.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// BroadcastConnectionStats implements services.Broadcaster.
func (h *WebSocketHandler) BroadcastConnectionStats(stats models.ConnectionStats) {
	select {
	case h.hub.broadcast <- statsMessage(stats):
	case <-h.hub.done:
	default:
		h.logger.Debug("dropping stats broadcast, hub is busy")
	}
}

// Close disconnects every client and stops the hub.
func (h *WebSocketHandler) Close() {
	h.hub.stopOnce.Do(func() { close(h.hub.done) })
}

func (hub *WebSocketHub) run() {
	for {
		select {
		case client := <-hub.register:
			hub.clients[client] = true
			metrics.LiveClients.Inc()

		case client := <-hub.unregister:
			hub.remove(client)

		case message := <-hub.broadcast:
			for client := range hub.clients {
				select {
				case client.send <- message:
				default:
					hub.remove(client)
				}
			}

		case <-hub.done:
			for client := range hub.clients {
				hub.remove(client)
			}
			return
		}
	}
}

func (hub *WebSocketHub) remove(client *Client) {
	if _, ok := hub.clients[client]; ok {
		delete(hub.clients, client)
		close(client.send)
		metrics.LiveClients.Dec()
	}
}

// sendTo queues a direct reply; slow clients lose the message.
func (hub *WebSocketHub) sendTo(client *Client, msg *Message) {
	defer func() {
		// send may already be closed by the hub.
		recover()
	}()

	select {
	case client.send <- msg:
	default:
	}
}

func statsMessage(stats models.ConnectionStats) *Message {
	return &Message{
		Type: "CONNECTION_STATS",
		Data: gin.H{
			"total":       stats.Total,
			"active":      stats.Active,
			"uniqueUsers": stats.UniqueUsers,
			"timestamp":   time.Now().Unix(),
		},
	}
}
