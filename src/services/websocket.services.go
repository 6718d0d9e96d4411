package services

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"yemenflix/src/middleware"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024

	MessageTypeNotification = "notification"
	MessageTypePing         = "ping"
	MessageTypePong         = "pong"
)

// Message is the envelope pushed to websocket clients.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type envelope struct {
	userID uint
	msg    Message
}

var clientSeq atomic.Uint64

type Client struct {
	id     uint64
	userID uint
	hub    *Hub
	conn   *websocket.Conn
	send   chan Message
	quit   chan struct{}
	once   sync.Once
}

// stop tells the write pump to close the connection. send is never closed,
// so the read pump may still queue a pong safely.
func (c *Client) stop() {
	c.once.Do(func() { close(c.quit) })
}

// Hub routes messages to the open connections of a user. A user may hold
// several connections (tabs, devices).
type Hub struct {
	mu         sync.RWMutex
	clients    map[uint]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	direct     chan envelope
	done       chan struct{}
	upgrader   websocket.Upgrader
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uint]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		direct:     make(chan envelope, 256),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:   1024,
			WriteBufferSize:  1024,
			HandshakeTimeout: 10 * time.Second,
			CheckOrigin:      func(r *http.Request) bool { return true },
		},
	}
}

// Run serves registrations and deliveries until ctx is done, then closes
// every connection.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.closeAll()
			log.Info().Str("component", "websocket-hub").Msg("websocket hub stopped")
			return
		case c := <-h.register:
			h.mu.Lock()
			if h.clients[c.userID] == nil {
				h.clients[c.userID] = make(map[*Client]struct{})
			}
			h.clients[c.userID][c] = struct{}{}
			h.mu.Unlock()
			log.Debug().Uint("user_id", c.userID).Uint64("client", c.id).Msg("websocket client connected")
		case c := <-h.unregister:
			h.remove(c)
		case env := <-h.direct:
			h.deliver(env)
		}
	}
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.userID]
	if !ok {
		return
	}
	if _, ok := set[c]; ok {
		delete(set, c)
		c.stop()
	}
	if len(set) == 0 {
		delete(h.clients, c.userID)
	}
}

func (h *Hub) deliver(env envelope) {
	h.mu.RLock()
	var slow []*Client
	for c := range h.clients[env.userID] {
		select {
		case c.send <- env.msg:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		log.Warn().Uint64("client", c.id).Msg("dropping slow websocket client")
		h.remove(c)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for userID, set := range h.clients {
		for c := range set {
			c.stop()
		}
		delete(h.clients, userID)
	}
}

// SendToUser queues msg for every connection of userID. It never blocks;
// when the queue is full the message is dropped.
func (h *Hub) SendToUser(userID uint, msgType string, data interface{}) {
	select {
	case h.direct <- envelope{userID: userID, msg: Message{Type: msgType, Data: data}}:
	default:
		log.Warn().Uint("user_id", userID).Msg("websocket queue full, message dropped")
	}
}

// ConnectedUsers counts users with at least one open connection.
func (h *Hub) ConnectedUsers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// WebSocketHandler upgrades an authenticated request and attaches the
// connection to the caller's user id.
func (h *Hub) WebSocketHandler(c *gin.Context) {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := &Client{
		id:     clientSeq.Add(1),
		userID: claims.UserID,
		hub:    h,
		conn:   conn,
		send:   make(chan Message, 32),
		quit:   make(chan struct{}),
	}
	select {
	case h.register <- client:
	case <-h.done:
		_ = conn.Close()
		return
	}
	go client.writePump()
	go client.readPump()
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Uint64("client", c.id).Msg("unexpected websocket close")
			}
			return
		}
		if msg.Type == MessageTypePing {
			select {
			case c.send <- Message{Type: MessageTypePong}:
			default:
			}
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-c.quit:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
