package api

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"mealer/internal/models"
)

// WebSocket upgrader configuration
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

// OperationEvent is the wire form of a completion notification pushed
// to connected UI clients.
type OperationEvent struct {
	Operation models.Operation `json:"operation"`
	Success   bool             `json:"success"`
	Payload   interface{}      `json:"payload,omitempty"`
	Message   string           `json:"message,omitempty"`
}

// Hub tracks every websocket connection by user ID and fans
// completion events out to the user's open connections.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]map[*WSConnection]bool
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{conns: make(map[string]map[*WSConnection]bool)}
}

func (h *Hub) add(userID string, conn *WSConnection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.conns[userID] == nil {
		h.conns[userID] = make(map[*WSConnection]bool)
	}
	h.conns[userID][conn] = true
}

func (h *Hub) remove(userID string, conn *WSConnection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns[userID], conn)
	if len(h.conns[userID]) == 0 {
		delete(h.conns, userID)
	}
}

// ViewFor returns a StatefulView that pushes completion events to all
// of the user's open connections. Events for users with no connection
// are dropped.
func (h *Hub) ViewFor(userID string) models.StatefulView {
	return &hubView{hub: h, userID: userID}
}

type hubView struct {
	hub    *Hub
	userID string
}

func (v *hubView) DBOperationSuccess(op models.Operation, payload interface{}) {
	v.hub.push(v.userID, OperationEvent{Operation: op, Success: true, Payload: payload})
}

func (v *hubView) DBOperationFailure(op models.Operation, message string) {
	v.hub.push(v.userID, OperationEvent{Operation: op, Message: message})
}

func (h *Hub) push(userID string, event OperationEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[Hub] failed to encode event: %v", err)
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for conn := range h.conns[userID] {
		select {
		case conn.send <- data:
		default:
			log.Printf("[Hub] dropping event for slow connection of %s", userID)
		}
	}
}

// WSConnection maintains the WebSocket connection with one UI client.
type WSConnection struct {
	conn   *websocket.Conn
	send   chan []byte
	userID string
	hub    *Hub
}

// handleWebSocket upgrades the request and starts the connection pumps.
func (s *Server) handleWebSocket(c *gin.Context) {
	claims := requestClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization required"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade connection: %v", err)
		return
	}

	wsConn := &WSConnection{
		conn:   conn,
		send:   make(chan []byte, 256),
		userID: claims.UserID,
		hub:    s.hub,
	}
	s.hub.add(claims.UserID, wsConn)

	// Start the read and write pumps
	go wsConn.writePump()
	go wsConn.readPump()
}

// readPump drains client messages and tears the connection down on error.
func (c *WSConnection) readPump() {
	defer func() {
		c.hub.remove(c.userID, c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512 * 1024) // 512KB
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}
	}
}

// writePump pushes queued events to the client with periodic pings.
func (c *WSConnection) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
