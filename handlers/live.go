package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"sensor-dashboard/metrics"
	"sensor-dashboard/models"
	"sensor-dashboard/utils"
)

const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // dashboard is served from anywhere on the LAN
	},
}

// LiveHub pushes every sampler Update to connected websocket clients.
type LiveHub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]bool
	msgCh   chan []byte
}

func NewLiveHub() *LiveHub {
	return &LiveHub{
		clients: make(map[*websocket.Conn]bool),
		msgCh:   make(chan []byte, 64),
	}
}

// Run delivers queued messages until ctx is done, then closes every client.
func (h *LiveHub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case msg := <-h.msgCh:
			h.send(msg)
		}
	}
}

func (h *LiveHub) send(msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			conn.Close()
			delete(h.clients, conn)
		}
	}
	metrics.LiveClients.Set(float64(len(h.clients)))
}

func (h *LiveHub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.Close()
		delete(h.clients, conn)
	}
	metrics.LiveClients.Set(0)
}

// Broadcast queues u for delivery. It never blocks the sampler: when the
// queue is full the update is dropped.
func (h *LiveHub) Broadcast(u models.Update) {
	msg, err := json.Marshal(u)
	if err != nil {
		utils.Warn("live update marshal: %v", err)
		return
	}
	select {
	case h.msgCh <- msg:
	default:
		utils.Debug("live queue full, dropping update at %s", u.Reading.Timestamp)
	}
}

// Clients returns the number of connected clients.
func (h *LiveHub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *LiveHub) register(conn *websocket.Conn) {
	h.mu.Lock()
	h.clients[conn] = true
	metrics.LiveClients.Set(float64(len(h.clients)))
	h.mu.Unlock()
}

func (h *LiveHub) unregister(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	metrics.LiveClients.Set(float64(len(h.clients)))
	h.mu.Unlock()
}

// ServeWS upgrades GET /ws. Client messages are read and discarded so
// control frames keep flowing.
func (h *LiveHub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		utils.Warn("ws upgrade: %v", err)
		return
	}

	h.register(conn)
	defer func() {
		h.unregister(conn)
		conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
