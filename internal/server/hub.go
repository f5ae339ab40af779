package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// writeWait bounds a single write to one client.
const writeWait = time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// hubClient is one connection. Until start is called, broadcasts are queued
// so nothing sent after the client joined is lost while it is being greeted.
type hubClient struct {
	conn    *websocket.Conn
	mu      sync.Mutex
	started bool
	pending [][]byte
}

func (c *hubClient) write(msg []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.started {
		c.pending = append(c.pending, msg)
		return nil
	}
	return c.send(msg)
}

// start writes the greeting, if any, then everything queued meanwhile.
func (c *hubClient) start(greeting []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.started = true
	pending := c.pending
	c.pending = nil

	if greeting != nil {
		if err := c.send(greeting); err != nil {
			return err
		}
	}
	for _, msg := range pending {
		if err := c.send(msg); err != nil {
			return err
		}
	}
	return nil
}

func (c *hubClient) send(msg []byte) error {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, msg)
}

// Hub broadcasts JSON messages to every connected WebSocket client.
type Hub struct {
	name    string
	clients map[*hubClient]bool
	mu      sync.RWMutex

	// greet returns the first message for a new client, if any.
	greet func() (any, bool)
}

// NewHub creates an empty hub. The name only appears in logs.
func NewHub(name string) *Hub {
	return &Hub{
		name:    name,
		clients: make(map[*hubClient]bool),
	}
}

// OnConnect sets a function whose result is sent to each client as soon as
// it connects. Broadcasts made while fn runs reach the client after it.
func (h *Hub) OnConnect(fn func() (any, bool)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.greet = fn
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	c := &hubClient{conn: conn}

	h.mu.Lock()
	h.clients[c] = true
	greet := h.greet
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, c)
		h.mu.Unlock()
	}()

	var greeting []byte
	if greet != nil {
		if v, ok := greet(); ok {
			if greeting, err = json.Marshal(v); err != nil {
				log.Printf("%s: greeting failed: %v", h.name, err)
				greeting = nil
			}
		}
	}
	if err := c.start(greeting); err != nil {
		log.Printf("%s: greeting failed: %v", h.name, err)
		return
	}

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// Broadcast sends v as JSON to all connected clients. Clients whose write
// fails are closed; their reader then unregisters them.
func (h *Hub) Broadcast(v any) error {
	msg, err := json.Marshal(v)
	if err != nil {
		return err
	}

	h.mu.RLock()
	clients := make([]*hubClient, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if err := c.write(msg); err != nil {
			log.Printf("%s: dropping client: %v", h.name, err)
			c.conn.Close()
		}
	}
	return nil
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
