package realtime

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

/*
|--------------------------------------------------------------------------
| WebSocket Client Registry
|--------------------------------------------------------------------------
*/

type client struct {
	conn         *websocket.Conn
	writeMux     sync.Mutex
	closeChan    chan struct{}
	closed       bool
	lastPongTime time.Time
	id           string
}

// Hub is the in-process Broadcaster implementation. One instance is
// created at startup and handed to everything that publishes.
type Hub struct {
	mu             sync.RWMutex
	clients        map[*websocket.Conn]*client
	cleanupRunning bool

	// Debounce queue_updated — a burst of mutations becomes one fanout.
	debounceTimer *time.Timer
	debounceMu    sync.Mutex
}

const debounceDelay = 50 * time.Millisecond

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]*client),
	}
}

/*
|--------------------------------------------------------------------------
| Broadcaster
|--------------------------------------------------------------------------
*/

// Publish fans the event out to every connected client. queue_updated is
// debounced; token_called and config_updated go out immediately.
func (h *Hub) Publish(event string, payload any) {
	if event != EventQueueUpdated {
		h.broadcast(event, payload)
		return
	}

	h.debounceMu.Lock()
	defer h.debounceMu.Unlock()

	if h.debounceTimer != nil {
		h.debounceTimer.Reset(debounceDelay)
		return
	}
	h.debounceTimer = time.AfterFunc(debounceDelay, func() {
		h.debounceMu.Lock()
		h.debounceTimer = nil
		h.debounceMu.Unlock()

		h.broadcast(EventQueueUpdated, nil)
	})
}

func (h *Hub) broadcast(event string, payload any) {
	message, err := buildMessage(event, payload)
	if err != nil {
		log.Printf("[realtime] marshal %s: %v", event, err)
		return
	}

	h.mu.RLock()
	clients := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	if len(clients) == 0 {
		return
	}

	// Bounded fanout so one broadcast cannot spawn unbounded goroutines.
	const maxWorkers = 20
	sem := make(chan struct{}, maxWorkers)
	var wg sync.WaitGroup

	for _, c := range clients {
		wg.Add(1)
		sem <- struct{}{}
		go func(c *client) {
			defer wg.Done()
			defer func() { <-sem }()
			h.writeToClient(c, message)
		}(c)
	}

	wg.Wait()
}

func buildMessage(event string, payload any) ([]byte, error) {
	envelope := map[string]interface{}{
		"type":      event,
		"timestamp": time.Now().Format(time.RFC3339),
	}
	if payload != nil {
		envelope["data"] = payload
	}
	return json.Marshal(envelope)
}

/*
|--------------------------------------------------------------------------
| WebSocket Handler
|--------------------------------------------------------------------------
*/

// ServeWS is the connection handler mounted on the /ws/queue route.
// It blocks until the client disconnects.
func (h *Hub) ServeWS(conn *websocket.Conn) {
	c := &client{
		conn:         conn,
		closeChan:    make(chan struct{}),
		lastPongTime: time.Now(),
		id:           uuid.NewString(),
	}

	log.Printf("[realtime] %s connecting from %s", c.id, conn.RemoteAddr())
	h.register(c)
	defer h.unregister(c)

	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		c.writeMux.Lock()
		c.lastPongTime = time.Now()
		c.writeMux.Unlock()
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	// Ping ticker; a client that stops answering gets reaped by cleanup.
	ticker := time.NewTicker(20 * time.Second)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-ticker.C:
				c.writeMux.Lock()
				if c.closed {
					c.writeMux.Unlock()
					return
				}
				conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
				err := conn.WriteMessage(websocket.PingMessage, nil)
				c.writeMux.Unlock()

				if err != nil {
					log.Printf("[realtime] %s ping error: %v", c.id, err)
					return
				}
			case <-c.closeChan:
				return
			}
		}
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure,
			) {
				log.Printf("[realtime] %s unexpected close: %v", c.id, err)
			} else {
				log.Printf("[realtime] %s closed normally", c.id)
			}
			return
		}
	}
}

/*
|--------------------------------------------------------------------------
| Client Management
|--------------------------------------------------------------------------
*/

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c.conn] = c
	total := len(h.clients)
	startCleanup := !h.cleanupRunning
	if startCleanup {
		h.cleanupRunning = true
	}
	h.mu.Unlock()

	log.Printf("[realtime] %s registered, total: %d", c.id, total)

	if startCleanup {
		go h.periodicCleanup()
	}
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if existing, ok := h.clients[c.conn]; ok {
		existing.writeMux.Lock()
		if !existing.closed {
			existing.closed = true
			close(existing.closeChan)
		}
		existing.writeMux.Unlock()
		delete(h.clients, c.conn)
	}
	total := len(h.clients)
	h.mu.Unlock()

	_ = c.conn.Close()
	log.Printf("[realtime] %s unregistered, total: %d", c.id, total)
}

// periodicCleanup removes connections that stopped answering pings.
func (h *Hub) periodicCleanup() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		h.mu.Lock()
		if len(h.clients) == 0 {
			h.cleanupRunning = false
			h.mu.Unlock()
			log.Println("[realtime] no clients, stopping cleanup goroutine")
			return
		}
		h.mu.Unlock()

		now := time.Now()
		var toRemove []*client

		h.mu.RLock()
		for _, c := range h.clients {
			c.writeMux.Lock()
			stale := now.Sub(c.lastPongTime) > 90*time.Second
			c.writeMux.Unlock()

			if stale {
				log.Printf("[realtime] %s dead (no pong), marking for removal", c.id)
				toRemove = append(toRemove, c)
			}
		}
		h.mu.RUnlock()

		if len(toRemove) == 0 {
			continue
		}

		h.mu.Lock()
		for _, c := range toRemove {
			if existing, ok := h.clients[c.conn]; ok {
				existing.writeMux.Lock()
				if !existing.closed {
					existing.closed = true
					close(existing.closeChan)
				}
				existing.writeMux.Unlock()
				delete(h.clients, c.conn)
				c.conn.Close()
				log.Printf("[realtime] %s cleaned up", c.id)
			}
		}
		log.Printf("[realtime] cleaned %d dead clients, remaining: %d", len(toRemove), len(h.clients))
		h.mu.Unlock()
	}
}

func (h *Hub) writeToClient(c *client, message []byte) {
	c.writeMux.Lock()
	defer c.writeMux.Unlock()

	if c.closed {
		return
	}

	c.conn.SetWriteDeadline(time.Now().Add(3 * time.Second))
	if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
		log.Printf("[realtime] %s write error: %v", c.id, err)
		c.closed = true
		select {
		case <-c.closeChan:
		default:
			close(c.closeChan)
		}

		go func(conn *websocket.Conn, id string) {
			h.mu.Lock()
			delete(h.clients, conn)
			h.mu.Unlock()
			conn.Close()
			log.Printf("[realtime] %s removed after write error", id)
		}(c.conn, c.id)
	}
}
