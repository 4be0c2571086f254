// Package monitor exposes a websocket feed of conversation events so an
// operator can watch live sessions without tailing logs.
package monitor

import (
	"net/http"
	"sync"
	"time"

	"github.com/GoMudEngine/npctalk/internal/conversations"
	"github.com/GoMudEngine/npctalk/internal/llm"
	"github.com/GoMudEngine/npctalk/internal/mudlog"
	"github.com/gorilla/websocket"
)

const (
	writeTimeout   = 5 * time.Second
	sendBufferSize = 32
)

// Event is one JSON frame sent to monitor clients.
type Event struct {
	Type    string    `json:"type"` // "start", "end" or "message"
	Actor   string    `json:"actor"`
	Entity  string    `json:"entity"`
	Role    string    `json:"role,omitempty"`
	Content string    `json:"content,omitempty"`
	Time    time.Time `json:"time"`
}

// client is one attached monitor connection. Frames are queued on send
// and written by a single writer goroutine; the websocket library allows
// only one concurrent writer per connection.
type client struct {
	conn *websocket.Conn
	send chan Event
	done chan struct{}
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

// Hub fans conversation events out to connected websocket clients. A
// client that cannot keep up is dropped; the core is never blocked.
type Hub struct {
	mu       sync.Mutex
	clients  map[*client]struct{}
	upgrader websocket.Upgrader
}

func NewHub() *Hub {
	return &Hub{
		clients: map[*client]struct{}{},
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		mudlog.Warn("Monitor", "upgrade_failed", err.Error())
		return
	}

	c := &client{
		conn: conn,
		send: make(chan Event, sendBufferSize),
		done: make(chan struct{}),
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	mudlog.Info("Monitor", "client_connected", conn.RemoteAddr().String())

	go h.writeLoop(c)

	// Read loop only to notice disconnects; inbound frames are discarded.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.drop(c)
				return
			}
		}
	}()
}

// writeLoop is the connection's only writer.
func (h *Hub) writeLoop(c *client) {
	for {
		select {
		case <-c.done:
			return
		case evt := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteJSON(evt); err != nil {
				mudlog.Debug("Monitor", "client_dropped", err.Error())
				h.drop(c)
				return
			}
		}
	}
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	c.close()
}

func (h *Hub) clientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// broadcast queues evt for every client. The send channel is never
// closed, so queuing cannot panic; a client whose buffer is full cannot
// keep up and is dropped instead of blocking the caller.
func (h *Hub) broadcast(evt Event) {
	evt.Time = time.Now()

	h.mu.Lock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		select {
		case c.send <- evt:
		case <-c.done:
		default:
			mudlog.Debug("Monitor", "client_dropped", "send buffer full")
			h.drop(c)
		}
	}
}

// ListenAndServe blocks serving the /ws endpoint on addr.
func (h *Hub) ListenAndServe(addr string) error {
	mux := http.NewServeMux()
	mux.Handle(`/ws`, h)
	return http.ListenAndServe(addr, mux)
}

// Hub implements conversations.Observer.

func (h *Hub) ConversationStarted(c *conversations.Conversation) {
	h.broadcast(Event{Type: `start`, Actor: c.Actor().Name(), Entity: c.NPC().Name()})
}

func (h *Hub) ConversationEnded(c *conversations.Conversation) {
	h.broadcast(Event{Type: `end`, Actor: c.Actor().Name(), Entity: c.NPC().Name()})
}

func (h *Hub) ConversationMessage(c *conversations.Conversation, msg llm.Message) {
	h.broadcast(Event{
		Type:    `message`,
		Actor:   c.Actor().Name(),
		Entity:  c.NPC().Name(),
		Role:    string(msg.Role),
		Content: msg.Content,
	})
}
