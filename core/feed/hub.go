package feed

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"submerge/logger"
	"submerge/model"
)

// MessageType is the kind of a feed websocket message.
type MessageType string

const (
	MsgTypeSnapshot MessageType = "snapshot" // full feed state
	MsgTypeError    MessageType = "error"    // feed-side failure notice
	MsgTypePing     MessageType = "ping"
	MsgTypePong     MessageType = "pong"
)

// WSMessage is the envelope for feed websocket traffic.
type WSMessage struct {
	Type      MessageType      `json:"type"`
	Posts     []model.FeedPost `json:"posts,omitempty"`
	Error     string           `json:"error,omitempty"`
	Timestamp int64            `json:"timestamp"`
}

// Client is one websocket viewer of the feed.
type Client struct {
	Hub  *Hub
	Conn *websocket.Conn
	Send chan []byte

	UID int64

	// Following is the viewer's followed musician set, captured at connect
	// time and used to personalize snapshot ordering.
	Following []int64
}

// renderFunc builds one client's payload during a fan-out. A nil result
// skips the client.
type renderFunc func(*Client) []byte

// Hub tracks connected feed viewers and fans snapshots out to them. One
// connection per user; a newer connection replaces the older one.
//
// All sends to and closes of client channels happen inside Run, so a
// disconnect can never race a fan-out.
type Hub struct {
	clients map[int64]*Client

	register   chan *Client
	unregister chan *Client
	broadcast  chan renderFunc

	mu   sync.Mutex
	done chan struct{}

	// onRegister renders the current snapshot for a freshly connected
	// client. Set by the synchronizer before Run.
	onRegister renderFunc
}

// NewHub creates a feed hub.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[int64]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan renderFunc, 256),
		done:       make(chan struct{}),
	}
}

// Run processes register/unregister/broadcast events until Stop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)
		case client := <-h.unregister:
			h.unregisterClient(client)
		case render := <-h.broadcast:
			h.fanOut(render)
		case <-h.done:
			h.cleanup()
			return
		}
	}
}

// Stop shuts the hub down and closes all client send channels.
func (h *Hub) Stop() {
	close(h.done)
}

// Register adds a client to the hub. After Stop the client is ignored.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

// Unregister removes a client from the hub. After Stop this is a no-op;
// cleanup already closed every channel.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Broadcast queues a fan-out. render runs once per connected client inside
// the hub loop.
func (h *Hub) Broadcast(render renderFunc) {
	select {
	case h.broadcast <- render:
	case <-h.done:
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if old, exists := h.clients[client.UID]; exists {
		h.removeClient(old)
	}
	h.clients[client.UID] = client

	logger.Info("feed client connected", logger.Int64("user", client.UID))

	if h.onRegister != nil {
		if data := h.onRegister(client); data != nil {
			h.send(client, data)
		}
	}
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeClient(client)
}

// removeClient must be called with the lock held.
func (h *Hub) removeClient(client *Client) {
	if current, ok := h.clients[client.UID]; ok && current == client {
		delete(h.clients, client.UID)
		close(client.Send)
		logger.Info("feed client disconnected", logger.Int64("user", client.UID))
	}
}

func (h *Hub) cleanup() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, client := range h.clients {
		close(client.Send)
	}
	h.clients = make(map[int64]*Client)
}

// fanOut delivers one rendered payload per client.
func (h *Hub) fanOut(render renderFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, client := range h.clients {
		if data := render(client); data != nil {
			h.send(client, data)
		}
	}
}

// send queues a payload on a client's channel; a client that cannot keep up
// is dropped. Must be called with the lock held, from the Run goroutine.
func (h *Hub) send(client *Client, data []byte) {
	select {
	case client.Send <- data:
	default:
		h.removeClient(client)
	}
}

// ReadPump reads from the connection until it closes. Viewers only send
// heartbeats; everything else is ignored.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(1024)
	c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, message, err := c.Conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					logger.Warn("feed websocket read error",
						logger.ErrorField(err),
						logger.Int64("user", c.UID))
				}
				return
			}

			var msg WSMessage
			if err := json.Unmarshal(message, &msg); err != nil {
				continue
			}
			if msg.Type == MsgTypePing {
				pong := &WSMessage{Type: MsgTypePong, Timestamp: time.Now().UnixMilli()}
				if data, err := json.Marshal(pong); err == nil {
					select {
					case c.Send <- data:
					default:
					}
				}
			}
		}
	}
}

// WritePump drains the send channel onto the connection and keeps the
// connection alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
