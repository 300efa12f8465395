// Package websocket streams satellite state and timer snapshots to
// diagnostics clients.
package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/satriahrh/arunika/satellite/domain/entities"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4 * 1024

	sendBuffer = 16
)

var upgrader = websocket.Upgrader{
	// diagnostics are read only and guarded by a token when exposed
	CheckOrigin:     func(r *http.Request) bool { return true },
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Source publishes the observable satellite state.
type Source interface {
	States() (<-chan entities.SatelliteState, func())
	Timers() (<-chan []entities.VoiceTimer, func())
}

type outbound struct {
	topic   Topic
	payload []byte
}

// Hub maintains the set of active clients and broadcasts snapshots to them.
type Hub struct {
	// Registered clients.
	clients map[string]*Client

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Clients asking for the latest snapshots again.
	replay chan *Client

	// closed when Run returns
	done chan struct{}

	// latest snapshot per topic, replayed to new clients
	latest map[Topic][]byte

	// Mutex for thread-safe access to clients map
	mu sync.RWMutex

	now    func() time.Time
	logger *zap.Logger
}

// NewHub creates a new WebSocket hub
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		replay:     make(chan *Client),
		done:       make(chan struct{}),
		latest:     make(map[Topic][]byte),
		now:        time.Now,
		logger:     logger.With(zap.String("component", "diagnostics_hub")),
	}
}

// Run starts the hub's main loop. It returns when ctx is done, after
// telling every client to close.
func (h *Hub) Run(ctx context.Context, src Source) {
	states, cancelStates := src.States()
	defer cancelStates()
	timers, cancelTimers := src.Timers()
	defer cancelTimers()

	defer close(h.done)
	defer h.closeAll()

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.id] = client
			h.mu.Unlock()
			h.replayTo(client)
			h.logger.Info("Client registered", zap.String("client_id", client.id))

		case client := <-h.replay:
			h.mu.RLock()
			_, ok := h.clients[client.id]
			h.mu.RUnlock()
			if ok {
				h.replayTo(client)
			}

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.id]; ok {
				delete(h.clients, client.id)
				close(client.send)
			}
			h.mu.Unlock()
			h.logger.Info("Client unregistered", zap.String("client_id", client.id))

		case state, ok := <-states:
			if !ok {
				states = nil
				continue
			}
			h.publish(TopicState, CreateStateMessage(state, h.now()))

		case list, ok := <-timers:
			if !ok {
				timers = nil
				continue
			}
			h.publish(TopicTimers, CreateTimersMessage(list, h.now()))
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) publish(topic Topic, msg interface{}) {
	payload, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("Failed to encode snapshot", zap.String("topic", string(topic)), zap.Error(err))
		return
	}
	h.latest[topic] = payload

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		client.offer(outbound{topic: topic, payload: payload})
	}
}

func (h *Hub) replayTo(client *Client) {
	for _, topic := range []Topic{TopicState, TopicTimers} {
		if payload, ok := h.latest[topic]; ok {
			client.offer(outbound{topic: topic, payload: payload})
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, client := range h.clients {
		delete(h.clients, id)
		close(client.send)
	}
}

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	hub *Hub

	// The websocket connection.
	conn *websocket.Conn

	// Buffered channel of outbound messages.
	send chan outbound

	id     string
	logger *zap.Logger

	// topics the client follows, all when empty
	mu     sync.Mutex
	topics map[Topic]bool
}

// HandleWebSocket handles websocket requests from the peer.
func HandleWebSocket(hub *Hub, c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		hub.logger.Error("WebSocket upgrade failed", zap.Error(err))
		return err
	}

	id := uuid.NewString()
	client := &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan outbound, sendBuffer),
		id:     id,
		logger: hub.logger.With(zap.String("client_id", id)),
	}

	select {
	case hub.register <- client:
	case <-hub.done:
		conn.Close()
		return nil
	}

	// Allow collection of memory referenced by the caller by doing all work in
	// new goroutines.
	go client.writePump()
	go client.readPump()

	return nil
}

// offer queues a message without blocking the hub. A client too slow to
// keep up misses snapshots; the next one supersedes them anyway.
func (c *Client) offer(msg outbound) {
	if !c.follows(msg.topic) {
		return
	}
	select {
	case c.send <- msg:
	default:
		c.logger.Warn("Dropping snapshot for slow client", zap.String("topic", string(msg.topic)))
	}
}

func (c *Client) follows(topic Topic) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.topics) == 0 || c.topics[topic]
}

// readPump handles control messages from the peer.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	validator := NewMessageValidator()
	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("WebSocket error", zap.Error(err))
			}
			return
		}
		if messageType != websocket.TextMessage {
			c.logger.Warn("Received unknown message type", zap.Int("type", messageType))
			continue
		}

		msg, err := validator.ValidateMessage(message)
		if err != nil {
			c.reply(CreateErrorMessage("invalid_message", err.Error()))
			continue
		}
		switch msg := msg.(type) {
		case *PingMessage:
			c.reply(CreatePongMessage(msg.Data))
		case *SubscribeMessage:
			c.subscribe(msg.Topics)
		}
	}
}

func (c *Client) subscribe(topics []Topic) {
	c.mu.Lock()
	c.topics = make(map[Topic]bool, len(topics))
	for _, topic := range topics {
		c.topics[topic] = true
	}
	c.mu.Unlock()
	c.logger.Debug("Client subscribed", zap.Int("topics", len(topics)))

	// replay what the client may have missed
	select {
	case c.hub.replay <- c:
	case <-c.hub.done:
	}
}

// reply writes a direct answer. Replies share the send queue with
// snapshots, so they go through the hub lock to avoid racing a close.
func (c *Client) reply(msg interface{}) {
	payload, err := json.Marshal(msg)
	if err != nil {
		c.logger.Error("Failed to encode reply", zap.Error(err))
		return
	}
	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()
	if _, ok := c.hub.clients[c.id]; !ok {
		return
	}
	select {
	case c.send <- outbound{payload: payload}:
	default:
	}
}

// writePump pumps messages from the hub to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message.payload); err != nil {
				c.logger.Warn("Failed to write message", zap.Error(err))
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
