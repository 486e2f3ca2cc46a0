package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/woozymasta/geoarea/internal/metrics"
	"github.com/woozymasta/geoarea/internal/scene"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	pingInterval   = 30 * time.Second
	pongWait       = 60 * time.Second
	writeWait      = 10 * time.Second
	maxMessageSize = 8192
	sendBuffer     = 256
)

// eventError is sent to clients when an input could not be applied.
const eventError scene.EventKind = "error"

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || origin == "http://"+r.Host || origin == "https://"+r.Host
	},
}

// Client is one websocket connection.
type Client struct {
	conn *websocket.Conn
	send chan []byte
	hub  *Hub
	ID   uuid.UUID
}

// Hub fans scene events out to websocket clients and collects their inputs.
// Broadcast never blocks: a client whose buffer is full is dropped.
type Hub struct {
	log     zerolog.Logger
	clients map[*Client]struct{}
	inputs  chan scene.Input
	done    chan struct{}
	mu      sync.Mutex
	closed  bool
}

// NewHub creates an empty hub.
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		log:     log,
		clients: make(map[*Client]struct{}),
		inputs:  make(chan scene.Input, sendBuffer),
		done:    make(chan struct{}),
	}
}

// Inputs is the stream of input events received from all clients.
func (h *Hub) Inputs() <-chan scene.Input {
	return h.inputs
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Listener returns a scene listener broadcasting every event.
func (h *Hub) Listener() scene.Listener {
	return func(e scene.Event) {
		h.BroadcastJSON(e)
	}
}

// ReportInput tells the client that sent in that it was rejected.
// Inputs without an origin are reported to every client.
func (h *Hub) ReportInput(in scene.Input, err error) {
	e := scene.Event{Kind: eventError, Text: err.Error()}
	if in.Origin == "" {
		h.BroadcastJSON(e)
		return
	}

	if c := h.client(in.Origin); c != nil {
		h.sendTo(c, e)
	}
}

func (h *Hub) client(id string) *Client {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		if c.ID.String() == id {
			return c
		}
	}
	return nil
}

// BroadcastJSON encodes v and sends it to every client.
func (h *Hub) BroadcastJSON(v any) {
	msg, err := json.Marshal(v)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to encode websocket message")
		return
	}
	h.Broadcast(msg)
}

// Broadcast sends msg to every client.
func (h *Hub) Broadcast(msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			h.log.Warn().Str("client", c.ID.String()).Msg("Websocket client too slow, dropping")
			h.drop(c)
		}
	}
}

// Close disconnects every client and stops accepting inputs.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	close(h.done)

	for c := range h.clients {
		h.drop(c)
	}
}

// add registers c and queues the replay messages ahead of any later event.
func (h *Hub) add(c *Client, replay [][]byte) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return false
	}

	for _, msg := range replay {
		c.send <- msg
	}
	h.clients[c] = struct{}{}
	metrics.WebsocketClients.Inc()

	h.log.Debug().Str("client", c.ID.String()).Int("clients", len(h.clients)).Msg("Websocket client registered")
	return true
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.drop(c)
}

// drop must be called with h.mu held.
func (h *Hub) drop(c *Client) {
	if _, ok := h.clients[c]; !ok {
		return
	}

	delete(h.clients, c)
	close(c.send)
	metrics.WebsocketClients.Dec()

	h.log.Debug().Str("client", c.ID.String()).Int("clients", len(h.clients)).Msg("Websocket client unregistered")
}

func (h *Hub) sendTo(c *Client, v any) {
	msg, err := json.Marshal(v)
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; !ok {
		return
	}
	select {
	case c.send <- msg:
	default:
		h.drop(c)
	}
}

func (h *Hub) push(in scene.Input) bool {
	select {
	case <-h.done:
		return false
	default:
	}

	select {
	case h.inputs <- in:
		return true
	case <-h.done:
		return false
	}
}

// HandleWS upgrades the connection, replays the current scene and streams
// every following event to the client.
func (s *ServerContext) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("Websocket upgrade failed")
		return
	}

	c := &Client{
		ID:   uuid.New(),
		conn: conn,
		hub:  s.Hub,
	}

	// Replay and registration share the session lock, no event can slip between them.
	added := false
	_ = s.Session.Do(func(sc *scene.Scene) error {
		events := sc.Snapshot().Events()
		replay := make([][]byte, 0, len(events))
		for _, e := range events {
			msg, err := json.Marshal(e)
			if err != nil {
				return err
			}
			replay = append(replay, msg)
		}

		c.send = make(chan []byte, sendBuffer+len(replay))
		added = s.Hub.add(c, replay)
		return nil
	})

	if !added {
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		_ = conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.hub.remove(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var in scene.Input
		if err := c.conn.ReadJSON(&in); err != nil {
			// A truncated or empty frame decodes to io.ErrUnexpectedEOF,
			// a dropped connection surfaces as a close error instead.
			var syntaxErr *json.SyntaxError
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) || errors.Is(err, io.ErrUnexpectedEOF) {
				c.hub.sendTo(c, scene.Event{Kind: eventError, Text: "invalid input: " + err.Error()})
				continue
			}

			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.log.Warn().Err(err).Str("client", c.ID.String()).Msg("Websocket read failed")
			}
			return
		}

		in.Origin = c.ID.String()
		if !c.hub.push(in) {
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
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
