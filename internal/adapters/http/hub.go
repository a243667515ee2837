package http

import (
	"encoding/json"
	"log/slog"
	"sort"
	"sync"

	"github.com/samirrijal/globetrotter/internal/core/domain"
	"github.com/samirrijal/globetrotter/internal/pkg/metrics"
)

// DefaultClientBuffer is how many messages a slow client may lag behind
// before it starts losing them.
const DefaultClientBuffer = 256

// Message types pushed to browsers.
const (
	MsgText         = "text"
	MsgStyleWidth   = "style_width"
	MsgMarker       = "marker"
	MsgPath         = "path"
	MsgFrame        = "frame"
	MsgJourneyEvent = "journey_event"
	MsgAck          = "ack"
	MsgError        = "error"
)

// Message is the envelope for everything written to a WebSocket client.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type textData struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type widthData struct {
	ID      string  `json:"id"`
	Percent float64 `json:"percent"`
}

type pathData struct {
	Points []domain.Vector3 `json:"points"`
}

// Client is one registered WebSocket connection.
type Client struct {
	send chan []byte
}

// Messages yields encoded messages until the client is unregistered.
func (c *Client) Messages() <-chan []byte {
	return c.send
}

// Hub fans display and scene updates out to every connected browser. It
// implements ports.DisplaySink and ports.Renderer, and remembers the latest
// readouts, path and marker so a newly connected page starts in sync.
type Hub struct {
	buffer int

	mu      sync.Mutex
	clients map[*Client]struct{}
	texts   map[string]string
	widths  map[string]float64
	path    []domain.Vector3
	marker  *domain.Vector3
}

// NewHub creates a hub whose clients buffer up to buffer messages.
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = DefaultClientBuffer
	}
	return &Hub{
		buffer:  buffer,
		clients: make(map[*Client]struct{}),
		texts:   make(map[string]string),
		widths:  make(map[string]float64),
	}
}

// Register adds a client and queues the current state for it.
func (h *Hub) Register() *Client {
	c := &Client{send: make(chan []byte, h.buffer)}

	h.mu.Lock()
	defer h.mu.Unlock()

	for _, msg := range h.replayLocked() {
		h.deliverLocked(c, msg)
	}
	h.clients[c] = struct{}{}
	metrics.ActiveWebSockets.Inc()
	return c
}

// Unregister removes c and closes its message channel. Safe to call twice.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	metrics.ActiveWebSockets.Dec()
}

// ClientCount returns the number of registered clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// SendTo queues msg for a single client. It reports false if c is gone or full.
func (h *Hub) SendTo(c *Client, msg Message) bool {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("hub marshal failed", "type", msg.Type, "error", err)
		return false
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; !ok {
		return false
	}
	return h.deliverLocked(c, data)
}

// Broadcast queues msg for every client.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("hub marshal failed", "type", msg.Type, "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.broadcastLocked(data)
}

func (h *Hub) SetText(elementID, value string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.texts[elementID] = value
	h.broadcastLocked(mustEncode(Message{Type: MsgText, Data: textData{ID: elementID, Text: value}}))
}

func (h *Hub) SetStyleWidth(elementID string, percent float64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.widths[elementID] = percent
	h.broadcastLocked(mustEncode(Message{Type: MsgStyleWidth, Data: widthData{ID: elementID, Percent: percent}}))
}

func (h *Hub) MoveMarker(pos domain.Vector3) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.marker = &pos
	h.broadcastLocked(mustEncode(Message{Type: MsgMarker, Data: pos}))
}

func (h *Hub) DrawPath(points []domain.Vector3) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.path = append(make([]domain.Vector3, 0, len(points)), points...)
	h.broadcastLocked(mustEncode(Message{Type: MsgPath, Data: pathData{Points: h.path}}))
}

// RenderFrame is not replayed; the next tick supersedes it anyway.
func (h *Hub) RenderFrame(frame domain.Frame) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.clients) == 0 {
		return
	}
	h.broadcastLocked(mustEncode(Message{Type: MsgFrame, Data: frame}))
}

func (h *Hub) replayLocked() [][]byte {
	var out [][]byte

	ids := make([]string, 0, len(h.texts))
	for id := range h.texts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		out = append(out, mustEncode(Message{Type: MsgText, Data: textData{ID: id, Text: h.texts[id]}}))
	}

	ids = ids[:0]
	for id := range h.widths {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		out = append(out, mustEncode(Message{Type: MsgStyleWidth, Data: widthData{ID: id, Percent: h.widths[id]}}))
	}

	if h.path != nil {
		out = append(out, mustEncode(Message{Type: MsgPath, Data: pathData{Points: h.path}}))
	}
	if h.marker != nil {
		out = append(out, mustEncode(Message{Type: MsgMarker, Data: *h.marker}))
	}
	return out
}

func (h *Hub) broadcastLocked(data []byte) {
	for c := range h.clients {
		h.deliverLocked(c, data)
	}
}

// deliverLocked never blocks: a full client loses the message.
func (h *Hub) deliverLocked(c *Client, data []byte) bool {
	select {
	case c.send <- data:
		return true
	default:
		metrics.WebSocketDrops.Inc()
		return false
	}
}

// mustEncode is only used for hub-owned payloads, which always marshal.
func mustEncode(msg Message) []byte {
	data, err := json.Marshal(msg)
	if err != nil {
		panic("hub encode " + msg.Type + ": " + err.Error())
	}
	return data
}
