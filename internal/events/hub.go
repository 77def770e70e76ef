// Package events pushes notifications and hard redirects to every open page
// of the web client over websockets.
package events

import (
	"context"
	"encoding/json"
	"log/slog"

	"welfarewatch-web/internal/gateway"
	"welfarewatch-web/internal/observability"
)

// Event types
const (
	TypeNotification = "notification"
	TypeRedirect     = "redirect"
)

// backlogSize bounds the notifications kept while no page is open
const backlogSize = 16

// Event is one message sent to open pages
type Event struct {
	Type     string `json:"type"`
	Level    string `json:"level,omitempty"`
	Message  string `json:"message,omitempty"`
	Location string `json:"location,omitempty"`
}

type outbound struct {
	kind string
	data []byte
}

// Hub maintains the open pages and fans events out to them
type Hub struct {
	// Open pages
	clients map[*Client]bool

	// Notifications raised while no page was open
	backlog [][]byte

	broadcast  chan outbound
	register   chan *Client
	unregister chan *Client

	// Shutdown signal
	done chan struct{}
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan outbound, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run(ctx context.Context) error {
	defer h.shutdown()

	for {
		select {
		case <-ctx.Done():
			slog.Info("event hub shutting down gracefully")
			return ctx.Err()

		case client := <-h.register:
			h.clients[client] = true
			observability.EventConnectionsActive.Inc()
			slog.Debug("page connected", slog.Int("pages", len(h.clients)))
			h.flushBacklog(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case msg := <-h.broadcast:
			if len(h.clients) == 0 {
				if msg.kind == TypeNotification {
					h.keep(msg.data)
				}
				continue
			}
			for client := range h.clients {
				h.deliver(client, msg)
			}
		}
	}
}

func (h *Hub) deliver(client *Client, msg outbound) {
	select {
	case client.send <- msg.data:
		observability.EventMessagesSent.WithLabelValues(msg.kind).Inc()
	default:
		// Send buffer is full, drop the page
		h.unregisterClient(client)
	}
}

func (h *Hub) keep(data []byte) {
	if len(h.backlog) == backlogSize {
		h.backlog = h.backlog[1:]
	}
	h.backlog = append(h.backlog, data)
}

func (h *Hub) flushBacklog(client *Client) {
	for _, data := range h.backlog {
		h.deliver(client, outbound{kind: TypeNotification, data: data})
	}
	h.backlog = nil
}

// unregisterClient removes a page and closes its send channel once
func (h *Hub) unregisterClient(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.send)
	observability.EventConnectionsActive.Dec()
	slog.Debug("page disconnected", slog.Int("pages", len(h.clients)))
}

// shutdown closes every open page
func (h *Hub) shutdown() {
	close(h.done)
	for client := range h.clients {
		h.unregisterClient(client)
	}
	slog.Info("event hub shutdown complete")
}

// Publish queues an event for every open page. Events published after
// shutdown are dropped.
func (h *Hub) Publish(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		slog.Error("failed to marshal event",
			slog.String("type", event.Type),
			slog.String("error", err.Error()))
		return
	}

	select {
	case h.broadcast <- outbound{kind: event.Type, data: data}:
	case <-h.done:
	default:
		slog.Warn("event dropped, hub queue full", slog.String("type", event.Type))
	}
}

// Notify shows a toast on every open page
func (h *Hub) Notify(ctx context.Context, n gateway.Notification) {
	h.Publish(Event{Type: TypeNotification, Level: n.Level, Message: n.Message})
}

// HardRedirect reloads every open page at location
func (h *Hub) HardRedirect(ctx context.Context, location string) {
	observability.FromContext(ctx).Info("hard redirect", slog.String("location", location))
	h.Publish(Event{Type: TypeRedirect, Location: location})
}

// Register adds a page to the hub
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		client.closeConnection()
	}
}

// Unregister removes a page from the hub
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}
