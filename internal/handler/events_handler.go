package handler

import (
	"log/slog"
	"net/http"

	"welfarewatch-web/internal/events"
	"welfarewatch-web/internal/middleware"
	"welfarewatch-web/internal/observability"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  512,
	WriteBufferSize: 1024,
	CheckOrigin:     middleware.OriginAllowed,
}

// EventsHandler connects open pages to the event hub
type EventsHandler struct {
	hub *events.Hub
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(hub *events.Hub) *EventsHandler {
	return &EventsHandler{hub: hub}
}

// HandleConnection upgrades the request and attaches the page to the hub
func (h *EventsHandler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		observability.FromContext(r.Context()).Warn("websocket upgrade failed",
			slog.String("error", err.Error()))
		return
	}

	client := events.NewClient(h.hub, conn)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
