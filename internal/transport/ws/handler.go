package ws

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"secretwheel/internal/app"
)

// Handler handles WebSocket connections
type Handler struct {
	hub      *app.WheelHub
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *app.WheelHub, logger *slog.Logger) *Handler {
	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// Renderers may be served from another origin
				return true
			},
		},
		logger: logger,
	}
}

// ServeHTTP handles WebSocket upgrade requests
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	roomCode := strings.ToUpper(r.URL.Query().Get("roomCode"))
	if roomCode == "" {
		http.Error(w, "roomCode is required", http.StatusBadRequest)
		return
	}

	// Keep a client-supplied ID so a reloaded renderer keeps its identity.
	// Registering it closes any older socket still holding that ID.
	clientID := r.URL.Query().Get("clientId")
	if _, err := uuid.Parse(clientID); err != nil {
		clientID = uuid.New().String()
	}

	session, err := h.hub.GetSession(roomCode)
	if err != nil {
		http.Error(w, "Wheel not found", http.StatusNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	client := NewClient(conn, session, clientID, h.logger)
	session.RegisterClient(clientID, client)

	h.logger.Info("websocket connected",
		"roomCode", roomCode,
		"clientID", clientID,
	)

	client.sendConnected()
	client.Run()
}
