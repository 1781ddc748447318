package handler

import (
	"log"
	"net/http"
	"strings"

	"mediafeed-server/internal/service"
	"mediafeed-server/internal/websocket"

	"github.com/google/uuid"
	ws "github.com/gorilla/websocket"
)

type WebSocketHandler struct {
	manager     *websocket.Manager
	authService *service.AuthService
	upgrader    ws.Upgrader
}

func NewWebSocketHandler(manager *websocket.Manager, authService *service.AuthService) *WebSocketHandler {
	return &WebSocketHandler{
		manager:     manager,
		authService: authService,
		upgrader: ws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// HandleConnection upgrades an authenticated request to a notification
// stream. Unlike the REST surface, the upgrade itself rejects bad tokens:
// an anonymous notification stream has nothing to deliver.
func (h *WebSocketHandler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		token = r.Header.Get("Authorization")
		token = strings.TrimPrefix(token, "Bearer ")
	}

	if token == "" {
		http.Error(w, "missing authorization token", http.StatusUnauthorized)
		return
	}

	userID, err := h.authService.ValidateAccessToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("failed to upgrade connection: %v", err)
		return
	}

	client := websocket.NewClient(uuid.New().String(), userID, conn, h.manager)

	h.manager.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
