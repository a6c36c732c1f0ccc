package hub_handler

import (
	"encoding/json"
	"net/http"
	"time"

	app_error "github.com/xenn00/cipher-chat/internal/errors"
	"github.com/xenn00/cipher-chat/internal/handlers"
	"github.com/xenn00/cipher-chat/internal/websocket"
)

type HubHandler struct {
	Hub *websocket.Hub
}

func NewHubHandler(hub *websocket.Hub) *HubHandler {
	return &HubHandler{
		Hub: hub,
	}
}

func (h *HubHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
		"service":   "cipher-chat",
	})
}

func (h *HubHandler) HandleGetStats(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	handlers.WriteResponse(w, r, "get websocket stats", h.Hub.GetHubStats())
	return nil
}
