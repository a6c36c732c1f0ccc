package routers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/xenn00/cipher-chat/config"
	"github.com/xenn00/cipher-chat/internal/middleware"
	"github.com/xenn00/cipher-chat/internal/presence"
	message_service "github.com/xenn00/cipher-chat/internal/use-case/message-case"
	"github.com/xenn00/cipher-chat/internal/websocket"
	"github.com/xenn00/cipher-chat/state"
)

func NewRouter(appState *state.AppState, cfg *config.AppConfig, hub *websocket.Hub, registry *presence.Registry, messages message_service.MessageServiceContract) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.WithRequestId)

	HubRouter(r, hub)
	MessageRouter(r, messages)
	UserRouter(r, appState, registry)
	ReactionRouter(r, appState)
	UploadRouter(r, cfg)

	return r
}
