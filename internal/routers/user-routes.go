package routers

import (
	"github.com/go-chi/chi/v5"
	"github.com/xenn00/cipher-chat/internal/handlers"
	user_handler "github.com/xenn00/cipher-chat/internal/handlers/user-handler"
	"github.com/xenn00/cipher-chat/internal/presence"
	"github.com/xenn00/cipher-chat/state"
)

func UserRouter(r chi.Router, appState *state.AppState, registry *presence.Registry) {
	userHandler := user_handler.NewUserHandler(appState, registry)

	r.Get("/api/v1/users/{username}/public-key", handlers.WrapHandler(userHandler.GetPublicKey))
	r.Get("/api/v1/rooms/{room}/users", handlers.WrapHandler(userHandler.GetRoomUsers))
}
