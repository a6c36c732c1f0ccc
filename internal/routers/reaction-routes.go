package routers

import (
	"github.com/go-chi/chi/v5"
	"github.com/xenn00/cipher-chat/internal/handlers"
	reaction_handler "github.com/xenn00/cipher-chat/internal/handlers/reaction-handler"
	"github.com/xenn00/cipher-chat/state"
)

func ReactionRouter(r chi.Router, appState *state.AppState) {
	reactionHandler := reaction_handler.NewReactionHandler(appState)

	r.Post("/api/v1/messages/{messageId}/reactions", handlers.WrapHandler(reactionHandler.ReactToMessage))
	r.Get("/api/v1/messages/{messageId}/reactions", handlers.WrapHandler(reactionHandler.GetReactions))
}
