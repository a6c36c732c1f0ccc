package routers

import (
	"github.com/go-chi/chi/v5"
	"github.com/xenn00/cipher-chat/internal/handlers"
	message_handler "github.com/xenn00/cipher-chat/internal/handlers/message-handler"
	message_service "github.com/xenn00/cipher-chat/internal/use-case/message-case"
)

func MessageRouter(r chi.Router, service message_service.MessageServiceContract) {
	messageHandler := message_handler.NewMessageHandler(service)

	r.Get("/api/v1/rooms/{room}/messages", handlers.WrapHandler(messageHandler.GetHistory))
	r.Get("/api/v1/rooms/{room}/messages/search", handlers.WrapHandler(messageHandler.SearchMessages))
	r.Put("/api/v1/messages/{messageId}", handlers.WrapHandler(messageHandler.EditMessage))
	r.Delete("/api/v1/messages/{messageId}", handlers.WrapHandler(messageHandler.DeleteMessage))
	r.Patch("/api/v1/messages/{messageId}/read", handlers.WrapHandler(messageHandler.MarkMessageAsRead))
}
