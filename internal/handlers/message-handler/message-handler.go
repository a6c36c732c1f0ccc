package message_handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/xenn00/cipher-chat/internal/dtos/room_dto"
	"github.com/xenn00/cipher-chat/internal/entity"
	app_error "github.com/xenn00/cipher-chat/internal/errors"
	"github.com/xenn00/cipher-chat/internal/handlers"
	message_service "github.com/xenn00/cipher-chat/internal/use-case/message-case"
)

// MessageHandler exposes message history and lifecycle mutations over HTTP.
// The socket carries the live traffic; these routes serve page loads and
// clients that missed the live event.
type MessageHandler struct {
	Validate *validator.Validate
	Service  message_service.MessageServiceContract
}

func NewMessageHandler(service message_service.MessageServiceContract) *MessageHandler {
	return &MessageHandler{
		Validate: validator.New(),
		Service:  service,
	}
}

func (h *MessageHandler) GetHistory(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	room := chi.URLParam(r, "room")
	username := r.URL.Query().Get("username")

	msgs, err := h.Service.History(r.Context(), room, username)
	if err != nil {
		return err
	}

	handlers.WriteResponse(w, r, "successfully get room messages", toMessageItems(msgs))
	return nil
}

func (h *MessageHandler) SearchMessages(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	room := chi.URLParam(r, "room")
	username := r.URL.Query().Get("username")
	query := r.URL.Query().Get("user")

	msgs, err := h.Service.Search(r.Context(), room, query, username)
	if err != nil {
		return err
	}

	handlers.WriteResponse(w, r, "successfully search room messages", toMessageItems(msgs))
	return nil
}

func (h *MessageHandler) EditMessage(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	id := chi.URLParam(r, "messageId")

	var req room_dto.EditMessageRequest
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return app_error.NewAppError(http.StatusBadRequest, "Invalid JSON", "body")
	}

	if err := h.Validate.Struct(req); err != nil {
		return app_error.NewAppError(http.StatusBadRequest, fmt.Sprintf("Invalid fields: %v", err), "validation")
	}

	if err := h.Service.Edit(r.Context(), id, req.Envelope); err != nil {
		return err
	}

	handlers.WriteResponse(w, r, "message updated", map[string]any{"id": id})
	return nil
}

func (h *MessageHandler) DeleteMessage(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	id := chi.URLParam(r, "messageId")

	if err := h.Service.Delete(r.Context(), id); err != nil {
		return err
	}

	handlers.WriteResponse(w, r, "message deleted", map[string]any{"id": id})
	return nil
}

func (h *MessageHandler) MarkMessageAsRead(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	id := chi.URLParam(r, "messageId")

	if err := h.Service.MarkRead(r.Context(), id); err != nil {
		return err
	}

	handlers.WriteResponse(w, r, "message marked as read", map[string]any{"id": id})
	return nil
}

// toMessageItems shapes stored messages for the wire. Envelopes go out
// whole; each recipient picks their own slot client-side.
func toMessageItems(msgs []*entity.Message) []map[string]any {
	items := make([]map[string]any, 0, len(msgs))
	for _, m := range msgs {
		var expires any
		if m.ExpiresAt != nil {
			expires = m.ExpiresAt
		}
		items = append(items, map[string]any{
			"id":               m.ID.Hex(),
			"user":             m.Author,
			"encrypted_map":    m.Envelope,
			"fileUrl":          m.FileURL,
			"fileName":         m.FileName,
			"created_at":       m.CreatedAt,
			"expires_at":       expires,
			"delivered":        m.Delivered,
			"read":             m.Read,
			"readers":          m.Readers,
			"delete_on_read":   m.DeleteOnRead,
			"require_all_read": m.RequireAllRead,
		})
	}
	return items
}
