package message_service

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"
	"github.com/xenn00/cipher-chat/internal/dtos/room_dto"
	"github.com/xenn00/cipher-chat/internal/websocket"
)

// UsernameResolver maps a live connection id to its bound username.
// Satisfied by the presence registry.
type UsernameResolver interface {
	UsernameOf(connID string) (string, bool)
}

// RegisterWSHandlers wires the engine into the inbound dispatch table.
func (s *MessageService) RegisterWSHandlers(d *websocket.Dispatcher, users UsernameResolver) {
	d.Register(websocket.EventMessage, func(ctx context.Context, connID string, data json.RawMessage) {
		var req room_dto.SendMessagePayload
		if err := json.Unmarshal(data, &req); err != nil {
			log.Warn().Err(err).Str("connID", connID).Msg("engine: malformed message payload")
			return
		}
		if req.Room == "" {
			return
		}

		author, ok := users.UsernameOf(connID)
		if !ok {
			author = "Unknown"
		}

		if _, err := s.Create(ctx, author, req); err != nil {
			if err.Field == "unsafe-content" {
				// Rejection goes to the sender only.
				s.Broadcast.SendToClient(connID, websocket.NewEvent(websocket.EventMessageRejected, req.Room, map[string]any{
					"reason": "Message contains unsafe content",
				}))
				return
			}
			log.Error().Err(err).Str("room", req.Room).Msg("engine: failed to create message")
		}
	})

	d.Register(websocket.EventMessageSeen, func(ctx context.Context, connID string, data json.RawMessage) {
		var req room_dto.SeenPayload
		if err := json.Unmarshal(data, &req); err != nil || req.ID == "" {
			return
		}

		username, ok := users.UsernameOf(connID)
		if !ok {
			username = "Unknown"
		}

		if err := s.Acknowledge(ctx, req.ID, username); err != nil {
			log.Error().Err(err).Str("id", req.ID).Msg("engine: failed to acknowledge message")
		}
	})
}
