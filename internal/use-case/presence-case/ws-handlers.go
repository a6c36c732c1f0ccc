package presence_service

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"
	"github.com/xenn00/cipher-chat/internal/dtos/room_dto"
	"github.com/xenn00/cipher-chat/internal/websocket"
)

// RegisterWSHandlers wires presence into the inbound dispatch table.
func (s *PresenceService) RegisterWSHandlers(d *websocket.Dispatcher) {
	d.Register(websocket.EventJoin, func(ctx context.Context, connID string, data json.RawMessage) {
		var req room_dto.JoinPayload
		if err := json.Unmarshal(data, &req); err != nil {
			log.Warn().Err(err).Str("connID", connID).Msg("presence: malformed join payload")
			return
		}
		if req.Room == "" || req.Username == "" {
			return
		}
		if err := s.Join(ctx, connID, req.Room, req.Username, req.PublicKey); err != nil {
			log.Error().Err(err).Str("room", req.Room).Msg("presence: join failed")
		}
	})

	d.Register(websocket.EventLeave, func(ctx context.Context, connID string, data json.RawMessage) {
		var req room_dto.LeavePayload
		if err := json.Unmarshal(data, &req); err != nil {
			return
		}
		if req.Room == "" || req.Username == "" {
			return
		}
		s.Leave(ctx, connID, req.Room, req.Username)
	})

	d.Register(websocket.EventTyping, func(ctx context.Context, connID string, data json.RawMessage) {
		var req room_dto.TypingPayload
		if err := json.Unmarshal(data, &req); err != nil || req.Room == "" {
			return
		}
		s.Typing(connID, req.Room)
	})

	d.Register(websocket.EventStopTyping, func(ctx context.Context, connID string, data json.RawMessage) {
		var req room_dto.TypingPayload
		if err := json.Unmarshal(data, &req); err != nil || req.Room == "" {
			return
		}
		s.StopTyping(connID, req.Room)
	})
}
