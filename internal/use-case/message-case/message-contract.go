package message_service

import (
	"context"

	"github.com/xenn00/cipher-chat/internal/dtos/room_dto"
	"github.com/xenn00/cipher-chat/internal/entity"
	app_error "github.com/xenn00/cipher-chat/internal/errors"
	"github.com/xenn00/cipher-chat/internal/websocket"
)

// Broadcaster is the narrow fan-out capability the engine needs. The hub
// satisfies it; tests substitute a recorder.
type Broadcaster interface {
	BroadcastToRoom(room string, msg websocket.OutgoingMessage)
	SendToClient(connID string, msg websocket.OutgoingMessage)
}

// RosterProvider exposes the live roster of a room. Satisfied by the
// presence registry.
type RosterProvider interface {
	RosterOf(room string) []string
}

type MessageServiceContract interface {
	Create(ctx context.Context, author string, req room_dto.SendMessagePayload) (*entity.Message, *app_error.AppError)
	Acknowledge(ctx context.Context, id, username string) *app_error.AppError
	Edit(ctx context.Context, id string, envelope map[string]string) *app_error.AppError
	Delete(ctx context.Context, id string) *app_error.AppError
	MarkRead(ctx context.Context, id string) *app_error.AppError
	History(ctx context.Context, room, username string) ([]*entity.Message, *app_error.AppError)
	Search(ctx context.Context, room, query, username string) ([]*entity.Message, *app_error.AppError)
}
