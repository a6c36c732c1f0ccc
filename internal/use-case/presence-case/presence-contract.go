package presence_service

import (
	"context"

	app_error "github.com/xenn00/cipher-chat/internal/errors"
	"github.com/xenn00/cipher-chat/internal/websocket"
)

// Broadcaster covers the fan-out shapes presence needs: whole-room for
// rosters, room-minus-sender for entry notices and typing indicators.
type Broadcaster interface {
	BroadcastToRoom(room string, msg websocket.OutgoingMessage)
	BroadcastToRoomExcept(room string, msg websocket.OutgoingMessage, exceptConnID string)
}

// RoomBinder is the delivery-map side of a join or leave. Satisfied by the
// hub; presence keeps the roster, the hub keeps the sockets.
type RoomBinder interface {
	JoinRoom(room, connID string)
	LeaveRoom(room, connID string)
}

type PresenceServiceContract interface {
	Join(ctx context.Context, connID, room, username, publicKey string) *app_error.AppError
	Leave(ctx context.Context, connID, room, username string)
	Disconnect(ctx context.Context, connID string)
	Typing(connID, room string)
	StopTyping(connID, room string)
}
