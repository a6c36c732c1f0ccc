package roomjoin_repo

import (
	"context"
	"time"

	app_error "github.com/xenn00/cipher-chat/internal/errors"
)

// RoomJoinLedgerContract records the first-visible-timestamp per
// (room, username). VisibilityFloor returns (nil, nil) when no record
// exists; the history caller decides what that means.
type RoomJoinLedgerContract interface {
	RecordJoin(ctx context.Context, room, username string, at time.Time) *app_error.AppError
	VisibilityFloor(ctx context.Context, room, username string) (*time.Time, *app_error.AppError)
}
