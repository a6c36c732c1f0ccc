package message_repo

import (
	"context"
	"time"

	"github.com/xenn00/cipher-chat/internal/entity"
	app_error "github.com/xenn00/cipher-chat/internal/errors"
)

// MessageRepoContract is the durable message store. Missing records surface
// as not-found errors so callers can decide between silent no-op and 404.
type MessageRepoContract interface {
	Insert(ctx context.Context, msg *entity.Message) *app_error.AppError
	FindByID(ctx context.Context, id string) (*entity.Message, *app_error.AppError)
	AddReader(ctx context.Context, id, username string) *app_error.AppError
	MarkRead(ctx context.Context, id string) *app_error.AppError
	UpdateEnvelope(ctx context.Context, id string, envelope map[string]string) *app_error.AppError
	Delete(ctx context.Context, id string) *app_error.AppError
	ListRoom(ctx context.Context, room string, since *time.Time) ([]*entity.Message, *app_error.AppError)
	SearchRoom(ctx context.Context, room, authorQuery string, since *time.Time) ([]*entity.Message, *app_error.AppError)
	ListExpired(ctx context.Context, now time.Time) ([]*entity.Message, *app_error.AppError)
}
