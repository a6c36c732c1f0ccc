package user_repo

import (
	"context"

	"github.com/xenn00/cipher-chat/internal/entity"
	app_error "github.com/xenn00/cipher-chat/internal/errors"
)

type UserRepoContract interface {
	FindByUsername(ctx context.Context, username string) (*entity.User, *app_error.AppError)
	UpsertOnJoin(ctx context.Context, username, publicKey string) *app_error.AppError
}
