package reaction_repo

import (
	"context"

	"github.com/xenn00/cipher-chat/internal/entity"
	app_error "github.com/xenn00/cipher-chat/internal/errors"
)

type ReactionRepoContract interface {
	Save(ctx context.Context, reaction *entity.MessageReaction) *app_error.AppError
	ListByMessage(ctx context.Context, messageID string) ([]*entity.MessageReaction, *app_error.AppError)
	CountByMessage(ctx context.Context, messageID string) (int64, *app_error.AppError)
}
