package reaction_repo

import (
	"context"

	"github.com/xenn00/cipher-chat/internal/entity"
	app_error "github.com/xenn00/cipher-chat/internal/errors"
	"github.com/xenn00/cipher-chat/state"
)

type ReactionRepo struct {
	AppState *state.AppState
}

func NewReactionRepo(appState *state.AppState) ReactionRepoContract {
	return &ReactionRepo{
		AppState: appState,
	}
}

func (r *ReactionRepo) Save(ctx context.Context, reaction *entity.MessageReaction) *app_error.AppError {
	if err := r.AppState.DB.WithContext(ctx).Create(reaction).Error; err != nil {
		return app_error.StorageFailure("unexpected error occur when trying to save reaction")
	}
	return nil
}

func (r *ReactionRepo) ListByMessage(ctx context.Context, messageID string) ([]*entity.MessageReaction, *app_error.AppError) {
	var reactions []*entity.MessageReaction

	if err := r.AppState.DB.WithContext(ctx).Where("message_id = ?", messageID).Find(&reactions).Error; err != nil {
		return nil, app_error.StorageFailure("unexpected error occur when fetch reactions")
	}

	return reactions, nil
}

func (r *ReactionRepo) CountByMessage(ctx context.Context, messageID string) (int64, *app_error.AppError) {
	var count int64

	if err := r.AppState.DB.WithContext(ctx).Model(&entity.MessageReaction{}).Where("message_id = ?", messageID).Count(&count).Error; err != nil {
		return 0, app_error.StorageFailure("unexpected error occur when count reactions")
	}

	return count, nil
}
