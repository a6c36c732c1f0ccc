package user_repo

import (
	"context"
	"errors"

	"github.com/xenn00/cipher-chat/internal/entity"
	app_error "github.com/xenn00/cipher-chat/internal/errors"
	"github.com/xenn00/cipher-chat/state"
	"gorm.io/gorm"
)

type UserRepo struct {
	AppState *state.AppState
}

func NewUserRepo(appState *state.AppState) UserRepoContract {
	return &UserRepo{
		AppState: appState,
	}
}

func (r *UserRepo) FindByUsername(ctx context.Context, username string) (*entity.User, *app_error.AppError) {
	var user entity.User

	if err := r.AppState.DB.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, app_error.NotFound("cannot find user")
		}
		return nil, app_error.StorageFailure("unexpected error occur when fetch user")
	}

	return &user, nil
}

// UpsertOnJoin keeps the public-key directory current: a known user gets the
// fresher key, an unknown username becomes a guest record.
func (r *UserRepo) UpsertOnJoin(ctx context.Context, username, publicKey string) *app_error.AppError {
	var user entity.User

	err := r.AppState.DB.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err == nil {
		if publicKey != "" && user.PublicKey != publicKey {
			if err := r.AppState.DB.WithContext(ctx).Model(&user).Update("public_key", publicKey).Error; err != nil {
				return app_error.StorageFailure("unexpected error occur when updating public key")
			}
		}
		return nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return app_error.StorageFailure("unexpected error occur when fetch user")
	}

	guest := entity.User{
		Username:  username,
		PublicKey: publicKey,
		IsGuest:   true,
	}
	if err := r.AppState.DB.WithContext(ctx).Create(&guest).Error; err != nil {
		return app_error.StorageFailure("unexpected error occur when trying to create user")
	}

	return nil
}
