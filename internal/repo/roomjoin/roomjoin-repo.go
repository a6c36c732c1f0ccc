package roomjoin_repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xenn00/cipher-chat/internal/entity"
	app_error "github.com/xenn00/cipher-chat/internal/errors"
	"github.com/xenn00/cipher-chat/state"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RoomJoinLedger struct {
	AppState *state.AppState
}

func NewRoomJoinLedger(appState *state.AppState) RoomJoinLedgerContract {
	return &RoomJoinLedger{
		AppState: appState,
	}
}

// RecordJoin upserts the (room, username) record's join_time. Re-joining
// overwrites the floor, hiding older history from that user.
func (r *RoomJoinLedger) RecordJoin(ctx context.Context, room, username string, at time.Time) *app_error.AppError {
	record := entity.RoomJoin{
		Room:     room,
		Username: username,
		JoinTime: at,
	}

	err := r.AppState.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "room"}, {Name: "username"}},
		DoUpdates: clause.Assignments(map[string]any{"join_time": at}),
	}).Create(&record).Error

	if err != nil {
		return app_error.StorageFailure(fmt.Sprintf("failed to record room join: %v", err))
	}
	return nil
}

func (r *RoomJoinLedger) VisibilityFloor(ctx context.Context, room, username string) (*time.Time, *app_error.AppError) {
	var record entity.RoomJoin

	err := r.AppState.DB.WithContext(ctx).Where("room = ? AND username = ?", room, username).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, app_error.StorageFailure(fmt.Sprintf("failed to fetch room join: %v", err))
	}

	return &record.JoinTime, nil
}
