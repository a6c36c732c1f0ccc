package entity

import (
	"time"
)

type MessageReaction struct {
	ID        int64     `gorm:"primaryKey"`
	MessageID string    `gorm:"size:100;not null;index"`
	UserID    string    `gorm:"size:100;not null"`
	Emoji     string    `gorm:"size:50;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}
