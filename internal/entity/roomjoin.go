package entity

import (
	"time"
)

// RoomJoin is the visibility floor for a (room, username) pair. Re-joining
// overwrites JoinTime, so history before the latest join is hidden from that
// user on subsequent history reads.
type RoomJoin struct {
	ID       int64     `gorm:"primaryKey"`
	Room     string    `gorm:"not null;uniqueIndex:idx_room_username"`
	Username string    `gorm:"not null;uniqueIndex:idx_room_username"`
	JoinTime time.Time `gorm:"not null"`
}
