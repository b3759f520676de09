package domain

import (
	"time"

	"github.com/google/uuid"
)

// ChatRoom 是课程的聊天室，每门课程最多一个。
type ChatRoom struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey"`
	CourseID  uuid.UUID `gorm:"type:char(36);uniqueIndex;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// ChatRoomBlock 是聊天室的黑名单条目。被拉黑的用户不能进入课程房间。
type ChatRoomBlock struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey"`
	RoomID    uuid.UUID `gorm:"type:char(36);uniqueIndex:idx_room_block;not null"`
	UserID    uuid.UUID `gorm:"type:char(36);uniqueIndex:idx_room_block;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}
