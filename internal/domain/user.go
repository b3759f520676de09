// Package domain 定义了课堂实时协作中持久化的实体。
package domain

import (
	"time"

	"github.com/google/uuid"
)

// User 表示平台中的用户。学生和讲师共用这一张表。
type User struct {
	ID           uuid.UUID `gorm:"type:char(36);primaryKey"`
	Username     string    `gorm:"type:varchar(191);uniqueIndex:idx_username;not null"`
	Email        string    `gorm:"type:varchar(191);uniqueIndex:idx_email"`
	IsInstructor bool      `gorm:"not null;default:false"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

// String 返回在事件结果中展示的用户名。
func (u *User) String() string {
	if u == nil {
		return ""
	}
	return u.Username
}
