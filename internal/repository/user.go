package repository

import (
	"context"

	"course-classroom/internal/domain"

	"github.com/google/uuid"
)

// UserRepository 定义了用户数据的读取操作。用户由平台的其他部分创建。
type UserRepository interface {
	// FindByID 根据用户 ID 查找用户。
	// 如果用户不存在，返回 ErrUserNotFound。
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}
