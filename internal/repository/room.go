package repository

import (
	"context"

	"course-classroom/internal/domain"

	"github.com/google/uuid"
)

// ChatRepository 定义了课程聊天室及其消息的存储操作。
type ChatRepository interface {
	// FindRoomByID 根据聊天室 ID 查找，不存在时返回 ErrChatRoomNotFound。
	FindRoomByID(ctx context.Context, id uuid.UUID) (*domain.ChatRoom, error)

	// FindRoomByCourse 查找课程的聊天室，不存在时返回 ErrChatRoomNotFound。
	FindRoomByCourse(ctx context.Context, courseID uuid.UUID) (*domain.ChatRoom, error)

	// GetOrCreateRoom 返回课程的聊天室，不存在则创建。
	GetOrCreateRoom(ctx context.Context, courseID uuid.UUID) (*domain.ChatRoom, error)

	// IsBlocked 判断用户是否在聊天室黑名单中。
	IsBlocked(ctx context.Context, roomID, userID uuid.UUID) (bool, error)

	// Block 把用户加入聊天室黑名单，重复拉黑不报错。
	Block(ctx context.Context, roomID, userID uuid.UUID) error

	// CreateMessage 保存一条聊天消息，ID 为空时自动生成。
	CreateMessage(ctx context.Context, msg *domain.ChatMessage) error
}
