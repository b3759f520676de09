package gormpersistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"course-classroom/internal/domain"
	"course-classroom/internal/repository"
)

// GormChatRepository 是 ChatRepository 接口的 GORM 实现
type GormChatRepository struct {
	db *gorm.DB
}

// NewGormChatRepository 创建 GormChatRepository 实例
func NewGormChatRepository(db *gorm.DB) *GormChatRepository {
	if db == nil {
		panic("database connection cannot be nil for GormChatRepository")
	}
	return &GormChatRepository{db: db}
}

// FindRoomByID 实现根据聊天室 ID 查找聊天室
func (r *GormChatRepository) FindRoomByID(ctx context.Context, id uuid.UUID) (*domain.ChatRoom, error) {
	var room domain.ChatRoom
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&room).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrChatRoomNotFound
		}
		return nil, fmt.Errorf("gorm: find chat room by id %s: %w", id, err)
	}
	return &room, nil
}

// FindRoomByCourse 实现根据课程查找聊天室
func (r *GormChatRepository) FindRoomByCourse(ctx context.Context, courseID uuid.UUID) (*domain.ChatRoom, error) {
	var room domain.ChatRoom
	err := r.db.WithContext(ctx).Where("course_id = ?", courseID).First(&room).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrChatRoomNotFound
		}
		return nil, fmt.Errorf("gorm: find chat room by course %s: %w", courseID, err)
	}
	return &room, nil
}

// GetOrCreateRoom 返回课程的聊天室，不存在时创建。
// 并发创建撞上唯一索引时，重新读取胜出的那一行。
func (r *GormChatRepository) GetOrCreateRoom(ctx context.Context, courseID uuid.UUID) (*domain.ChatRoom, error) {
	room, err := r.FindRoomByCourse(ctx, courseID)
	if err == nil {
		return room, nil
	}
	if !errors.Is(err, repository.ErrChatRoomNotFound) {
		return nil, err
	}

	room = &domain.ChatRoom{ID: uuid.New(), CourseID: courseID}
	if err := r.db.WithContext(ctx).Create(room).Error; err != nil {
		if isDuplicateEntryError(err) {
			return r.FindRoomByCourse(ctx, courseID)
		}
		return nil, fmt.Errorf("gorm: create chat room for course %s: %w", courseID, err)
	}
	return room, nil
}

// IsBlocked 实现黑名单检查
func (r *GormChatRepository) IsBlocked(ctx context.Context, roomID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.ChatRoomBlock{}).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("gorm: count blocks (room %s, user %s): %w", roomID, userID, err)
	}
	return count > 0, nil
}

// Block 实现拉黑用户，重复拉黑不报错
func (r *GormChatRepository) Block(ctx context.Context, roomID, userID uuid.UUID) error {
	block := domain.ChatRoomBlock{ID: uuid.New(), RoomID: roomID, UserID: userID}
	if err := r.db.WithContext(ctx).Create(&block).Error; err != nil && !isDuplicateEntryError(err) {
		return fmt.Errorf("gorm: block user %s in room %s: %w", userID, roomID, err)
	}
	return nil
}

// CreateMessage 实现保存聊天消息
func (r *GormChatRepository) CreateMessage(ctx context.Context, msg *domain.ChatMessage) error {
	// 先校验变体，避免写入 Content 和 FileRef 同时有值的行
	if _, err := msg.Payload(); err != nil {
		return err
	}
	if msg.ID == uuid.Nil {
		msg.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		if isDuplicateEntryError(err) {
			return repository.ErrDuplicateEntry
		}
		return fmt.Errorf("gorm: create chat message in room %s: %w", msg.RoomID, err)
	}
	return nil
}
