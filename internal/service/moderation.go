package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"course-classroom/internal/domain"
	"course-classroom/internal/repository"
)

// ModerationService 管理课程聊天室：开通聊天室和维护黑名单。
type ModerationService struct {
	courseRepo repository.CourseRepository
	userRepo   repository.UserRepository
	chatRepo   repository.ChatRepository
}

// NewModerationService 创建 ModerationService 实例。
func NewModerationService(courseRepo repository.CourseRepository, userRepo repository.UserRepository, chatRepo repository.ChatRepository) *ModerationService {
	if courseRepo == nil {
		panic("CourseRepository cannot be nil for ModerationService")
	}
	if userRepo == nil {
		panic("UserRepository cannot be nil for ModerationService")
	}
	if chatRepo == nil {
		panic("ChatRepository cannot be nil for ModerationService")
	}
	return &ModerationService{courseRepo: courseRepo, userRepo: userRepo, chatRepo: chatRepo}
}

// OpenRoom 返回课程的聊天室，不存在时创建。课程不存在返回 ErrCourseNotFound。
func (s *ModerationService) OpenRoom(ctx context.Context, courseID uuid.UUID) (*domain.ChatRoom, error) {
	if _, err := s.courseRepo.FindByID(ctx, courseID); err != nil {
		if errors.Is(err, repository.ErrCourseNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("find course %s: %w", courseID, err)
	}
	room, err := s.chatRepo.GetOrCreateRoom(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("open chat room for course %s: %w", courseID, err)
	}
	return room, nil
}

// BlockUser 把用户加入课程聊天室的黑名单，聊天室不存在时先创建。
// 已经连接的会话不受影响，下次连接时被拒绝。
func (s *ModerationService) BlockUser(ctx context.Context, courseID, userID uuid.UUID) (*domain.ChatRoom, error) {
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user %s: %w", userID, err)
	}
	room, err := s.OpenRoom(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if err := s.chatRepo.Block(ctx, room.ID, userID); err != nil {
		return nil, fmt.Errorf("block user %s: %w", userID, err)
	}
	logrus.WithFields(logrus.Fields{
		"course_id": courseID,
		"room_id":   room.ID,
		"user_id":   userID,
	}).Info("User blocked from course chat room")
	return room, nil
}
