package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"course-classroom/internal/domain"
	"course-classroom/internal/repository"
)

// RoomAuthorizer 判断用户能否进入课程房间。所有查询错误都按拒绝处理。
type RoomAuthorizer struct {
	courseRepo repository.CourseRepository
	chatRepo   repository.ChatRepository
}

// NewRoomAuthorizer 创建 RoomAuthorizer 实例。
func NewRoomAuthorizer(courseRepo repository.CourseRepository, chatRepo repository.ChatRepository) *RoomAuthorizer {
	if courseRepo == nil {
		panic("CourseRepository cannot be nil for RoomAuthorizer")
	}
	if chatRepo == nil {
		panic("ChatRepository cannot be nil for RoomAuthorizer")
	}
	return &RoomAuthorizer{courseRepo: courseRepo, chatRepo: chatRepo}
}

// IsParticipant 当且仅当用户是该课程的学生、拥有者或协同讲师时返回 true。
func (a *RoomAuthorizer) IsParticipant(ctx context.Context, user *domain.User, courseID uuid.UUID) bool {
	if user == nil {
		return false
	}
	logCtx := logrus.WithFields(logrus.Fields{"course_id": courseID, "user_id": user.ID})

	course, err := a.courseRepo.FindByID(ctx, courseID)
	if err != nil {
		if !errors.Is(err, repository.ErrCourseNotFound) {
			logCtx.WithError(err).Error("Failed to load course during participation check")
		}
		return false
	}
	if course.IsOwner(user.ID) {
		return true
	}

	enrolled, err := a.courseRepo.IsStudent(ctx, courseID, user.ID)
	if err != nil {
		logCtx.WithError(err).Error("Failed to check enrollment")
		return false
	}
	if enrolled {
		return true
	}

	co, err := a.courseRepo.IsCoInstructor(ctx, courseID, user.ID)
	if err != nil {
		logCtx.WithError(err).Error("Failed to check co-instructor relation")
		return false
	}
	return co
}

// IsRoomMember 在 IsParticipant 的基础上要求用户不在课程聊天室的黑名单中。
// 课程还没有聊天室时视为没有黑名单。
func (a *RoomAuthorizer) IsRoomMember(ctx context.Context, user *domain.User, courseID uuid.UUID) bool {
	if !a.IsParticipant(ctx, user, courseID) {
		return false
	}
	logCtx := logrus.WithFields(logrus.Fields{"course_id": courseID, "user_id": user.ID})

	room, err := a.chatRepo.FindRoomByCourse(ctx, courseID)
	if err != nil {
		if errors.Is(err, repository.ErrChatRoomNotFound) {
			return true
		}
		logCtx.WithError(err).Error("Failed to load course chat room during membership check")
		return false
	}
	blocked, err := a.chatRepo.IsBlocked(ctx, room.ID, user.ID)
	if err != nil {
		logCtx.WithError(err).Error("Failed to check chat room blocklist")
		return false
	}
	if blocked {
		logCtx.Info("User is blocked from course room")
	}
	return !blocked
}
