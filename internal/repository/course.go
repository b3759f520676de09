package repository

import (
	"context"

	"course-classroom/internal/domain"

	"github.com/google/uuid"
)

// CourseRepository 提供房间授权所需的课程查询。
type CourseRepository interface {
	// FindByID 根据课程 ID 查找课程，不存在时返回 ErrCourseNotFound。
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Course, error)

	// IsStudent 判断用户是否选修了该课程。
	IsStudent(ctx context.Context, courseID, userID uuid.UUID) (bool, error)

	// IsCoInstructor 判断用户是否是该课程的协同讲师。
	IsCoInstructor(ctx context.Context, courseID, userID uuid.UUID) (bool, error)
}
