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

// GormCourseRepository 是 CourseRepository 接口的 GORM 实现
type GormCourseRepository struct {
	db *gorm.DB
}

// NewGormCourseRepository 创建 GormCourseRepository 实例
func NewGormCourseRepository(db *gorm.DB) *GormCourseRepository {
	if db == nil {
		panic("database connection cannot be nil for GormCourseRepository")
	}
	return &GormCourseRepository{db: db}
}

// FindByID 实现根据课程 ID 查找课程
func (r *GormCourseRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Course, error) {
	var course domain.Course
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&course).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrCourseNotFound
		}
		return nil, fmt.Errorf("gorm: find course by id %s: %w", id, err)
	}
	return &course, nil
}

// IsStudent 实现选课关系检查
func (r *GormCourseRepository) IsStudent(ctx context.Context, courseID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.CourseStudent{}).
		Where("course_id = ? AND user_id = ?", courseID, userID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("gorm: count course students (course %s, user %s): %w", courseID, userID, err)
	}
	return count > 0, nil
}

// IsCoInstructor 实现协同讲师关系检查
func (r *GormCourseRepository) IsCoInstructor(ctx context.Context, courseID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.CourseCoInstructor{}).
		Where("course_id = ? AND user_id = ?", courseID, userID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("gorm: count co-instructors (course %s, user %s): %w", courseID, userID, err)
	}
	return count > 0, nil
}

// Save 创建或更新课程，ID 为空时自动生成。
func (r *GormCourseRepository) Save(ctx context.Context, course *domain.Course) error {
	if course.ID == uuid.Nil {
		course.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Save(course).Error; err != nil {
		return fmt.Errorf("gorm: save course %s: %w", course.ID, err)
	}
	return nil
}

// AddStudent 登记选课，重复登记不报错。
func (r *GormCourseRepository) AddStudent(ctx context.Context, courseID, userID uuid.UUID) error {
	rel := domain.CourseStudent{ID: uuid.New(), CourseID: courseID, UserID: userID}
	if err := r.db.WithContext(ctx).Create(&rel).Error; err != nil && !isDuplicateEntryError(err) {
		return fmt.Errorf("gorm: add student %s to course %s: %w", userID, courseID, err)
	}
	return nil
}

// AddCoInstructor 登记协同讲师，重复登记不报错。
func (r *GormCourseRepository) AddCoInstructor(ctx context.Context, courseID, userID uuid.UUID) error {
	rel := domain.CourseCoInstructor{ID: uuid.New(), CourseID: courseID, UserID: userID}
	if err := r.db.WithContext(ctx).Create(&rel).Error; err != nil && !isDuplicateEntryError(err) {
		return fmt.Errorf("gorm: add co-instructor %s to course %s: %w", userID, courseID, err)
	}
	return nil
}
