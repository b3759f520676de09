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

// GormQuestionRepository 是 QuestionRepository 接口的 GORM 实现
type GormQuestionRepository struct {
	db *gorm.DB
}

// NewGormQuestionRepository 创建 GormQuestionRepository 实例
func NewGormQuestionRepository(db *gorm.DB) *GormQuestionRepository {
	if db == nil {
		panic("database connection cannot be nil for GormQuestionRepository")
	}
	return &GormQuestionRepository{db: db}
}

// FindByID 实现根据提问 ID 查找提问
func (r *GormQuestionRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Question, error) {
	var q domain.Question
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&q).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrQuestionNotFound
		}
		return nil, fmt.Errorf("gorm: find question by id %s: %w", id, err)
	}
	return &q, nil
}

// Save 创建或更新提问，ID 为空时自动生成。
func (r *GormQuestionRepository) Save(ctx context.Context, q *domain.Question) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Save(q).Error; err != nil {
		return fmt.Errorf("gorm: save question %s: %w", q.ID, err)
	}
	return nil
}

// CreateComment 实现保存提问评论
func (r *GormQuestionRepository) CreateComment(ctx context.Context, comment *domain.QuestionComment) error {
	if comment.ID == uuid.Nil {
		comment.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		if isDuplicateEntryError(err) {
			return repository.ErrDuplicateEntry
		}
		return fmt.Errorf("gorm: create comment on question %s: %w", comment.QuestionID, err)
	}
	return nil
}
