package repository

import (
	"context"

	"course-classroom/internal/domain"

	"github.com/google/uuid"
)

// QuestionRepository 定义了课程提问与评论的存储操作。
type QuestionRepository interface {
	// FindByID 根据提问 ID 查找，不存在时返回 ErrQuestionNotFound。
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Question, error)

	// CreateComment 保存一条提问评论，ID 为空时自动生成。
	CreateComment(ctx context.Context, comment *domain.QuestionComment) error
}
