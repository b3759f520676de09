package gormpersistence

import (
	"context"

	"gorm.io/gorm"

	"course-classroom/internal/repository"
)

// GormTransactor 用 gorm 的事务实现 repository.Transactor
type GormTransactor struct {
	db *gorm.DB
}

// NewGormTransactor 创建 GormTransactor 实例
func NewGormTransactor(db *gorm.DB) *GormTransactor {
	if db == nil {
		panic("database connection cannot be nil for GormTransactor")
	}
	return &GormTransactor{db: db}
}

// WithinTransaction 开启事务并把绑定到该事务的存储库交给 fn。
// fn 返回错误时回滚，panic 时 gorm 回滚后继续向上抛出。
func (t *GormTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, repository.Repositories{
			Chats:     NewGormChatRepository(tx),
			Questions: NewGormQuestionRepository(tx),
		})
	})
}
