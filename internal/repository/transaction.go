package repository

import "context"

// Repositories 是绑定到同一个事务上的存储库集合。
type Repositories struct {
	Chats     ChatRepository
	Questions QuestionRepository
}

// Transactor 在单个事务中执行 fn。fn 返回错误或 panic 时整个事务回滚。
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}
