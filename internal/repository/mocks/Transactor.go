package mocks

import (
	"context"

	"course-classroom/internal/repository"
)

// Transactor 是一个不开启真实事务的 repository.Transactor，直接把 Repos 交给回调。
// Calls 记录回调被执行的次数，Err 非空时回调返回的错误会被替换为它 (模拟提交失败)。
type Transactor struct {
	Repos repository.Repositories
	Err   error
	Calls int
}

// WithinTransaction 实现 repository.Transactor
func (t *Transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	t.Calls++
	if err := fn(ctx, t.Repos); err != nil {
		return err
	}
	return t.Err
}
