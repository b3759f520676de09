package repository

import "errors"

// 通用的存储库错误
var (
	// ErrNotFound 表示请求的记录未找到
	ErrNotFound = errors.New("repository: record not found")
	// ErrDuplicateEntry 表示插入的数据违反了唯一约束
	ErrDuplicateEntry = errors.New("repository: duplicate entry")
)

// 特定资源的错误
var (
	ErrUserNotFound     = ErrNotFound
	ErrCourseNotFound   = ErrNotFound
	ErrChatRoomNotFound = ErrNotFound
	ErrQuestionNotFound = ErrNotFound
	ErrBlobNotFound     = ErrNotFound
)
