package repository

import (
	"context"
	"io"

	"course-classroom/internal/domain"
)

// BlobStore 存取音频、图片等二进制内容，关系库里只保存引用。
type BlobStore interface {
	// Store 写入数据，namePrefix 用作文件名前缀 (例如 "AUDIO_")。
	Store(ctx context.Context, data []byte, namePrefix string) (domain.BlobRef, error)

	// Open 按引用读取内容，不存在时返回 ErrBlobNotFound。
	Open(ctx context.Context, ref domain.BlobRef) (io.ReadCloser, error)

	// Delete 删除内容，不存在时不报错。
	Delete(ctx context.Context, ref domain.BlobRef) error
}
