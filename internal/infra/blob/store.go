// Package blob 在 afero 文件系统上保存聊天附件。
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"course-classroom/internal/domain"
	"course-classroom/internal/repository"
)

// chatDir 是聊天附件在存储根目录下的子目录
const chatDir = "chat"

// 常见类型的首选扩展名，mime.ExtensionsByType 的结果依赖系统的 mime 表
var preferredExt = map[string]string{
	"image/png":       ".png",
	"image/jpeg":      ".jpg",
	"image/gif":       ".gif",
	"image/webp":      ".webp",
	"audio/mpeg":      ".mp3",
	"audio/wave":      ".wav",
	"audio/aiff":      ".aiff",
	"application/ogg": ".ogg",
	"video/webm":      ".webm",
}

// Store 是 repository.BlobStore 的 afero 实现
type Store struct {
	fs afero.Fs
}

// NewStore 在给定文件系统上创建 Store。fs 通常是 afero.NewBasePathFs 包装后的根目录。
func NewStore(fs afero.Fs) *Store {
	if fs == nil {
		panic("filesystem cannot be nil for blob Store")
	}
	return &Store{fs: fs}
}

// NewOSStore 创建以 root 为根目录的本地磁盘 Store
func NewOSStore(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("blob: create root %s: %w", root, err)
	}
	return NewStore(afero.NewBasePathFs(afero.NewOsFs(), root)), nil
}

// Store 写入数据并返回形如 chat/AUDIO_<uuid>.mp3 的引用。扩展名由内容嗅探出的类型决定。
func (s *Store) Store(ctx context.Context, data []byte, namePrefix string) (domain.BlobRef, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", fmt.Errorf("blob: empty content")
	}
	if err := s.fs.MkdirAll(chatDir, 0o755); err != nil {
		return "", fmt.Errorf("blob: create dir: %w", err)
	}

	name := path.Join(chatDir, namePrefix+uuid.NewString()+extensionFor(data))
	if err := afero.WriteFile(s.fs, name, data, 0o644); err != nil {
		return "", fmt.Errorf("blob: write %s: %w", name, err)
	}
	logrus.WithFields(logrus.Fields{"ref": name, "size": len(data)}).Debug("Blob stored")
	return domain.BlobRef(name), nil
}

// Open 打开引用指向的内容
func (s *Store) Open(ctx context.Context, ref domain.BlobRef) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name, err := cleanRef(ref)
	if err != nil {
		return nil, err
	}
	f, err := s.fs.Open(name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, repository.ErrBlobNotFound
		}
		return nil, fmt.Errorf("blob: open %s: %w", name, err)
	}
	return f, nil
}

// Delete 删除引用指向的内容，不存在时不报错
func (s *Store) Delete(ctx context.Context, ref domain.BlobRef) error {
	name, err := cleanRef(ref)
	if err != nil {
		return err
	}
	if err := s.fs.Remove(name); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("blob: delete %s: %w", name, err)
	}
	return nil
}

func cleanRef(ref domain.BlobRef) (string, error) {
	name := path.Clean(ref.String())
	if name == "." || strings.HasPrefix(name, "..") || path.IsAbs(name) {
		return "", fmt.Errorf("blob: invalid reference %q", ref)
	}
	return name, nil
}

func extensionFor(data []byte) string {
	contentType := http.DetectContentType(data)
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || mediaType == "application/octet-stream" {
		return ".bin"
	}
	if ext, ok := preferredExt[mediaType]; ok {
		return ext
	}
	if exts, err := mime.ExtensionsByType(mediaType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ".bin"
}
