package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TimestampLayout 是事件结果中 created_at 的固定格式 (DD/MM/YYYY, HH:MM:SS)。
const TimestampLayout = "02/01/2006, 15:04:05"

// FormatTimestamp 按 TimestampLayout 格式化时间。
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// PayloadKind 是聊天消息内容的判别标签，会显式存入数据库。
type PayloadKind string

const (
	PayloadText  PayloadKind = "text"
	PayloadAudio PayloadKind = "audio"
	PayloadImage PayloadKind = "image"
)

// BlobRef 是存放在关系模型之外的二进制内容的不透明引用。
type BlobRef string

func (r BlobRef) String() string { return string(r) }

// Payload 是聊天消息内容的封闭变体集合: TextPayload | AudioPayload | ImagePayload。
type Payload interface {
	Kind() PayloadKind
	// Fields 返回写入事件结果的内容字段。
	Fields() map[string]any
	isPayload()
}

// TextPayload 是内联文本。
type TextPayload struct {
	Content string
}

// AudioPayload 指向一段音频 blob。
type AudioPayload struct {
	File BlobRef
}

// ImagePayload 指向一张图片 blob。
type ImagePayload struct {
	File BlobRef
}

func (TextPayload) Kind() PayloadKind  { return PayloadText }
func (AudioPayload) Kind() PayloadKind { return PayloadAudio }
func (ImagePayload) Kind() PayloadKind { return PayloadImage }

func (p TextPayload) Fields() map[string]any  { return map[string]any{"content": p.Content} }
func (p AudioPayload) Fields() map[string]any { return map[string]any{"file": p.File.String()} }
func (p ImagePayload) Fields() map[string]any { return map[string]any{"file": p.File.String()} }

func (TextPayload) isPayload()  {}
func (AudioPayload) isPayload() {}
func (ImagePayload) isPayload() {}

// ErrInvalidPayload 表示消息没有恰好设置一个内容变体。
var ErrInvalidPayload = errors.New("chat message must carry exactly one payload variant")

// ChatMessage 是聊天室中持久化的一条消息。
// Kind 决定 Content 和 FileRef 哪一列有效，另一列必须为空。
type ChatMessage struct {
	ID        uuid.UUID   `gorm:"type:char(36);primaryKey"`
	RoomID    uuid.UUID   `gorm:"type:char(36);index;not null"`
	UserID    uuid.UUID   `gorm:"type:char(36);index;not null"`
	Kind      PayloadKind `gorm:"size:20;not null"`
	Content   string      `gorm:"type:text"`
	FileRef   string      `gorm:"size:255"`
	CreatedAt time.Time   `gorm:"autoCreateTime;index"`
}

// SetPayload 把变体写入扁平的列，同时设置判别标签。
func (m *ChatMessage) SetPayload(p Payload) error {
	switch v := p.(type) {
	case TextPayload:
		m.Kind, m.Content, m.FileRef = PayloadText, v.Content, ""
	case AudioPayload:
		if v.File == "" {
			return ErrInvalidPayload
		}
		m.Kind, m.Content, m.FileRef = PayloadAudio, "", v.File.String()
	case ImagePayload:
		if v.File == "" {
			return ErrInvalidPayload
		}
		m.Kind, m.Content, m.FileRef = PayloadImage, "", v.File.String()
	default:
		return ErrInvalidPayload
	}
	return nil
}

// Payload 按判别标签还原内容变体。
func (m *ChatMessage) Payload() (Payload, error) {
	switch m.Kind {
	case PayloadText:
		if m.FileRef != "" {
			return nil, ErrInvalidPayload
		}
		return TextPayload{Content: m.Content}, nil
	case PayloadAudio, PayloadImage:
		if m.FileRef == "" || m.Content != "" {
			return nil, ErrInvalidPayload
		}
		if m.Kind == PayloadAudio {
			return AudioPayload{File: BlobRef(m.FileRef)}, nil
		}
		return ImagePayload{File: BlobRef(m.FileRef)}, nil
	default:
		return nil, fmt.Errorf("unknown payload kind %q: %w", m.Kind, ErrInvalidPayload)
	}
}
