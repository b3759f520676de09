package events

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"course-classroom/internal/domain"
	"course-classroom/internal/dto"
	"course-classroom/internal/repository"
)

// 客户端使用的消息类型，file 对应图片
const (
	chatTypeText  = "text"
	chatTypeAudio = "audio"
	chatTypeFile  = "file"
)

// 附件文件名前缀
const (
	audioPrefix = "AUDIO_"
	imagePrefix = "IMAGE_"
)

type chatData struct {
	RoomID  *string `json:"room_id"`
	Type    *string `json:"type"`
	Content *string `json:"content"`
	File    *string `json:"file"`
}

// ChatHandler 保存一条聊天消息。音频和图片先写入 BlobStore，消息行只保存引用。
type ChatHandler struct {
	tx    repository.Transactor
	blobs repository.BlobStore
}

// NewChatHandler 创建 ChatHandler 实例
func NewChatHandler(tx repository.Transactor, blobs repository.BlobStore) *ChatHandler {
	if tx == nil {
		panic("Transactor cannot be nil for ChatHandler")
	}
	if blobs == nil {
		panic("BlobStore cannot be nil for ChatHandler")
	}
	return &ChatHandler{tx: tx, blobs: blobs}
}

// Process 实现 Handler
func (h *ChatHandler) Process(ctx context.Context, courseID uuid.UUID, sender *domain.User, raw json.RawMessage) dto.OutboundEvent {
	logCtx := logrus.WithFields(logrus.Fields{
		"course_id":  courseID,
		"user_id":    sender.ID,
		"event_type": dto.EventChat,
	})

	var data chatData
	if err := json.Unmarshal(raw, &data); err != nil {
		logCtx.WithError(err).Warn("Chat data could not be decoded")
		return dto.ErrorEvent(dto.MsgInvalidData)
	}
	roomID, err := parseID(data.RoomID)
	if err != nil {
		logCtx.Warn("Chat data has no usable room_id")
		return errorEvent(err)
	}
	logCtx = logCtx.WithField("room_id", roomID)

	var (
		msg    *domain.ChatMessage
		stored domain.BlobRef
	)
	err = h.tx.WithinTransaction(ctx, func(ctx context.Context, repos repository.Repositories) error {
		room, err := repos.Chats.FindRoomByID(ctx, roomID)
		if err != nil {
			if errors.Is(err, repository.ErrChatRoomNotFound) {
				return errChatNotFound
			}
			return err
		}
		if room.CourseID != courseID {
			return errChatNotFound
		}

		payload, ref, err := h.buildPayload(ctx, data)
		stored = ref
		if err != nil {
			return err
		}

		msg = &domain.ChatMessage{RoomID: room.ID, UserID: sender.ID, CreatedAt: time.Now().UTC()}
		if err := msg.SetPayload(payload); err != nil {
			return err
		}
		return repos.Chats.CreateMessage(ctx, msg)
	})
	if err != nil {
		if stored != "" {
			if delErr := h.blobs.Delete(context.WithoutCancel(ctx), stored); delErr != nil {
				logCtx.WithError(delErr).WithField("ref", stored).Error("Failed to remove blob of rolled back chat message")
			}
		}
		if isClientError(err) {
			logCtx.WithError(err).Warn("Chat message rejected")
		} else {
			logCtx.WithError(err).Error("Failed to persist chat message")
		}
		return errorEvent(err)
	}

	payload, _ := msg.Payload()
	result := map[string]any{
		"id":         msg.ID.String(),
		"user":       sender.String(),
		"created_at": domain.FormatTimestamp(msg.CreatedAt),
	}
	for k, v := range payload.Fields() {
		result[k] = v
	}
	logCtx.WithFields(logrus.Fields{"message_id": msg.ID, "kind": msg.Kind}).Info("Chat message persisted")
	return dto.OutboundEvent{Type: string(dto.EventChat), Data: result}
}

// buildPayload 根据 type 构造消息内容。附件在这里写入 BlobStore，返回的引用用于失败时清理。
func (h *ChatHandler) buildPayload(ctx context.Context, data chatData) (domain.Payload, domain.BlobRef, error) {
	if data.Type == nil {
		return nil, "", errInvalidData
	}
	switch *data.Type {
	case chatTypeText:
		if data.Content == nil {
			return nil, "", errInvalidData
		}
		return domain.TextPayload{Content: *data.Content}, "", nil
	case chatTypeAudio, chatTypeFile:
		if data.File == nil {
			return nil, "", errInvalidData
		}
		content, err := decodeBase64(*data.File)
		if err != nil {
			return nil, "", err
		}
		prefix := imagePrefix
		if *data.Type == chatTypeAudio {
			prefix = audioPrefix
		}
		ref, err := h.blobs.Store(ctx, content, prefix)
		if err != nil {
			return nil, "", err
		}
		if *data.Type == chatTypeAudio {
			return domain.AudioPayload{File: ref}, ref, nil
		}
		return domain.ImagePayload{File: ref}, ref, nil
	default:
		return nil, "", errInvalidData
	}
}
