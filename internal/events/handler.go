// Package events 校验并处理客户端发来的实时事件。
package events

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"

	"course-classroom/internal/domain"
	"course-classroom/internal/dto"
)

// Handler 处理一种事件类型。返回的 OutboundEvent 要么是结果 (Type 为事件类型)，要么是错误帧。
// 实现必须在单个事务内完成持久化，并且不返回 Go error。
type Handler interface {
	Process(ctx context.Context, courseID uuid.UUID, sender *domain.User, data json.RawMessage) dto.OutboundEvent
}

// HandlerFunc 让普通函数实现 Handler
type HandlerFunc func(ctx context.Context, courseID uuid.UUID, sender *domain.User, data json.RawMessage) dto.OutboundEvent

// Process 实现 Handler
func (f HandlerFunc) Process(ctx context.Context, courseID uuid.UUID, sender *domain.User, data json.RawMessage) dto.OutboundEvent {
	return f(ctx, courseID, sender, data)
}

// clientError 携带可以原样发给客户端的错误信息
type clientError struct {
	message string
}

func (e *clientError) Error() string { return e.message }

var (
	errChatNotFound     = &clientError{message: dto.MsgChatNotFound}
	errQuestionNotFound = &clientError{message: dto.MsgQuestionNotFound}
	errInvalidData      = &clientError{message: dto.MsgInvalidData}
)

// errorEvent 把错误转成错误帧，非 clientError 一律报告为 unknown
func errorEvent(err error) dto.OutboundEvent {
	var ce *clientError
	if errors.As(err, &ce) {
		return dto.ErrorEvent(ce.message)
	}
	return dto.ErrorEvent(dto.MsgUnknown)
}

func isClientError(err error) bool {
	var ce *clientError
	return errors.As(err, &ce)
}

// parseID 解析请求中的 uuid 字段，缺失或格式错误都视为数据无效
func parseID(raw *string) (uuid.UUID, error) {
	if raw == nil {
		return uuid.Nil, errInvalidData
	}
	id, err := uuid.Parse(*raw)
	if err != nil {
		return uuid.Nil, errInvalidData
	}
	return id, nil
}
