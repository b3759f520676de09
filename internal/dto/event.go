package dto

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// EventType 是实时帧的事件类型
type EventType string

const (
	EventChat                EventType = "chat"
	EventAnnouncement        EventType = "announcement"
	EventAnnouncementComment EventType = "announcement_comment"
	EventQuestion            EventType = "question"
	EventQuestionComment     EventType = "question_comment"
)

// EventError 是出站错误帧的类型
const EventError = "error"

// 客户端可见的固定错误信息
const (
	MsgValidationFailed = "Error validating request"
	MsgChatNotFound     = "course chat does not exist"
	MsgQuestionNotFound = "course question does not exist"
	MsgInvalidData      = "provided data is invalid"
	MsgUnknown          = "unknown"
)

// Valid 判断事件类型是否属于已知集合
func (t EventType) Valid() bool {
	switch t {
	case EventChat, EventAnnouncement, EventAnnouncementComment, EventQuestion, EventQuestionComment:
		return true
	}
	return false
}

// ErrInvalidEnvelope 表示入站帧不符合 {type, data} 的形状
var ErrInvalidEnvelope = errors.New("invalid event envelope")

// InboundEvent 是从客户端收到的帧。Data 保持原始 JSON，由各个处理器按需解析。
type InboundEvent struct {
	Type EventType       `json:"type"`
	Data json.RawMessage `json:"data"`
}

// OutboundEvent 是发给客户端的帧。Data 通常是 map，错误帧时是字符串。
type OutboundEvent struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// IsError 判断是否为错误帧
func (e OutboundEvent) IsError() bool { return e.Type == EventError }

// ErrorEvent 构造错误帧
func ErrorEvent(message string) OutboundEvent {
	return OutboundEvent{Type: EventError, Data: message}
}

// ParseInbound 解析并校验入站帧：type 必须是已知类型，data 必须是 JSON 对象。
func ParseInbound(raw []byte) (InboundEvent, error) {
	var ev InboundEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		return InboundEvent{}, fmt.Errorf("%w: %v", ErrInvalidEnvelope, err)
	}
	if !ev.Type.Valid() {
		return InboundEvent{}, fmt.Errorf("%w: unknown type %q", ErrInvalidEnvelope, ev.Type)
	}
	if err := ensureObject(ev.Data); err != nil {
		return InboundEvent{}, err
	}
	return ev, nil
}

func ensureObject(data json.RawMessage) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return fmt.Errorf("%w: data must be an object", ErrInvalidEnvelope)
	}
	return nil
}

// PublishRequest 是 HTTP 广播接口和异步任务共用的请求体
type PublishRequest struct {
	Type EventType      `json:"type" binding:"required"`
	Data map[string]any `json:"data" binding:"required"`
}

// Validate 校验事件类型
func (r PublishRequest) Validate() error {
	if !r.Type.Valid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidEnvelope, r.Type)
	}
	if r.Data == nil {
		return fmt.Errorf("%w: data must be an object", ErrInvalidEnvelope)
	}
	return nil
}
