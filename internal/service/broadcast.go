package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"course-classroom/internal/dto"
)

// RoomBroadcaster 是 BroadcastService 需要的房间广播能力，由 hub.Hub 实现。
type RoomBroadcaster interface {
	Broadcast(ctx context.Context, courseID uuid.UUID, event dto.OutboundEvent)
}

// BroadcastService 让平台其他部分在没有实时连接的情况下向课程房间推送事件。
type BroadcastService struct {
	rooms RoomBroadcaster
}

// NewBroadcastService 创建 BroadcastService 实例。
func NewBroadcastService(rooms RoomBroadcaster) *BroadcastService {
	if rooms == nil {
		panic("RoomBroadcaster cannot be nil for BroadcastService")
	}
	return &BroadcastService{rooms: rooms}
}

// Publish 把 {type, data} 推送给房间内当前在线的所有会话。
// 房间为空时什么也不发生，事件不会为之后加入的会话保留。
func (s *BroadcastService) Publish(ctx context.Context, courseID uuid.UUID, eventType dto.EventType, data any) error {
	if !eventType.Valid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidEvent, eventType)
	}
	if data == nil {
		return fmt.Errorf("%w: data is required", ErrInvalidEvent)
	}
	s.rooms.Broadcast(ctx, courseID, dto.OutboundEvent{Type: string(eventType), Data: data})
	logrus.WithFields(logrus.Fields{
		"course_id":  courseID,
		"event_type": eventType,
	}).Debug("Server event published to course room")
	return nil
}
