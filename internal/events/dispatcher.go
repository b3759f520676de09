package events

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"course-classroom/internal/domain"
	"course-classroom/internal/dto"
)

// Peer 是发出事件的一方，通常是一个实时会话
type Peer interface {
	CourseID() uuid.UUID
	User() *domain.User
	// Send 只把帧发给这个会话
	Send(ev dto.OutboundEvent)
}

// RoomBroadcaster 把帧发给课程房间内的所有会话
type RoomBroadcaster interface {
	Broadcast(ctx context.Context, courseID uuid.UUID, event dto.OutboundEvent)
}

// Dispatcher 校验入站帧并按类型转给已注册的 Handler。
// 处理成功的结果广播给整个房间，错误帧只回给发送者。
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[dto.EventType]Handler
	rooms    RoomBroadcaster
}

// NewDispatcher 创建 Dispatcher 实例
func NewDispatcher(rooms RoomBroadcaster) *Dispatcher {
	if rooms == nil {
		panic("RoomBroadcaster cannot be nil for Dispatcher")
	}
	return &Dispatcher{
		handlers: make(map[dto.EventType]Handler),
		rooms:    rooms,
	}
}

// Register 为事件类型注册处理器，重复注册会覆盖
func (d *Dispatcher) Register(t dto.EventType, h Handler) {
	if !t.Valid() {
		panic(fmt.Sprintf("cannot register handler for unknown event type %q", t))
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[t] = h
}

func (d *Dispatcher) handler(t dto.EventType) (Handler, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	h, ok := d.handlers[t]
	return h, ok
}

// Dispatch 处理一条原始入站消息。它从不 panic，也不返回错误。
func (d *Dispatcher) Dispatch(ctx context.Context, peer Peer, raw []byte) {
	user := peer.User()
	logCtx := logrus.WithField("course_id", peer.CourseID())
	if user != nil {
		logCtx = logCtx.WithField("user_id", user.ID)
	}

	ev, err := dto.ParseInbound(raw)
	if err != nil {
		logCtx.WithError(err).Debug("Rejected malformed inbound event")
		peer.Send(dto.ErrorEvent(dto.MsgValidationFailed))
		return
	}
	logCtx = logCtx.WithField("event_type", ev.Type)

	h, ok := d.handler(ev.Type)
	if !ok {
		// 未注册的类型静默忽略
		logCtx.Debug("No handler registered for event type")
		return
	}

	result := d.invoke(ctx, logCtx, h, peer, ev)
	if result.IsError() {
		peer.Send(result)
		return
	}
	d.rooms.Broadcast(ctx, peer.CourseID(), dto.OutboundEvent{Type: string(ev.Type), Data: result.Data})
}

// invoke 调用处理器，并把 panic 转换成 unknown 错误帧
func (d *Dispatcher) invoke(ctx context.Context, logCtx *logrus.Entry, h Handler, peer Peer, ev dto.InboundEvent) (result dto.OutboundEvent) {
	defer func() {
		if r := recover(); r != nil {
			logCtx.WithFields(logrus.Fields{
				"panic": r,
				"stack": string(debug.Stack()),
			}).Error("Event handler panicked")
			result = dto.ErrorEvent(dto.MsgUnknown)
		}
	}()
	return h.Process(ctx, peer.CourseID(), peer.User(), ev.Data)
}
