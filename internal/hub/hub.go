package hub

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"course-classroom/internal/dto"
)

// 包级别的 WebSocket 常量
const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// 音频和图片以内联 base64 形式到达，默认允许 8 MiB
	DefaultMaxMessageSize = 8 << 20

	// 每个会话的出站队列长度
	DefaultSendBuffer = 256
)

// Broker 在进程之间转发房间广播。Subscribe 只投递其他进程发布的消息，
// 本进程的会话总是由 Hub 直接投递。
type Broker interface {
	Publish(ctx context.Context, courseID uuid.UUID, payload []byte) error
	Subscribe(ctx context.Context, deliver func(courseID uuid.UUID, payload []byte)) error
}

// room 是一门课程当前在线会话的集合。mu 串行化成员变更和广播遍历。
type room struct {
	mu       sync.Mutex
	sessions map[*Session]struct{}
}

// Stats 是 Hub 当前的规模
type Stats struct {
	Rooms    int `json:"rooms"`
	Sessions int `json:"sessions"`
}

// Hub 按课程维护在线会话，并负责广播。
type Hub struct {
	// 保护 rooms map 本身，房间内部由 room.mu 保护
	mu    sync.Mutex
	rooms map[uuid.UUID]*room

	// 可选，为 nil 时只在本进程内投递
	broker Broker
}

// NewHub 创建 Hub。broker 可以为 nil。
func NewHub(broker Broker) *Hub {
	return &Hub{
		rooms:  make(map[uuid.UUID]*room),
		broker: broker,
	}
}

// Run 在配置了 Broker 时订阅其他进程的广播，直到 ctx 结束。
// 本进程内的广播不依赖订阅，订阅建立之前也会送达。
func (h *Hub) Run(ctx context.Context) error {
	log := logrus.WithField("component", "hub")
	if h.broker == nil {
		log.Info("Hub running in single-process mode")
		<-ctx.Done()
		return nil
	}
	log.Info("Hub subscribing to broker")
	return h.broker.Subscribe(ctx, h.deliverLocal)
}

// Join 把会话加入其课程房间，房间不存在时创建。
func (h *Hub) Join(s *Session) {
	h.mu.Lock()
	r, ok := h.rooms[s.courseID]
	if !ok {
		r = &room{sessions: make(map[*Session]struct{})}
		h.rooms[s.courseID] = r
	}
	r.mu.Lock()
	r.sessions[s] = struct{}{}
	count := len(r.sessions)
	r.mu.Unlock()
	h.mu.Unlock()

	s.logger().WithField("room_size", count).Info("Session joined course room")
}

// Leave 把会话移出房间，最后一个会话离开时删除房间。重复调用是无操作。
func (h *Hub) Leave(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	r, ok := h.rooms[s.courseID]
	if !ok {
		return
	}
	r.mu.Lock()
	_, present := r.sessions[s]
	delete(r.sessions, s)
	empty := len(r.sessions) == 0
	r.mu.Unlock()

	if empty {
		delete(h.rooms, s.courseID)
	}
	if present {
		logCtx := s.logger()
		if empty {
			logCtx.Info("Session left, course room empty and removed")
		} else {
			logCtx.Info("Session left course room")
		}
	}
}

// Broadcast 把事件发给课程房间内的所有会话。
// 本进程的会话同步入队，顺序与调用顺序一致；Broker 只负责其他进程。
func (h *Hub) Broadcast(ctx context.Context, courseID uuid.UUID, event dto.OutboundEvent) {
	logCtx := logrus.WithFields(logrus.Fields{"course_id": courseID, "event_type": event.Type})
	payload, err := json.Marshal(event)
	if err != nil {
		logCtx.WithError(err).Error("Failed to marshal outbound event")
		return
	}

	h.deliverLocal(courseID, payload)
	if h.broker == nil {
		return
	}
	if err := h.broker.Publish(ctx, courseID, payload); err != nil {
		logCtx.WithError(err).Warn("Broker publish failed, event reached local sessions only")
	}
}

// deliverLocal 把已编码的帧放入本进程内房间每个会话的出站队列，不会阻塞。
func (h *Hub) deliverLocal(courseID uuid.UUID, payload []byte) {
	h.mu.Lock()
	r, ok := h.rooms[courseID]
	h.mu.Unlock()
	if !ok {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for s := range r.sessions {
		// 队列满的会话会被驱逐，不影响其他会话
		s.enqueue(payload)
	}
	logrus.WithFields(logrus.Fields{
		"course_id":       courseID,
		"message_size":    len(payload),
		"recipient_count": len(r.sessions),
	}).Debug("Broadcast delivered to local sessions")
}

// Stats 返回当前房间数和会话数
func (h *Hub) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	st := Stats{Rooms: len(h.rooms)}
	for _, r := range h.rooms {
		r.mu.Lock()
		st.Sessions += len(r.sessions)
		r.mu.Unlock()
	}
	return st
}

// CloseAll 关闭所有在线会话，用于进程退出
func (h *Hub) CloseAll() {
	h.mu.Lock()
	var all []*Session
	for _, r := range h.rooms {
		r.mu.Lock()
		for s := range r.sessions {
			all = append(all, s)
		}
		r.mu.Unlock()
	}
	h.mu.Unlock()

	for _, s := range all {
		s.Close()
	}
	logrus.WithField("sessions", len(all)).Info("Hub closed all sessions")
}
