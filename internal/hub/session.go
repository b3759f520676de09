package hub

import (
	"context"
	"encoding/json"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"

	"course-classroom/internal/domain"
	"course-classroom/internal/dto"
	"course-classroom/internal/events"
)

// State 是会话的生命周期状态
type State int32

const (
	StateConnecting State = iota
	StateAuthorizing
	StateActive
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateAuthorizing:
		return "authorizing"
	case StateActive:
		return "active"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// Conn 是会话用到的 *websocket.Conn 方法子集
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	SetReadLimit(limit int64)
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(appData string) error)
	Close() error
}

// Dispatcher 处理会话收到的每条入站消息
type Dispatcher interface {
	Dispatch(ctx context.Context, peer events.Peer, raw []byte)
}

// AdmitFunc 解析凭证并判断能否进入课程房间，拒绝时返回 nil
type AdmitFunc func(ctx context.Context, token string, courseID uuid.UUID) *domain.User

// Options 调整会话的资源限制
type Options struct {
	MaxMessageSize int64
	SendBuffer     int
}

// Session 是一条实时连接。它拥有自己的生命周期，Hub 只持有非拥有的引用。
type Session struct {
	id         string
	hub        *Hub
	conn       Conn
	dispatcher Dispatcher
	courseID   uuid.UUID
	user       *domain.User
	maxMsgSize int64

	// 出站队列。Hub 只向其中写入，从不关闭它
	send chan []byte
	// 关闭后两个 pump 都会退出
	done      chan struct{}
	closeOnce sync.Once
	state     atomic.Int32
}

// NewSession 为刚完成握手的连接创建会话，状态为 Connecting。
func NewSession(h *Hub, conn Conn, dispatcher Dispatcher, courseID uuid.UUID, opts Options) *Session {
	if h == nil {
		panic("Hub cannot be nil for Session")
	}
	if conn == nil {
		panic("Conn cannot be nil for Session")
	}
	if dispatcher == nil {
		panic("Dispatcher cannot be nil for Session")
	}
	if opts.MaxMessageSize <= 0 {
		opts.MaxMessageSize = DefaultMaxMessageSize
	}
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = DefaultSendBuffer
	}
	return &Session{
		id:         ulid.Make().String(),
		hub:        h,
		conn:       conn,
		dispatcher: dispatcher,
		courseID:   courseID,
		maxMsgSize: opts.MaxMessageSize,
		send:       make(chan []byte, opts.SendBuffer),
		done:       make(chan struct{}),
	}
}

func (s *Session) ID() string            { return s.id }
func (s *Session) CourseID() uuid.UUID   { return s.courseID }
func (s *Session) User() *domain.User    { return s.user }
func (s *Session) State() State          { return State(s.state.Load()) }
func (s *Session) setState(state State)  { s.state.Store(int32(state)) }
func (s *Session) Done() <-chan struct{} { return s.done }

func (s *Session) logger() *logrus.Entry {
	fields := logrus.Fields{"session_id": s.id, "course_id": s.courseID}
	if s.user != nil {
		fields["user_id"] = s.user.ID
	}
	return logrus.WithFields(fields)
}

// Serve 执行完整的会话生命周期并阻塞到连接结束。
// 认证或授权失败时以 1008 关闭连接，会话不会进入 Hub。
func (s *Session) Serve(ctx context.Context, token string, admit AdmitFunc) {
	s.setState(StateAuthorizing)
	user := admit(ctx, token, s.courseID)
	if user == nil {
		s.reject()
		return
	}
	s.user = user

	s.setState(StateActive)
	s.hub.Join(s)
	defer func() {
		s.hub.Leave(s)
		s.setState(StateClosed)
		s.logger().Info("Session closed")
	}()

	// 请求结束或服务关闭时停止两个 pump
	go func() {
		select {
		case <-ctx.Done():
			s.Close()
		case <-s.done:
		}
	}()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.writePump()
	}()
	s.readPump(ctx)
	s.Close()
	wg.Wait()
}

// reject 发送策略违规关闭帧并结束连接
func (s *Session) reject() {
	s.logger().Info("Connection rejected during authorization")
	msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "not allowed")
	_ = s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
	_ = s.conn.Close()
	s.Close()
	s.setState(StateClosed)
}

// Close 结束会话，可以重复调用
func (s *Session) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

// Send 实现 events.Peer，只把帧发给这个会话
func (s *Session) Send(ev dto.OutboundEvent) {
	payload, err := json.Marshal(ev)
	if err != nil {
		s.logger().WithError(err).Error("Failed to marshal event for session")
		return
	}
	s.enqueue(payload)
}

// enqueue 非阻塞地放入出站队列。队列已满说明对端太慢，直接驱逐。
func (s *Session) enqueue(payload []byte) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.send <- payload:
		return true
	default:
		s.logger().Warn("Session send buffer full, evicting slow session")
		s.Close()
		return false
	}
}

// readPump 把连接上的消息逐条交给 Dispatcher，同一会话内按到达顺序处理。
func (s *Session) readPump(ctx context.Context) {
	logCtx := s.logger()
	defer func() {
		if r := recover(); r != nil {
			logCtx.WithFields(logrus.Fields{"panic": r, "stack": string(debug.Stack())}).Error("Session read loop panicked")
		}
	}()

	s.conn.SetReadLimit(s.maxMsgSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		messageType, message, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				logCtx.WithError(err).Warn("WebSocket read error (unexpected close)")
			} else {
				logCtx.WithError(err).Debug("WebSocket connection closed")
			}
			return
		}
		_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
		if messageType != websocket.TextMessage {
			logCtx.Debugf("Ignoring non-text message type: %d", messageType)
			continue
		}
		s.dispatcher.Dispatch(ctx, s, message)
	}
}

// writePump 把出站队列中的帧按顺序写到连接上，并定期发送 ping。
func (s *Session) writePump() {
	logCtx := s.logger()
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
		if r := recover(); r != nil {
			logCtx.WithFields(logrus.Fields{"panic": r, "stack": string(debug.Stack())}).Error("Session write loop panicked")
		}
	}()

	for {
		select {
		case message := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logCtx.WithError(err).Warn("Failed to write message to websocket")
				s.Close()
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				logCtx.WithError(err).Warn("Failed to send ping message")
				s.Close()
				return
			}
		case <-s.done:
			_ = s.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return
		}
	}
}
