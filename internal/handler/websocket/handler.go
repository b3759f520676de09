package websocket

import (
	"context"
	"net/http"

	"course-classroom/internal/domain"
	"course-classroom/internal/hub"
	"course-classroom/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// IdentityResolver 把连接凭证解析为用户，无效凭证返回 nil
type IdentityResolver interface {
	Resolve(ctx context.Context, token string) *domain.User
}

// MembershipChecker 判断用户能否进入课程房间
type MembershipChecker interface {
	IsRoomMember(ctx context.Context, user *domain.User, courseID uuid.UUID) bool
}

// WebSocketHandler 负责处理 WebSocket 升级请求并把连接交给 Session
type WebSocketHandler struct {
	upgrader   websocket.Upgrader
	hub        *hub.Hub
	dispatcher hub.Dispatcher
	identities IdentityResolver
	members    MembershipChecker
	opts       hub.Options
}

// NewWebSocketHandler 创建 WebSocketHandler 实例。allowedOrigin 为空时允许所有来源
func NewWebSocketHandler(
	h *hub.Hub,
	dispatcher hub.Dispatcher,
	identities IdentityResolver,
	members MembershipChecker,
	allowedOrigin string,
	opts hub.Options,
) *WebSocketHandler {
	if h == nil {
		panic("Hub cannot be nil for WebSocketHandler")
	}
	if dispatcher == nil {
		panic("Dispatcher cannot be nil for WebSocketHandler")
	}
	if identities == nil {
		panic("IdentityResolver cannot be nil for WebSocketHandler")
	}
	if members == nil {
		panic("MembershipChecker cannot be nil for WebSocketHandler")
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if allowedOrigin == "" || allowedOrigin == "*" {
				return true
			}
			origin := r.Header.Get("Origin")
			return origin == "" || origin == allowedOrigin
		},
	}

	return &WebSocketHandler{
		upgrader:   upgrader,
		hub:        h,
		dispatcher: dispatcher,
		identities: identities,
		members:    members,
		opts:       opts,
	}
}

// HandleConnection 处理 WebSocket 连接请求
// URL 预期格式: /ws/course/{courseId}?token=<jwt>
func (h *WebSocketHandler) HandleConnection(c *gin.Context) {
	courseIDStr := c.Param("courseId")
	logCtx := logrus.WithField("course_id", courseIDStr)

	courseID, err := uuid.Parse(courseIDStr)
	if err != nil {
		logCtx.WithError(err).Warn("WS Handler: Invalid course ID format")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid course ID format"})
		return
	}

	// 凭证缺失不是致命错误，会在授权阶段被拒绝
	token := middleware.TokenFromRequest(c)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade 已经写回了 HTTP 错误
		logCtx.WithError(err).Error("WS Handler: Failed to upgrade connection")
		return
	}

	session := hub.NewSession(h.hub, conn, h.dispatcher, courseID, h.opts)
	logCtx.WithField("session_id", session.ID()).Debug("WS Handler: Connection upgraded to WebSocket")

	// 阻塞直到连接结束，Session 自己负责关闭连接和离开房间
	session.Serve(c.Request.Context(), token, h.admit)
}

// admit 依次完成身份解析和房间成员校验
func (h *WebSocketHandler) admit(ctx context.Context, token string, courseID uuid.UUID) *domain.User {
	user := h.identities.Resolve(ctx, token)
	if user == nil {
		return nil
	}
	if !h.members.IsRoomMember(ctx, user, courseID) {
		logrus.WithFields(logrus.Fields{
			"course_id": courseID,
			"user_id":   user.ID,
		}).Info("WS Handler: User is not a member of the course room")
		return nil
	}
	return user
}
