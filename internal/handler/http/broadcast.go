package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"course-classroom/internal/domain"
	"course-classroom/internal/dto"
	"course-classroom/internal/middleware"
	"course-classroom/internal/service"
)

// Publisher 是 BroadcastService 的发布能力
type Publisher interface {
	Publish(ctx context.Context, courseID uuid.UUID, eventType dto.EventType, data any) error
}

// Enqueuer 把发布请求交给异步队列
type Enqueuer interface {
	EnqueueBroadcast(ctx context.Context, courseID uuid.UUID, eventType dto.EventType, data any) (string, error)
}

// MembershipChecker 判断用户能否向课程房间发布事件
type MembershipChecker interface {
	IsRoomMember(ctx context.Context, user *domain.User, courseID uuid.UUID) bool
}

// BroadcastHandler 是 BroadcastService 的 HTTP 入口
type BroadcastHandler struct {
	publisher Publisher
	members   MembershipChecker
	enqueuer  Enqueuer // 可选
}

// NewBroadcastHandler 创建 BroadcastHandler 实例。enqueuer 为 nil 时忽略 async 参数
func NewBroadcastHandler(publisher Publisher, members MembershipChecker, enqueuer Enqueuer) *BroadcastHandler {
	if publisher == nil {
		panic("Publisher cannot be nil for BroadcastHandler")
	}
	if members == nil {
		panic("MembershipChecker cannot be nil for BroadcastHandler")
	}
	return &BroadcastHandler{publisher: publisher, members: members, enqueuer: enqueuer}
}

// PublishResponse 定义发布成功的响应结构体
type PublishResponse struct {
	Message string `json:"message"`
	TaskID  string `json:"task_id,omitempty"`
}

// Publish 处理 POST /api/courses/:courseId/events
func (h *BroadcastHandler) Publish(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		logrus.Warn("Handler.Publish: User not found in context, middleware missing or failed?")
		HandleServiceError(c, service.ErrInvalidToken)
		return
	}

	courseID, err := uuid.Parse(c.Param("courseId"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid course ID format")
		return
	}
	logCtx := logrus.WithFields(logrus.Fields{"course_id": courseID, "user_id": user.ID})

	if !h.members.IsRoomMember(c.Request.Context(), user, courseID) {
		logCtx.Warn("Handler.Publish: User is not a member of the course room")
		HandleServiceError(c, service.ErrNotParticipant)
		return
	}

	var req dto.PublishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logCtx.WithError(err).Warn("Handler.Publish: Invalid input format")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		HandleServiceError(c, err)
		return
	}
	logCtx = logCtx.WithField("event_type", req.Type)

	async, _ := strconv.ParseBool(c.Query("async"))
	if async && h.enqueuer != nil {
		taskID, err := h.enqueuer.EnqueueBroadcast(c.Request.Context(), courseID, req.Type, req.Data)
		if err != nil {
			HandleServiceError(c, err)
			return
		}
		logCtx.WithField("task_id", taskID).Info("Handler.Publish: Event queued")
		SuccessResponse(c, http.StatusAccepted, PublishResponse{Message: "Event queued", TaskID: taskID})
		return
	}

	if err := h.publisher.Publish(c.Request.Context(), courseID, req.Type, req.Data); err != nil {
		HandleServiceError(c, err)
		return
	}
	logCtx.Info("Handler.Publish: Event published")
	SuccessResponse(c, http.StatusAccepted, PublishResponse{Message: "Event published"})
}
