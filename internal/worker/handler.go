package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"course-classroom/internal/dto"
	"course-classroom/internal/service"
	"course-classroom/internal/tasks"
)

// Publisher 是 BroadcastService 的发布能力
type Publisher interface {
	Publish(ctx context.Context, courseID uuid.UUID, eventType dto.EventType, data any) error
}

// BroadcastPublishHandler 处理排队的广播任务
type BroadcastPublishHandler struct {
	publisher Publisher
}

// NewBroadcastPublishHandler 创建 Handler 实例
func NewBroadcastPublishHandler(publisher Publisher) *BroadcastPublishHandler {
	if publisher == nil {
		panic("Publisher cannot be nil for BroadcastPublishHandler")
	}
	return &BroadcastPublishHandler{publisher: publisher}
}

// ProcessTask 实现 asynq.Handler 接口
func (h *BroadcastPublishHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	taskID := ""
	if rw := t.ResultWriter(); rw != nil {
		taskID = rw.TaskID()
	}
	currentRetry, _ := asynq.GetRetryCount(ctx)
	logCtx := logrus.WithFields(logrus.Fields{
		"task_id":   taskID,
		"task_type": t.Type(),
		"retry":     currentRetry,
	})

	payload, err := tasks.ParseBroadcastPublishPayload(t)
	if err != nil {
		logCtx.WithError(err).Error("Failed to unmarshal task payload")
		return fmt.Errorf("failed to unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}
	logCtx = logCtx.WithFields(logrus.Fields{"course_id": payload.CourseID, "event_type": payload.Type})

	if err := h.publisher.Publish(ctx, payload.CourseID, payload.Type, payload.Data); err != nil {
		if errors.Is(err, service.ErrInvalidEvent) {
			logCtx.WithError(err).Warn("Dropping invalid broadcast task")
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		logCtx.WithError(err).Error("Failed to publish broadcast task")
		return err
	}

	logCtx.Debug("Broadcast task processed successfully")
	return nil
}
