package tasks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"course-classroom/internal/dto"
)

// 定义任务类型常量
const (
	TypeBroadcastPublish = "broadcast:publish" // 排队推送服务端事件
)

// ErrMissingData 表示任务没有携带事件数据（缺失或为 JSON null）
var ErrMissingData = errors.New("event data is required")

// BroadcastPublishPayload 是广播任务的数据结构
type BroadcastPublishPayload struct {
	CourseID uuid.UUID       `json:"course_id"`
	Type     dto.EventType   `json:"type"`
	Data     json.RawMessage `json:"data"`
}

// NewBroadcastPublishTask 创建一个新的广播任务
func NewBroadcastPublishTask(courseID uuid.UUID, eventType dto.EventType, data any) (*asynq.Task, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal event data: %w", err)
	}
	if isMissing(raw) {
		return nil, ErrMissingData
	}
	payload, err := json.Marshal(BroadcastPublishPayload{
		CourseID: courseID,
		Type:     eventType,
		Data:     raw,
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeBroadcastPublish, payload), nil
}

// ParseBroadcastPublishPayload 解析任务负载
func ParseBroadcastPublishPayload(t *asynq.Task) (BroadcastPublishPayload, error) {
	var p BroadcastPublishPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return BroadcastPublishPayload{}, err
	}
	if p.CourseID == uuid.Nil {
		return BroadcastPublishPayload{}, fmt.Errorf("course_id is required")
	}
	if isMissing(p.Data) {
		return BroadcastPublishPayload{}, ErrMissingData
	}
	return p, nil
}

func isMissing(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// Enqueuer 把广播请求放进 asynq 队列
type Enqueuer struct {
	client *asynq.Client
}

// NewEnqueuer 创建 Enqueuer 实例
func NewEnqueuer(client *asynq.Client) *Enqueuer {
	if client == nil {
		panic("asynq client cannot be nil for Enqueuer")
	}
	return &Enqueuer{client: client}
}

// EnqueueBroadcast 排队一次广播，返回任务 ID
func (e *Enqueuer) EnqueueBroadcast(ctx context.Context, courseID uuid.UUID, eventType dto.EventType, data any) (string, error) {
	task, err := NewBroadcastPublishTask(courseID, eventType, data)
	if err != nil {
		return "", err
	}
	// 过期的广播对在线用户没有意义，重试次数和保留时间都很短
	info, err := e.client.EnqueueContext(ctx, task,
		asynq.Queue("critical"),
		asynq.MaxRetry(3),
		asynq.Timeout(30*time.Second),
	)
	if err != nil {
		return "", fmt.Errorf("enqueue %s: %w", TypeBroadcastPublish, err)
	}
	return info.ID, nil
}
