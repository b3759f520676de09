// Package redispubsub 通过 Redis 发布订阅在多个进程之间转发课程房间的广播。
package redispubsub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

// ErrBrokerUnavailable 表示熔断器处于打开状态，发布被直接拒绝
var ErrBrokerUnavailable = errors.New("redis broker unavailable")

// Broker 把广播发布到 <prefix>course:<id>:events，并按模式订阅所有课程频道。
// 每条消息带上发布者的 origin，订阅端丢弃自己发出的消息，本进程的会话由 Hub 直接投递。
type Broker struct {
	client    *redis.Client
	keyPrefix string
	origin    string
	breaker   *gobreaker.CircuitBreaker
}

// frame 是 Redis 频道上传输的消息
type frame struct {
	Origin  string          `json:"origin"`
	Payload json.RawMessage `json:"payload"`
}

// NewBroker 创建 Broker 实例
func NewBroker(client *redis.Client, keyPrefix string) *Broker {
	if client == nil {
		panic("redis client cannot be nil for Broker")
	}
	if keyPrefix == "" {
		keyPrefix = "cc:"
	}
	settings := gobreaker.Settings{
		Name:        "redis-publish",
		MaxRequests: 1,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logrus.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Circuit breaker state changed")
		},
	}
	return &Broker{
		client:    client,
		keyPrefix: keyPrefix,
		origin:    ulid.Make().String(),
		breaker:   gobreaker.NewCircuitBreaker(settings),
	}
}

// --- Key Generation Helpers ---
func (b *Broker) courseChannel(courseID uuid.UUID) string {
	return fmt.Sprintf("%scourse:%s:events", b.keyPrefix, courseID)
}

func (b *Broker) coursePattern() string {
	return b.keyPrefix + "course:*:events"
}

// courseFromChannel 从频道名解析课程 ID
func (b *Broker) courseFromChannel(channel string) (uuid.UUID, error) {
	id := strings.TrimPrefix(channel, b.keyPrefix+"course:")
	id = strings.TrimSuffix(id, ":events")
	return uuid.Parse(id)
}

// Publish 把已编码的出站帧发布到课程频道，payload 必须是 JSON
func (b *Broker) Publish(ctx context.Context, courseID uuid.UUID, payload []byte) error {
	channel := b.courseChannel(courseID)
	msg, err := json.Marshal(frame{Origin: b.origin, Payload: payload})
	if err != nil {
		return fmt.Errorf("redis: failed to encode frame for channel %s: %w", channel, err)
	}
	_, err = b.breaker.Execute(func() (interface{}, error) {
		return nil, b.client.Publish(ctx, channel, msg).Err()
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return ErrBrokerUnavailable
		}
		logrus.WithFields(logrus.Fields{
			"channel":      channel,
			"payload_size": len(payload),
			"course_id":    courseID,
		}).WithError(err).Error("Redis Publish failed")
		return fmt.Errorf("redis: failed to publish to channel %s: %w", channel, err)
	}
	return nil
}

// Subscribe 按模式订阅所有课程频道，把其他进程发布的消息交给 deliver，直到 ctx 结束。
// 订阅确认之后才开始投递，返回值在 ctx 取消时为 nil。
func (b *Broker) Subscribe(ctx context.Context, deliver func(courseID uuid.UUID, payload []byte)) error {
	pattern := b.coursePattern()
	ps := b.client.PSubscribe(ctx, pattern)
	defer ps.Close()

	// 等待订阅确认
	if _, err := ps.Receive(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("redis: failed to psubscribe %s: %w", pattern, err)
	}
	log := logrus.WithField("pattern", pattern)
	log.Info("Subscribed to course event channels")

	ch := ps.Channel()
	for {
		select {
		case <-ctx.Done():
			log.Info("Course event subscription stopped")
			return nil
		case msg, ok := <-ch:
			if !ok {
				return fmt.Errorf("redis: subscription channel for %s closed", pattern)
			}
			courseID, err := b.courseFromChannel(msg.Channel)
			if err != nil {
				log.WithField("channel", msg.Channel).Warn("Ignoring message on malformed course channel")
				continue
			}
			var f frame
			if err := json.Unmarshal([]byte(msg.Payload), &f); err != nil {
				log.WithField("channel", msg.Channel).WithError(err).Warn("Ignoring malformed frame")
				continue
			}
			if f.Origin == b.origin {
				continue
			}
			deliver(courseID, f.Payload)
		}
	}
}
