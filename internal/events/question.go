package events

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"course-classroom/internal/domain"
	"course-classroom/internal/dto"
	"course-classroom/internal/repository"
)

type questionCommentData struct {
	QuestionID *string `json:"question_id"`
	Message    *string `json:"message"`
}

// QuestionCommentHandler 在课程提问下保存一条评论。
type QuestionCommentHandler struct {
	tx repository.Transactor
}

// NewQuestionCommentHandler 创建 QuestionCommentHandler 实例
func NewQuestionCommentHandler(tx repository.Transactor) *QuestionCommentHandler {
	if tx == nil {
		panic("Transactor cannot be nil for QuestionCommentHandler")
	}
	return &QuestionCommentHandler{tx: tx}
}

// Process 实现 Handler
func (h *QuestionCommentHandler) Process(ctx context.Context, courseID uuid.UUID, sender *domain.User, raw json.RawMessage) dto.OutboundEvent {
	logCtx := logrus.WithFields(logrus.Fields{
		"course_id":  courseID,
		"user_id":    sender.ID,
		"event_type": dto.EventQuestionComment,
	})

	var data questionCommentData
	if err := json.Unmarshal(raw, &data); err != nil {
		logCtx.WithError(err).Warn("Question comment data could not be decoded")
		return dto.ErrorEvent(dto.MsgInvalidData)
	}
	questionID, err := parseID(data.QuestionID)
	if err != nil {
		logCtx.Warn("Question comment data has no usable question_id")
		return errorEvent(err)
	}
	logCtx = logCtx.WithField("question_id", questionID)

	var comment *domain.QuestionComment
	err = h.tx.WithinTransaction(ctx, func(ctx context.Context, repos repository.Repositories) error {
		question, err := repos.Questions.FindByID(ctx, questionID)
		if err != nil {
			if errors.Is(err, repository.ErrQuestionNotFound) {
				return errQuestionNotFound
			}
			return err
		}
		if question.CourseID != courseID {
			return errQuestionNotFound
		}
		if data.Message == nil {
			return errInvalidData
		}

		comment = &domain.QuestionComment{
			QuestionID: question.ID,
			UserID:     sender.ID,
			Message:    *data.Message,
			CreatedAt:  time.Now().UTC(),
		}
		return repos.Questions.CreateComment(ctx, comment)
	})
	if err != nil {
		if isClientError(err) {
			logCtx.WithError(err).Warn("Question comment rejected")
		} else {
			logCtx.WithError(err).Error("Failed to persist question comment")
		}
		return errorEvent(err)
	}

	logCtx.WithField("comment_id", comment.ID).Info("Question comment persisted")
	return dto.OutboundEvent{
		Type: string(dto.EventQuestionComment),
		Data: map[string]any{
			"id":         comment.ID.String(),
			"user":       sender.String(),
			"question":   comment.QuestionID.String(),
			"message":    comment.Message,
			"created_at": domain.FormatTimestamp(comment.CreatedAt),
		},
	}
}
