package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"course-classroom/internal/domain"
	"course-classroom/internal/dto"
	"course-classroom/internal/hub"
	"course-classroom/internal/middleware"
)

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) Publish(ctx context.Context, courseID uuid.UUID, eventType dto.EventType, data any) error {
	return m.Called(ctx, courseID, eventType, data).Error(0)
}

type mockEnqueuer struct{ mock.Mock }

func (m *mockEnqueuer) EnqueueBroadcast(ctx context.Context, courseID uuid.UUID, eventType dto.EventType, data any) (string, error) {
	args := m.Called(ctx, courseID, eventType, data)
	return args.String(0), args.Error(1)
}

type allowMembers bool

func (a allowMembers) IsRoomMember(context.Context, *domain.User, uuid.UUID) bool { return bool(a) }

type fixedStats hub.Stats

func (s fixedStats) Stats() hub.Stats { return hub.Stats(s) }

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(h *BroadcastHandler, user *domain.User) *gin.Engine {
	r := gin.New()
	r.POST("/api/courses/:courseId/events", func(c *gin.Context) {
		if user != nil {
			c.Set(middleware.ContextUserKey, user)
		}
		c.Next()
	}, h.Publish)
	return r
}

func postJSON(r *gin.Engine, url string, body any) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, url, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthHandler_Ping(t *testing.T) {
	r := gin.New()
	r.GET("/health", NewHealthHandler(fixedStats{Rooms: 2, Sessions: 5}).Ping)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","rooms":2,"sessions":5}`, w.Body.String())
}

func TestBroadcastHandler_Publish(t *testing.T) {
	user := &domain.User{ID: uuid.New(), Username: "instructor"}
	courseID := uuid.New()
	url := "/api/courses/" + courseID.String() + "/events"
	validBody := map[string]any{"type": "announcement", "data": map[string]any{"title": "exam"}}

	t.Run("publishes in process", func(t *testing.T) {
		publisher := new(mockPublisher)
		publisher.On("Publish", mock.Anything, courseID, dto.EventAnnouncement, map[string]any{"title": "exam"}).Return(nil).Once()
		r := newRouter(NewBroadcastHandler(publisher, allowMembers(true), nil), user)

		w := postJSON(r, url, validBody)

		assert.Equal(t, http.StatusAccepted, w.Code)
		assert.JSONEq(t, `{"message":"Event published"}`, w.Body.String())
		publisher.AssertExpectations(t)
	})

	t.Run("queues when async is requested", func(t *testing.T) {
		publisher := new(mockPublisher)
		enqueuer := new(mockEnqueuer)
		enqueuer.On("EnqueueBroadcast", mock.Anything, courseID, dto.EventAnnouncement, mock.Anything).Return("task-1", nil).Once()
		r := newRouter(NewBroadcastHandler(publisher, allowMembers(true), enqueuer), user)

		w := postJSON(r, url+"?async=true", validBody)

		assert.Equal(t, http.StatusAccepted, w.Code)
		assert.JSONEq(t, `{"message":"Event queued","task_id":"task-1"}`, w.Body.String())
		publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		enqueuer.AssertExpectations(t)
	})

	testCases := []struct {
		name       string
		user       *domain.User
		member     bool
		url        string
		body       any
		wantStatus int
	}{
		{"no user", nil, true, url, validBody, http.StatusUnauthorized},
		{"bad course id", user, true, "/api/courses/abc/events", validBody, http.StatusBadRequest},
		{"not a member", user, false, url, validBody, http.StatusForbidden},
		{"missing data", user, true, url, map[string]any{"type": "announcement"}, http.StatusBadRequest},
		{"unknown type", user, true, url, map[string]any{"type": "bogus", "data": map[string]any{}}, http.StatusBadRequest},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			publisher := new(mockPublisher)
			r := newRouter(NewBroadcastHandler(publisher, allowMembers(tc.member), nil), tc.user)

			w := postJSON(r, tc.url, tc.body)

			assert.Equal(t, tc.wantStatus, w.Code)
			publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}

	t.Run("enqueue failure is an internal error", func(t *testing.T) {
		enqueuer := new(mockEnqueuer)
		enqueuer.On("EnqueueBroadcast", mock.Anything, courseID, dto.EventAnnouncement, mock.Anything).Return("", errors.New("redis down")).Once()
		r := newRouter(NewBroadcastHandler(new(mockPublisher), allowMembers(true), enqueuer), user)

		w := postJSON(r, url+"?async=1", validBody)

		require.Equal(t, http.StatusInternalServerError, w.Code)
		enqueuer.AssertExpectations(t)
	})
}
