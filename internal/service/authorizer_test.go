package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"course-classroom/internal/domain"
	"course-classroom/internal/repository"
	"course-classroom/internal/repository/mocks"
	"course-classroom/internal/service"
)

func TestRoomAuthorizer_IsParticipant(t *testing.T) {
	ctx := context.Background()
	courseID := uuid.New()
	owner := &domain.User{ID: uuid.New(), Username: "owner"}
	user := &domain.User{ID: uuid.New(), Username: "u"}
	course := &domain.Course{ID: courseID, OwnerID: owner.ID}
	dbErr := errors.New("db down")

	tests := []struct {
		name  string
		user  *domain.User
		setup func(m *mocks.CourseRepository)
		want  bool
	}{
		{
			name:  "anonymous",
			user:  nil,
			setup: func(m *mocks.CourseRepository) {},
			want:  false,
		},
		{
			name: "owner",
			user: owner,
			setup: func(m *mocks.CourseRepository) {
				m.On("FindByID", ctx, courseID).Return(course, nil)
			},
			want: true,
		},
		{
			name: "enrolled student",
			user: user,
			setup: func(m *mocks.CourseRepository) {
				m.On("FindByID", ctx, courseID).Return(course, nil)
				m.On("IsStudent", ctx, courseID, user.ID).Return(true, nil)
			},
			want: true,
		},
		{
			name: "co-instructor",
			user: user,
			setup: func(m *mocks.CourseRepository) {
				m.On("FindByID", ctx, courseID).Return(course, nil)
				m.On("IsStudent", ctx, courseID, user.ID).Return(false, nil)
				m.On("IsCoInstructor", ctx, courseID, user.ID).Return(true, nil)
			},
			want: true,
		},
		{
			name: "stranger",
			user: user,
			setup: func(m *mocks.CourseRepository) {
				m.On("FindByID", ctx, courseID).Return(course, nil)
				m.On("IsStudent", ctx, courseID, user.ID).Return(false, nil)
				m.On("IsCoInstructor", ctx, courseID, user.ID).Return(false, nil)
			},
			want: false,
		},
		{
			name: "course does not exist",
			user: owner,
			setup: func(m *mocks.CourseRepository) {
				m.On("FindByID", ctx, courseID).Return(nil, repository.ErrCourseNotFound)
			},
			want: false,
		},
		{
			name: "course lookup fails",
			user: owner,
			setup: func(m *mocks.CourseRepository) {
				m.On("FindByID", ctx, courseID).Return(nil, dbErr)
			},
			want: false,
		},
		{
			name: "enrollment lookup fails",
			user: user,
			setup: func(m *mocks.CourseRepository) {
				m.On("FindByID", ctx, courseID).Return(course, nil)
				m.On("IsStudent", ctx, courseID, user.ID).Return(false, dbErr)
			},
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			courseRepo := new(mocks.CourseRepository)
			tt.setup(courseRepo)
			authz := service.NewRoomAuthorizer(courseRepo, new(mocks.ChatRepository))

			assert.Equal(t, tt.want, authz.IsParticipant(ctx, tt.user, courseID))
			courseRepo.AssertExpectations(t)
		})
	}
}

func TestRoomAuthorizer_IsRoomMember(t *testing.T) {
	ctx := context.Background()
	courseID := uuid.New()
	owner := &domain.User{ID: uuid.New()}
	course := &domain.Course{ID: courseID, OwnerID: owner.ID}
	room := &domain.ChatRoom{ID: uuid.New(), CourseID: courseID}

	tests := []struct {
		name  string
		setup func(m *mocks.ChatRepository)
		want  bool
	}{
		{
			name: "not blocked",
			setup: func(m *mocks.ChatRepository) {
				m.On("FindRoomByCourse", ctx, courseID).Return(room, nil)
				m.On("IsBlocked", ctx, room.ID, owner.ID).Return(false, nil)
			},
			want: true,
		},
		{
			name: "blocked",
			setup: func(m *mocks.ChatRepository) {
				m.On("FindRoomByCourse", ctx, courseID).Return(room, nil)
				m.On("IsBlocked", ctx, room.ID, owner.ID).Return(true, nil)
			},
			want: false,
		},
		{
			name: "course has no chat room yet",
			setup: func(m *mocks.ChatRepository) {
				m.On("FindRoomByCourse", ctx, courseID).Return(nil, repository.ErrChatRoomNotFound)
			},
			want: true,
		},
		{
			name: "blocklist lookup fails",
			setup: func(m *mocks.ChatRepository) {
				m.On("FindRoomByCourse", ctx, courseID).Return(room, nil)
				m.On("IsBlocked", ctx, room.ID, owner.ID).Return(false, errors.New("db down"))
			},
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			courseRepo := new(mocks.CourseRepository)
			courseRepo.On("FindByID", ctx, courseID).Return(course, nil)
			chatRepo := new(mocks.ChatRepository)
			tt.setup(chatRepo)
			authz := service.NewRoomAuthorizer(courseRepo, chatRepo)

			assert.Equal(t, tt.want, authz.IsRoomMember(ctx, owner, courseID))
			chatRepo.AssertExpectations(t)
		})
	}
}

func TestRoomAuthorizer_IsRoomMember_NonParticipantSkipsBlocklist(t *testing.T) {
	ctx := context.Background()
	courseID := uuid.New()
	courseRepo := new(mocks.CourseRepository)
	courseRepo.On("FindByID", ctx, courseID).Return(nil, repository.ErrCourseNotFound)
	chatRepo := new(mocks.ChatRepository)

	authz := service.NewRoomAuthorizer(courseRepo, chatRepo)
	assert.False(t, authz.IsRoomMember(ctx, &domain.User{ID: uuid.New()}, courseID))
	chatRepo.AssertNotCalled(t, "FindRoomByCourse")
}
