package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"course-classroom/internal/domain"
	"course-classroom/internal/repository"
	"course-classroom/internal/repository/mocks"
	"course-classroom/internal/service"
)

func newModeration() (*service.ModerationService, *mocks.CourseRepository, *mocks.UserRepository, *mocks.ChatRepository) {
	courses := new(mocks.CourseRepository)
	users := new(mocks.UserRepository)
	chats := new(mocks.ChatRepository)
	return service.NewModerationService(courses, users, chats), courses, users, chats
}

func TestModerationService_OpenRoom(t *testing.T) {
	ctx := context.Background()
	courseID := uuid.New()

	t.Run("creates room for existing course", func(t *testing.T) {
		// Arrange
		svc, courses, _, chats := newModeration()
		room := &domain.ChatRoom{ID: uuid.New(), CourseID: courseID}
		courses.On("FindByID", ctx, courseID).Return(&domain.Course{ID: courseID}, nil).Once()
		chats.On("GetOrCreateRoom", ctx, courseID).Return(room, nil).Once()

		// Act
		got, err := svc.OpenRoom(ctx, courseID)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, room, got)
		courses.AssertExpectations(t)
		chats.AssertExpectations(t)
	})

	t.Run("unknown course", func(t *testing.T) {
		svc, courses, _, chats := newModeration()
		courses.On("FindByID", ctx, courseID).Return(nil, repository.ErrCourseNotFound).Once()

		got, err := svc.OpenRoom(ctx, courseID)

		assert.Nil(t, got)
		assert.ErrorIs(t, err, service.ErrCourseNotFound)
		chats.AssertNotCalled(t, "GetOrCreateRoom", mock.Anything, mock.Anything)
	})

	t.Run("repository failure is wrapped", func(t *testing.T) {
		svc, courses, _, chats := newModeration()
		dbErr := errors.New("db down")
		courses.On("FindByID", ctx, courseID).Return(&domain.Course{ID: courseID}, nil).Once()
		chats.On("GetOrCreateRoom", ctx, courseID).Return(nil, dbErr).Once()

		_, err := svc.OpenRoom(ctx, courseID)

		assert.ErrorIs(t, err, dbErr)
		assert.NotErrorIs(t, err, service.ErrCourseNotFound)
	})
}

func TestModerationService_BlockUser(t *testing.T) {
	ctx := context.Background()
	courseID := uuid.New()
	userID := uuid.New()
	room := &domain.ChatRoom{ID: uuid.New(), CourseID: courseID}

	t.Run("blocks user in course room", func(t *testing.T) {
		// Arrange
		svc, courses, users, chats := newModeration()
		users.On("FindByID", ctx, userID).Return(&domain.User{ID: userID}, nil).Once()
		courses.On("FindByID", ctx, courseID).Return(&domain.Course{ID: courseID}, nil).Once()
		chats.On("GetOrCreateRoom", ctx, courseID).Return(room, nil).Once()
		chats.On("Block", ctx, room.ID, userID).Return(nil).Once()

		// Act
		got, err := svc.BlockUser(ctx, courseID, userID)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, room.ID, got.ID)
		users.AssertExpectations(t)
		chats.AssertExpectations(t)
	})

	t.Run("unknown user", func(t *testing.T) {
		svc, courses, users, chats := newModeration()
		users.On("FindByID", ctx, userID).Return(nil, repository.ErrUserNotFound).Once()

		_, err := svc.BlockUser(ctx, courseID, userID)

		assert.ErrorIs(t, err, service.ErrUserNotFound)
		courses.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
		chats.AssertNotCalled(t, "Block", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown course", func(t *testing.T) {
		svc, courses, users, chats := newModeration()
		users.On("FindByID", ctx, userID).Return(&domain.User{ID: userID}, nil).Once()
		courses.On("FindByID", ctx, courseID).Return(nil, repository.ErrCourseNotFound).Once()

		_, err := svc.BlockUser(ctx, courseID, userID)

		assert.ErrorIs(t, err, service.ErrCourseNotFound)
		chats.AssertNotCalled(t, "Block", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestNewModerationService_PanicsOnNilDeps(t *testing.T) {
	assert.Panics(t, func() {
		service.NewModerationService(nil, new(mocks.UserRepository), new(mocks.ChatRepository))
	})
	assert.Panics(t, func() {
		service.NewModerationService(new(mocks.CourseRepository), nil, new(mocks.ChatRepository))
	})
	assert.Panics(t, func() {
		service.NewModerationService(new(mocks.CourseRepository), new(mocks.UserRepository), nil)
	})
}
