package service

import "errors"

var (
	ErrCourseNotFound = errors.New("course not found")
	ErrUserNotFound   = errors.New("user not found")
	ErrNotParticipant = errors.New("user is not a participant of the course")
	ErrInvalidEvent   = errors.New("invalid event")
	ErrInvalidToken   = errors.New("invalid or expired token")
)
