package domain

import (
	"time"

	"github.com/google/uuid"
)

// Course 表示一门课程。课程本身就是一个实时房间的身份。
type Course struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey"`
	OwnerID   uuid.UUID `gorm:"type:char(36);index;not null"` // 拥有该课程的讲师
	Title     string    `gorm:"size:300;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// IsOwner 判断用户是否为课程的拥有者。
func (c *Course) IsOwner(userID uuid.UUID) bool {
	return c != nil && c.OwnerID == userID
}

// CourseStudent 记录学生选课关系。
type CourseStudent struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey"`
	CourseID  uuid.UUID `gorm:"type:char(36);uniqueIndex:idx_course_student;not null"`
	UserID    uuid.UUID `gorm:"type:char(36);uniqueIndex:idx_course_student;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// CourseCoInstructor 记录协同讲师关系。
type CourseCoInstructor struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey"`
	CourseID  uuid.UUID `gorm:"type:char(36);uniqueIndex:idx_course_co_instructor;not null"`
	UserID    uuid.UUID `gorm:"type:char(36);uniqueIndex:idx_course_co_instructor;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// Question 是课程中的提问，评论挂在它下面。
type Question struct {
	ID          uuid.UUID `gorm:"type:char(36);primaryKey"`
	CourseID    uuid.UUID `gorm:"type:char(36);index;not null"`
	UserID      uuid.UUID `gorm:"type:char(36);index;not null"`
	Subject     string    `gorm:"size:200;not null"`
	Description string    `gorm:"type:text"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

// QuestionComment 是对提问的一条评论。
type QuestionComment struct {
	ID         uuid.UUID `gorm:"type:char(36);primaryKey"`
	QuestionID uuid.UUID `gorm:"type:char(36);index;not null"`
	UserID     uuid.UUID `gorm:"type:char(36);index;not null"`
	Message    string    `gorm:"type:text;not null"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index"`
}
