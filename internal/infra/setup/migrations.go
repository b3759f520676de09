package setup

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"course-classroom/internal/domain"
)

// Models 返回需要迁移的全部模型，顺序即建表顺序。
func Models() []any {
	return []any{
		&domain.User{},
		&domain.Course{},
		&domain.CourseStudent{},
		&domain.CourseCoInstructor{},
		&domain.Question{},
		&domain.QuestionComment{},
		&domain.ChatRoom{},
		&domain.ChatRoomBlock{},
		&domain.ChatMessage{},
	}
}

// MigrateDB 使用 AutoMigrate 同步所有表结构
func MigrateDB(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("cannot migrate database with nil DB connection")
	}
	if err := db.AutoMigrate(Models()...); err != nil {
		logrus.Errorf("Failed to auto-migrate tables: %v", err)
		return fmt.Errorf("failed to auto-migrate tables: %w", err)
	}
	logrus.Info("Database migration completed successfully")
	return nil
}
