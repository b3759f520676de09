package setup

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DBOptions 描述如何连接关系数据库
type DBOptions struct {
	Driver   string // mysql | postgres | sqlite
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string // 仅 postgres 使用
	DSN      string // 非空时覆盖由上面字段拼出的 DSN
}

// BuildDSN 根据驱动拼出连接字符串
func (o DBOptions) BuildDSN() (string, error) {
	if o.DSN != "" {
		return o.DSN, nil
	}
	switch o.Driver {
	case "", "mysql":
		if o.User == "" {
			return "", fmt.Errorf("DB_USER must be set for mysql")
		}
		host, port := valueOr(o.Host, "127.0.0.1"), valueOr(o.Port, "3306")
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			o.User, o.Password, host, port, valueOr(o.Name, "classroom_db")), nil
	case "postgres":
		if o.User == "" {
			return "", fmt.Errorf("DB_USER must be set for postgres")
		}
		host, port := valueOr(o.Host, "127.0.0.1"), valueOr(o.Port, "5432")
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			host, port, o.User, o.Password, valueOr(o.Name, "classroom_db"), valueOr(o.SSLMode, "disable")), nil
	case "sqlite":
		return valueOr(o.Name, "classroom.db"), nil
	default:
		return "", fmt.Errorf("unsupported DB_DRIVER %q", o.Driver)
	}
}

// InitDB 打开数据库连接并配置连接池
func InitDB(opts DBOptions) (*gorm.DB, error) {
	dsn, err := opts.BuildDSN()
	if err != nil {
		return nil, fmt.Errorf("failed to build DSN: %w", err)
	}

	var dialector gorm.Dialector
	switch opts.Driver {
	case "", "mysql":
		dialector = mysql.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", valueOr(opts.Driver, "mysql"), err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if opts.Driver == "sqlite" {
		// SQLite 只有一个写者
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(50)
		sqlDB.SetMaxIdleConns(10)
	}
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	logrus.WithField("driver", valueOr(opts.Driver, "mysql")).Info("Database connected")
	return db, nil
}

func valueOr(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
