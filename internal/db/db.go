package db

import (
	"errors"
	"fmt"

	"forumcore/internal/models"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open 连接 PostgreSQL
func Open(dsn string, debug bool) (*gorm.DB, error) {
	return OpenDialector(postgres.Open(dsn), debug)
}

// OpenDialector 允许测试传入 sqlite 等其他方言
func OpenDialector(dialector gorm.Dialector, debug bool) (*gorm.DB, error) {
	level := logger.Warn
	if debug {
		level = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true, // 唯一约束冲突转成 gorm.ErrDuplicatedKey
		Logger:         logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// Migrate 自动建表
func Migrate(db *gorm.DB, log *zap.Logger) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.CommentThread{},
		&models.Vote{},
		&models.KarmaAccount{},
		&models.KarmaLog{},
		&models.Award{},
		&models.Report{},
		&models.SavedContent{},
		&models.Notification{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	log.Info("Database migration completed")
	return nil
}

// IsUniqueViolation 判断是否为唯一约束冲突
// TranslateError 覆盖大多数情况，直接返回的 pg 错误也要识别
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
