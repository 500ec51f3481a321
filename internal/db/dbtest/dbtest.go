// Package dbtest 为测试提供独立的内存 SQLite 数据库
package dbtest

import (
	"testing"

	"forumcore/internal/db"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// New 每次调用返回一个已迁移的新库，测试结束自动关闭
// 单连接：事务内外的语句串行执行，与 postgres 行锁的效果一致
func New(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared&_pragma=busy_timeout(5000)"
	gdb, err := db.OpenDialector(sqlite.Open(dsn), false)
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Migrate(gdb, zap.NewNop()))
	return gdb
}
