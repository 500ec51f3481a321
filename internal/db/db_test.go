package db

import (
	"fmt"
	"testing"

	"forumcore/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func TestIsUniqueViolation(t *testing.T) {
	require.False(t, IsUniqueViolation(nil))
	require.False(t, IsUniqueViolation(gorm.ErrRecordNotFound))
	require.True(t, IsUniqueViolation(gorm.ErrDuplicatedKey))
	require.True(t, IsUniqueViolation(fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey)))
	require.True(t, IsUniqueViolation(&pgconn.PgError{Code: pgerrcode.UniqueViolation}))
	require.False(t, IsUniqueViolation(&pgconn.PgError{Code: pgerrcode.ForeignKeyViolation}))
}

func TestMigrate_UniqueReport(t *testing.T) {
	gdb, err := OpenDialector(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), false)
	require.NoError(t, err)
	require.NoError(t, Migrate(gdb, zap.NewNop()))

	r := models.Report{ReporterID: "u1", ContentID: "p1", ContentType: models.ContentTypePost,
		Reason: models.ReasonSpam, Status: models.ReportPending}
	require.NoError(t, gdb.Create(&r).Error)

	dup := models.Report{ReporterID: "u1", ContentID: "p1", ContentType: models.ContentTypePost,
		Reason: models.ReasonOther, Status: models.ReportPending}
	err = gdb.Create(&dup).Error
	require.Error(t, err)
	require.True(t, IsUniqueViolation(err))
}
