package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// 原生 SQL 条件和手写迁移都按 fid 写, 模型列名必须钉死为 fid,
// 不能交给默认命名策略 (它会把 FID 拆成 f_id)
func TestFIDColumnName(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(AllModels()...))

	for _, m := range []interface{}{&User{}, &BurnRecord{}, &Boost{}} {
		assert.True(t, db.Migrator().HasColumn(m, "fid"), "%T", m)
	}

	// 写入走 gorm 生成的语句, 读取走原生条件, 两边必须落在同一列上
	require.NoError(t, db.Create(&User{FID: 42}).Error)
	var user User
	require.NoError(t, db.First(&user, "fid = ?", 42).Error)
	assert.Equal(t, int64(42), user.FID)
}
