package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestIsUniqueViolationSqlite(t *testing.T) {
	gdb, err := gorm.Open(sqlite.Open("file:dberrs?mode=memory&cache=shared"), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, gdb.Exec(`CREATE TABLE sales (
		id TEXT PRIMARY KEY,
		payfast_payment_id TEXT NOT NULL UNIQUE
	)`).Error)

	require.NoError(t, gdb.Exec(`INSERT INTO sales (id, payfast_payment_id) VALUES ('a', 'pf-1')`).Error)
	dupErr := gdb.Exec(`INSERT INTO sales (id, payfast_payment_id) VALUES ('b', 'pf-1')`).Error
	require.Error(t, dupErr)

	assert.True(t, IsUniqueViolation(dupErr, ""))
	assert.True(t, IsUniqueViolation(dupErr, "ux_sales_payfast_payment_id"))
	assert.False(t, IsUniqueViolation(nil, ""))
	assert.False(t, IsUniqueViolation(assert.AnError, ""))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(gorm.ErrRecordNotFound))
	assert.False(t, IsNotFound(assert.AnError))
}
