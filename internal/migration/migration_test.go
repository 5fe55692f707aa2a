package migration

import (
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/plantpulse/plantpulse/internal/seed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestAutoMigrateBuildsFullSchema(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_loc=auto", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	require.NoError(t, db.Exec("PRAGMA busy_timeout = 5000").Error)
	require.NoError(t, AutoMigrate(db))

	for _, table := range []string{
		"clients",
		"products",
		"work_orders",
		"production_entries",
		"quality_entries",
		"attendance_entries",
		"downtime_entries",
		"audit_logs",
	} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}

	// A fresh non-postgres install must come up ready to take writes.
	require.NoError(t, seed.EnsureDefaultClient(db))
	var count int64
	require.NoError(t, db.Table("clients").Count(&count).Error)
	assert.EqualValues(t, 1, count)
}
