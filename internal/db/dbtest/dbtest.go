// Package dbtest opens migrated in-memory SQLite databases for tests.
package dbtest

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rafipicu1/bartertalco-sub000/internal/db"
)

// Open returns a fresh migrated :memory: database.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		Logger:  logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "failed to open sqlite")

	// one connection, otherwise every new one sees its own empty :memory: db
	sqlDB, err := database.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Migrate(database), "failed to migrate")
	return database
}

// Item inserts an active listing.
func Item(t testing.TB, database *gorm.DB, it db.Item) db.Item {
	t.Helper()
	if it.Name == "" {
		it.Name = "item"
	}
	if it.Category == "" {
		it.Category = "misc"
	}
	if it.Condition == "" {
		it.Condition = db.ConditionGood
	}
	if it.EstimatedValue == 0 {
		it.EstimatedValue = 100_000
	}
	inactive := !it.IsActive
	it.IsActive = true
	require.NoError(t, database.WithContext(context.Background()).Create(&it).Error)
	if inactive {
		require.NoError(t, database.Model(&db.Item{}).Where("id = ?", it.ID).Update("is_active", false).Error)
		it.IsActive = false
	}
	return it
}

var userSeq atomic.Uint64

// User inserts a user with a unique username.
func User(t testing.TB, database *gorm.DB, u db.User) db.User {
	t.Helper()
	if u.Username == "" {
		u.Username = fmt.Sprintf("user-%d", userSeq.Add(1))
	}
	if u.Email == "" {
		u.Email = u.Username + "@example.com"
	}
	if u.PasswordHash == "" {
		u.PasswordHash = "x"
	}
	require.NoError(t, database.Create(&u).Error)
	return u
}
