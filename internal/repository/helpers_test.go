package repository_test

import (
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/rafipicu1/bartertalco-sub000/internal/db"
	"github.com/rafipicu1/bartertalco-sub000/internal/db/dbtest"
)

// setup in-memory DB
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return dbtest.Open(t)
}

func seedItem(t *testing.T, database *gorm.DB, owner uint64, name, category string, created time.Time) db.Item {
	t.Helper()
	return dbtest.Item(t, database, db.Item{
		OwnerID:   owner,
		Name:      name,
		Category:  category,
		IsActive:  true,
		CreatedAt: created,
	})
}
