package db_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rafipicu1/bartertalco-sub000/internal/db"
	"github.com/rafipicu1/bartertalco-sub000/internal/db/dbtest"
	"github.com/rafipicu1/bartertalco-sub000/internal/logger"
)

func TestSeedTestData(t *testing.T) {
	database := dbtest.Open(t)

	require.NoError(t, db.SeedTestData(database, logger.Discard()))

	var users, items, decisions int64
	require.NoError(t, database.Model(&db.User{}).Count(&users).Error)
	require.NoError(t, database.Model(&db.Item{}).Count(&items).Error)
	require.NoError(t, database.Model(&db.SwipeDecision{}).Count(&decisions).Error)
	assert.EqualValues(t, 20, users)
	assert.GreaterOrEqual(t, items, int64(40))
	assert.Positive(t, decisions)

	// nobody swipes on their own items
	var own int64
	require.NoError(t, database.Model(&db.SwipeDecision{}).
		Joins("JOIN items ON items.id = swipe_decisions.candidate_item_id").
		Where("items.owner_id = swipe_decisions.swiper_id").
		Count(&own).Error)
	assert.Zero(t, own)

	var located int64
	require.NoError(t, database.Model(&db.Item{}).Where("latitude IS NOT NULL AND longitude IS NOT NULL").Count(&located).Error)
	assert.Equal(t, items, located)

	// reseeding starts from scratch
	require.NoError(t, db.SeedTestData(database, logger.Discard()))
	require.NoError(t, database.Model(&db.User{}).Count(&users).Error)
	assert.EqualValues(t, 20, users)
}
