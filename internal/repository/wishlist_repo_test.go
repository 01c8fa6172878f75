package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rafipicu1/bartertalco-sub000/internal/db"
	"github.com/rafipicu1/bartertalco-sub000/internal/repository"
	"github.com/rafipicu1/bartertalco-sub000/internal/utils/pagination"
)

func TestRecordWishlist_Idempotent(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewWishlistRepository(setupTestDB(t))

	st, err := repo.RecordWishlist(ctx, 1, 50)
	require.NoError(t, err)
	assert.Equal(t, repository.Recorded, st)

	st, err = repo.RecordWishlist(ctx, 1, 50)
	require.NoError(t, err)
	assert.Equal(t, repository.Duplicate, st)
}

func TestListWishlist_Pagination(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewWishlistRepository(dbase)

	base := time.Now().UTC().Truncate(time.Millisecond)
	for i := uint64(1); i <= 5; i++ {
		e := db.WishlistEntry{UserID: 1, ItemID: i, CreatedAt: base.Add(time.Duration(i) * time.Second)}
		require.NoError(t, dbase.Create(&e).Error)
	}

	page, next, err := repo.ListWishlist(ctx, 1, nil, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.NotNil(t, next)
	assert.Equal(t, uint64(5), page[0].ItemID)
	assert.Equal(t, uint64(4), page[1].ItemID)

	page, next, err = repo.ListWishlist(ctx, 1, next, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, uint64(3), page[0].ItemID)

	page, next, err = repo.ListWishlist(ctx, 1, next, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Nil(t, next)

	bad := "%%%"
	_, _, err = repo.ListWishlist(ctx, 1, &bad, 2)
	assert.ErrorIs(t, err, pagination.ErrInvalidToken)
}

func TestWishlistCategories(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewWishlistRepository(dbase)

	ts := time.Now().UTC()
	a := seedItem(t, dbase, 2, "a", "books", ts)
	b := seedItem(t, dbase, 2, "b", "books", ts)
	c := seedItem(t, dbase, 3, "c", "toys", ts)
	for _, id := range []uint64{a.ID, b.ID, c.ID} {
		_, err := repo.RecordWishlist(ctx, 1, id)
		require.NoError(t, err)
	}

	cats, err := repo.WishlistCategories(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2.0, cats["books"])
	assert.Equal(t, 1.0, cats["toys"])
}
