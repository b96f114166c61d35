package interests

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sk2andy/mattermost-buy-bot/pkg/db/models"
)

func setupInterestsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.Exec(`DROP TABLE IF EXISTS interests`).Error)
	require.NoError(t, db.Exec(`
CREATE TABLE interests (
  channel_id TEXT NOT NULL,
  user_id TEXT NOT NULL,
  buy_id TEXT NOT NULL,
  shares NUMERIC NOT NULL,
  email TEXT NOT NULL DEFAULT '',
  payed INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME,
  PRIMARY KEY (channel_id, user_id, buy_id)
);`).Error)

	return db
}

func testInterest(userID string, shares int64) *models.Interest {
	return &models.Interest{
		ChannelID: "chan-1",
		UserID:    userID,
		BuyID:     "buy-1",
		Shares:    decimal.NewFromInt(shares),
		Email:     userID + "@example.com",
	}
}

func TestInterestRepositoryGetMissReturnsNil(t *testing.T) {
	repo := NewRepository(setupInterestsTestDB(t))

	interest, err := repo.Get(context.Background(), "chan-1", "user-1", "buy-1")
	require.NoError(t, err)
	assert.Nil(t, interest)
}

func TestInterestRepositoryUpsertOverwritesShares(t *testing.T) {
	repo := NewRepository(setupInterestsTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, testInterest("user-1", 2)))

	update := testInterest("user-1", 5)
	update.Payed = true
	require.NoError(t, repo.Upsert(ctx, update))

	loaded, err := repo.Get(ctx, "chan-1", "user-1", "buy-1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.True(t, loaded.Shares.Equal(decimal.NewFromInt(5)))
	assert.True(t, loaded.Payed)
}

func TestInterestRepositoryListByBuyFiltersOtherBuys(t *testing.T) {
	repo := NewRepository(setupInterestsTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, testInterest("user-1", 1)))
	require.NoError(t, repo.Upsert(ctx, testInterest("user-2", 3)))

	other := testInterest("user-3", 4)
	other.BuyID = "buy-2"
	require.NoError(t, repo.Upsert(ctx, other))

	listed, err := repo.ListByBuy(ctx, "chan-1", "buy-1")
	require.NoError(t, err)
	require.Len(t, listed, 2)
	for _, interest := range listed {
		assert.Equal(t, "buy-1", interest.BuyID)
	}
}
