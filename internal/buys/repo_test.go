package buys

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sk2andy/mattermost-buy-bot/pkg/db/models"
	"github.com/sk2andy/mattermost-buy-bot/pkg/enums"
)

func setupBuysTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.Exec(`DROP TABLE IF EXISTS buys`).Error)
	require.NoError(t, db.Exec(`
CREATE TABLE buys (
  channel_id TEXT NOT NULL,
  buy_id TEXT NOT NULL,
  creator_user_id TEXT NOT NULL,
  name TEXT NOT NULL,
  description TEXT,
  unit TEXT NOT NULL,
  share_size NUMERIC NOT NULL,
  price_per_share NUMERIC NOT NULL,
  org_fee NUMERIC,
  lab_fee NUMERIC,
  half_shares_allowed INTEGER NOT NULL DEFAULT 0,
  closed INTEGER NOT NULL DEFAULT 0,
  closed_at DATETIME,
  paypal TEXT,
  usdc_wallet TEXT,
  wise_id TEXT,
  created_at DATETIME,
  updated_at DATETIME,
  PRIMARY KEY (channel_id, buy_id)
);`).Error)

	return db
}

func testBuy(channelID, buyID string) *models.Buy {
	return &models.Buy{
		ChannelID:     channelID,
		BuyID:         buyID,
		CreatorUserID: "creator-1",
		Name:          "Vitamin C Bulk",
		Unit:          enums.ShareUnitGram,
		ShareSize:     decimal.NewFromInt(100),
		PricePerShare: decimal.NewFromInt(10),
	}
}

func TestBuyRepositoryGetMissReturnsNil(t *testing.T) {
	repo := NewRepository(setupBuysTestDB(t))

	buy, err := repo.Get(context.Background(), "chan-1", "missing")
	require.NoError(t, err)
	assert.Nil(t, buy)

	buy, err = repo.Get(context.Background(), "", "buy-1")
	require.NoError(t, err)
	assert.Nil(t, buy)
}

func TestBuyRepositoryUpsertInsertsThenOverwrites(t *testing.T) {
	repo := NewRepository(setupBuysTestDB(t))
	ctx := context.Background()

	buy := testBuy("chan-1", "buy-1")
	require.NoError(t, repo.Upsert(ctx, buy))

	loaded, err := repo.Get(ctx, "chan-1", "buy-1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "Vitamin C Bulk", loaded.Name)
	assert.True(t, loaded.ShareSize.Equal(decimal.NewFromInt(100)))

	now := time.Now().UTC()
	update := testBuy("chan-1", "buy-1")
	update.Name = "Vitamin C Bulk (v2)"
	update.Closed = true
	update.ClosedAt = &now
	paypal := "alice"
	update.Paypal = &paypal
	require.NoError(t, repo.Upsert(ctx, update))

	loaded, err = repo.Get(ctx, "chan-1", "buy-1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "Vitamin C Bulk (v2)", loaded.Name)
	assert.True(t, loaded.Closed)
	require.NotNil(t, loaded.Paypal)
	assert.Equal(t, "alice", *loaded.Paypal)
}

func TestBuyRepositoryKeysAreChannelScoped(t *testing.T) {
	repo := NewRepository(setupBuysTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, testBuy("chan-1", "buy-1")))
	require.NoError(t, repo.Upsert(ctx, testBuy("chan-2", "buy-1")))

	first, err := repo.Get(ctx, "chan-1", "buy-1")
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := repo.Get(ctx, "chan-2", "buy-1")
	require.NoError(t, err)
	require.NotNil(t, second)
}
