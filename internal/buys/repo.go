package buys

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sk2andy/mattermost-buy-bot/pkg/db/models"
)

// Repository exposes persistence for buys. A lookup miss is a normal outcome
// and returns (nil, nil); callers treat absence as valid state.
type Repository interface {
	Get(ctx context.Context, channelID, buyID string) (*models.Buy, error)
	Upsert(ctx context.Context, buy *models.Buy) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a buys repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) Get(ctx context.Context, channelID, buyID string) (*models.Buy, error) {
	if channelID == "" || buyID == "" {
		return nil, nil
	}
	var buy models.Buy
	err := r.db.WithContext(ctx).
		Where("channel_id = ? AND buy_id = ?", channelID, buyID).
		First(&buy).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &buy, nil
}

// Upsert writes the buy, replacing any existing row with the same composite
// key. Last write wins; there is no version check.
func (r *repositoryImpl) Upsert(ctx context.Context, buy *models.Buy) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "channel_id"}, {Name: "buy_id"}},
			UpdateAll: true,
		}).
		Create(buy).Error
}
