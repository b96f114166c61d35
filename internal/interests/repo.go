package interests

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sk2andy/mattermost-buy-bot/pkg/db/models"
)

// Repository exposes persistence for interests. A lookup miss returns
// (nil, nil); a member with no recorded interest is a valid state.
type Repository interface {
	Get(ctx context.Context, channelID, userID, buyID string) (*models.Interest, error)
	Upsert(ctx context.Context, interest *models.Interest) error
	ListByBuy(ctx context.Context, channelID, buyID string) ([]models.Interest, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns an interests repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) Get(ctx context.Context, channelID, userID, buyID string) (*models.Interest, error) {
	if channelID == "" || userID == "" || buyID == "" {
		return nil, nil
	}
	var interest models.Interest
	err := r.db.WithContext(ctx).
		Where("channel_id = ? AND user_id = ? AND buy_id = ?", channelID, userID, buyID).
		First(&interest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &interest, nil
}

// Upsert writes the interest, overwriting any existing row for the same
// (channel, user, buy) key. Last write wins.
func (r *repositoryImpl) Upsert(ctx context.Context, interest *models.Interest) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "channel_id"}, {Name: "user_id"}, {Name: "buy_id"}},
			UpdateAll: true,
		}).
		Create(interest).Error
}

// ListByBuy returns every interest recorded against the buy. Order is
// unspecified; consumers sort or present as-is.
func (r *repositoryImpl) ListByBuy(ctx context.Context, channelID, buyID string) ([]models.Interest, error) {
	var interests []models.Interest
	err := r.db.WithContext(ctx).
		Where("channel_id = ? AND buy_id = ?", channelID, buyID).
		Find(&interests).Error
	if err != nil {
		return nil, err
	}
	return interests, nil
}
