package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Interest records one member's commitment to a buy. At most one row exists
// per (channel, user, buy); resubmission overwrites it. The payed flag is
// flipped by the organizer's confirm/reject action only.
type Interest struct {
	ChannelID string          `gorm:"column:channel_id;primaryKey"`
	UserID    string          `gorm:"column:user_id;primaryKey"`
	BuyID     string          `gorm:"column:buy_id;primaryKey;index:interests_buy_id_idx"`
	Shares    decimal.Decimal `gorm:"column:shares;type:numeric(12,3);not null"`
	Email     string          `gorm:"column:email;not null"`
	Payed     bool            `gorm:"column:payed;not null;default:false"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (Interest) TableName() string {
	return "interests"
}
