package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/sk2andy/mattermost-buy-bot/pkg/enums"
)

// Buy is one organized group purchase, unique per channel. Payment destination
// fields stay empty until the organizer closes the buy; any subset may remain
// empty, meaning the details follow later.
type Buy struct {
	ChannelID         string              `gorm:"column:channel_id;primaryKey"`
	BuyID             string              `gorm:"column:buy_id;primaryKey"`
	CreatorUserID     string              `gorm:"column:creator_user_id;not null"`
	Name              string              `gorm:"column:name;not null"`
	Description       *string             `gorm:"column:description"`
	Unit              enums.ShareUnit     `gorm:"column:unit;not null"`
	ShareSize         decimal.Decimal     `gorm:"column:share_size;type:numeric(12,3);not null"`
	PricePerShare     decimal.Decimal     `gorm:"column:price_per_share;type:numeric(12,2);not null"`
	OrgFee            decimal.NullDecimal `gorm:"column:org_fee;type:numeric(12,2)"`
	LabFee            decimal.NullDecimal `gorm:"column:lab_fee;type:numeric(12,2)"`
	HalfSharesAllowed bool                `gorm:"column:half_shares_allowed;not null;default:false"`
	Closed            bool                `gorm:"column:closed;not null;default:false"`
	ClosedAt          *time.Time          `gorm:"column:closed_at"`
	Paypal            *string             `gorm:"column:paypal"`
	USDCWallet        *string             `gorm:"column:usdc_wallet"`
	WiseID            *string             `gorm:"column:wise_id"`
	CreatedAt         time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (Buy) TableName() string {
	return "buys"
}

// AmountToPay computes the total a member owes for the given share count.
// Flat fees apply once per interest, not per share.
func (b Buy) AmountToPay(shares decimal.Decimal) decimal.Decimal {
	amount := shares.Mul(b.PricePerShare)
	if b.OrgFee.Valid {
		amount = amount.Add(b.OrgFee.Decimal)
	}
	if b.LabFee.Valid {
		amount = amount.Add(b.LabFee.Decimal)
	}
	return amount
}

// HasPaymentDetails reports whether at least one payment destination is set.
func (b Buy) HasPaymentDetails() bool {
	return strPresent(b.Paypal) || strPresent(b.USDCWallet) || strPresent(b.WiseID)
}

func strPresent(s *string) bool {
	return s != nil && *s != ""
}
