package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// GoodVariation is the sellable unit: a SKU under a parent good with its own
// price and shipping dimensions. A nil LatestPriceCents means "no price set";
// such variations cannot be ordered.
type GoodVariation struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	GoodID      uuid.UUID  `gorm:"column:good_id;type:uuid;not null"`
	Title       string     `gorm:"column:title;not null"`
	Description string     `gorm:"column:description;not null;default:''"`

	LatestPriceCents *int       `gorm:"column:latest_price_cents"`
	LatestPriceDate  *time.Time `gorm:"column:latest_price_date"`

	WeightKG float64 `gorm:"column:weight_kg;not null;default:0"`
	LengthCM float64 `gorm:"column:length_cm;not null;default:0"`
	WidthCM  float64 `gorm:"column:width_cm;not null;default:0"`
	HeightCM float64 `gorm:"column:height_cm;not null;default:0"`

	Good   *Good                `gorm:"foreignKey:GoodID"`
	Photos []GoodVariationPhoto `gorm:"foreignKey:VariationID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// HasPrice reports whether the variation can be ordered.
func (v GoodVariation) HasPrice() bool {
	return v.LatestPriceCents != nil
}

// ReceiptDescription renders the line shown on fiscal receipts.
func (v GoodVariation) ReceiptDescription() string {
	if v.Good == nil || v.Good.Title == v.Title {
		return v.Title
	}
	return fmt.Sprintf("%s / %s", v.Good.Title, v.Title)
}
