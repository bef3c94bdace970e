package models

import (
	"time"

	"github.com/google/uuid"
)

// GoodVariationPrice is an append-only price history row. The matching
// latest_price_cents on the variation is denormalized for read paths.
type GoodVariationPrice struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	VariationID uuid.UUID `gorm:"column:variation_id;type:uuid;not null;index"`
	PriceCents  int       `gorm:"column:price_cents;not null"`
	EffectiveAt time.Time `gorm:"column:effective_at;not null"`
}
