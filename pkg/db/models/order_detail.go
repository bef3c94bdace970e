package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderDetail snapshots one line item. UnitPriceCents is the variation's
// latest price at order-creation time; later catalog price changes must not
// affect historical orders.
type OrderDetail struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID        uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`
	VariationID    uuid.UUID `gorm:"column:variation_id;type:uuid;not null"`
	Quantity       int       `gorm:"column:quantity;not null"`
	UnitPriceCents int       `gorm:"column:unit_price_cents;not null"`

	Variation *GoodVariation `gorm:"foreignKey:VariationID;constraint:OnDelete:RESTRICT"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// AmountCents is the line total.
func (d OrderDetail) AmountCents() int {
	return d.UnitPriceCents * d.Quantity
}
