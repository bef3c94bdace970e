package models

import (
	"time"

	"github.com/google/uuid"
)

// CartItem holds one (user, variation) selection. At most one row exists per
// pair; quantity is always >= 1 because a decrement to zero deletes the row.
type CartItem struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID      uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:cart_items_user_variation_uniq"`
	VariationID uuid.UUID `gorm:"column:variation_id;type:uuid;not null;uniqueIndex:cart_items_user_variation_uniq"`
	Quantity    int       `gorm:"column:quantity;not null;default:1"`

	Variation *GoodVariation `gorm:"foreignKey:VariationID"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
