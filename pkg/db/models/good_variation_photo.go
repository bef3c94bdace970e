package models

import (
	"time"

	"github.com/google/uuid"
)

// GoodVariationPhoto stores a single product image reference.
type GoodVariationPhoto struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	VariationID uuid.UUID `gorm:"column:variation_id;type:uuid;not null"`
	URL         string    `gorm:"column:url;not null"`
	IsMain      bool      `gorm:"column:is_main;not null;default:false"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}
