package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/teleshopapp/teleshop-backend/pkg/enums"
)

// Good is a catalog entry; everything sellable hangs off its variations.
type Good struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Title       string          `gorm:"column:title;not null"`
	Description string          `gorm:"column:description;not null;default:''"`
	VATRate     enums.VATRate   `gorm:"column:vat_rate;type:text;not null;default:'vat_5'"`
	Variations  []GoodVariation `gorm:"foreignKey:GoodID;constraint:OnDelete:RESTRICT"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
