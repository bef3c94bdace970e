package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/teleshopapp/teleshop-backend/pkg/enums"
)

// Payment is one payment-link attempt. Its id doubles as the idempotency key
// sent to the provider, which is how webhook callbacks correlate back.
// A partial unique index (payments_order_success_uniq) guarantees at most one
// success per order at the storage layer.
type Payment struct {
	ID      uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	OrderID uuid.UUID           `gorm:"column:order_id;type:uuid;not null;index"`
	Method  enums.PaymentMethod `gorm:"column:method;type:text;not null"`
	Status  enums.PaymentStatus `gorm:"column:status;type:text;not null;default:'created'"`
	Link    string              `gorm:"column:link;not null;default:''"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
