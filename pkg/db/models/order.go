package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/teleshopapp/teleshop-backend/pkg/enums"
)

// Order is created atomically with its details and is immutable afterwards,
// except for the carrier order reference set after label creation.
type Order struct {
	ID                uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID            uuid.UUID            `gorm:"column:user_id;type:uuid;not null;index"`
	Currency          enums.Currency       `gorm:"column:currency;type:text;not null;default:'RUB'"`
	DeliveryMethod    enums.DeliveryMethod `gorm:"column:delivery_method;type:text;not null"`
	DeliveryPointCode string               `gorm:"column:delivery_point_code;not null"`
	CarrierOrderID    *string              `gorm:"column:carrier_order_id"`

	User     *User         `gorm:"foreignKey:UserID"`
	Details  []OrderDetail `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Payments []Payment     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// AmountCents sums the snapshot line amounts.
func (o Order) AmountCents() int {
	total := 0
	for _, detail := range o.Details {
		total += detail.AmountCents()
	}
	return total
}

// Description renders the human-readable order summary used by payment
// providers ("Заказ №..." style is left to the caller; this is the line list).
func (o Order) Description() string {
	lines := make([]string, 0, len(o.Details))
	for _, detail := range o.Details {
		if detail.Variation == nil {
			continue
		}
		lines = append(lines, detail.Variation.ReceiptDescription())
	}
	return strings.Join(lines, ", ")
}

// HasSuccessfulPayment reports whether any payment attempt already succeeded.
func (o Order) HasSuccessfulPayment() bool {
	for _, payment := range o.Payments {
		if payment.Status == enums.PaymentStatusSuccess {
			return true
		}
	}
	return false
}
