package payments

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/teleshopapp/teleshop-backend/pkg/db/models"
	"github.com/teleshopapp/teleshop-backend/pkg/enums"
)

// PaymentRepository defines the persistence surface for payment attempts.
type PaymentRepository interface {
	WithTx(tx *gorm.DB) PaymentRepository
	Create(ctx context.Context, payment *models.Payment) (*models.Payment, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	HasSuccessForOrder(ctx context.Context, orderID uuid.UUID) (bool, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.PaymentStatus) error
}

// Driver is one payment-gateway integration. The set of drivers is closed:
// the registry maps each enums.PaymentMethod to exactly one implementation.
type Driver interface {
	Method() enums.PaymentMethod
	DisplayName() string
	// CreatePaymentLink registers the payment provider-side using the local
	// payment id as the idempotency key and returns the redirect link.
	CreatePaymentLink(ctx context.Context, order *models.Order, payment *models.Payment) (string, error)
	// ParseWebhook extracts the local payment id and resulting status from a
	// provider callback body.
	ParseWebhook(body []byte) (uuid.UUID, enums.PaymentStatus, error)
}
