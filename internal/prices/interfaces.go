package prices

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/teleshopapp/teleshop-backend/pkg/db/models"
)

// PriceRepository defines the persistence surface for the price history.
type PriceRepository interface {
	WithTx(tx *gorm.DB) PriceRepository
	InsertPrice(ctx context.Context, price *models.GoodVariationPrice) (*models.GoodVariationPrice, error)
	StampLatest(ctx context.Context, variationID uuid.UUID, price *models.GoodVariationPrice) error
	ListByVariation(ctx context.Context, variationID uuid.UUID) ([]models.GoodVariationPrice, error)
}
