package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/teleshopapp/teleshop-backend/pkg/db/models"
)

// CartRepository defines the persistence surface for cart lines.
type CartRepository interface {
	WithTx(tx *gorm.DB) CartRepository
	FindByUser(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error)
	FindByUserAndVariation(ctx context.Context, userID, variationID uuid.UUID) (*models.CartItem, error)
	Create(ctx context.Context, item *models.CartItem) (*models.CartItem, error)
	Update(ctx context.Context, item *models.CartItem) (*models.CartItem, error)
	Delete(ctx context.Context, userID, variationID uuid.UUID) error
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
}
