package goods

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/teleshopapp/teleshop-backend/pkg/db/models"
	"github.com/teleshopapp/teleshop-backend/pkg/pagination"
)

// GoodsRepository defines the persistence surface for the catalog.
type GoodsRepository interface {
	WithTx(tx *gorm.DB) GoodsRepository
	CreateGood(ctx context.Context, good *models.Good) (*models.Good, error)
	CreateVariation(ctx context.Context, variation *models.GoodVariation) (*models.GoodVariation, error)
	FindGoodByID(ctx context.Context, id uuid.UUID) (*models.Good, error)
	FindVariationByID(ctx context.Context, id uuid.UUID) (*models.GoodVariation, error)
	FindVariationsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.GoodVariation, error)
	ListGoods(ctx context.Context, limit int, cursor *pagination.Cursor) ([]models.Good, error)
}
