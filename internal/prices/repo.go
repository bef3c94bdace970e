package prices

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/teleshopapp/teleshop-backend/pkg/db/models"
)

// Repository exposes price-history persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a price repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) PriceRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// InsertPrice appends one history row. History is append-only.
func (r *Repository) InsertPrice(ctx context.Context, price *models.GoodVariationPrice) (*models.GoodVariationPrice, error) {
	if err := r.db.WithContext(ctx).Create(price).Error; err != nil {
		return nil, err
	}
	return price, nil
}

// StampLatest denormalizes the newest price onto the variation row.
func (r *Repository) StampLatest(ctx context.Context, variationID uuid.UUID, price *models.GoodVariationPrice) error {
	return r.db.WithContext(ctx).
		Model(&models.GoodVariation{}).
		Where("id = ?", variationID).
		Updates(map[string]any{
			"latest_price_cents": price.PriceCents,
			"latest_price_date":  price.EffectiveAt,
		}).Error
}

// ListByVariation returns the history newest first.
func (r *Repository) ListByVariation(ctx context.Context, variationID uuid.UUID) ([]models.GoodVariationPrice, error) {
	var history []models.GoodVariationPrice
	err := r.db.WithContext(ctx).
		Where("variation_id = ?", variationID).
		Order("effective_at DESC").
		Find(&history).Error
	if err != nil {
		return nil, err
	}
	return history, nil
}
