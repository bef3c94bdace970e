package goods

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/teleshopapp/teleshop-backend/pkg/db/models"
	"github.com/teleshopapp/teleshop-backend/pkg/pagination"
)

// Repository exposes catalog persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) GoodsRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// CreateGood inserts a new good.
func (r *Repository) CreateGood(ctx context.Context, good *models.Good) (*models.Good, error) {
	if err := r.db.WithContext(ctx).Create(good).Error; err != nil {
		return nil, err
	}
	return good, nil
}

// CreateVariation inserts a new variation under an existing good.
func (r *Repository) CreateVariation(ctx context.Context, variation *models.GoodVariation) (*models.GoodVariation, error) {
	if err := r.db.WithContext(ctx).Create(variation).Error; err != nil {
		return nil, err
	}
	return variation, nil
}

// FindGoodByID loads a good with its variations and photos.
func (r *Repository) FindGoodByID(ctx context.Context, id uuid.UUID) (*models.Good, error) {
	var good models.Good
	err := r.db.WithContext(ctx).
		Preload("Variations").
		Preload("Variations.Photos").
		First(&good, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &good, nil
}

// FindVariationByID loads a variation with its parent good and photos.
func (r *Repository) FindVariationByID(ctx context.Context, id uuid.UUID) (*models.GoodVariation, error) {
	var variation models.GoodVariation
	err := r.db.WithContext(ctx).
		Preload("Good").
		Preload("Photos").
		First(&variation, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &variation, nil
}

// FindVariationsByIDs batch-loads variations with parent goods. Missing ids
// are simply absent from the result; callers decide whether that is an error.
func (r *Repository) FindVariationsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.GoodVariation, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var variations []models.GoodVariation
	err := r.db.WithContext(ctx).
		Preload("Good").
		Where("id IN ?", ids).
		Find(&variations).Error
	if err != nil {
		return nil, err
	}
	return variations, nil
}

// ListGoods returns a page of goods ordered newest first.
func (r *Repository) ListGoods(ctx context.Context, limit int, cursor *pagination.Cursor) ([]models.Good, error) {
	query := r.db.WithContext(ctx).
		Preload("Variations").
		Preload("Variations.Photos").
		Order("created_at DESC, id DESC").
		Limit(limit)
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var goods []models.Good
	if err := query.Find(&goods).Error; err != nil {
		return nil, err
	}
	return goods, nil
}
