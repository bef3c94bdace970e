package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/teleshopapp/teleshop-backend/pkg/db/models"
)

// Repository exposes cart persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) CartRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindByUser loads all cart lines for a user with variations hydrated.
func (r *Repository) FindByUser(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	var items []models.CartItem
	err := r.db.WithContext(ctx).
		Preload("Variation").
		Preload("Variation.Good").
		Preload("Variation.Photos").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// FindByUserAndVariation loads one cart line.
func (r *Repository) FindByUserAndVariation(ctx context.Context, userID, variationID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND variation_id = ?", userID, variationID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Create inserts a new cart line.
func (r *Repository) Create(ctx context.Context, item *models.CartItem) (*models.CartItem, error) {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// Update saves the quantity on an existing line.
func (r *Repository) Update(ctx context.Context, item *models.CartItem) (*models.CartItem, error) {
	err := r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("user_id = ? AND variation_id = ?", item.UserID, item.VariationID).
		Update("quantity", item.Quantity).Error
	if err != nil {
		return nil, err
	}
	return item, nil
}

// Delete removes one cart line.
func (r *Repository) Delete(ctx context.Context, userID, variationID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND variation_id = ?", userID, variationID).
		Delete(&models.CartItem{}).Error
}

// DeleteByUser clears the whole cart.
func (r *Repository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.CartItem{}).Error
}
