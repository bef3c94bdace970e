package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/teleshopapp/teleshop-backend/internal/goods"
	"github.com/teleshopapp/teleshop-backend/pkg/db/models"
	pkgerrors "github.com/teleshopapp/teleshop-backend/pkg/errors"
)

type variationLoader interface {
	GetVariation(ctx context.Context, id uuid.UUID) (*models.GoodVariation, error)
}

// Service exposes per-user cart operations. Quantities live on a single row
// per (user, variation); adds accumulate and deletes decrement.
type Service interface {
	AddToCart(ctx context.Context, userID, variationID uuid.UUID, quantity int) (*models.CartItem, error)
	DeleteFromCart(ctx context.Context, userID, variationID uuid.UUID, quantity int) error
	Get(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error)
	Clear(ctx context.Context, userID uuid.UUID) error
	ClearTx(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error
}

type service struct {
	repo       CartRepository
	variations variationLoader
}

// NewService builds the cart service.
func NewService(repo CartRepository, variations variationLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if variations == nil {
		return nil, fmt.Errorf("variation loader required")
	}
	return &service{repo: repo, variations: variations}, nil
}

// AddToCart increments the line for the variation, creating it when absent.
func (s *service) AddToCart(ctx context.Context, userID, variationID uuid.UUID, quantity int) (*models.CartItem, error) {
	if quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if _, err := s.variations.GetVariation(ctx, variationID); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByUserAndVariation(ctx, userID, variationID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart line")
		}
		created, err := s.repo.Create(ctx, &models.CartItem{
			UserID:      userID,
			VariationID: variationID,
			Quantity:    quantity,
		})
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating cart line")
		}
		return created, nil
	}

	existing.Quantity += quantity
	updated, err := s.repo.Update(ctx, existing)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating cart line")
	}
	return updated, nil
}

// DeleteFromCart decrements the line; at zero or below the row is removed.
func (s *service) DeleteFromCart(ctx context.Context, userID, variationID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	existing, err := s.repo.FindByUserAndVariation(ctx, userID, variationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart line")
	}

	remaining := existing.Quantity - quantity
	if remaining <= 0 {
		if err := s.repo.Delete(ctx, userID, variationID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "removing cart line")
		}
		return nil
	}

	existing.Quantity = remaining
	if _, err := s.repo.Update(ctx, existing); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating cart line")
	}
	return nil
}

// Get returns the hydrated cart, oldest line first.
func (s *service) Get(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	items, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart")
	}
	return items, nil
}

// Clear removes all lines for the user.
func (s *service) Clear(ctx context.Context, userID uuid.UUID) error {
	if err := s.repo.DeleteByUser(ctx, userID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clearing cart")
	}
	return nil
}

// ClearTx removes all lines inside the caller's transaction. Order creation
// uses this so the cart empties atomically with the order insert.
func (s *service) ClearTx(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "transaction required")
	}
	if err := s.repo.WithTx(tx).DeleteByUser(ctx, userID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clearing cart")
	}
	return nil
}

var _ variationLoader = (goods.Service)(nil)
