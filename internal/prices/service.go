package prices

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/teleshopapp/teleshop-backend/internal/goods"
	"github.com/teleshopapp/teleshop-backend/pkg/db/models"
	pkgerrors "github.com/teleshopapp/teleshop-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service owns the append-only price history and the denormalized latest
// price on each variation.
type Service interface {
	SetPrice(ctx context.Context, variationID uuid.UUID, priceCents int) (*models.GoodVariationPrice, error)
	History(ctx context.Context, variationID uuid.UUID) ([]models.GoodVariationPrice, error)
}

type service struct {
	repo      PriceRepository
	goodsRepo goods.GoodsRepository
	tx        txRunner
	now       func() time.Time
}

// NewService builds the pricing service.
func NewService(repo PriceRepository, goodsRepo goods.GoodsRepository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("price repository required")
	}
	if goodsRepo == nil {
		return nil, fmt.Errorf("goods repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:      repo,
		goodsRepo: goodsRepo,
		tx:        tx,
		now:       time.Now,
	}, nil
}

// SetPrice appends a history row and stamps the variation's latest price in
// one transaction. Existing orders keep their snapshot prices.
func (s *service) SetPrice(ctx context.Context, variationID uuid.UUID, priceCents int) (*models.GoodVariationPrice, error) {
	if priceCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
	}

	if _, err := s.goodsRepo.FindVariationByID(ctx, variationID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("variation %s not found", variationID))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading variation")
	}

	price := &models.GoodVariationPrice{
		VariationID: variationID,
		PriceCents:  priceCents,
		EffectiveAt: s.now(),
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.InsertPrice(ctx, price); err != nil {
			return err
		}
		return repo.StampLatest(ctx, variationID, price)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "setting price")
	}
	return price, nil
}

// History returns the price history for a variation, newest first.
func (s *service) History(ctx context.Context, variationID uuid.UUID) ([]models.GoodVariationPrice, error) {
	history, err := s.repo.ListByVariation(ctx, variationID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading price history")
	}
	return history, nil
}
