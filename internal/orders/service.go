package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/teleshopapp/teleshop-backend/pkg/db/models"
	"github.com/teleshopapp/teleshop-backend/pkg/enums"
	pkgerrors "github.com/teleshopapp/teleshop-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type variationBatchLoader interface {
	FindVariationsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.GoodVariation, error)
}

type cartClearer interface {
	ClearTx(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error
}

type shipmentStatusReader interface {
	GetStatus(ctx context.Context, order *models.Order) (enums.DeliveryStatus, error)
}

// Service exposes order creation and reads. Orders are immutable snapshots:
// every line carries the unit price at creation time.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, input CreateInput) (*models.Order, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	GetOwned(ctx context.Context, id, userID uuid.UUID) (*models.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
	GetStatus(ctx context.Context, id, userID uuid.UUID) (*enums.DeliveryStatus, error)
}

// CreateInput is the order-creation payload.
type CreateInput struct {
	Items             []LineInput
	DeliveryMethod    enums.DeliveryMethod
	DeliveryPointCode string
}

// LineInput is one requested order line.
type LineInput struct {
	VariationID uuid.UUID
	Quantity    int
}

type service struct {
	repo       OrderRepository
	variations variationBatchLoader
	cart       cartClearer
	shipments  shipmentStatusReader
	tx         txRunner
}

// NewService builds the order service.
func NewService(repo OrderRepository, variations variationBatchLoader, cart cartClearer, shipments shipmentStatusReader, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if variations == nil {
		return nil, fmt.Errorf("variation loader required")
	}
	if cart == nil {
		return nil, fmt.Errorf("cart clearer required")
	}
	if shipments == nil {
		return nil, fmt.Errorf("shipment status reader required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:       repo,
		variations: variations,
		cart:       cart,
		shipments:  shipments,
		tx:         tx,
	}, nil
}

// Create validates every line against the catalog, snapshots prices, and
// inserts the order with its details while clearing the user's cart in the
// same transaction. Any unknown variation or missing price aborts the whole
// call with nothing persisted.
func (s *service) Create(ctx context.Context, userID uuid.UUID, input CreateInput) (*models.Order, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order must contain at least one line")
	}
	if !input.DeliveryMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid delivery method %q", input.DeliveryMethod))
	}
	if strings.TrimSpace(input.DeliveryPointCode) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery point code is required")
	}

	ids := make([]uuid.UUID, 0, len(input.Items))
	quantities := make(map[uuid.UUID]int, len(input.Items))
	for _, line := range input.Items {
		if line.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("quantity for variation %s must be positive", line.VariationID))
		}
		if _, dup := quantities[line.VariationID]; dup {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("variation %s listed twice", line.VariationID))
		}
		quantities[line.VariationID] = line.Quantity
		ids = append(ids, line.VariationID)
	}

	variations, err := s.variations.FindVariationsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]models.GoodVariation, len(variations))
	for _, variation := range variations {
		byID[variation.ID] = variation
	}

	var missing, unpriced []string
	for _, id := range ids {
		variation, ok := byID[id]
		if !ok {
			missing = append(missing, id.String())
			continue
		}
		if !variation.HasPrice() {
			unpriced = append(unpriced, id.String())
		}
	}
	if len(missing) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("unknown variations: %s", strings.Join(missing, ", ")))
	}
	if len(unpriced) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("variations without a price: %s", strings.Join(unpriced, ", ")))
	}

	order := &models.Order{
		UserID:            userID,
		Currency:          enums.CurrencyRUB,
		DeliveryMethod:    input.DeliveryMethod,
		DeliveryPointCode: strings.TrimSpace(input.DeliveryPointCode),
	}
	for _, id := range ids {
		variation := byID[id]
		order.Details = append(order.Details, models.OrderDetail{
			VariationID:    id,
			Quantity:       quantities[id],
			UnitPriceCents: *variation.LatestPriceCents,
		})
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.repo.WithTx(tx).Create(ctx, order); err != nil {
			return err
		}
		return s.cart.ClearTx(ctx, tx, userID)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating order")
	}
	return order, nil
}

// GetByID loads the hydrated order or returns a typed not-found error.
func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("order %s not found", id))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}
	return order, nil
}

// GetOwned loads the order and enforces ownership.
func (s *service) GetOwned(ctx context.Context, id, userID uuid.UUID) (*models.Order, error) {
	order, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another user")
	}
	return order, nil
}

// GetStatus reports the shipment status for an owned order. A nil status
// means the carrier cannot report one yet; carrier outages degrade to nil
// instead of failing the read.
func (s *service) GetStatus(ctx context.Context, id, userID uuid.UUID) (*enums.DeliveryStatus, error) {
	order, err := s.GetOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	status, err := s.shipments.GetStatus(ctx, order)
	if err != nil {
		return nil, nil
	}
	return &status, nil
}

// ListByUser returns the user's orders, newest first.
func (s *service) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	list, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing orders")
	}
	return list, nil
}
