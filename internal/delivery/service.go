package delivery

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/teleshopapp/teleshop-backend/internal/orders"
	"github.com/teleshopapp/teleshop-backend/pkg/db/models"
	"github.com/teleshopapp/teleshop-backend/pkg/enums"
	pkgerrors "github.com/teleshopapp/teleshop-backend/pkg/errors"
	"github.com/teleshopapp/teleshop-backend/pkg/logger"
)

type orderStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	SetCarrierRef(ctx context.Context, id uuid.UUID, carrierOrderID string) error
}

var _ orderStore = (orders.OrderRepository)(nil)

// Service owns the delivery workflow: checkout lookups, post-payment shipment
// creation, and order status reads. It is the sole owner of outbound carrier
// calls.
type Service interface {
	Methods() []MethodInfo
	GetCountries(ctx context.Context, method enums.DeliveryMethod) ([]Country, error)
	GetCities(ctx context.Context, method enums.DeliveryMethod, filter CityFilter) ([]City, error)
	GetDeliveryPoints(ctx context.Context, method enums.DeliveryMethod, filter DeliveryPointFilter) ([]DeliveryPoint, error)
	GetDeliveryPointInfo(ctx context.Context, method enums.DeliveryMethod, code string) (*DeliveryPoint, error)
	PrepareShipment(ctx context.Context, orderID uuid.UUID) (string, error)
	GetStatus(ctx context.Context, order *models.Order) (enums.DeliveryStatus, error)
}

type service struct {
	store    orderStore
	registry *Registry
	logg     *logger.Logger
}

// NewService builds the delivery service.
func NewService(store orderStore, registry *Registry, logg *logger.Logger) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("order store required")
	}
	if registry == nil {
		return nil, fmt.Errorf("delivery registry required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{store: store, registry: registry, logg: logg}, nil
}

// Methods lists the registered delivery methods.
func (s *service) Methods() []MethodInfo {
	return s.registry.List()
}

func (s *service) GetCountries(ctx context.Context, method enums.DeliveryMethod) ([]Country, error) {
	driver, err := s.registry.Get(method)
	if err != nil {
		return nil, err
	}
	return driver.GetCountries(ctx), nil
}

func (s *service) GetCities(ctx context.Context, method enums.DeliveryMethod, filter CityFilter) ([]City, error) {
	driver, err := s.registry.Get(method)
	if err != nil {
		return nil, err
	}
	return driver.GetCities(ctx, filter)
}

func (s *service) GetDeliveryPoints(ctx context.Context, method enums.DeliveryMethod, filter DeliveryPointFilter) ([]DeliveryPoint, error) {
	driver, err := s.registry.Get(method)
	if err != nil {
		return nil, err
	}
	return driver.GetDeliveryPoints(ctx, filter)
}

// GetDeliveryPointInfo resolves a pickup point. An unknown code yields
// (nil, nil) so read-path enrichment can degrade instead of erroring.
func (s *service) GetDeliveryPointInfo(ctx context.Context, method enums.DeliveryMethod, code string) (*DeliveryPoint, error) {
	driver, err := s.registry.Get(method)
	if err != nil {
		return nil, err
	}

	point, err := driver.GetDeliveryPointInfo(ctx, code)
	if err != nil {
		var typed *pkgerrors.Error
		if pkgerrors.As(err, &typed) && typed.Code() == pkgerrors.CodeNotFound {
			return nil, nil
		}
		return nil, err
	}
	return point, nil
}

// PrepareShipment registers the carrier order for a paid order and persists
// the carrier reference. Re-invocation for an order that already has a
// reference returns it without a second carrier call.
func (s *service) PrepareShipment(ctx context.Context, orderID uuid.UUID) (string, error) {
	order, err := s.store.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("order %s not found", orderID))
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}

	if order.CarrierOrderID != nil && *order.CarrierOrderID != "" {
		return *order.CarrierOrderID, nil
	}

	driver, err := s.registry.Get(order.DeliveryMethod)
	if err != nil {
		return "", err
	}

	carrierOrderID, err := driver.CreateShipment(ctx, order)
	if err != nil {
		var typed *pkgerrors.Error
		if pkgerrors.As(err, &typed) {
			return "", err
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "carrier shipment creation")
	}

	if err := s.store.SetCarrierRef(ctx, order.ID, carrierOrderID); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persisting carrier reference")
	}

	ctx = s.logg.WithOrderID(ctx, order.ID.String())
	s.logg.Info(s.logg.WithField(ctx, "carrier_order_id", carrierOrderID), "carrier shipment created")
	return carrierOrderID, nil
}

// GetStatus reports the carrier-agnostic shipment state for the order.
func (s *service) GetStatus(ctx context.Context, order *models.Order) (enums.DeliveryStatus, error) {
	if order == nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "order required")
	}
	driver, err := s.registry.Get(order.DeliveryMethod)
	if err != nil {
		return "", err
	}
	return driver.GetStatus(ctx, order)
}
