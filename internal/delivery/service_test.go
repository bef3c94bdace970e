package delivery

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/teleshopapp/teleshop-backend/pkg/db/models"
	"github.com/teleshopapp/teleshop-backend/pkg/enums"
	pkgerrors "github.com/teleshopapp/teleshop-backend/pkg/errors"
	"github.com/teleshopapp/teleshop-backend/pkg/logger"
)

type stubOrderStore struct {
	orders      map[uuid.UUID]*models.Order
	carrierRefs map[uuid.UUID]string
}

func newStubOrderStore() *stubOrderStore {
	return &stubOrderStore{
		orders:      map[uuid.UUID]*models.Order{},
		carrierRefs: map[uuid.UUID]string{},
	}
}

func (s *stubOrderStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if order, ok := s.orders[id]; ok {
		return order, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubOrderStore) SetCarrierRef(ctx context.Context, id uuid.UUID, carrierOrderID string) error {
	s.carrierRefs[id] = carrierOrderID
	return nil
}

type stubDriver struct {
	method        enums.DeliveryMethod
	shipmentCalls int
	carrierID     string
	shipmentErr   error
	pointInfo     *DeliveryPoint
	pointErr      error
	status        enums.DeliveryStatus
}

func (d *stubDriver) Method() enums.DeliveryMethod { return d.method }
func (d *stubDriver) DisplayName() string          { return "Stub Carrier" }

func (d *stubDriver) GetCountries(ctx context.Context) []Country {
	return []Country{{Name: "Россия", Code: "RU"}}
}

func (d *stubDriver) GetCities(ctx context.Context, filter CityFilter) ([]City, error) {
	return []City{{Code: 44, Name: "Москва"}}, nil
}

func (d *stubDriver) GetDeliveryPoints(ctx context.Context, filter DeliveryPointFilter) ([]DeliveryPoint, error) {
	return []DeliveryPoint{{Code: "MSK123"}}, nil
}

func (d *stubDriver) GetDeliveryPointInfo(ctx context.Context, code string) (*DeliveryPoint, error) {
	if d.pointErr != nil {
		return nil, d.pointErr
	}
	return d.pointInfo, nil
}

func (d *stubDriver) CreateShipment(ctx context.Context, order *models.Order) (string, error) {
	d.shipmentCalls++
	if d.shipmentErr != nil {
		return "", d.shipmentErr
	}
	return d.carrierID, nil
}

func (d *stubDriver) GetStatus(ctx context.Context, order *models.Order) (enums.DeliveryStatus, error) {
	return d.status, nil
}

func newTestService(t *testing.T, store *stubOrderStore, driver *stubDriver) Service {
	t.Helper()
	registry, err := NewRegistry(driver)
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	logg := logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("error")})
	svc, err := NewService(store, registry, logg)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestPrepareShipmentPersistsCarrierRef(t *testing.T) {
	store := newStubOrderStore()
	driver := &stubDriver{method: enums.DeliveryMethodCDEK, carrierID: "carrier-1"}
	svc := newTestService(t, store, driver)

	order := &models.Order{ID: uuid.New(), DeliveryMethod: enums.DeliveryMethodCDEK}
	store.orders[order.ID] = order

	ref, err := svc.PrepareShipment(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("prepare shipment: %v", err)
	}
	if ref != "carrier-1" {
		t.Fatalf("expected carrier-1, got %q", ref)
	}
	if store.carrierRefs[order.ID] != "carrier-1" {
		t.Fatal("expected carrier ref persisted")
	}
}

func TestPrepareShipmentIdempotentForExistingRef(t *testing.T) {
	store := newStubOrderStore()
	driver := &stubDriver{method: enums.DeliveryMethodCDEK, carrierID: "carrier-2"}
	svc := newTestService(t, store, driver)

	existing := "carrier-already"
	order := &models.Order{ID: uuid.New(), DeliveryMethod: enums.DeliveryMethodCDEK, CarrierOrderID: &existing}
	store.orders[order.ID] = order

	ref, err := svc.PrepareShipment(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("prepare shipment: %v", err)
	}
	if ref != existing {
		t.Fatalf("expected existing ref, got %q", ref)
	}
	if driver.shipmentCalls != 0 {
		t.Fatal("expected no carrier call for already-shipped order")
	}
}

func TestPrepareShipmentUnknownOrder(t *testing.T) {
	svc := newTestService(t, newStubOrderStore(), &stubDriver{method: enums.DeliveryMethodCDEK})

	_, err := svc.PrepareShipment(context.Background(), uuid.New())
	var typed *pkgerrors.Error
	if !pkgerrors.As(err, &typed) || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestPrepareShipmentCarrierFailureLeavesNoRef(t *testing.T) {
	store := newStubOrderStore()
	driver := &stubDriver{
		method:      enums.DeliveryMethodCDEK,
		shipmentErr: pkgerrors.New(pkgerrors.CodeDependency, "carrier down"),
	}
	svc := newTestService(t, store, driver)

	order := &models.Order{ID: uuid.New(), DeliveryMethod: enums.DeliveryMethodCDEK}
	store.orders[order.ID] = order

	_, err := svc.PrepareShipment(context.Background(), order.ID)
	var typed *pkgerrors.Error
	if !pkgerrors.As(err, &typed) || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected DEPENDENCY_ERROR, got %v", err)
	}
	if _, ok := store.carrierRefs[order.ID]; ok {
		t.Fatal("expected no carrier ref persisted on failure")
	}
}

func TestGetDeliveryPointInfoDegradesOnUnknownCode(t *testing.T) {
	driver := &stubDriver{
		method:   enums.DeliveryMethodCDEK,
		pointErr: pkgerrors.New(pkgerrors.CodeNotFound, "delivery point not found"),
	}
	svc := newTestService(t, newStubOrderStore(), driver)

	point, err := svc.GetDeliveryPointInfo(context.Background(), enums.DeliveryMethodCDEK, "NOPE")
	if err != nil {
		t.Fatalf("expected graceful nil, got error %v", err)
	}
	if point != nil {
		t.Fatalf("expected nil point, got %+v", point)
	}
}

func TestGetDeliveryPointInfoPropagatesCarrierErrors(t *testing.T) {
	driver := &stubDriver{
		method:   enums.DeliveryMethodCDEK,
		pointErr: pkgerrors.New(pkgerrors.CodeDependency, "carrier down"),
	}
	svc := newTestService(t, newStubOrderStore(), driver)

	_, err := svc.GetDeliveryPointInfo(context.Background(), enums.DeliveryMethodCDEK, "MSK123")
	var typed *pkgerrors.Error
	if !pkgerrors.As(err, &typed) || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected DEPENDENCY_ERROR, got %v", err)
	}
}

func TestLookupsRejectUnsupportedMethod(t *testing.T) {
	svc := newTestService(t, newStubOrderStore(), &stubDriver{method: enums.DeliveryMethodCDEK})

	_, err := svc.GetCountries(context.Background(), enums.DeliveryMethod("pigeon"))
	var typed *pkgerrors.Error
	if !pkgerrors.As(err, &typed) || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestGetStatusDelegatesToDriver(t *testing.T) {
	driver := &stubDriver{method: enums.DeliveryMethodCDEK, status: enums.DeliveryStatusShipped}
	svc := newTestService(t, newStubOrderStore(), driver)

	order := &models.Order{ID: uuid.New(), DeliveryMethod: enums.DeliveryMethodCDEK}
	status, err := svc.GetStatus(context.Background(), order)
	if err != nil {
		t.Fatalf("get status: %v", err)
	}
	if status != enums.DeliveryStatusShipped {
		t.Fatalf("expected SHIPPED, got %s", status)
	}
}
