package payments

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/teleshopapp/teleshop-backend/pkg/db/models"
	"github.com/teleshopapp/teleshop-backend/pkg/enums"
	pkgerrors "github.com/teleshopapp/teleshop-backend/pkg/errors"
	"github.com/teleshopapp/teleshop-backend/pkg/logger"
)

type stubRepo struct {
	payments map[uuid.UUID]*models.Payment
}

func newStubRepo() *stubRepo {
	return &stubRepo{payments: map[uuid.UUID]*models.Payment{}}
}

func (s *stubRepo) WithTx(tx *gorm.DB) PaymentRepository { return s }

func (s *stubRepo) Create(ctx context.Context, payment *models.Payment) (*models.Payment, error) {
	copied := *payment
	s.payments[payment.ID] = &copied
	return payment, nil
}

func (s *stubRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	if payment, ok := s.payments[id]; ok {
		copied := *payment
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) HasSuccessForOrder(ctx context.Context, orderID uuid.UUID) (bool, error) {
	for _, payment := range s.payments {
		if payment.OrderID == orderID && payment.Status == enums.PaymentStatusSuccess {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.PaymentStatus) error {
	payment, ok := s.payments[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	payment.Status = status
	return nil
}

type stubOrders struct {
	orders map[uuid.UUID]*models.Order
}

func (s *stubOrders) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if order, ok := s.orders[id]; ok {
		return order, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("order %s not found", id))
}

type fakeDriver struct {
	method      enums.PaymentMethod
	linkCalls   int
	failLink    bool
	webhookID   uuid.UUID
	webhookStat enums.PaymentStatus
}

func (d *fakeDriver) Method() enums.PaymentMethod { return d.method }
func (d *fakeDriver) DisplayName() string         { return "Fake" }

func (d *fakeDriver) CreatePaymentLink(ctx context.Context, order *models.Order, payment *models.Payment) (string, error) {
	d.linkCalls++
	if d.failLink {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "provider down")
	}
	return "https://pay.example/" + payment.ID.String(), nil
}

func (d *fakeDriver) ParseWebhook(body []byte) (uuid.UUID, enums.PaymentStatus, error) {
	return d.webhookID, d.webhookStat, nil
}

type stubShipments struct {
	calls int
	fail  bool
}

func (s *stubShipments) PrepareShipment(ctx context.Context, orderID uuid.UUID) (string, error) {
	s.calls++
	if s.fail {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "bad shipment")
	}
	return "carrier-ref", nil
}

type noopTx struct{}

func (noopTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fixture struct {
	svc       Service
	repo      *stubRepo
	orders    *stubOrders
	driver    *fakeDriver
	shipments *stubShipments
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := newStubRepo()
	ordersStub := &stubOrders{orders: map[uuid.UUID]*models.Order{}}
	driver := &fakeDriver{method: enums.PaymentMethodYooKassa}
	shipments := &stubShipments{}

	registry, err := NewRegistry(driver, NewCloudPaymentsDriver())
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	logg := logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("error")})
	svc, err := NewService(repo, ordersStub, registry, shipments, noopTx{}, logg)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return &fixture{svc: svc, repo: repo, orders: ordersStub, driver: driver, shipments: shipments}
}

func (f *fixture) seedOrder(userID uuid.UUID) *models.Order {
	order := &models.Order{
		ID:             uuid.New(),
		UserID:         userID,
		Currency:       enums.CurrencyRUB,
		DeliveryMethod: enums.DeliveryMethodCDEK,
		Details: []models.OrderDetail{
			{VariationID: uuid.New(), Quantity: 2, UnitPriceCents: 100},
		},
	}
	f.orders.orders[order.ID] = order
	return order
}

func TestGenerateLinkTwiceBeforeSuccess(t *testing.T) {
	f := newFixture(t)
	userID := uuid.New()
	order := f.seedOrder(userID)
	ctx := context.Background()

	first, err := f.svc.GeneratePaymentLink(ctx, userID, order.ID, enums.PaymentMethodYooKassa)
	if err != nil {
		t.Fatalf("first link: %v", err)
	}
	second, err := f.svc.GeneratePaymentLink(ctx, userID, order.ID, enums.PaymentMethodYooKassa)
	if err != nil {
		t.Fatalf("second link: %v", err)
	}

	if first.ID == second.ID {
		t.Fatal("expected distinct payment attempts")
	}
	if len(f.repo.payments) != 2 {
		t.Fatalf("expected 2 persisted payments, got %d", len(f.repo.payments))
	}
	for _, payment := range f.repo.payments {
		if payment.Status != enums.PaymentStatusCreated {
			t.Fatalf("expected status created, got %s", payment.Status)
		}
		if payment.Link == "" {
			t.Fatal("expected link persisted")
		}
	}
}

func TestGenerateLinkAfterSuccessConflicts(t *testing.T) {
	f := newFixture(t)
	userID := uuid.New()
	order := f.seedOrder(userID)
	order.Payments = []models.Payment{{ID: uuid.New(), OrderID: order.ID, Status: enums.PaymentStatusSuccess}}

	_, err := f.svc.GeneratePaymentLink(context.Background(), userID, order.ID, enums.PaymentMethodYooKassa)
	var typed *pkgerrors.Error
	if !pkgerrors.As(err, &typed) || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected STATE_CONFLICT, got %v", err)
	}
	if f.driver.linkCalls != 0 {
		t.Fatal("expected no provider call for already-paid order")
	}
}

func TestGenerateLinkOwnershipCheckedBeforeProviderCall(t *testing.T) {
	f := newFixture(t)
	order := f.seedOrder(uuid.New())

	_, err := f.svc.GeneratePaymentLink(context.Background(), uuid.New(), order.ID, enums.PaymentMethodYooKassa)
	var typed *pkgerrors.Error
	if !pkgerrors.As(err, &typed) || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected FORBIDDEN, got %v", err)
	}
	if f.driver.linkCalls != 0 {
		t.Fatal("expected no provider call for foreign order")
	}
}

func TestGenerateLinkProviderFailureNotPersisted(t *testing.T) {
	f := newFixture(t)
	f.driver.failLink = true
	userID := uuid.New()
	order := f.seedOrder(userID)

	_, err := f.svc.GeneratePaymentLink(context.Background(), userID, order.ID, enums.PaymentMethodYooKassa)
	var typed *pkgerrors.Error
	if !pkgerrors.As(err, &typed) || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected DEPENDENCY_ERROR, got %v", err)
	}
	if len(f.repo.payments) != 0 {
		t.Fatal("expected no payment persisted on provider failure")
	}
}

func TestProcessWebhookConfirmsAndShipsOnce(t *testing.T) {
	f := newFixture(t)
	userID := uuid.New()
	order := f.seedOrder(userID)
	ctx := context.Background()

	payment, err := f.svc.GeneratePaymentLink(ctx, userID, order.ID, enums.PaymentMethodYooKassa)
	if err != nil {
		t.Fatalf("link: %v", err)
	}

	f.driver.webhookID = payment.ID
	f.driver.webhookStat = enums.PaymentStatusSuccess

	if err := f.svc.ProcessWebhook(ctx, enums.PaymentMethodYooKassa, []byte(`{}`)); err != nil {
		t.Fatalf("first webhook: %v", err)
	}
	if f.repo.payments[payment.ID].Status != enums.PaymentStatusSuccess {
		t.Fatal("expected payment marked success")
	}
	if f.shipments.calls != 1 {
		t.Fatalf("expected one shipment, got %d", f.shipments.calls)
	}

	// Second delivery of the same callback is a no-op.
	if err := f.svc.ProcessWebhook(ctx, enums.PaymentMethodYooKassa, []byte(`{}`)); err != nil {
		t.Fatalf("second webhook: %v", err)
	}
	if f.shipments.calls != 1 {
		t.Fatalf("expected no second shipment, got %d", f.shipments.calls)
	}
}

func TestProcessWebhookSecondAttemptForPaidOrderConflicts(t *testing.T) {
	f := newFixture(t)
	userID := uuid.New()
	order := f.seedOrder(userID)
	ctx := context.Background()

	first, err := f.svc.GeneratePaymentLink(ctx, userID, order.ID, enums.PaymentMethodYooKassa)
	if err != nil {
		t.Fatalf("first link: %v", err)
	}
	second, err := f.svc.GeneratePaymentLink(ctx, userID, order.ID, enums.PaymentMethodYooKassa)
	if err != nil {
		t.Fatalf("second link: %v", err)
	}

	f.driver.webhookID = first.ID
	f.driver.webhookStat = enums.PaymentStatusSuccess
	if err := f.svc.ProcessWebhook(ctx, enums.PaymentMethodYooKassa, []byte(`{}`)); err != nil {
		t.Fatalf("confirm first: %v", err)
	}

	f.driver.webhookID = second.ID
	err = f.svc.ProcessWebhook(ctx, enums.PaymentMethodYooKassa, []byte(`{}`))
	var typed *pkgerrors.Error
	if !pkgerrors.As(err, &typed) || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected STATE_CONFLICT, got %v", err)
	}
	if f.shipments.calls != 1 {
		t.Fatalf("expected single shipment, got %d", f.shipments.calls)
	}
}

func TestProcessWebhookCancellation(t *testing.T) {
	f := newFixture(t)
	userID := uuid.New()
	order := f.seedOrder(userID)
	ctx := context.Background()

	payment, err := f.svc.GeneratePaymentLink(ctx, userID, order.ID, enums.PaymentMethodYooKassa)
	if err != nil {
		t.Fatalf("link: %v", err)
	}

	f.driver.webhookID = payment.ID
	f.driver.webhookStat = enums.PaymentStatusCancelled
	if err := f.svc.ProcessWebhook(ctx, enums.PaymentMethodYooKassa, []byte(`{}`)); err != nil {
		t.Fatalf("webhook: %v", err)
	}
	if f.repo.payments[payment.ID].Status != enums.PaymentStatusCancelled {
		t.Fatal("expected payment cancelled")
	}
	if f.shipments.calls != 0 {
		t.Fatal("expected no shipment for cancellation")
	}
}

func TestProcessWebhookUnknownPayment(t *testing.T) {
	f := newFixture(t)
	f.driver.webhookID = uuid.New()
	f.driver.webhookStat = enums.PaymentStatusSuccess

	err := f.svc.ProcessWebhook(context.Background(), enums.PaymentMethodYooKassa, []byte(`{}`))
	var typed *pkgerrors.Error
	if !pkgerrors.As(err, &typed) || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestMethodsListsRegisteredDrivers(t *testing.T) {
	f := newFixture(t)
	methods := f.svc.Methods()
	if len(methods) != 2 {
		t.Fatalf("expected 2 methods, got %d", len(methods))
	}
	if methods[0].Code != enums.PaymentMethodYooKassa {
		t.Fatalf("expected yookassa first, got %s", methods[0].Code)
	}
}

func TestShipmentFailureDoesNotRevertPayment(t *testing.T) {
	f := newFixture(t)
	f.shipments.fail = true
	userID := uuid.New()
	order := f.seedOrder(userID)
	ctx := context.Background()

	payment, err := f.svc.GeneratePaymentLink(ctx, userID, order.ID, enums.PaymentMethodYooKassa)
	if err != nil {
		t.Fatalf("link: %v", err)
	}

	f.driver.webhookID = payment.ID
	f.driver.webhookStat = enums.PaymentStatusSuccess
	if err := f.svc.ProcessWebhook(ctx, enums.PaymentMethodYooKassa, []byte(`{}`)); err != nil {
		t.Fatalf("webhook must succeed despite shipment failure: %v", err)
	}
	if f.repo.payments[payment.ID].Status != enums.PaymentStatusSuccess {
		t.Fatal("expected payment to stay successful")
	}
}
