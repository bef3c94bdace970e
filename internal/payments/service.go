package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"gorm.io/gorm"

	"github.com/teleshopapp/teleshop-backend/pkg/db"
	"github.com/teleshopapp/teleshop-backend/pkg/db/models"
	"github.com/teleshopapp/teleshop-backend/pkg/enums"
	pkgerrors "github.com/teleshopapp/teleshop-backend/pkg/errors"
	"github.com/teleshopapp/teleshop-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type orderLoader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
}

type shipmentPreparer interface {
	PrepareShipment(ctx context.Context, orderID uuid.UUID) (string, error)
}

const (
	shipmentRetryAttempts = 3
	shipmentRetryBase     = 500 * time.Millisecond
)

// Service owns the payment workflow: link generation and webhook processing.
type Service interface {
	Methods() []MethodInfo
	GeneratePaymentLink(ctx context.Context, userID, orderID uuid.UUID, method enums.PaymentMethod) (*models.Payment, error)
	ProcessWebhook(ctx context.Context, method enums.PaymentMethod, body []byte) error
}

type service struct {
	repo      PaymentRepository
	orders    orderLoader
	registry  *Registry
	shipments shipmentPreparer
	tx        txRunner
	logg      *logger.Logger
}

// NewService builds the payment service.
func NewService(repo PaymentRepository, orders orderLoader, registry *Registry, shipments shipmentPreparer, tx txRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("payment repository required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order loader required")
	}
	if registry == nil {
		return nil, fmt.Errorf("payment registry required")
	}
	if shipments == nil {
		return nil, fmt.Errorf("shipment preparer required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:      repo,
		orders:    orders,
		registry:  registry,
		shipments: shipments,
		tx:        tx,
		logg:      logg,
	}, nil
}

// Methods lists the registered payment methods.
func (s *service) Methods() []MethodInfo {
	return s.registry.List()
}

// GeneratePaymentLink creates a fresh payment attempt for the order. Multiple
// attempts before success are allowed; once any attempt succeeded further
// calls are rejected. Ownership and state are checked before any provider
// call happens.
func (s *service) GeneratePaymentLink(ctx context.Context, userID, orderID uuid.UUID, method enums.PaymentMethod) (*models.Payment, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another user")
	}
	if order.HasSuccessfulPayment() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order already has a successful payment")
	}

	driver, err := s.registry.Get(method)
	if err != nil {
		return nil, err
	}

	payment := &models.Payment{
		ID:      uuid.New(),
		OrderID: order.ID,
		Method:  method,
		Status:  enums.PaymentStatusCreated,
	}

	link, err := driver.CreatePaymentLink(ctx, order, payment)
	if err != nil {
		var typed *pkgerrors.Error
		if pkgerrors.As(err, &typed) {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "payment provider error")
	}
	payment.Link = link

	if _, err := s.repo.Create(ctx, payment); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persisting payment")
	}

	ctx = s.logg.WithOrderID(ctx, order.ID.String())
	s.logg.Info(s.logg.WithField(ctx, "payment_id", payment.ID.String()), "payment link generated")
	return payment, nil
}

// ProcessWebhook applies a provider callback. Processing is idempotent: a
// repeated delivery for an already-successful payment is a no-op and never
// triggers a second shipment.
func (s *service) ProcessWebhook(ctx context.Context, method enums.PaymentMethod, body []byte) error {
	driver, err := s.registry.Get(method)
	if err != nil {
		return err
	}

	paymentID, status, err := driver.ParseWebhook(body)
	if err != nil {
		return err
	}

	payment, err := s.repo.FindByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("payment %s not found", paymentID))
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading payment")
	}

	if payment.Status == enums.PaymentStatusSuccess {
		return nil
	}

	ctx = s.logg.WithOrderID(ctx, payment.OrderID.String())

	switch status {
	case enums.PaymentStatusSuccess:
		if err := s.confirm(ctx, payment); err != nil {
			return err
		}
		s.prepareShipment(ctx, payment.OrderID)
		return nil

	case enums.PaymentStatusCancelled:
		if err := s.repo.UpdateStatus(ctx, payment.ID, enums.PaymentStatusCancelled); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "cancelling payment")
		}
		s.logg.Info(ctx, "payment cancelled by provider")
		return nil

	default:
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unsupported webhook status %q", status))
	}
}

// confirm marks the payment successful. The transactional re-check plus the
// partial unique index payments_order_success_uniq guarantee a single winner
// when two confirmations race.
func (s *service) confirm(ctx context.Context, payment *models.Payment) error {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		taken, err := repo.HasSuccessForOrder(ctx, payment.OrderID)
		if err != nil {
			return err
		}
		if taken {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order already has a successful payment")
		}
		return repo.UpdateStatus(ctx, payment.ID, enums.PaymentStatusSuccess)
	})
	if err != nil {
		var typed *pkgerrors.Error
		if pkgerrors.As(err, &typed) && typed.Code() == pkgerrors.CodeStateConflict {
			return err
		}
		if db.IsUniqueViolation(err, "") {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order already has a successful payment")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "confirming payment")
	}

	s.logg.Info(ctx, "payment confirmed")
	return nil
}

// prepareShipment creates the carrier order after confirmation. Failures are
// retried, then logged loudly; they never revert the payment.
func (s *service) prepareShipment(ctx context.Context, orderID uuid.UUID) {
	backoff := retry.WithMaxRetries(shipmentRetryAttempts, retry.NewExponential(shipmentRetryBase))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		_, err := s.shipments.PrepareShipment(ctx, orderID)
		if err != nil && pkgerrors.IsRetryable(err) {
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		s.logg.Error(ctx, "shipment creation failed after payment confirmation; manual retry required", err)
	}
}
