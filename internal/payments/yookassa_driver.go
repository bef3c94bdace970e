package payments

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/teleshopapp/teleshop-backend/pkg/db/models"
	"github.com/teleshopapp/teleshop-backend/pkg/enums"
	pkgerrors "github.com/teleshopapp/teleshop-backend/pkg/errors"
	"github.com/teleshopapp/teleshop-backend/pkg/yookassa"
)

type yookassaAPI interface {
	CreatePayment(ctx context.Context, params yookassa.CreatePaymentParams) (*yookassa.Payment, error)
}

// YooKassaDriver bridges the payment workflow onto the YooKassa client.
type YooKassaDriver struct {
	client yookassaAPI
}

// NewYooKassaDriver wraps the provider client.
func NewYooKassaDriver(client *yookassa.Client) (*YooKassaDriver, error) {
	if client == nil {
		return nil, fmt.Errorf("yookassa client required")
	}
	return &YooKassaDriver{client: client}, nil
}

func (d *YooKassaDriver) Method() enums.PaymentMethod {
	return enums.PaymentMethodYooKassa
}

func (d *YooKassaDriver) DisplayName() string {
	return "ЮKassa"
}

// CreatePaymentLink registers the payment with the local payment id as the
// Idempotence-Key and builds the fiscal receipt from the order snapshot.
func (d *YooKassaDriver) CreatePaymentLink(ctx context.Context, order *models.Order, payment *models.Payment) (string, error) {
	params := yookassa.CreatePaymentParams{
		IdempotencyKey: payment.ID.String(),
		AmountCents:    order.AmountCents(),
		Currency:       order.Currency,
		Description:    fmt.Sprintf("Заказ №%s: %s", order.ID, order.Description()),
		Metadata: map[string]string{
			"order_id":   order.ID.String(),
			"payment_id": payment.ID.String(),
		},
	}
	if order.User != nil {
		if order.User.Email != nil {
			params.CustomerEmail = *order.User.Email
		}
		if order.User.Phone != nil {
			params.CustomerPhone = *order.User.Phone
		}
	}

	for _, detail := range order.Details {
		item := yookassa.ReceiptItem{
			Quantity:       detail.Quantity,
			UnitPriceCents: detail.UnitPriceCents,
			VATRate:        enums.VATRateNone,
		}
		if detail.Variation != nil {
			item.Description = detail.Variation.ReceiptDescription()
			if detail.Variation.Good != nil {
				item.VATRate = detail.Variation.Good.VATRate
			}
		}
		params.Items = append(params.Items, item)
	}

	created, err := d.client.CreatePayment(ctx, params)
	if err != nil {
		return "", err
	}
	return created.ConfirmationURL(), nil
}

// ParseWebhook correlates the callback back to the local payment: the
// provider echoes the idempotency key as the object id.
func (d *YooKassaDriver) ParseWebhook(body []byte) (uuid.UUID, enums.PaymentStatus, error) {
	note, err := yookassa.ParseNotification(body)
	if err != nil {
		return uuid.Nil, "", err
	}

	paymentID, err := uuid.Parse(note.Object.ID)
	if err != nil {
		return uuid.Nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "webhook object id is not a payment id")
	}

	switch note.Event {
	case yookassa.EventPaymentSucceeded:
		return paymentID, enums.PaymentStatusSuccess, nil
	case yookassa.EventPaymentCanceled:
		return paymentID, enums.PaymentStatusCancelled, nil
	default:
		return uuid.Nil, "", pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unsupported webhook event %q", note.Event))
	}
}
