package payments

import (
	"context"

	"github.com/google/uuid"

	"github.com/teleshopapp/teleshop-backend/pkg/db/models"
	"github.com/teleshopapp/teleshop-backend/pkg/enums"
	pkgerrors "github.com/teleshopapp/teleshop-backend/pkg/errors"
)

// CloudPaymentsDriver reserves the method slot; the gateway contract is not
// signed yet so every operation reports the dependency as unavailable.
// TODO: implement once the CloudPayments merchant account is provisioned.
type CloudPaymentsDriver struct{}

// NewCloudPaymentsDriver returns the placeholder driver.
func NewCloudPaymentsDriver() *CloudPaymentsDriver {
	return &CloudPaymentsDriver{}
}

func (d *CloudPaymentsDriver) Method() enums.PaymentMethod {
	return enums.PaymentMethodCloudPayments
}

func (d *CloudPaymentsDriver) DisplayName() string {
	return "CloudPayments"
}

func (d *CloudPaymentsDriver) CreatePaymentLink(ctx context.Context, order *models.Order, payment *models.Payment) (string, error) {
	return "", pkgerrors.New(pkgerrors.CodeDependency, "cloudpayments integration is not enabled")
}

func (d *CloudPaymentsDriver) ParseWebhook(body []byte) (uuid.UUID, enums.PaymentStatus, error) {
	return uuid.Nil, "", pkgerrors.New(pkgerrors.CodeDependency, "cloudpayments integration is not enabled")
}
