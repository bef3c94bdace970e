package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/teleshopapp/teleshop-backend/api/middleware"
	"github.com/teleshopapp/teleshop-backend/api/responses"
	"github.com/teleshopapp/teleshop-backend/api/validators"
	"github.com/teleshopapp/teleshop-backend/internal/payments"
	"github.com/teleshopapp/teleshop-backend/pkg/enums"
	pkgerrors "github.com/teleshopapp/teleshop-backend/pkg/errors"
	"github.com/teleshopapp/teleshop-backend/pkg/logger"
)

type paymentLinkRequest struct {
	Method string `json:"method" validate:"required"`
}

type paymentLinkResponse struct {
	ID        string    `json:"id"`
	OrderID   string    `json:"order_id"`
	Method    string    `json:"method"`
	Status    string    `json:"status"`
	Link      string    `json:"link"`
	CreatedAt time.Time `json:"created_at"`
}

// PaymentMethods lists the enabled payment methods in registry order.
func PaymentMethods(svc payments.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, svc.Methods())
	}
}

// PaymentLinkCreate asks the chosen provider for a checkout link. Each call
// records a new payment attempt; orders that already collected money refuse.
func PaymentLinkCreate(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderId"), "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body paymentLinkRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		method, err := enums.ParsePaymentMethod(body.Method)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown payment method"))
			return
		}

		userID := middleware.UserUUIDFromContext(r.Context())
		payment, err := svc.GeneratePaymentLink(r.Context(), userID, orderID, method)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, paymentLinkResponse{
			ID:        payment.ID.String(),
			OrderID:   payment.OrderID.String(),
			Method:    string(payment.Method),
			Status:    string(payment.Status),
			Link:      payment.Link,
			CreatedAt: payment.CreatedAt,
		})
	}
}
