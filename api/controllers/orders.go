package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/teleshopapp/teleshop-backend/api/middleware"
	"github.com/teleshopapp/teleshop-backend/api/responses"
	"github.com/teleshopapp/teleshop-backend/api/validators"
	"github.com/teleshopapp/teleshop-backend/internal/delivery"
	"github.com/teleshopapp/teleshop-backend/internal/orders"
	"github.com/teleshopapp/teleshop-backend/pkg/db/models"
	"github.com/teleshopapp/teleshop-backend/pkg/enums"
	pkgerrors "github.com/teleshopapp/teleshop-backend/pkg/errors"
	"github.com/teleshopapp/teleshop-backend/pkg/logger"
)

type orderLineRequest struct {
	VariationID string `json:"variation_id" validate:"required,uuid"`
	Quantity    int    `json:"quantity" validate:"required,gt=0"`
}

type createOrderRequest struct {
	Items             []orderLineRequest `json:"items" validate:"required,min=1,dive"`
	DeliveryMethod    string             `json:"delivery_method" validate:"required"`
	DeliveryPointCode string             `json:"delivery_point_code" validate:"required"`
}

type orderLineResponse struct {
	VariationID    string             `json:"variation_id"`
	Quantity       int                `json:"quantity"`
	UnitPriceCents int                `json:"unit_price_cents"`
	AmountCents    int                `json:"amount_cents"`
	Variation      *variationResponse `json:"variation,omitempty"`
}

type orderPaymentResponse struct {
	ID        string    `json:"id"`
	Method    string    `json:"method"`
	Status    string    `json:"status"`
	Link      string    `json:"link,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type orderResponse struct {
	ID                string                 `json:"id"`
	Currency          string                 `json:"currency"`
	DeliveryMethod    string                 `json:"delivery_method"`
	DeliveryPointCode string                 `json:"delivery_point_code"`
	CarrierOrderID    *string                `json:"carrier_order_id,omitempty"`
	AmountCents       int                    `json:"amount_cents"`
	Items             []orderLineResponse    `json:"items"`
	Payments          []orderPaymentResponse `json:"payments,omitempty"`
	CreatedAt         time.Time              `json:"created_at"`
}

type orderStatusResponse struct {
	Status *string `json:"status"`
}

func toOrderResponse(order models.Order) orderResponse {
	resp := orderResponse{
		ID:                order.ID.String(),
		Currency:          string(order.Currency),
		DeliveryMethod:    string(order.DeliveryMethod),
		DeliveryPointCode: order.DeliveryPointCode,
		CarrierOrderID:    order.CarrierOrderID,
		AmountCents:       order.AmountCents(),
		Items:             make([]orderLineResponse, 0, len(order.Details)),
		CreatedAt:         order.CreatedAt,
	}
	for _, detail := range order.Details {
		line := orderLineResponse{
			VariationID:    detail.VariationID.String(),
			Quantity:       detail.Quantity,
			UnitPriceCents: detail.UnitPriceCents,
			AmountCents:    detail.AmountCents(),
		}
		if detail.Variation != nil {
			v := toVariationResponse(*detail.Variation)
			line.Variation = &v
		}
		resp.Items = append(resp.Items, line)
	}
	for _, payment := range order.Payments {
		resp.Payments = append(resp.Payments, orderPaymentResponse{
			ID:        payment.ID.String(),
			Method:    string(payment.Method),
			Status:    string(payment.Status),
			Link:      payment.Link,
			CreatedAt: payment.CreatedAt,
		})
	}
	return resp
}

// OrdersCreate snapshots the submitted lines into an immutable order and
// clears the matching cart lines in the same transaction.
func OrdersCreate(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body createOrderRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, err := enums.ParseDeliveryMethod(body.DeliveryMethod)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown delivery method"))
			return
		}

		input := orders.CreateInput{
			DeliveryMethod:    method,
			DeliveryPointCode: body.DeliveryPointCode,
			Items:             make([]orders.LineInput, 0, len(body.Items)),
		}
		for _, item := range body.Items {
			variationID, err := validators.ParsePathUUID(item.VariationID, "variation_id")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.Items = append(input.Items, orders.LineInput{VariationID: variationID, Quantity: item.Quantity})
		}

		userID := middleware.UserUUIDFromContext(r.Context())
		order, err := svc.Create(r.Context(), userID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, toOrderResponse(*order))
	}
}

// OrdersList returns the caller's orders, newest first.
func OrdersList(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserUUIDFromContext(r.Context())
		list, err := svc.ListByUser(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp := make([]orderResponse, 0, len(list))
		for _, order := range list {
			resp = append(resp, toOrderResponse(order))
		}
		responses.WriteSuccess(w, resp)
	}
}

// OrdersDetail returns one owned order with its lines and payment attempts.
func OrdersDetail(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderId"), "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		userID := middleware.UserUUIDFromContext(r.Context())
		order, err := svc.GetOwned(r.Context(), orderID, userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toOrderResponse(*order))
	}
}

// OrdersStatus reads the carrier-side delivery status. A null status means the
// carrier could not be reached; the order itself is still valid.
func OrdersStatus(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderId"), "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		userID := middleware.UserUUIDFromContext(r.Context())
		status, err := svc.GetStatus(r.Context(), orderID, userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp := orderStatusResponse{}
		if status != nil {
			value := string(*status)
			resp.Status = &value
		}
		responses.WriteSuccess(w, resp)
	}
}

// OrdersDeliveryPoint resolves the pickup point the order was placed with.
// Carrier lookup failures degrade to a null point rather than a 5xx.
func OrdersDeliveryPoint(ordersSvc orders.Service, deliverySvc delivery.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderId"), "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		userID := middleware.UserUUIDFromContext(r.Context())
		order, err := ordersSvc.GetOwned(r.Context(), orderID, userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		point, err := deliverySvc.GetDeliveryPointInfo(r.Context(), order.DeliveryMethod, order.DeliveryPointCode)
		if err != nil {
			logg.Warn(r.Context(), "delivery point lookup degraded")
			responses.WriteSuccess(w, map[string]any{"point": nil})
			return
		}
		responses.WriteSuccess(w, map[string]any{"point": point})
	}
}
