package controllers

import (
	"net/http"

	"github.com/teleshopapp/teleshop-backend/api/middleware"
	"github.com/teleshopapp/teleshop-backend/api/responses"
	"github.com/teleshopapp/teleshop-backend/api/validators"
	"github.com/teleshopapp/teleshop-backend/internal/cart"
	"github.com/teleshopapp/teleshop-backend/pkg/db/models"
	pkgerrors "github.com/teleshopapp/teleshop-backend/pkg/errors"
	"github.com/teleshopapp/teleshop-backend/pkg/logger"
)

type cartMutationRequest struct {
	VariationID string `json:"variation_id" validate:"required,uuid"`
	Quantity    int    `json:"quantity" validate:"required,gt=0"`
}

type cartLineResponse struct {
	VariationID string             `json:"variation_id"`
	Quantity    int                `json:"quantity"`
	Variation   *variationResponse `json:"variation,omitempty"`
}

type cartResponse struct {
	Items           []cartLineResponse `json:"items"`
	TotalAmountCents int               `json:"total_amount_cents"`
}

func toCartLineResponse(item models.CartItem) cartLineResponse {
	line := cartLineResponse{
		VariationID: item.VariationID.String(),
		Quantity:    item.Quantity,
	}
	if item.Variation != nil {
		v := toVariationResponse(*item.Variation)
		line.Variation = &v
	}
	return line
}

func toCartResponse(items []models.CartItem) cartResponse {
	resp := cartResponse{Items: make([]cartLineResponse, 0, len(items))}
	for _, item := range items {
		resp.Items = append(resp.Items, toCartLineResponse(item))
		if item.Variation != nil && item.Variation.LatestPriceCents != nil {
			resp.TotalAmountCents += *item.Variation.LatestPriceCents * item.Quantity
		}
	}
	return resp
}

// CartGet returns the caller's cart with variation snapshots and the running
// total at current catalog prices.
func CartGet(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserUUIDFromContext(r.Context())
		items, err := svc.Get(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toCartResponse(items))
	}
}

// CartAdd accumulates quantity onto the caller's line for a variation.
func CartAdd(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body cartMutationRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		variationID, err := validators.ParsePathUUID(body.VariationID, "variation_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		userID := middleware.UserUUIDFromContext(r.Context())
		line, err := svc.AddToCart(r.Context(), userID, variationID, body.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if line == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart line missing after add"))
			return
		}
		responses.WriteSuccess(w, toCartLineResponse(*line))
	}
}

// CartDelete decrements the caller's line; dropping to zero removes it.
func CartDelete(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body cartMutationRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		variationID, err := validators.ParsePathUUID(body.VariationID, "variation_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		userID := middleware.UserUUIDFromContext(r.Context())
		if err := svc.DeleteFromCart(r.Context(), userID, variationID, body.Quantity); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "updated"})
	}
}
