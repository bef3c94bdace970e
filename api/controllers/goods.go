package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/teleshopapp/teleshop-backend/api/responses"
	"github.com/teleshopapp/teleshop-backend/api/validators"
	"github.com/teleshopapp/teleshop-backend/internal/goods"
	"github.com/teleshopapp/teleshop-backend/internal/prices"
	"github.com/teleshopapp/teleshop-backend/pkg/db/models"
	"github.com/teleshopapp/teleshop-backend/pkg/enums"
	"github.com/teleshopapp/teleshop-backend/pkg/logger"
	"github.com/teleshopapp/teleshop-backend/pkg/pagination"
)

type createGoodRequest struct {
	Title       string `json:"title" validate:"required,min=1"`
	Description string `json:"description,omitempty"`
	VATRate     string `json:"vat_rate,omitempty"`
}

type createVariationRequest struct {
	Title       string  `json:"title" validate:"required,min=1"`
	Description string  `json:"description,omitempty"`
	WeightKG    float64 `json:"weight_kg" validate:"min=0"`
	LengthCM    float64 `json:"length_cm" validate:"min=0"`
	WidthCM     float64 `json:"width_cm" validate:"min=0"`
	HeightCM    float64 `json:"height_cm" validate:"min=0"`
}

type setPriceRequest struct {
	PriceCents int `json:"price_cents" validate:"required,gt=0"`
}

type photoResponse struct {
	URL    string `json:"url"`
	IsMain bool   `json:"is_main"`
}

type variationResponse struct {
	ID          string          `json:"id"`
	GoodID      string          `json:"good_id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	PriceCents  *int            `json:"price_cents"`
	WeightKG    float64         `json:"weight_kg"`
	Photos      []photoResponse `json:"photos,omitempty"`
}

type goodResponse struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description,omitempty"`
	VATRate     string              `json:"vat_rate"`
	Variations  []variationResponse `json:"variations,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
}

type goodsPageResponse struct {
	Items      []goodResponse `json:"items"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

type priceResponse struct {
	PriceCents int       `json:"price_cents"`
	SetAt      time.Time `json:"set_at"`
}

func toVariationResponse(variation models.GoodVariation) variationResponse {
	resp := variationResponse{
		ID:          variation.ID.String(),
		GoodID:      variation.GoodID.String(),
		Title:       variation.Title,
		Description: variation.Description,
		PriceCents:  variation.LatestPriceCents,
		WeightKG:    variation.WeightKG,
	}
	for _, photo := range variation.Photos {
		resp.Photos = append(resp.Photos, photoResponse{URL: photo.URL, IsMain: photo.IsMain})
	}
	return resp
}

func toGoodResponse(good models.Good) goodResponse {
	resp := goodResponse{
		ID:          good.ID.String(),
		Title:       good.Title,
		Description: good.Description,
		VATRate:     string(good.VATRate),
		CreatedAt:   good.CreatedAt,
	}
	for _, variation := range good.Variations {
		resp.Variations = append(resp.Variations, toVariationResponse(variation))
	}
	return resp
}

// GoodsList returns a cursor-paginated catalog page.
func GoodsList(svc goods.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.List(r.Context(), pagination.Params{
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp := goodsPageResponse{NextCursor: page.NextCursor, Items: make([]goodResponse, 0, len(page.Items))}
		for _, good := range page.Items {
			resp.Items = append(resp.Items, toGoodResponse(good))
		}
		responses.WriteSuccess(w, resp)
	}
}

// GoodsDetail returns one good with its variations.
func GoodsDetail(svc goods.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "goodId"), "goodId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		good, err := svc.GetGood(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toGoodResponse(*good))
	}
}

// GoodsCreate is the admin endpoint for a new good.
func GoodsCreate(svc goods.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body createGoodRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		good, err := svc.CreateGood(r.Context(), goods.CreateGoodInput{
			Title:       body.Title,
			Description: body.Description,
			VATRate:     enums.VATRate(body.VATRate),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, toGoodResponse(*good))
	}
}

// VariationsCreate is the admin endpoint for a new variation under a good.
func VariationsCreate(svc goods.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		goodID, err := validators.ParsePathUUID(chi.URLParam(r, "goodId"), "goodId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createVariationRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		variation, err := svc.CreateVariation(r.Context(), goods.CreateVariationInput{
			GoodID:      goodID,
			Title:       body.Title,
			Description: body.Description,
			WeightKG:    body.WeightKG,
			LengthCM:    body.LengthCM,
			WidthCM:     body.WidthCM,
			HeightCM:    body.HeightCM,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, toVariationResponse(*variation))
	}
}

// VariationSetPrice appends a price history row and stamps the latest price.
func VariationSetPrice(svc prices.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		variationID, err := validators.ParsePathUUID(chi.URLParam(r, "variationId"), "variationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body setPriceRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		price, err := svc.SetPrice(r.Context(), variationID, body.PriceCents)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, priceResponse{
			PriceCents: price.PriceCents,
			SetAt:      price.EffectiveAt,
		})
	}
}

// VariationPriceHistory lists the price history, newest first.
func VariationPriceHistory(svc prices.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		variationID, err := validators.ParsePathUUID(chi.URLParam(r, "variationId"), "variationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		history, err := svc.History(r.Context(), variationID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp := make([]priceResponse, 0, len(history))
		for _, row := range history {
			resp = append(resp, priceResponse{PriceCents: row.PriceCents, SetAt: row.EffectiveAt})
		}
		responses.WriteSuccess(w, resp)
	}
}
