package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/teleshopapp/teleshop-backend/api/responses"
	"github.com/teleshopapp/teleshop-backend/api/validators"
	"github.com/teleshopapp/teleshop-backend/internal/delivery"
	"github.com/teleshopapp/teleshop-backend/pkg/enums"
	pkgerrors "github.com/teleshopapp/teleshop-backend/pkg/errors"
	"github.com/teleshopapp/teleshop-backend/pkg/logger"
)

func deliveryMethodFromPath(r *http.Request) (enums.DeliveryMethod, error) {
	method, err := enums.ParseDeliveryMethod(chi.URLParam(r, "method"))
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown delivery method")
	}
	return method, nil
}

// DeliveryMethods lists the enabled carriers.
func DeliveryMethods(svc delivery.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, svc.Methods())
	}
}

// DeliveryCountries lists the countries a carrier ships within.
func DeliveryCountries(svc delivery.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		method, err := deliveryMethodFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		countries, err := svc.GetCountries(r.Context(), method)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, countries)
	}
}

// DeliveryCities searches carrier cities by country and name fragment.
func DeliveryCities(svc delivery.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		method, err := deliveryMethodFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter := delivery.CityFilter{
			CountryCode: strings.TrimSpace(r.URL.Query().Get("country_code")),
			City:        strings.TrimSpace(r.URL.Query().Get("city")),
		}
		cities, err := svc.GetCities(r.Context(), method, filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cities)
	}
}

// DeliveryPoints lists pickup points for a carrier city.
func DeliveryPoints(svc delivery.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		method, err := deliveryMethodFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cityCode, err := validators.ParseQueryInt(r, "city_code", 0, 1, 1<<30)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if cityCode == 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "city_code query parameter required"))
			return
		}

		points, err := svc.GetDeliveryPoints(r.Context(), method, delivery.DeliveryPointFilter{CityCode: cityCode})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, points)
	}
}

// DeliveryPointInfo resolves one pickup point by its carrier code. An unknown
// code yields a null point, not a 404, so stale checkout state stays renderable.
func DeliveryPointInfo(svc delivery.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		method, err := deliveryMethodFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		code := strings.TrimSpace(chi.URLParam(r, "code"))
		if code == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "delivery point code required"))
			return
		}

		point, err := svc.GetDeliveryPointInfo(r.Context(), method, code)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"point": point})
	}
}
