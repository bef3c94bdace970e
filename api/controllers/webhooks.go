package controllers

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/teleshopapp/teleshop-backend/api/responses"
	"github.com/teleshopapp/teleshop-backend/internal/payments"
	"github.com/teleshopapp/teleshop-backend/pkg/enums"
	pkgerrors "github.com/teleshopapp/teleshop-backend/pkg/errors"
	"github.com/teleshopapp/teleshop-backend/pkg/logger"
)

const maxWebhookBody = 1 << 20

// PaymentWebhook ingests provider callbacks. Providers retry on non-2xx, so
// terminal outcomes acknowledge with 200 even when no state changed; only
// transient failures surface as errors to trigger a redelivery.
func PaymentWebhook(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		method, err := enums.ParsePaymentMethod(chi.URLParam(r, "method"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown payment method"))
			return
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read webhook body"))
			return
		}

		if err := svc.ProcessWebhook(r.Context(), method, body); err != nil {
			var typed *pkgerrors.Error
			if pkgerrors.As(err, &typed) {
				switch typed.Code() {
				case pkgerrors.CodeStateConflict, pkgerrors.CodeNotFound:
					// Redelivery cannot fix these; stop the provider's retries.
					logg.Warn(r.Context(), "webhook acknowledged without state change")
					responses.WriteSuccess(w, map[string]int{"code": 0})
					return
				}
			}
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int{"code": 0})
	}
}
