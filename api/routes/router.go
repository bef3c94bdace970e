package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/teleshopapp/teleshop-backend/api/controllers"
	"github.com/teleshopapp/teleshop-backend/api/middleware"
	"github.com/teleshopapp/teleshop-backend/internal/auth"
	"github.com/teleshopapp/teleshop-backend/internal/cart"
	"github.com/teleshopapp/teleshop-backend/internal/delivery"
	"github.com/teleshopapp/teleshop-backend/internal/goods"
	"github.com/teleshopapp/teleshop-backend/internal/orders"
	"github.com/teleshopapp/teleshop-backend/internal/payments"
	"github.com/teleshopapp/teleshop-backend/internal/prices"
	"github.com/teleshopapp/teleshop-backend/pkg/auth/session"
	"github.com/teleshopapp/teleshop-backend/pkg/config"
	"github.com/teleshopapp/teleshop-backend/pkg/enums"
	"github.com/teleshopapp/teleshop-backend/pkg/logger"
	pkgredis "github.com/teleshopapp/teleshop-backend/pkg/redis"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Cfg  *config.Config
	Logg *logger.Logger

	Sessions    session.AccessSessionChecker
	Idempotency pkgredis.IdempotencyStore
	Pingers     map[string]controllers.Pinger

	Auth     auth.Service
	Goods    goods.Service
	Prices   prices.Service
	Cart     cart.Service
	Orders   orders.Service
	Payments payments.Service
	Delivery delivery.Service
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(d.Logg),
		middleware.RequestID(d.Logg),
		middleware.Logging(d.Logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(d.Cfg))
		r.Get("/ready", controllers.HealthReady(d.Cfg, d.Logg, d.Pingers))
	})

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/payments/{method}", controllers.PaymentWebhook(d.Payments, d.Logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/register", controllers.AuthRegister(d.Auth, d.Logg))
		r.Post("/login", controllers.AuthLogin(d.Auth, d.Logg))
		r.Post("/refresh", controllers.AuthRefresh(d.Auth, d.Logg))
	})

	r.Route("/api/v1/goods", func(r chi.Router) {
		r.Get("/", controllers.GoodsList(d.Goods, d.Logg))
		r.Get("/{goodId}", controllers.GoodsDetail(d.Goods, d.Logg))
	})

	r.Route("/api/v1/delivery", func(r chi.Router) {
		r.Get("/methods", controllers.DeliveryMethods(d.Delivery))
		r.Route("/{method}", func(r chi.Router) {
			r.Get("/countries", controllers.DeliveryCountries(d.Delivery, d.Logg))
			r.Get("/cities", controllers.DeliveryCities(d.Delivery, d.Logg))
			r.Get("/points", controllers.DeliveryPoints(d.Delivery, d.Logg))
			r.Get("/points/{code}", controllers.DeliveryPointInfo(d.Delivery, d.Logg))
		})
	})

	r.Get("/api/v1/payments/methods", controllers.PaymentMethods(d.Payments))

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(d.Cfg.JWT, d.Sessions, d.Logg))
		r.Use(middleware.Idempotency(d.Idempotency, d.Logg))

		r.Post("/api/v1/auth/logout", controllers.AuthLogout(d.Auth, d.Logg))

		r.Route("/api/v1/cart", func(r chi.Router) {
			r.Get("/", controllers.CartGet(d.Cart, d.Logg))
			r.Post("/add", controllers.CartAdd(d.Cart, d.Logg))
			r.Post("/delete", controllers.CartDelete(d.Cart, d.Logg))
		})

		r.Route("/api/v1/orders", func(r chi.Router) {
			r.Post("/", controllers.OrdersCreate(d.Orders, d.Logg))
			r.Get("/", controllers.OrdersList(d.Orders, d.Logg))
			r.Get("/{orderId}", controllers.OrdersDetail(d.Orders, d.Logg))
			r.Get("/{orderId}/status", controllers.OrdersStatus(d.Orders, d.Logg))
			r.Get("/{orderId}/delivery-point", controllers.OrdersDeliveryPoint(d.Orders, d.Delivery, d.Logg))
			r.Post("/{orderId}/payment-link", controllers.PaymentLinkCreate(d.Payments, d.Logg))
		})

		r.Route("/api/admin/v1", func(r chi.Router) {
			r.Use(middleware.RequireRole(enums.UserRoleAdmin, d.Logg))
			r.Post("/goods", controllers.GoodsCreate(d.Goods, d.Logg))
			r.Post("/goods/{goodId}/variations", controllers.VariationsCreate(d.Goods, d.Logg))
			r.Post("/variations/{variationId}/price", controllers.VariationSetPrice(d.Prices, d.Logg))
			r.Get("/variations/{variationId}/prices", controllers.VariationPriceHistory(d.Prices, d.Logg))
		})
	})

	return r
}
