package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/teleshopapp/teleshop-backend/api/controllers"
	"github.com/teleshopapp/teleshop-backend/api/routes"
	"github.com/teleshopapp/teleshop-backend/internal/auth"
	"github.com/teleshopapp/teleshop-backend/internal/cart"
	"github.com/teleshopapp/teleshop-backend/internal/delivery"
	"github.com/teleshopapp/teleshop-backend/internal/goods"
	"github.com/teleshopapp/teleshop-backend/internal/orders"
	"github.com/teleshopapp/teleshop-backend/internal/payments"
	"github.com/teleshopapp/teleshop-backend/internal/prices"
	"github.com/teleshopapp/teleshop-backend/internal/users"
	"github.com/teleshopapp/teleshop-backend/pkg/auth/session"
	"github.com/teleshopapp/teleshop-backend/pkg/cdek"
	"github.com/teleshopapp/teleshop-backend/pkg/config"
	"github.com/teleshopapp/teleshop-backend/pkg/db"
	"github.com/teleshopapp/teleshop-backend/pkg/logger"
	"github.com/teleshopapp/teleshop-backend/pkg/migrate"
	"github.com/teleshopapp/teleshop-backend/pkg/redis"
	"github.com/teleshopapp/teleshop-backend/pkg/yookassa"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	yookassaClient, err := yookassa.NewClient(context.Background(), cfg.YooKassa, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create yookassa client", err)
		os.Exit(1)
	}
	cdekClient, err := cdek.NewClient(context.Background(), cfg.CDEK, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create cdek client", err)
		os.Exit(1)
	}

	usersRepo := users.NewRepository(dbClient.DB())
	goodsRepo := goods.NewRepository(dbClient.DB())
	pricesRepo := prices.NewRepository(dbClient.DB())
	cartRepo := cart.NewRepository(dbClient.DB())
	ordersRepo := orders.NewRepository(dbClient.DB())
	paymentsRepo := payments.NewRepository(dbClient.DB())

	authService, err := auth.NewService(usersRepo, sessionManager, cfg.JWT, cfg.Password)
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}
	goodsService, err := goods.NewService(goodsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create goods service", err)
		os.Exit(1)
	}
	pricesService, err := prices.NewService(pricesRepo, goodsRepo, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create prices service", err)
		os.Exit(1)
	}
	cartService, err := cart.NewService(cartRepo, goodsService)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	cdekDriver, err := delivery.NewCDEKDriver(cdekClient, cfg.CDEK)
	if err != nil {
		logg.Error(context.Background(), "failed to create cdek driver", err)
		os.Exit(1)
	}
	deliveryRegistry, err := delivery.NewRegistry(cdekDriver)
	if err != nil {
		logg.Error(context.Background(), "failed to create delivery registry", err)
		os.Exit(1)
	}
	deliveryService, err := delivery.NewService(ordersRepo, deliveryRegistry, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create delivery service", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(ordersRepo, goodsService, cartService, deliveryService, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	yookassaDriver, err := payments.NewYooKassaDriver(yookassaClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create yookassa driver", err)
		os.Exit(1)
	}
	paymentsRegistry, err := payments.NewRegistry(yookassaDriver, payments.NewCloudPaymentsDriver())
	if err != nil {
		logg.Error(context.Background(), "failed to create payments registry", err)
		os.Exit(1)
	}
	paymentsService, err := payments.NewService(paymentsRepo, ordersService, paymentsRegistry, deliveryService, dbClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create payments service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Cfg:         cfg,
			Logg:        logg,
			Sessions:    sessionManager,
			Idempotency: redisClient,
			Pingers: map[string]controllers.Pinger{
				"postgres": dbClient,
				"redis":    redisClient,
			},
			Auth:     authService,
			Goods:    goodsService,
			Prices:   pricesService,
			Cart:     cartService,
			Orders:   ordersService,
			Payments: paymentsService,
			Delivery: deliveryService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
