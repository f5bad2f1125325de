package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/salesdesk/salesdesk/internal/app"
	"github.com/salesdesk/salesdesk/internal/auth"
	"github.com/salesdesk/salesdesk/internal/catalog/customers"
	"github.com/salesdesk/salesdesk/internal/catalog/products"
	"github.com/salesdesk/salesdesk/internal/grn"
	"github.com/salesdesk/salesdesk/internal/orders"
	"github.com/salesdesk/salesdesk/internal/platform/cache"
	"github.com/salesdesk/salesdesk/internal/platform/db"
	"github.com/salesdesk/salesdesk/internal/reports"
	"github.com/salesdesk/salesdesk/internal/shared"
	"github.com/salesdesk/salesdesk/internal/stock"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, report cache disabled", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient == nil {
			return
		}
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	auditLogger := shared.NewAuditLogger(pool)

	authService := auth.NewService(auth.NewRepository(pool))
	authMW := auth.Middleware{Service: authService, Logger: logger}
	authHandler := auth.NewHandler(logger, authService, authMW)

	productsService := products.NewService(products.NewRepository(pool))
	productsHandler := products.NewHandler(logger, productsService, authMW)

	customersService := customers.NewService(customers.NewRepository(pool))
	customersHandler := customers.NewHandler(logger, customersService, authMW)

	stockService := stock.NewService(stock.NewRepository(pool), auditLogger)
	stockHandler := stock.NewHandler(logger, stockService, authMW)

	reportsService := reports.NewService(reports.NewRepository(pool), redisClient, cfg.ReportCacheTTL, logger)
	reportsHandler := reports.NewHandler(logger, reportsService, authMW)

	ordersService := orders.NewService(orders.NewRepository(pool), productsService, stockService, auditLogger, reportsService, cfg.UngatedTransitions)
	ordersHandler := orders.NewHandler(logger, ordersService, authMW)

	grnService := grn.NewService(grn.NewRepository(pool), productsService, stockService, auditLogger)
	grnHandler := grn.NewHandler(logger, grnService, authMW)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		AuthMiddleware:   authMW,
		AuthHandler:      authHandler,
		ProductsHandler:  productsHandler,
		CustomersHandler: customersHandler,
		OrdersHandler:    ordersHandler,
		StockHandler:     stockHandler,
		GRNHandler:       grnHandler,
		ReportsHandler:   reportsHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server", slog.Any("error", err))
		os.Exit(1)
	}
}
