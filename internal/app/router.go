package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/salesdesk/salesdesk/internal/auth"
	"github.com/salesdesk/salesdesk/internal/catalog/customers"
	"github.com/salesdesk/salesdesk/internal/catalog/products"
	"github.com/salesdesk/salesdesk/internal/grn"
	"github.com/salesdesk/salesdesk/internal/orders"
	"github.com/salesdesk/salesdesk/internal/reports"
	"github.com/salesdesk/salesdesk/internal/stock"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	AuthMiddleware   auth.Middleware
	AuthHandler      *auth.Handler
	ProductsHandler  *products.Handler
	CustomersHandler *customers.Handler
	OrdersHandler    *orders.Handler
	StockHandler     *stock.Handler
	GRNHandler       *grn.Handler
	ReportsHandler   *reports.Handler
}

// NewRouter constructs the chi.Router. Everything under /api requires an
// authenticated actor; role gating happens per route group inside each
// handler.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}
	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(params.AuthMiddleware.Authenticate)
		params.AuthHandler.MountRoutes(r)
		params.ProductsHandler.MountRoutes(r)
		params.CustomersHandler.MountRoutes(r)
		params.OrdersHandler.MountRoutes(r)
		params.StockHandler.MountRoutes(r)
		params.GRNHandler.MountRoutes(r)
		params.ReportsHandler.MountRoutes(r)
	})

	return r
}
