package reports

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/salesdesk/salesdesk/internal/auth"
	"github.com/salesdesk/salesdesk/internal/platform/httpx"
	"github.com/salesdesk/salesdesk/internal/shared"
)

// Handler wires HTTP endpoints for reports.
type Handler struct {
	logger  *slog.Logger
	service *Service
	mw      auth.Middleware
}

// NewHandler constructs the reports handler.
func NewHandler(logger *slog.Logger, service *Service, mw auth.Middleware) *Handler {
	return &Handler{logger: logger, service: service, mw: mw}
}

// MountRoutes registers report routes. Every authenticated role sees the
// dashboard; the heavier projections stay with the review roles.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/reports/dashboard", h.handleDashboard)
	r.Group(func(r chi.Router) {
		r.Use(h.mw.RequireRole(shared.RoleAccounts, shared.RoleDirector))
		r.Get("/reports/stock-levels", h.handleStockLevels)
		r.Get("/reports/orders", h.handleOrderSummary)
	})
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	counts, err := h.service.Dashboard(r.Context())
	if err != nil {
		h.logger.Error("dashboard counts", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, counts)
}

func (h *Handler) handleStockLevels(w http.ResponseWriter, r *http.Request) {
	levels, err := h.service.StockLevels(r.Context())
	if err != nil {
		h.logger.Error("stock levels", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if levels == nil {
		levels = []StockLevel{}
	}
	httpx.JSON(w, http.StatusOK, levels)
}

func (h *Handler) handleOrderSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.OrderSummary(r.Context())
	if err != nil {
		h.logger.Error("order summary", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}
