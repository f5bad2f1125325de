package stock

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/salesdesk/salesdesk/internal/auth"
	"github.com/salesdesk/salesdesk/internal/platform/httpx"
	"github.com/salesdesk/salesdesk/internal/shared"
)

// Handler wires HTTP endpoints for the stock ledger.
type Handler struct {
	logger  *slog.Logger
	service *Service
	mw      auth.Middleware
}

// NewHandler constructs the stock handler.
func NewHandler(logger *slog.Logger, service *Service, mw auth.Middleware) *Handler {
	return &Handler{logger: logger, service: service, mw: mw}
}

// MountRoutes registers stock routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.mw.RequireRole(shared.RoleAccounts))
		r.Get("/stock/ledger/{productID}", h.handleLedger)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.mw.RequireRole(shared.RoleDirector))
		r.Post("/stock/adjustments", h.handleAdjustment)
	})
}

type adjustmentRequest struct {
	ProductID int64   `json:"product_id" validate:"required,gt=0"`
	NewQty    float64 `json:"new_quantity" validate:"gte=0"`
	Reason    string  `json:"reason" validate:"required"`
}

func (h *Handler) handleAdjustment(w http.ResponseWriter, r *http.Request) {
	var req adjustmentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := shared.Validate(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	actor, _ := shared.ActorFromContext(r.Context())
	adjustment, err := h.service.ApplyAdjustment(r.Context(), AdjustmentInput{
		ProductID: req.ProductID,
		NewQty:    req.NewQty,
		Reason:    req.Reason,
		Actor:     actor.Username,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrNoChange):
			httpx.Problem(w, http.StatusUnprocessableEntity, "No Change", err.Error())
		case errors.Is(err, ErrProductNotFound):
			httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
		case errors.Is(err, ErrInvalidQuantity):
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		default:
			h.logger.Error("apply adjustment", slog.Any("error", err))
			httpx.RespondError(w, err)
		}
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"product_id":        adjustment.ProductID,
		"adjustment_type":   adjustment.Type,
		"quantity":          adjustment.Quantity,
		"previous_quantity": adjustment.PreviousQty,
		"new_quantity":      adjustment.NewQty,
	})
}

func (h *Handler) handleLedger(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid product id")
		return
	}
	ledger, err := h.service.Ledger(r.Context(), productID)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
			return
		}
		h.logger.Error("build ledger", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	totals := ledger.Totals()
	entries := ledger.Entries()
	rows := make([]map[string]any, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, map[string]any{
			"date":            entry.At,
			"movement":        entry.Kind,
			"quantity":        entry.Quantity,
			"unit":            entry.Unit,
			"running_balance": entry.Balance,
			"reference":       entry.Reference,
			"remarks":         entry.Remarks,
		})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"product_id": ledger.ProductID,
		"product":    ledger.Name,
		"entries":    rows,
		"summary": map[string]any{
			"opening_stock":     totals.Opening,
			"total_in":          totals.TotalIn,
			"total_out":         totals.TotalOut,
			"total_adjustments": totals.TotalAdjust,
			"final_balance":     totals.FinalBalance,
		},
	})
}
