package orders

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/salesdesk/salesdesk/internal/auth"
	"github.com/salesdesk/salesdesk/internal/platform/httpx"
	"github.com/salesdesk/salesdesk/internal/shared"
)

// Handler wires HTTP endpoints for orders and their approval stages.
type Handler struct {
	logger  *slog.Logger
	service *Service
	mw      auth.Middleware
}

// NewHandler constructs the orders handler.
func NewHandler(logger *slog.Logger, service *Service, mw auth.Middleware) *Handler {
	return &Handler{logger: logger, service: service, mw: mw}
}

// MountRoutes registers order routes. Each approval stage is writable by
// exactly one role; listings are shared across the review roles.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.mw.RequireRole(shared.RoleSales, shared.RoleAccounts, shared.RoleDirector, shared.RoleLoading))
		r.Get("/orders", h.handleList)
		r.Get("/orders/{orderNo}", h.handleGet)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.mw.RequireRole(shared.RoleSales))
		r.Post("/orders", h.handleCreate)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.mw.RequireRole(shared.RoleAccounts))
		r.Get("/orders/queue/accounts", h.handlePendingAccounts)
		r.Put("/orders/{orderNo}/accounts-status", h.handleAccountsStatus)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.mw.RequireRole(shared.RoleDirector))
		r.Get("/orders/queue/director", h.handleDirectorQueue)
		r.Put("/orders/{orderNo}/director-status", h.handleDirectorStatus)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.mw.RequireRole(shared.RoleLoading))
		r.Get("/orders/queue/loading", h.handleAwaitingLoading)
		r.Get("/orders/history/loading", h.handleLoadingHistory)
		r.Put("/orders/{orderNo}/loading", h.handleLoading)
	})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	actor, _ := shared.ActorFromContext(r.Context())
	order, err := h.service.Create(r.Context(), actor, req)
	if err != nil {
		h.respondOrderError(w, "create order", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, order)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.Get(r.Context(), chi.URLParam(r, "orderNo"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	if status := r.URL.Query().Get("accounts_status"); status != "" {
		h.respondList(w, r, func(ctx context.Context) ([]OrderWithCustomer, error) {
			return h.service.ByAccountsStatus(ctx, AccountsStatus(status))
		})
		return
	}
	h.respondList(w, r, h.service.ListAll)
}

func (h *Handler) handlePendingAccounts(w http.ResponseWriter, r *http.Request) {
	h.respondList(w, r, h.service.PendingAccounts)
}

func (h *Handler) handleDirectorQueue(w http.ResponseWriter, r *http.Request) {
	h.respondList(w, r, h.service.DirectorQueue)
}

func (h *Handler) handleAwaitingLoading(w http.ResponseWriter, r *http.Request) {
	h.respondList(w, r, h.service.AwaitingLoading)
}

func (h *Handler) handleLoadingHistory(w http.ResponseWriter, r *http.Request) {
	h.respondList(w, r, h.service.LoadingHistory)
}

func (h *Handler) handleAccountsStatus(w http.ResponseWriter, r *http.Request) {
	h.handleStatusUpdate(w, r, h.service.SetAccountsStatus)
}

func (h *Handler) handleDirectorStatus(w http.ResponseWriter, r *http.Request) {
	h.handleStatusUpdate(w, r, h.service.SetDirectorStatus)
}

func (h *Handler) handleLoading(w http.ResponseWriter, r *http.Request) {
	var req LoadingUpdateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	actor, _ := shared.ActorFromContext(r.Context())
	if err := h.service.UpdateLoading(r.Context(), actor, chi.URLParam(r, "orderNo"), req); err != nil {
		h.respondOrderError(w, "update loading", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type statusUpdateFn func(ctx context.Context, actor shared.Actor, orderNo string, req StatusUpdateRequest) error

func (h *Handler) handleStatusUpdate(w http.ResponseWriter, r *http.Request, update statusUpdateFn) {
	var req StatusUpdateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	actor, _ := shared.ActorFromContext(r.Context())
	if err := update(r.Context(), actor, chi.URLParam(r, "orderNo"), req); err != nil {
		h.respondOrderError(w, "update status", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type listFn func(ctx context.Context) ([]OrderWithCustomer, error)

func (h *Handler) respondList(w http.ResponseWriter, r *http.Request, list listFn) {
	orders, err := list(r.Context())
	if err != nil {
		h.respondOrderError(w, "list orders", err)
		return
	}
	if orders == nil {
		orders = []OrderWithCustomer{}
	}
	httpx.JSON(w, http.StatusOK, orders)
}

func (h *Handler) respondOrderError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrUnknownStatus), errors.Is(err, ErrEmptyOrder), errors.Is(err, ErrTotalMismatch):
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
	case errors.Is(err, ErrStageNotReady):
		httpx.Problem(w, http.StatusConflict, "Stage Not Ready", err.Error())
	case errors.Is(err, ErrLoadingSettled):
		httpx.Problem(w, http.StatusConflict, "Loading Settled", err.Error())
	case errors.Is(err, ErrUnknownItem):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Unknown Item", err.Error())
	default:
		if !errors.Is(err, shared.ErrNotFound) {
			h.logger.Error(op, slog.Any("error", err))
		}
		httpx.RespondError(w, err)
	}
}
