package grn

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/salesdesk/salesdesk/internal/auth"
	"github.com/salesdesk/salesdesk/internal/platform/httpx"
	"github.com/salesdesk/salesdesk/internal/shared"
)

// Handler wires HTTP endpoints for GRN reconciliation.
type Handler struct {
	logger  *slog.Logger
	service *Service
	mw      auth.Middleware
}

// NewHandler constructs the GRN handler.
func NewHandler(logger *slog.Logger, service *Service, mw auth.Middleware) *Handler {
	return &Handler{logger: logger, service: service, mw: mw}
}

// MountRoutes registers GRN routes. Accounts uploads the supplier document,
// the warehouse verifies it.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.mw.RequireRole(shared.RoleAccounts))
		r.Post("/grn", h.handleUpload)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.mw.RequireRole(shared.RoleLoading))
		r.Post("/grn/{grnID}/verify", h.handleVerify)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.mw.RequireRole(shared.RoleAccounts, shared.RoleLoading))
		r.Get("/grn", h.handleHistory)
		r.Get("/grn/{grnID}", h.handleItems)
	})
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	var req UploadRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	actor, _ := shared.ActorFromContext(r.Context())
	items, err := h.service.Upload(r.Context(), actor, req)
	if err != nil {
		h.respondGRNError(w, "upload batch", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, items)
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	actor, _ := shared.ActorFromContext(r.Context())
	items, err := h.service.Verify(r.Context(), actor, chi.URLParam(r, "grnID"), req)
	if err != nil {
		h.respondGRNError(w, "verify batch", err)
		return
	}
	httpx.JSON(w, http.StatusOK, items)
}

func (h *Handler) handleItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.Items(r.Context(), chi.URLParam(r, "grnID"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, items)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	batches, err := h.service.History(r.Context())
	if err != nil {
		h.logger.Error("list batches", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if batches == nil {
		batches = []BatchSummary{}
	}
	httpx.JSON(w, http.StatusOK, batches)
}

func (h *Handler) respondGRNError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrEmptyBatch):
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
	case errors.Is(err, ErrAlreadyVerified):
		httpx.Problem(w, http.StatusConflict, "Already Verified", err.Error())
	case errors.Is(err, ErrUnknownItem):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Unknown Item", err.Error())
	default:
		if !errors.Is(err, shared.ErrNotFound) {
			h.logger.Error(op, slog.Any("error", err))
		}
		httpx.RespondError(w, err)
	}
}
