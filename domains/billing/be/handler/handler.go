package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/zenGate-Global/palmyra-gym/domains/billing/be/service"
	"github.com/zenGate-Global/palmyra-gym/platform/go/httpapi"
	"github.com/zenGate-Global/palmyra-gym/platform/go/tenant"
)

const statusOperation = "getBillingStatus"

type Handler struct {
	svc    service.Service
	logger *zap.Logger
}

func New(svc service.Service, logger *zap.Logger) *Handler {
	if svc == nil {
		panic("billing service is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/billing/status", h.Status)
}

func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	scope, err := tenant.Require(r.Context())
	if err != nil {
		httpapi.WriteError(w, r, h.logger, statusOperation, err)
		return
	}

	status, err := h.svc.Status(r.Context(), scope.ClientID)
	if err != nil {
		httpapi.WriteError(w, r, h.logger, statusOperation, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, status)
}
