package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/zenGate-Global/palmyra-gym/domains/programs/be/service"
	"github.com/zenGate-Global/palmyra-gym/platform/go/httpapi"
	"github.com/zenGate-Global/palmyra-gym/platform/go/tenant"
)

const listOperation = "listPrograms"

type Handler struct {
	svc    service.Service
	logger *zap.Logger
}

func New(svc service.Service, logger *zap.Logger) *Handler {
	if svc == nil {
		panic("program service is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/programs", h.List)
}

type listResponse struct {
	Items []service.Program `json:"items"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	scope, err := tenant.Require(r.Context())
	if err != nil {
		httpapi.WriteError(w, r, h.logger, listOperation, err)
		return
	}
	active, err := httpapi.QueryBool(r, "active")
	if err != nil {
		httpapi.WriteError(w, r, h.logger, listOperation, err)
		return
	}

	programs, err := h.svc.List(r.Context(), scope.ClientID, active)
	if err != nil {
		httpapi.WriteError(w, r, h.logger, listOperation, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, listResponse{Items: programs})
}
