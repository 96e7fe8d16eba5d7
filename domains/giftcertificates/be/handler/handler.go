package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/zenGate-Global/palmyra-gym/domains/giftcertificates/be/service"
	"github.com/zenGate-Global/palmyra-gym/platform/go/httpapi"
	"github.com/zenGate-Global/palmyra-gym/platform/go/tenant"
)

const listOperation = "listGiftCertificates"

type Handler struct {
	svc    service.Service
	logger *zap.Logger
}

func New(svc service.Service, logger *zap.Logger) *Handler {
	if svc == nil {
		panic("gift certificate service is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/gift-certificates", h.List)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	scope, err := tenant.Require(r.Context())
	if err != nil {
		httpapi.WriteError(w, r, h.logger, listOperation, err)
		return
	}
	page, err := httpapi.ParsePage(r)
	if err != nil {
		httpapi.WriteError(w, r, h.logger, listOperation, err)
		return
	}

	list, err := h.svc.List(r.Context(), scope.ClientID, service.Query{
		Status: httpapi.QueryString(r, "status"),
		Search: httpapi.QueryString(r, "search"),
	}, page)
	if err != nil {
		httpapi.WriteError(w, r, h.logger, listOperation, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, list)
}
