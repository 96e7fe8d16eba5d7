package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/zenGate-Global/palmyra-gym/domains/staff/be/service"
	"github.com/zenGate-Global/palmyra-gym/platform/go/apperr"
	platformauth "github.com/zenGate-Global/palmyra-gym/platform/go/auth"
	"github.com/zenGate-Global/palmyra-gym/platform/go/httpapi"
	"github.com/zenGate-Global/palmyra-gym/platform/go/tenant"
)

const meOperation = "getCurrentStaff"

type Handler struct {
	svc    service.Service
	logger *zap.Logger
}

func New(svc service.Service, logger *zap.Logger) *Handler {
	if svc == nil {
		panic("staff service is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/auth/me", h.Me)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	creds, ok := platformauth.UserFromContext(r.Context())
	if !ok {
		httpapi.WriteError(w, r, h.logger, meOperation, apperr.ErrUnauthorized)
		return
	}
	scope, err := tenant.Require(r.Context())
	if err != nil {
		httpapi.WriteError(w, r, h.logger, meOperation, err)
		return
	}

	profile, err := h.svc.Me(r.Context(), scope.ClientID, creds.Id)
	if err != nil {
		httpapi.WriteError(w, r, h.logger, meOperation, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, profile)
}
