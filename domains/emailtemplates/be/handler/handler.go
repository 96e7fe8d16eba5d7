package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/zenGate-Global/palmyra-gym/domains/emailtemplates/be/service"
	"github.com/zenGate-Global/palmyra-gym/platform/go/apperr"
	"github.com/zenGate-Global/palmyra-gym/platform/go/httpapi"
	"github.com/zenGate-Global/palmyra-gym/platform/go/requesttrace"
	"github.com/zenGate-Global/palmyra-gym/platform/go/tenant"
)

const (
	listOperation   = "listEmailTemplates"
	updateOperation = "updateEmailTemplate"
	resetOperation  = "resetEmailTemplate"
)

type Handler struct {
	svc    service.Service
	logger *zap.Logger
}

func New(svc service.Service, logger *zap.Logger) *Handler {
	if svc == nil {
		panic("email template service is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &Handler{svc: svc, logger: logger}
}

// RegisterReads mounts the read route; writes need a separate permission.
func (h *Handler) RegisterReads(r chi.Router) {
	r.Get("/email-templates", h.List)
}

func (h *Handler) RegisterWrites(r chi.Router) {
	r.Put("/email-templates/{key}", h.Update)
	r.Post("/email-templates/{key}/reset", h.Reset)
}

type listResponse struct {
	Items []service.Template `json:"items"`
}

type updateRequest struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	scope, err := tenant.Require(r.Context())
	if err != nil {
		httpapi.WriteError(w, r, h.logger, listOperation, err)
		return
	}

	items, err := h.svc.List(r.Context(), scope.ClientID)
	if err != nil {
		httpapi.WriteError(w, r, h.logger, listOperation, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, listResponse{Items: items})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	scope, err := tenant.Require(r.Context())
	if err != nil {
		httpapi.WriteError(w, r, h.logger, updateOperation, err)
		return
	}

	var body updateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpapi.WriteError(w, r, h.logger, updateOperation, &apperr.ValidationError{Message: "invalid request body"})
		return
	}

	tpl, err := h.svc.Update(r.Context(), requesttrace.FromContextOrAnonymous(r.Context()), scope.ClientID, chi.URLParam(r, "key"), service.UpdateInput{
		Subject: body.Subject,
		Body:    body.Body,
	})
	if err != nil {
		httpapi.WriteError(w, r, h.logger, updateOperation, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, tpl)
}

func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	scope, err := tenant.Require(r.Context())
	if err != nil {
		httpapi.WriteError(w, r, h.logger, resetOperation, err)
		return
	}

	tpl, err := h.svc.Reset(r.Context(), requesttrace.FromContextOrAnonymous(r.Context()), scope.ClientID, chi.URLParam(r, "key"))
	if err != nil {
		httpapi.WriteError(w, r, h.logger, resetOperation, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, tpl)
}
