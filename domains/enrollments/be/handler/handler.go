package handler

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/zenGate-Global/palmyra-gym/domains/enrollments/be/service"
	"github.com/zenGate-Global/palmyra-gym/platform/go/apperr"
	"github.com/zenGate-Global/palmyra-gym/platform/go/httpapi"
	"github.com/zenGate-Global/palmyra-gym/platform/go/requesttrace"
	"github.com/zenGate-Global/palmyra-gym/platform/go/tenant"
)

const (
	listOperation   = "listEnrollmentSubmissions"
	submitOperation = "submitEnrollment"

	maxSubmissionBytes = 64 << 10
)

type Handler struct {
	svc    service.Service
	logger *zap.Logger
}

func New(svc service.Service, logger *zap.Logger) *Handler {
	if svc == nil {
		panic("enrollment service is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &Handler{svc: svc, logger: logger}
}

// Register mounts the staff listing.
func (h *Handler) Register(r chi.Router) {
	r.Get("/enrollment-submissions", h.List)
}

// RegisterPublic mounts the unauthenticated submission route.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Post("/public/enrollment-submissions", h.Submit)
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

	list, err := h.svc.List(r.Context(), scope.ClientID, httpapi.QueryString(r, "status"), page)
	if err != nil {
		httpapi.WriteError(w, r, h.logger, listOperation, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	scope, err := tenant.Require(r.Context())
	if err != nil {
		httpapi.WriteError(w, r, h.logger, submitOperation, err)
		return
	}

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxSubmissionBytes))
	if err != nil {
		httpapi.WriteError(w, r, h.logger, submitOperation, &apperr.ValidationError{Message: "request body is too large"})
		return
	}

	sub, err := h.svc.Submit(r.Context(), requesttrace.FromContextOrAnonymous(r.Context()), scope.ClientID, payload)
	if err != nil {
		httpapi.WriteError(w, r, h.logger, submitOperation, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusCreated, sub)
}
