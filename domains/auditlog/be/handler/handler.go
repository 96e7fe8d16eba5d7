package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/zenGate-Global/palmyra-gym/domains/auditlog/be/service"
	"github.com/zenGate-Global/palmyra-gym/platform/go/httpapi"
	"github.com/zenGate-Global/palmyra-gym/platform/go/tenant"
)

const (
	listOperation   = "listAuditLog"
	exportOperation = "exportAuditLog"

	exportFilename = "audit-log.csv"
)

// Handler serves the audit log routes of the staff API.
type Handler struct {
	svc    service.Service
	logger *zap.Logger
}

func New(svc service.Service, logger *zap.Logger) *Handler {
	if svc == nil {
		panic("audit log service is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &Handler{svc: svc, logger: logger}
}

// Register mounts the routes on r. Callers apply session and permission middleware.
func (h *Handler) Register(r chi.Router) {
	r.Get("/audit-log", h.List)
	r.Get("/audit-log/export", h.Export)
}

func query(r *http.Request) (service.Query, error) {
	from, err := httpapi.QueryTime(r, "from")
	if err != nil {
		return service.Query{}, err
	}
	to, err := httpapi.QueryTime(r, "to")
	if err != nil {
		return service.Query{}, err
	}
	return service.Query{
		EntityType: httpapi.QueryString(r, "entityType"),
		Search:     httpapi.QueryString(r, "search"),
		From:       from,
		To:         to,
	}, nil
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
	q, err := query(r)
	if err != nil {
		httpapi.WriteError(w, r, h.logger, listOperation, err)
		return
	}

	list, err := h.svc.List(r.Context(), scope.ClientID, q, page)
	if err != nil {
		httpapi.WriteError(w, r, h.logger, listOperation, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	scope, err := tenant.Require(r.Context())
	if err != nil {
		httpapi.WriteError(w, r, h.logger, exportOperation, err)
		return
	}

	q, err := query(r)
	if err != nil {
		httpapi.WriteError(w, r, h.logger, exportOperation, err)
		return
	}

	out, err := h.svc.Export(r.Context(), scope.ClientID, q)
	if err != nil {
		httpapi.WriteError(w, r, h.logger, exportOperation, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+exportFilename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(out))
}
