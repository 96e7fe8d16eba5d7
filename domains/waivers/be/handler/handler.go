package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zenGate-Global/palmyra-gym/domains/waivers/be/service"
	"github.com/zenGate-Global/palmyra-gym/platform/go/apperr"
	"github.com/zenGate-Global/palmyra-gym/platform/go/httpapi"
	platformlogging "github.com/zenGate-Global/palmyra-gym/platform/go/logging"
	"github.com/zenGate-Global/palmyra-gym/platform/go/tenant"
)

const (
	pendingOperation    = "listPendingWaivers"
	signedOperation     = "listSignedWaivers"
	documentOperation   = "getSignedWaiverDocument"
	publicDataOperation = "getPublicWaiverData"

	defaultDocumentType = "application/pdf"
)

type Handler struct {
	svc    service.Service
	logger *zap.Logger
}

func New(svc service.Service, logger *zap.Logger) *Handler {
	if svc == nil {
		panic("waiver service is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/waivers/pending", h.Pending)
	r.Get("/waivers/signed/{memberId}", h.Signed)
	r.Get("/waivers/signed/{memberId}/{waiverId}/document", h.Document)
}

func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/public/waiver-data", h.PublicData)
}

type signedResponse struct {
	Items []service.SignedWaiver `json:"items"`
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, apperr.Invalid(name, name+" must be a UUID")
	}
	return id, nil
}

func (h *Handler) Pending(w http.ResponseWriter, r *http.Request) {
	scope, err := tenant.Require(r.Context())
	if err != nil {
		httpapi.WriteError(w, r, h.logger, pendingOperation, err)
		return
	}
	page, err := httpapi.ParsePage(r)
	if err != nil {
		httpapi.WriteError(w, r, h.logger, pendingOperation, err)
		return
	}

	list, err := h.svc.Pending(r.Context(), scope.ClientID, page)
	if err != nil {
		httpapi.WriteError(w, r, h.logger, pendingOperation, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) Signed(w http.ResponseWriter, r *http.Request) {
	scope, err := tenant.Require(r.Context())
	if err != nil {
		httpapi.WriteError(w, r, h.logger, signedOperation, err)
		return
	}
	memberID, err := pathUUID(r, "memberId")
	if err != nil {
		httpapi.WriteError(w, r, h.logger, signedOperation, err)
		return
	}

	items, err := h.svc.Signed(r.Context(), scope.ClientID, memberID)
	if err != nil {
		httpapi.WriteError(w, r, h.logger, signedOperation, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, signedResponse{Items: items})
}

func (h *Handler) Document(w http.ResponseWriter, r *http.Request) {
	scope, err := tenant.Require(r.Context())
	if err != nil {
		httpapi.WriteError(w, r, h.logger, documentOperation, err)
		return
	}
	memberID, err := pathUUID(r, "memberId")
	if err != nil {
		httpapi.WriteError(w, r, h.logger, documentOperation, err)
		return
	}
	waiverID, err := pathUUID(r, "waiverId")
	if err != nil {
		httpapi.WriteError(w, r, h.logger, documentOperation, err)
		return
	}

	doc, err := h.svc.Document(r.Context(), scope.ClientID, memberID, waiverID)
	if err != nil {
		httpapi.WriteError(w, r, h.logger, documentOperation, err)
		return
	}
	defer doc.Body.Close()

	contentType := doc.ContentType
	if contentType == "" {
		contentType = defaultDocumentType
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `inline; filename="waiver-`+waiverID.String()+`.pdf"`)
	w.Header().Set("Cache-Control", "private, no-store")
	if doc.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(doc.Size, 10))
	}
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, doc.Body); err != nil {
		platformlogging.FromRequest(r, h.logger).Warn("waiver document stream interrupted",
			zap.String("waiver_id", waiverID.String()), zap.Error(err))
	}
}

func (h *Handler) PublicData(w http.ResponseWriter, r *http.Request) {
	scope, err := tenant.Require(r.Context())
	if err != nil {
		httpapi.WriteError(w, r, h.logger, publicDataOperation, err)
		return
	}

	data, err := h.svc.PublicData(r.Context(), scope)
	if err != nil {
		httpapi.WriteError(w, r, h.logger, publicDataOperation, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, data)
}
