package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zenGate-Global/palmyra-gym/domains/portal/be/service"
	"github.com/zenGate-Global/palmyra-gym/platform/go/apperr"
	"github.com/zenGate-Global/palmyra-gym/platform/go/auth/portal"
	"github.com/zenGate-Global/palmyra-gym/platform/go/httpapi"
	"github.com/zenGate-Global/palmyra-gym/platform/go/requesttrace"
	"github.com/zenGate-Global/palmyra-gym/platform/go/tenant"
)

const (
	loginOperation       = "portalLogin"
	setPasswordOperation = "portalSetPassword"
	invoicesOperation    = "listPortalInvoices"
	membershipsOperation = "listPortalMemberships"
	plansOperation       = "listPortalPlans"
	ordersOperation      = "listPortalOrders"
	trialOperation       = "getPortalTrial"

	maxBodyBytes = 16 << 10
)

type Handler struct {
	svc    service.Service
	logger *zap.Logger
}

func New(svc service.Service, logger *zap.Logger) *Handler {
	if svc == nil {
		panic("portal service is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &Handler{svc: svc, logger: logger}
}

// RegisterPublic mounts the login route, which runs before a member session exists.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Post("/portal/auth/login", h.Login)
}

// Register mounts the member routes; callers wrap them with portal.RequireMember.
func (h *Handler) Register(r chi.Router) {
	r.Post("/portal/auth/set-password", h.SetPassword)
	r.Get("/portal/invoices", h.Invoices)
	r.Get("/portal/memberships", h.Memberships)
	r.Get("/portal/plans", h.Plans)
	r.Get("/portal/store/orders", h.Orders)
	r.Get("/portal/trial", h.Trial)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type setPasswordRequest struct {
	Password string `json:"password"`
}

type itemsResponse[T any] struct {
	Items []T `json:"items"`
}

type trialResponse struct {
	Trial *service.Trial `json:"trial"`
}

func items[T any](in []T) itemsResponse[T] {
	if in == nil {
		in = []T{}
	}
	return itemsResponse[T]{Items: in}
}

// memberScope returns the session member after checking it belongs to the resolved tenant.
func memberScope(r *http.Request) (uuid.UUID, portal.MemberAuth, error) {
	member, err := portal.Require(r.Context())
	if err != nil {
		return uuid.Nil, portal.MemberAuth{}, err
	}
	scope, err := tenant.Require(r.Context())
	if err != nil {
		return uuid.Nil, portal.MemberAuth{}, err
	}
	if scope.ClientID != member.ClientID {
		return uuid.Nil, portal.MemberAuth{}, apperr.ErrUnauthorized
	}
	return scope.ClientID, member, nil
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	scope, err := tenant.Require(r.Context())
	if err != nil {
		httpapi.WriteError(w, r, h.logger, loginOperation, err)
		return
	}

	var body loginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
		httpapi.WriteError(w, r, h.logger, loginOperation, &apperr.ValidationError{Message: "invalid request body"})
		return
	}

	session, err := h.svc.Login(r.Context(), scope.ClientID, service.LoginInput{
		Email:    body.Email,
		Password: body.Password,
		RemoteIP: httpapi.ClientIP(r),
	})
	if err != nil {
		httpapi.WriteError(w, r, h.logger, loginOperation, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	httpapi.WriteJSON(w, http.StatusOK, session)
}

func (h *Handler) SetPassword(w http.ResponseWriter, r *http.Request) {
	clientID, member, err := memberScope(r)
	if err != nil {
		httpapi.WriteError(w, r, h.logger, setPasswordOperation, err)
		return
	}

	var body setPasswordRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
		httpapi.WriteError(w, r, h.logger, setPasswordOperation, &apperr.ValidationError{Message: "invalid request body"})
		return
	}

	audit := requesttrace.FromContextOrAnonymous(r.Context())
	if err := h.svc.SetPassword(r.Context(), audit, clientID, member.MemberID, body.Password); err != nil {
		httpapi.WriteError(w, r, h.logger, setPasswordOperation, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Invoices(w http.ResponseWriter, r *http.Request) {
	clientID, member, err := memberScope(r)
	if err != nil {
		httpapi.WriteError(w, r, h.logger, invoicesOperation, err)
		return
	}
	out, err := h.svc.Invoices(r.Context(), clientID, member.MemberID)
	if err != nil {
		httpapi.WriteError(w, r, h.logger, invoicesOperation, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, items(out))
}

func (h *Handler) Memberships(w http.ResponseWriter, r *http.Request) {
	clientID, member, err := memberScope(r)
	if err != nil {
		httpapi.WriteError(w, r, h.logger, membershipsOperation, err)
		return
	}
	out, err := h.svc.Memberships(r.Context(), clientID, member.MemberID)
	if err != nil {
		httpapi.WriteError(w, r, h.logger, membershipsOperation, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, items(out))
}

func (h *Handler) Plans(w http.ResponseWriter, r *http.Request) {
	clientID, _, err := memberScope(r)
	if err != nil {
		httpapi.WriteError(w, r, h.logger, plansOperation, err)
		return
	}
	out, err := h.svc.Plans(r.Context(), clientID)
	if err != nil {
		httpapi.WriteError(w, r, h.logger, plansOperation, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, items(out))
}

func (h *Handler) Orders(w http.ResponseWriter, r *http.Request) {
	clientID, member, err := memberScope(r)
	if err != nil {
		httpapi.WriteError(w, r, h.logger, ordersOperation, err)
		return
	}
	out, err := h.svc.Orders(r.Context(), clientID, member.MemberID)
	if err != nil {
		httpapi.WriteError(w, r, h.logger, ordersOperation, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, items(out))
}

func (h *Handler) Trial(w http.ResponseWriter, r *http.Request) {
	clientID, member, err := memberScope(r)
	if err != nil {
		httpapi.WriteError(w, r, h.logger, trialOperation, err)
		return
	}
	trial, err := h.svc.Trial(r.Context(), clientID, member.MemberID)
	if err != nil {
		httpapi.WriteError(w, r, h.logger, trialOperation, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, trialResponse{Trial: trial})
}
