// Package httpapi maps service results and failures onto the JSON transport envelope.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/zenGate-Global/palmyra-gym/platform/go/apperr"
	platformlogging "github.com/zenGate-Global/palmyra-gym/platform/go/logging"
	"github.com/zenGate-Global/palmyra-gym/platform/go/tenant"
)

const internalErrorMessage = "internal server error"

// ErrorBody is the client-visible failure envelope.
type ErrorBody struct {
	Error  string             `json:"error"`
	Fields apperr.FieldErrors `json:"fields,omitempty"`
}

// WriteJSON serializes body with the given status code.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(body)
}

// Classify maps an error onto a status code and a body that is safe to return to clients.
func Classify(err error) (int, ErrorBody) {
	var validationErr *apperr.ValidationError
	switch {
	case err == nil:
		return http.StatusOK, ErrorBody{}
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, ErrorBody{Error: validationErr.Error(), Fields: validationErr.Fields}
	case errors.Is(err, apperr.ErrUnauthorized):
		return http.StatusUnauthorized, ErrorBody{Error: "unauthorized"}
	case errors.Is(err, tenant.ErrTenantNotResolved):
		return http.StatusUnauthorized, ErrorBody{Error: tenant.ErrTenantNotResolved.Error()}
	case errors.Is(err, apperr.ErrForbidden):
		return http.StatusForbidden, ErrorBody{Error: "forbidden"}
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound, ErrorBody{Error: err.Error()}
	case errors.Is(err, apperr.ErrRateLimited):
		return http.StatusTooManyRequests, ErrorBody{Error: apperr.ErrRateLimited.Error()}
	default:
		return http.StatusInternalServerError, ErrorBody{Error: internalErrorMessage}
	}
}

// WriteError classifies err, logs it against the request-scoped logger and writes the envelope.
// The cause of a 5xx is logged only; the body always carries the generic message.
func WriteError(w http.ResponseWriter, r *http.Request, fallback *zap.Logger, op string, err error) {
	status, body := Classify(err)

	logger := platformlogging.FromRequest(r, fallback)
	if logger != nil {
		fields := []zap.Field{
			zap.String("operation", op),
			zap.Int("status", status),
			zap.Error(err),
		}
		switch {
		case status >= http.StatusInternalServerError:
			logger.Error("request failed", fields...)
		case status == http.StatusNotFound:
			logger.Info("resource not found", fields...)
		default:
			logger.Warn("request rejected", fields...)
		}
	}

	WriteJSON(w, status, body)
}
