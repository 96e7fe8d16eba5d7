package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	oapimiddleware "github.com/oapi-codegen/nethttp-middleware"

	platformauth "github.com/zenGate-Global/palmyra-gym/platform/go/auth"
	"github.com/zenGate-Global/palmyra-gym/platform/go/auth/portal"
	"github.com/zenGate-Global/palmyra-gym/platform/go/httpapi"
)

// Security scheme names declared by the API contract.
const (
	StaffAuthScheme  = "staffAuth"
	PortalAuthScheme = "portalAuth"
)

var errNoSession = errors.New("no session for security scheme")

// ValidateAuthenticationViaSwagger satisfies the contract's security requirements from the sessions
// resolved earlier in the chain. Operations with `security: []` never reach this function.
func ValidateAuthenticationViaSwagger(_ context.Context, input *openapi3filter.AuthenticationInput) error {
	if input == nil || input.RequestValidationInput == nil || input.RequestValidationInput.Request == nil {
		return fmt.Errorf("no request in validation input")
	}
	ctx := input.RequestValidationInput.Request.Context()

	switch input.SecuritySchemeName {
	case StaffAuthScheme:
		if _, ok := platformauth.UserFromContext(ctx); !ok {
			return errNoSession
		}
	case PortalAuthScheme:
		if _, ok := portal.MemberFromContext(ctx); !ok {
			return errNoSession
		}
	default:
		return fmt.Errorf("unsupported security scheme %q", input.SecuritySchemeName)
	}
	return nil
}

// NewSpecValidator builds the request validator for spec. Rejections use the JSON error envelope.
func NewSpecValidator(spec *openapi3.T) func(http.Handler) http.Handler {
	return oapimiddleware.OapiRequestValidatorWithOptions(spec, &oapimiddleware.Options{
		Options: openapi3filter.Options{
			AuthenticationFunc: ValidateAuthenticationViaSwagger,
			MultiError:         false,
		},
		ErrorHandler: func(w http.ResponseWriter, message string, statusCode int) {
			if statusCode == http.StatusUnauthorized {
				message = "unauthorized"
			}
			httpapi.WriteJSON(w, statusCode, httpapi.ErrorBody{Error: message})
		},
		SilenceServersWarning: true,
	})
}
