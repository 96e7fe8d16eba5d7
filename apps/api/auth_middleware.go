package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	platformauth "github.com/zenGate-Global/palmyra-gym/platform/go/auth"
	"github.com/zenGate-Global/palmyra-gym/platform/go/gcp"
)

var errPortalToken = errors.New("portal session token presented to staff auth")

// buildStaffAuth selects the token verifier for staff sessions. Member portal tokens share the bearer
// header, so the extractor drops them and leaves them to portal.Authenticate.
func buildStaffAuth(ctx context.Context, cfg config, logger *zap.Logger) (func(http.Handler) http.Handler, error) {
	var verify platformauth.VerifyFunc
	switch cfg.AuthProvider {
	case "firebase":
		fbAuth, err := gcp.InitFirebaseAuth(ctx, cfg.FirebaseConfig)
		if err != nil {
			return nil, fmt.Errorf("init firebase auth: %w", err)
		}
		verify = platformauth.FirebaseTokenVerifier(fbAuth)
	case "dev":
		logger.Warn("using dev auth middleware; do not use in production")
		verify = platformauth.UnsignedTokenVerifier()
	default:
		return nil, fmt.Errorf("unsupported auth provider %q", cfg.AuthProvider)
	}

	return platformauth.JWT(verify, staffCredentials), nil
}

func staffCredentials(claims map[string]interface{}) (*platformauth.UserCredentials, error) {
	if typ, _ := claims["typ"].(string); typ == "portal" {
		return nil, errPortalToken
	}
	return platformauth.DefaultCredentialExtractor(claims)
}
