// Package contracts embeds the HTTP API contract served by apps/api.
package contracts

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed api.yaml
var apiYAML []byte

// APIYAML returns the raw contract document.
func APIYAML() []byte {
	return apiYAML
}

// LoadAPI parses and validates the embedded contract. Each call returns a fresh document, so
// callers may mutate it.
func LoadAPI(ctx context.Context) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx

	spec, err := loader.LoadFromData(apiYAML)
	if err != nil {
		return nil, fmt.Errorf("load api contract: %w", err)
	}
	if err := spec.Validate(ctx); err != nil {
		return nil, fmt.Errorf("validate api contract: %w", err)
	}
	return spec, nil
}
