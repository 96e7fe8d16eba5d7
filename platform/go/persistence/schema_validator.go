package persistence

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/zenGate-Global/palmyra-gym/platform/go/apperr"
)

// SchemaValidator validates payloads against JSON Schemas compiled via santhosh-tekuri/jsonschema.
type SchemaValidator struct {
	mu    sync.RWMutex
	cache map[string]*jsonschema.Schema
}

// NewSchemaValidator returns a validator with an empty schema cache.
func NewSchemaValidator() *SchemaValidator {
	return &SchemaValidator{
		cache: make(map[string]*jsonschema.Schema),
	}
}

// Validate checks payload against the schema registered under name. Schema violations come back
// as *apperr.ValidationError keyed by JSON pointer; a broken schema is an internal error.
func (v *SchemaValidator) Validate(name string, schema, payload []byte) error {
	if len(bytes.TrimSpace(payload)) == 0 {
		return &apperr.ValidationError{Message: "payload is required"}
	}

	compiled, err := v.getOrCompile(name, schema)
	if err != nil {
		return err
	}

	var document any
	if err := json.Unmarshal(payload, &document); err != nil {
		return &apperr.ValidationError{Message: "payload must be valid JSON"}
	}

	if err := compiled.Validate(document); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			return &apperr.ValidationError{Message: "payload does not match schema", Fields: fieldErrors(ve)}
		}
		return fmt.Errorf("schema validation: %w", err)
	}

	return nil
}

func fieldErrors(ve *jsonschema.ValidationError) apperr.FieldErrors {
	fields := apperr.FieldErrors{}
	for _, e := range ve.BasicOutput().Errors {
		if e.Error == "" || strings.HasPrefix(e.Error, "doesn't validate with") {
			continue
		}
		loc := e.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		fields.Add(loc, e.Error)
	}
	for _, msgs := range fields {
		sort.Strings(msgs)
	}
	return fields
}

func (v *SchemaValidator) getOrCompile(name string, schema []byte) (*jsonschema.Schema, error) {
	key := "memory://schemas/" + name

	v.mu.RLock()
	compiled, ok := v.cache[key]
	v.mu.RUnlock()
	if ok {
		return compiled, nil
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	// another goroutine may have populated the cache while we were waiting
	if compiled, ok = v.cache[key]; ok {
		return compiled, nil
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(key, bytes.NewReader(schema)); err != nil {
		return nil, fmt.Errorf("register schema %s: %w", name, err)
	}

	newCompiled, err := compiler.Compile(key)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}

	v.cache[key] = newCompiled
	return newCompiled, nil
}
