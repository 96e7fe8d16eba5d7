package httpapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/oapi-codegen/runtime"

	"github.com/zenGate-Global/palmyra-gym/platform/go/apperr"
)

const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// Page is a normalized limit/offset pair.
type Page struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// ParsePage binds the optional limit and offset query parameters, applying defaults.
func ParsePage(r *http.Request) (Page, error) {
	page := Page{Limit: DefaultLimit}

	var limit, offset *int
	if err := runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &limit); err != nil {
		return Page{}, apperr.Invalid("limit", "limit must be an integer")
	}
	if err := runtime.BindQueryParameter("form", true, false, "offset", r.URL.Query(), &offset); err != nil {
		return Page{}, apperr.Invalid("offset", "offset must be an integer")
	}

	if limit != nil {
		if *limit < 1 || *limit > MaxLimit {
			return Page{}, apperr.Invalid("limit", fmt.Sprintf("limit must be between 1 and %d", MaxLimit))
		}
		page.Limit = *limit
	}
	if offset != nil {
		if *offset < 0 {
			return Page{}, apperr.Invalid("offset", "offset must not be negative")
		}
		page.Offset = *offset
	}

	return page, nil
}

// QueryString returns the trimmed query parameter, or nil when absent or blank.
func QueryString(r *http.Request, name string) *string {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil
	}
	return &raw
}

// QueryBool binds an optional boolean query parameter.
func QueryBool(r *http.Request, name string) (*bool, error) {
	var value *bool
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), &value); err != nil {
		return nil, apperr.Invalid(name, name+" must be a boolean")
	}
	return value, nil
}

// QueryTime binds an optional RFC 3339 timestamp query parameter.
func QueryTime(r *http.Request, name string) (*time.Time, error) {
	var value *time.Time
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), &value); err != nil {
		return nil, apperr.Invalid(name, name+" must be an RFC 3339 timestamp")
	}
	return value, nil
}

// List is the envelope of every paginated listing.
type List[T any] struct {
	Items  []T `json:"items"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// NewList echoes the applied page next to the items; a nil slice encodes as [].
func NewList[T any](items []T, total int, page Page) List[T] {
	if items == nil {
		items = []T{}
	}
	return List[T]{Items: items, Total: total, Limit: page.Limit, Offset: page.Offset}
}
