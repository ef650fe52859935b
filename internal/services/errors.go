package services

import (
	"errors"
	"fmt"
)

// ErrEmptyCatalog is returned when a query is resolved before any card has been loaded.
var ErrEmptyCatalog = errors.New("catalog is empty")

var ErrCardNotFound = errors.New("card not found")

// CatalogLoadError reports a failed fetch or decode of one catalog collection.
// The previously loaded catalog stays in place when it is returned.
type CatalogLoadError struct {
	Collection string
	Err        error
}

func (e *CatalogLoadError) Error() string {
	if e.Collection == "" {
		return fmt.Sprintf("failed to load catalog: %v", e.Err)
	}
	return fmt.Sprintf("failed to load catalog %s: %v", e.Collection, e.Err)
}

func (e *CatalogLoadError) Unwrap() error {
	return e.Err
}

// MalformedCardError reports a card that lacks a field required to render it.
type MalformedCardError struct {
	Code  string
	Field string
}

func (e *MalformedCardError) Error() string {
	return fmt.Sprintf("malformed card %q: missing %s", e.Code, e.Field)
}
