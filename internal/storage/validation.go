// Package storage provides the data persistence layer for the ledger.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/tally/internal/common"
)

// Validation errors.
var (
	ErrNilContext     = errors.New("context cannot be nil")
	ErrEmptyString    = errors.New("string parameter cannot be empty")
	ErrNilParameter   = errors.New("parameter cannot be nil")
	ErrRecordNotFound = fmt.Errorf("record %w", common.ErrNotFound)
	ErrUnknownDialect = errors.New("unknown database dialect")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validatable is any record with a Validate method.
type validatable interface {
	Validate() error
}

// validateRecord checks ctx and a record before a write.
func validateRecord[T any, PT interface {
	*T
	validatable
}](ctx context.Context, record PT, name string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if record == nil {
		return fmt.Errorf("%w: %s", ErrNilParameter, name)
	}
	return record.Validate()
}
