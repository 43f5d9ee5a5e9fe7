package utils

import (
	"errors"
	"fmt"
)

// ErrorRecordNotFound is returned whenever an id cannot be resolved within
// the caller's company.
var ErrorRecordNotFound = errors.New("record not found")

// ValidationError reports a bad draft or patch. It is always raised before
// any persistence happens.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func NewValidationError(field string, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IllegalTransitionError identifies the exact illegal status pair. No
// mutation occurs when it is returned.
type IllegalTransitionError struct {
	DocumentType string
	From         string
	To           string
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal %s status transition: %s -> %s", e.DocumentType, e.From, e.To)
}

// AllocationConflictError means the number allocator exhausted its bounded
// retries under contention. The whole creation can be retried.
type AllocationConflictError struct {
	CompanyId    string
	DocumentType string
	Attempts     int
}

func (e *AllocationConflictError) Error() string {
	return fmt.Sprintf("could not allocate %s number for company %s after %d attempts", e.DocumentType, e.CompanyId, e.Attempts)
}

// TenantIsolationError is a hard failure: a caller attempted an operation
// without an authorized company scope, or across companies. It is never
// silently downgraded to filtering.
type TenantIsolationError struct {
	Op string
}

func (e *TenantIsolationError) Error() string {
	return fmt.Sprintf("%s: company id is required and must match the authorized tenant", e.Op)
}

func ErrorPanic(err error) {
	if err != nil {
		panic(err)
	}
}
