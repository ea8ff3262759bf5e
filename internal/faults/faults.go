// Package faults defines the error taxonomy shared by all domain packages.
// Every user-visible failure is one of the kinds below so HTTP handlers can
// map them to distinct responses.
package faults

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// FieldError describes a single invalid field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries one or more field-scoped rule violations.
// It never implies partial persistence.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add appends a field violation.
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// OrNil returns the error if any field was recorded, nil otherwise.
func (e *ValidationError) OrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// Invalid builds a single-field ValidationError.
func Invalid(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

// AuthorizationError signals the actor's role or lock ownership forbids the
// operation. Distinct from validation so the UI shows "not permitted" rather
// than "fix this field".
type AuthorizationError struct {
	Reason string
}

func (e *AuthorizationError) Error() string {
	if e.Reason == "" {
		return "not permitted"
	}
	return "not permitted: " + e.Reason
}

// NotPermitted builds an AuthorizationError.
func NotPermitted(reason string) *AuthorizationError {
	return &AuthorizationError{Reason: reason}
}

// NotFoundError signals a referenced id does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// NotFound builds a NotFoundError.
func NotFound(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// InfrastructureError signals the store or transport failed. Safe to retry by
// resubmission; no automatic retry is performed.
type InfrastructureError struct {
	Op  string
	Err error
}

func (e *InfrastructureError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *InfrastructureError) Unwrap() error { return e.Err }

// Infra wraps a store/transport failure.
func Infra(op string, err error) *InfrastructureError {
	return &InfrastructureError{Op: op, Err: err}
}

// ConflictError signals an optimistic-concurrency token was stale; the
// caller must re-read and resubmit.
type ConflictError struct {
	Resource string
}

func (e *ConflictError) Error() string {
	return e.Resource + " was modified by someone else"
}

// Conflict builds a ConflictError.
func Conflict(resource string) *ConflictError {
	return &ConflictError{Resource: resource}
}

// RowError records a failure for a single row of a batch operation.
type RowError struct {
	Line   int    `json:"line,omitempty"`
	Ref    string `json:"ref,omitempty"`
	Reason string `json:"reason"`
}

// BatchResult reports the outcome of a non-atomic batch operation. The batch
// as a whole succeeds; failed rows are listed individually.
type BatchResult struct {
	Total  int        `json:"total"`
	Done   int        `json:"done"`
	Failed int        `json:"failed"`
	Errors []RowError `json:"errors,omitempty"`
}

// Fail records one failed row.
func (b *BatchResult) Fail(ref string, reason string) {
	b.Failed++
	b.Errors = append(b.Errors, RowError{Ref: ref, Reason: reason})
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsAuthorization reports whether err is an AuthorizationError.
func IsAuthorization(err error) bool {
	var a *AuthorizationError
	return errors.As(err, &a)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var n *NotFoundError
	return errors.As(err, &n)
}

// IsConflict reports whether err is a ConflictError.
func IsConflict(err error) bool {
	var c *ConflictError
	return errors.As(err, &c)
}

// HTTPStatus maps an error to the response status the handlers use.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case IsValidation(err):
		return http.StatusUnprocessableEntity
	case IsAuthorization(err):
		return http.StatusForbidden
	case IsNotFound(err):
		return http.StatusNotFound
	case IsConflict(err):
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}
