package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors, matched with errors.Is. The structured errors below unwrap
// to one of these.
var (
	ErrAccessDenied       = errors.New("access denied")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrAlreadySettled     = errors.New("already settled")
	ErrStore              = errors.New("store failure")
	ErrValidation         = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("invalid phone number or password")
)

// AccessDeniedError is returned when the actor's role or ownership check fails.
type AccessDeniedError struct {
	Action string
}

func (e *AccessDeniedError) Error() string {
	return fmt.Sprintf("access denied: %s", e.Action)
}

func (e *AccessDeniedError) Unwrap() error { return ErrAccessDenied }

// NotFoundError is returned when a referenced entity does not exist.
type NotFoundError struct {
	Entity string
	ID     int32
}

func NewNotFoundError(entity string, id int32) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// ConflictError is a business rule violation, such as a second active loan.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return e.Reason
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// AlreadySettledError guards settle against double debits.
type AlreadySettledError struct {
	RecordID int32
	Status   RecordStatus
}

func (e *AlreadySettledError) Error() string {
	return fmt.Sprintf("record %d already settled (status %s)", e.RecordID, e.Status)
}

func (e *AlreadySettledError) Unwrap() error { return ErrAlreadySettled }

// StoreError wraps a persistence failure.
type StoreError struct {
	Op  string
	Err error
}

func NewStoreError(op string, err error) *StoreError {
	return &StoreError{Op: op, Err: err}
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

// Unwrap exposes both the sentinel and the driver error.
func (e *StoreError) Unwrap() []error { return []error{ErrStore, e.Err} }

// ValidationError reports a malformed request field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// IsClientError reports whether err was caused by the caller rather than the system.
func IsClientError(err error) bool {
	return errors.Is(err, ErrAccessDenied) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrAlreadySettled) ||
		errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidCredentials)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
