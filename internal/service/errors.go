package service

import (
	"fmt"

	"go-credit-inventory/internal/repository"
	"go-credit-inventory/pkg/validator"

	"github.com/pkg/errors"
)

// ValidationError reports bad or missing input. The caller can correct and retry.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NotFoundError reports a referenced id that does not exist
type NotFoundError struct {
	Entity string
	ID     interface{}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %v not found", e.Entity, e.ID)
}

// StorageError reports a persistence failure. The operation was aborted and
// nothing it wrote was kept.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: storage failure: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

var (
	ErrProductNotInStock  = &ValidationError{Field: "product_id", Message: "product is not in stock"}
	ErrPaymentNotPositive = &ValidationError{Field: "amount", Message: "payment must be greater than zero"}
	ErrOverpayment        = &ValidationError{Field: "amount", Message: "payment exceeds the remaining balance"}
	ErrProfileExists      = &ValidationError{Field: "username", Message: "username already exists"}
)

func invalid(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// fromValidator turns the first struct validation failure into a ValidationError
func fromValidator(errs []*validator.ErrorResponse) error {
	if len(errs) == 0 {
		return nil
	}
	first := errs[0]
	return &ValidationError{Field: first.FailedField, Message: first.Message()}
}

// storageOrNotFound maps repository errors onto the service taxonomy
func storageOrNotFound(op, entity string, id interface{}, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repository.ErrNotFound) {
		return &NotFoundError{Entity: entity, ID: id}
	}
	return &StorageError{Op: op, Err: err}
}

func storage(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

// passThrough keeps typed service errors returned from inside a db transaction
// and wraps anything else as a storage failure.
func passThrough(op string, err error) error {
	if err == nil {
		return nil
	}
	var ve *ValidationError
	var nf *NotFoundError
	var se *StorageError
	if errors.As(err, &ve) || errors.As(err, &nf) || errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}
