package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string  `json:"error"`
	Message       string  `json:"message"`
	IDs           []int64 `json:"ids,omitempty"`
	CorrelationID string  `json:"correlationId,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON    = "INVALID_JSON"
	ErrCodeInvalidRequest = "INVALID_REQUEST"
	ErrCodeInvalidPage    = "INVALID_PAGE"
	ErrCodeInvalidStatus  = "INVALID_STATUS"
	ErrCodeDishOnSale     = "DISH_ON_SALE"
	ErrCodeDishInCombo    = "DISH_IN_COMBO"
	ErrCodeDishNotFound   = "DISH_NOT_FOUND"
	ErrCodeUnauthorised   = "UNAUTHORIZED"
	ErrCodeInternalError  = "INTERNAL_ERROR"
)

// DomainError is a user-facing rejection. IDs optionally names the offending dishes.
type DomainError struct {
	Code    string
	Message string
	IDs     []int64
}

func (e *DomainError) Error() string {
	if len(e.IDs) == 0 {
		return e.Message
	}
	parts := make([]string, len(e.IDs))
	for i, id := range e.IDs {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return fmt.Sprintf("%s: %s", e.Message, strings.Join(parts, ","))
}

// Is matches any DomainError carrying the same code.
func (e *DomainError) Is(target error) bool {
	var other *DomainError
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

// WithIDs returns a copy of e naming the given dish ids.
func (e *DomainError) WithIDs(ids ...int64) *DomainError {
	return &DomainError{Code: e.Code, Message: e.Message, IDs: ids}
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// InvalidRequest wraps a validation failure as a user-facing rejection.
func InvalidRequest(err error) *DomainError {
	return NewDomainError(ErrCodeInvalidRequest, err.Error())
}

// IsNotFound reports whether err is a not-found rejection.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrDishNotFound)
}

// Common domain errors
var (
	ErrDishOnSale    = NewDomainError(ErrCodeDishOnSale, "Dish is on sale and cannot be deleted")
	ErrDishInCombo   = NewDomainError(ErrCodeDishInCombo, "Dish is referenced by a combo meal and cannot be deleted")
	ErrDishNotFound  = NewDomainError(ErrCodeDishNotFound, "Dish not found")
	ErrInvalidPage   = NewDomainError(ErrCodeInvalidPage, "Page and page size must be positive")
	ErrInvalidStatus = NewDomainError(ErrCodeInvalidStatus, "Status must be 0 (off sale) or 1 (on sale)")
	ErrEmptyIDs      = NewDomainError(ErrCodeInvalidRequest, "At least one dish id is required")
)
