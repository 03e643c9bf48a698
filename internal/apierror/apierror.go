// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Code classifies an API error. Codes map 1:1 to HTTP statuses via Status().
type Code string

const (
	CodeValidation          Code = "ValidationError"
	CodeProductNotFound     Code = "ProductNotFound"
	CodeInsufficientStock   Code = "InsufficientStock"
	CodeAlreadyCancelled    Code = "AlreadyCancelled"
	CodeNotFound            Code = "NotFound"
	CodeDatabaseUnavailable Code = "DatabaseUnavailable"
	CodeInternal            Code = "InternalError"
)

// Error is the canonical service-layer error. It travels from workflow code up
// to handlers, which render it as a Response with the matching HTTP status.
type Error struct {
	Code    Code
	Message string
	Details string
}

func (e *Error) Error() string {
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}

// Response is the uniform error body: {"error": ..., "details": ...}.
type Response struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func Validation(details string) *Error {
	return &Error{Code: CodeValidation, Message: "validation failed", Details: details}
}

func ProductNotFound(name string) *Error {
	return &Error{
		Code:    CodeProductNotFound,
		Message: "product not found",
		Details: fmt.Sprintf("no matching catalog item for %q", name),
	}
}

func InsufficientStock(name string, available int) *Error {
	return &Error{
		Code:    CodeInsufficientStock,
		Message: "insufficient stock",
		Details: fmt.Sprintf("%s has only %d in stock", name, available),
	}
}

func AlreadyCancelled(at time.Time) *Error {
	return &Error{
		Code:    CodeAlreadyCancelled,
		Message: "slip already cancelled",
		Details: "cancelled at " + at.UTC().Format(time.RFC3339),
	}
}

func NotFound(what string) *Error {
	return &Error{Code: CodeNotFound, Message: what + " not found"}
}

func Unavailable(details string) *Error {
	return &Error{Code: CodeDatabaseUnavailable, Message: "datastore unavailable", Details: details}
}

func Internal() *Error {
	return &Error{Code: CodeInternal, Message: "internal server error"}
}

// Status maps an error code to its HTTP status.
func Status(c Code) int {
	switch c {
	case CodeValidation, CodeProductNotFound, CodeInsufficientStock, CodeAlreadyCancelled:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeDatabaseUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ResponseFor renders any error as (status, body). Unknown errors collapse to
// a 500 with no internals exposed.
func ResponseFor(err error) (int, Response) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return Status(apiErr.Code), Response{Error: apiErr.Message, Details: apiErr.Details}
	}
	return http.StatusInternalServerError, Response{Error: "internal server error"}
}
