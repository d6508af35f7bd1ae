// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package domain

import (
	"errors"
	"net/http"
	"strconv"
)

// ErrorType represents the semantic category of an error
type ErrorType int

const (
	ErrorTypeValidation  ErrorType = iota // Client-side input validation errors, raised before any network call
	ErrorTypeNotFound                     // Resource not found errors
	ErrorTypeConflict                     // State conflicts within the workflow
	ErrorTypeRequest                      // The calendar API answered with a failure or an unusable payload
	ErrorTypeTransport                    // The calendar API call did not complete
	ErrorTypeInternal                     // Internal errors
	ErrorTypeUnavailable                  // Service unavailable errors
)

// String returns the name used for the error type in logs and notifications.
func (t ErrorType) String() string {
	switch t {
	case ErrorTypeValidation:
		return "validation"
	case ErrorTypeNotFound:
		return "not_found"
	case ErrorTypeConflict:
		return "conflict"
	case ErrorTypeRequest:
		return "request"
	case ErrorTypeTransport:
		return "transport"
	case ErrorTypeUnavailable:
		return "unavailable"
	default:
		return "internal"
	}
}

// DomainError represents an error with semantic type information
type DomainError struct {
	Type    ErrorType
	Message string
	// StatusCode is the upstream HTTP status for request errors, zero otherwise.
	StatusCode int
	Err        error // underlying error for wrapping
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// GetErrorType returns the semantic type of an error
func GetErrorType(err error) ErrorType {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type
	}
	return ErrorTypeInternal // default fallback
}

// GetStatusCode returns the upstream HTTP status carried by a request error, or zero.
func GetStatusCode(err error) int {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.StatusCode
	}
	return 0
}

// Reason returns the human-readable message of an error without its wrapped causes.
func Reason(err error) string {
	if err == nil {
		return ""
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	return err.Error()
}

// IsValidationError reports whether err was raised by client-side validation.
func IsValidationError(err error) bool {
	return GetErrorType(err) == ErrorTypeValidation
}

// IsRequestError reports whether err is an upstream failure response.
func IsRequestError(err error) bool {
	return GetErrorType(err) == ErrorTypeRequest
}

// IsTransportError reports whether err means no response was received.
func IsTransportError(err error) bool {
	return GetErrorType(err) == ErrorTypeTransport
}

// Error constructors for different types
func NewValidationError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeValidation, Message: message, Err: errors.Join(err...)}
}

func NewNotFoundError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeNotFound, Message: message, Err: errors.Join(err...)}
}

func NewConflictError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeConflict, Message: message, Err: errors.Join(err...)}
}

// NewRequestError builds an error for a completed call the server rejected.
// An empty message falls back to the status line, e.g. "Error 500: Internal Server Error".
func NewRequestError(statusCode int, message string, err ...error) *DomainError {
	if message == "" {
		message = StatusLine(statusCode)
	}
	return &DomainError{Type: ErrorTypeRequest, Message: message, StatusCode: statusCode, Err: errors.Join(err...)}
}

func NewTransportError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeTransport, Message: message, Err: errors.Join(err...)}
}

func NewInternalError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeInternal, Message: message, Err: errors.Join(err...)}
}

func NewUnavailableError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeUnavailable, Message: message, Err: errors.Join(err...)}
}

// StatusLine renders a status code the way the booking page shows raw failures.
func StatusLine(statusCode int) string {
	text := http.StatusText(statusCode)
	if text == "" {
		text = "Unknown Status"
	}
	return "Error " + strconv.Itoa(statusCode) + ": " + text
}

// Workflow sentinels.
var (
	// ErrUserNotFound is returned when no host username was routed to the page.
	ErrUserNotFound = NewNotFoundError("user not found")
	// ErrSubmissionInProgress is returned while a booking submission is outstanding.
	ErrSubmissionInProgress = NewConflictError("a booking submission is already in progress")
	// ErrNoSlotSelected is returned when submitting without a selected slot.
	ErrNoSlotSelected = NewConflictError("no time slot selected")
	// ErrNoDateSelected is returned when refreshing before any date was selected.
	ErrNoDateSelected = NewConflictError("no date selected")
	// ErrAvailabilityNotLoaded is returned when selecting a slot outside the Loaded state.
	ErrAvailabilityNotLoaded = NewConflictError("availability is not loaded")
	// ErrSlotNotOffered is returned when selecting a slot that is not in the loaded list.
	ErrSlotNotOffered = NewConflictError("time slot is not offered for the selected date")
	// ErrServiceUnavailable is returned when a component is used before it is wired.
	ErrServiceUnavailable = NewUnavailableError("service unavailable")
)
