package apperrors

import (
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ErrUnauthorized        ErrorType = "UNAUTHORIZED"
	ErrOverflow            ErrorType = "OVERFLOW"
	ErrAlreadyInitialized  ErrorType = "ALREADY_INITIALIZED"
	ErrAlreadyRegistered   ErrorType = "ALREADY_REGISTERED"
	ErrNotFound            ErrorType = "NOT_FOUND"
	ErrInsufficientCustody ErrorType = "INSUFFICIENT_CUSTODY"
	ErrInsufficientFunds   ErrorType = "INSUFFICIENT_FUNDS"
	ErrInvalidRequest      ErrorType = "INVALID_REQUEST"
	ErrInternal            ErrorType = "INTERNAL_ERROR"
)

// AppError is the standard error struct carried to the transport layer.
type AppError struct {
	Type       ErrorType `json:"code"`
	Message    string    `json:"message"`
	Suggestion string    `json:"suggestion,omitempty"`
	HTTPStatus int       `json:"-"`
	Cause      error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(errType ErrorType, msg string, cause error) *AppError {
	return &AppError{
		Type:       errType,
		Message:    msg,
		Cause:      cause,
		HTTPStatus: mapTypeToStatus(errType),
		Suggestion: mapTypeToSuggestion(errType),
	}
}

func NewInvalidRequest(msg string) *AppError {
	return New(ErrInvalidRequest, msg, nil)
}

func Wrap(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return New(ErrInternal, err.Error(), err)
}

func mapTypeToStatus(t ErrorType) int {
	switch t {
	case ErrInvalidRequest, ErrOverflow:
		return http.StatusBadRequest
	case ErrUnauthorized:
		return http.StatusUnauthorized
	case ErrInsufficientFunds:
		return http.StatusPaymentRequired
	case ErrNotFound:
		return http.StatusNotFound
	case ErrAlreadyInitialized, ErrAlreadyRegistered:
		return http.StatusConflict
	case ErrInsufficientCustody:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func mapTypeToSuggestion(t ErrorType) string {
	switch t {
	case ErrOverflow:
		return "Reduce the requested amount."
	case ErrUnauthorized:
		return "Check the admin key and caller identity."
	case ErrInsufficientFunds:
		return "Top up the paying account before retrying."
	case ErrInsufficientCustody:
		return "Treasury cannot cover this redemption; contact the operator."
	case ErrAlreadyInitialized, ErrAlreadyRegistered:
		return "The record already exists; use the update endpoint instead."
	default:
		return ""
	}
}
