package errors

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeNotFound          = "NOT_FOUND"
	CodeValidation        = "VALIDATION_ERROR"
	CodeConflict          = "CONFLICT"
	CodeInternal          = "INTERNAL_ERROR"
	CodeInvalidInput      = "INVALID_INPUT"
	CodeFetchFailure      = "FETCH_FAILURE"
	CodeSubmissionFailure = "SUBMISSION_FAILURE"
)

const genericMessage = "Something went wrong. Please try again."

// AppError is the error every layer hands upward. Message is safe to show
// to a patient; Err is for logs only.
type AppError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
	}
}

func NotFoundWithID(resource, id string) *AppError {
	e := NotFound(resource)
	e.Details = map[string]any{
		"resource": resource,
		"id":       id,
	}
	return e
}

// Validation is raised for input rejected before it reaches storage or,
// on the client, before any network call.
func Validation(message string, details map[string]any) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    details,
	}
}

func InvalidInput(message string) *AppError {
	return &AppError{
		Code:       CodeInvalidInput,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

func Conflict(message string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

func Internal(message string, err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// FetchFailure is a failed read against the booking API. status is the HTTP
// status received, or 0 when the request never completed.
func FetchFailure(resource string, status int, err error) *AppError {
	return &AppError{
		Code:       CodeFetchFailure,
		Message:    fmt.Sprintf("Something went wrong. Unable to fetch %s.", resource),
		HTTPStatus: status,
		Err:        err,
	}
}

// SubmissionFailure carries the server's message for a rejected write.
func SubmissionFailure(message string, status int, err error) *AppError {
	if message == "" {
		message = genericMessage
	}
	return &AppError{
		Code:       CodeSubmissionFailure,
		Message:    message,
		HTTPStatus: status,
		Err:        err,
	}
}

// IsAppError reports whether err is or wraps an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError returns the AppError in err's chain, or wraps err as Internal.
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("An unexpected error occurred", err)
}

// HasCode reports whether err's chain holds an AppError carrying code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// UserMessage is the text a patient sees for err. Causes never leak through
// it, and errors from outside this package fall back to a generic message.
func UserMessage(err error) string {
	var appErr *AppError
	if !errors.As(err, &appErr) || appErr.Message == "" {
		return genericMessage
	}
	return appErr.Message
}
