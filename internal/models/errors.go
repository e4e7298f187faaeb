package models

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Stable error codes returned in the errorCode field of every error body.
const (
	CodeExpiredToken         = "EXPIRED_TOKEN"
	CodeMalformedToken       = "MALFORMED_TOKEN"
	CodeInvalidSignature     = "INVALID_SIGNATURE"
	CodeLoggedOutToken       = "LOGGED_OUT_TOKEN"
	CodeInvalidCredentials   = "INVALID_CREDENTIALS"
	CodeAccessDenied         = "ACCESS_DENIED"
	CodeNotFound             = "NOT_FOUND"
	CodeDuplicateLoginID     = "DUPLICATE_LOGIN_ID"
	CodeDuplicateNickname    = "DUPLICATE_NICKNAME"
	CodeDuplicateEmail       = "DUPLICATE_EMAIL"
	CodeDuplicateLike        = "DUPLICATE_LIKE"
	CodeValidation           = "VALIDATION_ERROR"
	CodeMissingPart          = "MISSING_PART"
	CodeUnsupportedMediaType = "UNSUPPORTED_MEDIA_TYPE"
	CodeUnsupportedFormat    = "UNSUPPORTED_FORMAT"
	CodeFileTooLarge         = "FILE_TOO_LARGE"
	CodeRateLimited          = "RATE_LIMITED"
	CodeInternal             = "INTERNAL_ERROR"
)

// ErrorResponse represents a standardized API error response
type ErrorResponse struct {
	ErrorCode string `json:"errorCode"`
	Message   string `json:"message"`
}

// AppError represents an expected, client-visible application error.
type AppError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// HasCode reports whether err is an *AppError carrying code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Status:  fiber.StatusNotFound,
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Status:  fiber.StatusBadRequest,
		Code:    CodeValidation,
		Message: message,
	}
}

func NewMissingPartError(part string) *AppError {
	return &AppError{
		Status:  fiber.StatusBadRequest,
		Code:    CodeMissingPart,
		Message: fmt.Sprintf("Required part %q is missing", part),
	}
}

func NewUnsupportedMediaTypeError(contentType string) *AppError {
	return &AppError{
		Status:  fiber.StatusUnsupportedMediaType,
		Code:    CodeUnsupportedMediaType,
		Message: fmt.Sprintf("Content type %q is not supported here", contentType),
	}
}

// NewAuthError builds a 401 error for one of the token failure codes.
func NewAuthError(code, message string) *AppError {
	return &AppError{
		Status:  fiber.StatusUnauthorized,
		Code:    code,
		Message: message,
	}
}

func NewAccessDeniedError(message string) *AppError {
	return &AppError{
		Status:  fiber.StatusForbidden,
		Code:    CodeAccessDenied,
		Message: message,
	}
}

// NewDuplicateError builds a 409 error; code is one of the DUPLICATE_* codes.
func NewDuplicateError(code, message string) *AppError {
	return &AppError{
		Status:  fiber.StatusConflict,
		Code:    code,
		Message: message,
	}
}

func NewUnsupportedFormatError(message string) *AppError {
	return &AppError{
		Status:  fiber.StatusBadRequest,
		Code:    CodeUnsupportedFormat,
		Message: message,
	}
}

func NewFileTooLargeError(limit int64) *AppError {
	return &AppError{
		Status:  fiber.StatusRequestEntityTooLarge,
		Code:    CodeFileTooLarge,
		Message: fmt.Sprintf("File too large (max %dMB)", limit/(1024*1024)),
	}
}

func NewRateLimitedError() *AppError {
	return &AppError{
		Status:  fiber.StatusTooManyRequests,
		Code:    CodeRateLimited,
		Message: "Too many requests, please try again later",
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Status:  fiber.StatusInternalServerError,
		Code:    CodeInternal,
		Message: "Internal server error",
		Err:     err,
	}
}

// RespondWithError writes the structured error body for appErr.
func RespondWithError(c *fiber.Ctx, appErr *AppError) error {
	status := appErr.Status
	if status == 0 {
		status = fiber.StatusInternalServerError
	}
	return c.Status(status).JSON(ErrorResponse{
		ErrorCode: appErr.Code,
		Message:   appErr.Message,
	})
}
