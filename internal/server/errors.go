package server

import (
	"errors"
	"log/slog"
	"strconv"

	"spotboard/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errorHandler is the single place errors become HTTP responses. Handlers
// and middleware return errors; nothing else writes an error body.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		if appErr.Status >= fiber.StatusInternalServerError {
			s.logger.ErrorContext(c.UserContext(), "request failed",
				slog.String("code", appErr.Code),
				slog.String("error", err.Error()),
			)
		}
		return models.RespondWithError(c, appErr)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return models.RespondWithError(c, fromFiberError(fiberErr))
	}

	s.logger.ErrorContext(c.UserContext(), "unhandled error",
		slog.String("path", c.Path()),
		slog.String("error", err.Error()),
	)
	return models.RespondWithError(c, models.NewInternalError(err))
}

// fromFiberError maps errors raised by Fiber itself (unknown routes, body
// limits, parse failures) onto the API's error codes.
func fromFiberError(e *fiber.Error) *models.AppError {
	switch e.Code {
	case fiber.StatusNotFound:
		return &models.AppError{Status: e.Code, Code: models.CodeNotFound, Message: "Resource not found"}
	case fiber.StatusRequestEntityTooLarge:
		return &models.AppError{Status: e.Code, Code: models.CodeFileTooLarge, Message: "Request body is too large"}
	case fiber.StatusUnsupportedMediaType:
		return &models.AppError{Status: e.Code, Code: models.CodeUnsupportedMediaType, Message: e.Message}
	case fiber.StatusBadRequest, fiber.StatusUnprocessableEntity:
		return models.NewValidationError(e.Message)
	case fiber.StatusMethodNotAllowed:
		return &models.AppError{Status: e.Code, Code: models.CodeNotFound, Message: "Resource not found"}
	case fiber.StatusTooManyRequests:
		return models.NewRateLimitedError()
	}
	if e.Code >= fiber.StatusInternalServerError {
		return models.NewInternalError(e)
	}
	return &models.AppError{Status: e.Code, Code: "HTTP_" + strconv.Itoa(e.Code), Message: e.Message}
}
