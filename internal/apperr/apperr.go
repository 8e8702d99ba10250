package apperr

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

// Stable error codes shared with the frontend.
const (
	CodeValidation       = "VALIDATION"
	CodeNotAuthenticated = "NOT_AUTHENTICATED"
	CodeNotAuthorized    = "NOT_AUTHORIZED"
	CodeNotFound         = "NOT_FOUND"
	CodeConflict         = "CONFLICT"
	CodeNotConfigured    = "NOT_CONFIGURED"
	CodeNotImplemented   = "NOT_IMPLEMENTED"
	CodeInternal         = "INTERNAL"
)

// Error is the application error carried from services up to the route
// boundary, where Handler translates it to an HTTP response.
type Error struct {
	Code    string
	Status  int
	Message string
	Details map[string]interface{}
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(message string) *Error {
	return &Error{Code: CodeValidation, Status: fiber.StatusBadRequest, Message: message}
}

func NotAuthenticated(message string) *Error {
	return &Error{Code: CodeNotAuthenticated, Status: fiber.StatusBadRequest, Message: message}
}

func NotAuthorized(message string) *Error {
	return &Error{Code: CodeNotAuthorized, Status: fiber.StatusForbidden, Message: message}
}

func NotFound(message string) *Error {
	return &Error{Code: CodeNotFound, Status: fiber.StatusNotFound, Message: message}
}

func Conflict(message string) *Error {
	return &Error{Code: CodeConflict, Status: fiber.StatusConflict, Message: message}
}

func NotConfigured(message string, details map[string]interface{}) *Error {
	return &Error{Code: CodeNotConfigured, Status: fiber.StatusServiceUnavailable, Message: message, Details: details}
}

func NotImplemented(message string) *Error {
	return &Error{Code: CodeNotImplemented, Status: fiber.StatusNotImplemented, Message: message}
}

func Internal(err error) *Error {
	msg := "erro interno"
	if err != nil {
		msg = err.Error()
	}
	return &Error{Code: CodeInternal, Status: fiber.StatusInternalServerError, Message: msg, Err: err}
}

// Handler is the fiber ErrorHandler. Every error funnels through here; no
// stack trace ever reaches a response body.
func Handler(c *fiber.Ctx, err error) error {
	var appErr *Error
	if errors.As(err, &appErr) {
		if appErr.Status >= 500 {
			slog.Error("request failed", "method", c.Method(), "path", c.Path(), "code", appErr.Code, "error", appErr.Error())
		}
		body := fiber.Map{
			"error":   true,
			"code":    appErr.Code,
			"message": appErr.Message,
		}
		if appErr.Details != nil {
			body["details"] = appErr.Details
		}
		return c.Status(appErr.Status).JSON(body)
	}

	if fiberErr, ok := err.(*fiber.Error); ok {
		code := CodeInternal
		switch fiberErr.Code {
		case fiber.StatusNotFound:
			code = CodeNotFound
		case fiber.StatusBadRequest:
			code = CodeValidation
		}
		return c.Status(fiberErr.Code).JSON(fiber.Map{
			"error":   true,
			"code":    code,
			"message": fiberErr.Message,
		})
	}

	slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error":   true,
		"code":    CodeInternal,
		"message": err.Error(),
	})
}
