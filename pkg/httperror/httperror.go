package httperror

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Error is a coded HTTP error carried from handlers to the transport layer.
type Error struct {
	Status  int
	Code    string
	Message string
	Details any
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func New(status int, code, message string, details any) *Error {
	return &Error{
		Status:  status,
		Code:    code,
		Message: message,
		Details: details,
	}
}

func BadRequest(code, message string, details any) *Error {
	return New(fiber.StatusBadRequest, code, message, details)
}

func NotFound(code, message string, details any) *Error {
	return New(fiber.StatusNotFound, code, message, details)
}

func Conflict(code, message string, details any) *Error {
	return New(fiber.StatusConflict, code, message, details)
}

func InternalServerError(code, message string, details any) *Error {
	return New(fiber.StatusInternalServerError, code, message, details)
}
