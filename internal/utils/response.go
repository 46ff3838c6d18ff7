package utils

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/mockforge/mockforge/internal/types"
)

// errorBody is the wire shape of every failure response.
type errorBody struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// ErrorEnvelope is the standard failure envelope. The HTTP status always
// mirrors the embedded status field.
type ErrorEnvelope struct {
	Error errorBody `json:"error"`
}

// ErrorResponse sends the standard error envelope.
func ErrorResponse(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(ErrorEnvelope{
		Error: errorBody{
			Message: message,
			Status:  status,
		},
	})
}

// ErrorHandler renders every error escaping a handler as the standard
// envelope. Wired as the fiber app's global error handler.
func ErrorHandler(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	message := "Internal server error"

	var apiErr *types.APIError
	var fiberErr *fiber.Error
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.Status
		message = apiErr.Message
	case errors.As(err, &fiberErr):
		status = fiberErr.Code
		message = fiberErr.Message
	}

	return ErrorResponse(c, status, message)
}
