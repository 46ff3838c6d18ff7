package types

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// APIError is the error currency of the HTTP surface. Handlers and services
// return it; the global fiber error handler renders it as the standard
// envelope {"error": {"message": ..., "status": ...}}.
type APIError struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

// NewResourceNotFound reports an unknown resource slug.
func NewResourceNotFound(name string) *APIError {
	return &APIError{
		Status:  fiber.StatusNotFound,
		Message: fmt.Sprintf("Resource %s not found", name),
	}
}

// NewRecordNotFound reports an unknown external record id.
func NewRecordNotFound(id string) *APIError {
	return &APIError{
		Status:  fiber.StatusNotFound,
		Message: fmt.Sprintf("Record with id %s not found", id),
	}
}

// NewMethodNotAllowed reports a verb disabled by the resource configuration.
func NewMethodNotAllowed(method string) *APIError {
	return &APIError{
		Status:  fiber.StatusMethodNotAllowed,
		Message: fmt.Sprintf("%s method not allowed for this resource", method),
	}
}

// NewInvalidJSON reports an unparseable request body.
func NewInvalidJSON() *APIError {
	return &APIError{
		Status:  fiber.StatusBadRequest,
		Message: "Invalid JSON in request body",
	}
}

// NewInvalidFields reports body keys outside the resource template schema.
func NewInvalidFields(invalid, allowed []string) *APIError {
	return &APIError{
		Status: fiber.StatusBadRequest,
		Message: fmt.Sprintf("Invalid fields: %s. Allowed fields: %s",
			strings.Join(invalid, ", "), strings.Join(allowed, ", ")),
	}
}

// NewInternalError hides internals behind a generic message.
func NewInternalError() *APIError {
	return &APIError{
		Status:  fiber.StatusInternalServerError,
		Message: "Internal server error",
	}
}
