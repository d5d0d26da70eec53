package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// errorResponse is the uniform error body for every non-2xx response.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func validationError(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, errorResponse{Error: "validation_error", Message: message})
}

func authError(c echo.Context, message string) error {
	return c.JSON(http.StatusUnauthorized, errorResponse{Error: "auth_error", Message: message})
}

func notFoundError(c echo.Context) error {
	return c.JSON(http.StatusNotFound, errorResponse{Error: "not_found", Message: "Task not found"})
}

func conflictError(c echo.Context, message string) error {
	return c.JSON(http.StatusConflict, errorResponse{Error: "conflict", Message: message})
}

// serverError hides internal detail from the client; the cause is logged
// by the caller.
func serverError(c echo.Context) error {
	return c.JSON(http.StatusInternalServerError, errorResponse{Error: "server_error", Message: "Something went wrong, please try again"})
}
