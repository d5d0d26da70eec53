package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// errorResponse mirrors the backend's uniform error body.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func validationError(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, errorResponse{Error: "validation_error", Message: message})
}

func authError(c echo.Context, message string) error {
	return c.JSON(http.StatusUnauthorized, errorResponse{Error: "auth_error", Message: message})
}

func sessionNotFound(c echo.Context) error {
	return c.JSON(http.StatusNotFound, errorResponse{Error: "not_found", Message: "Session not found or expired"})
}

func serverError(c echo.Context) error {
	return c.JSON(http.StatusInternalServerError, errorResponse{Error: "server_error", Message: "Something went wrong, please try again"})
}
