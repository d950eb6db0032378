package response

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Envelope is the standard API response shape shared by all endpoints.
type Envelope struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message,omitempty"`
	Data       interface{} `json:"data,omitempty"`
	Error      string      `json:"error,omitempty"`
	Pagination interface{} `json:"pagination,omitempty"`
}

// Success writes a success response with optional message, data and
// pagination block.
func Success(c *gin.Context, status int, data interface{}, message string, pagination interface{}) {
	c.JSON(status, Envelope{
		Success:    true,
		Message:    message,
		Data:       data,
		Pagination: pagination,
	})
}

// Created is a convenience helper for POST 201 responses.
func Created(c *gin.Context, data interface{}, message string) {
	Success(c, http.StatusCreated, data, message, nil)
}

// NoContent writes a 204 response preserving the envelope for clients that
// always decode JSON.
func NoContent(c *gin.Context, message string) {
	Success(c, http.StatusNoContent, nil, message, nil)
}

// Error writes an error response. The cause, when present, is flattened to
// its message; Go error values marshal to "{}" otherwise.
func Error(c *gin.Context, status int, message string, err error) {
	envelope := Envelope{
		Success: false,
		Message: message,
	}
	if err != nil {
		envelope.Error = err.Error()
	}
	c.JSON(status, envelope)
}

// ErrorWithLog writes an error response and records the cause via slog.
func ErrorWithLog(logger *slog.Logger, c *gin.Context, status int, message string, err error) {
	if logger != nil && err != nil {
		logger.ErrorContext(c.Request.Context(), message, slog.Int("status", status), slog.String("error", err.Error()))
	}

	Error(c, status, message, err)
}
