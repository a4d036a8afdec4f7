package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"account_service/internal/service"

	"github.com/gin-gonic/gin"
)

// bindJSON decodes the request body into dst, answering 400 itself on failure.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		if errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Request content is empty"})
		} else {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid JSON format"})
		}
		return false
	}
	return true
}

// respondError maps a service error to its status code. Unknown errors are logged
// and answered with a generic message so no internal detail reaches the client.
func respondError(c *gin.Context, logger *slog.Logger, op string, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Wrong username or password"})
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"message": "Access denied"})
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
	case errors.Is(err, service.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Session not found"})
	case errors.Is(err, service.ErrUserAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"message": "User already exists with provided email"})
	default:
		logger.ErrorContext(c.Request.Context(), "request failed", "op", op, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "An internal error occurred"})
	}
}
