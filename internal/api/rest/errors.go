package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apierrors "github.com/chapmanwm/printsync-web/internal/api/shared/errors"
	"github.com/chapmanwm/printsync-web/internal/logger"
)

// respondBadRequest responds with a bad request error
func respondBadRequest(c *gin.Context, message string, details ...string) {
	c.JSON(http.StatusBadRequest, apierrors.NewBadRequestError(message, details...))
}

// respondNotFound responds with a not found error
func respondNotFound(c *gin.Context, message string, details ...string) {
	c.JSON(http.StatusNotFound, apierrors.NewNotFoundError(message, details...))
}

// respondValidationError responds with a validation error
func respondValidationError(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, apierrors.NewValidationError(message))
}

// respondError maps an executor error to its HTTP status, logging server
// errors. Unknown error types become opaque 500s.
func respondError(c *gin.Context, err error) {
	var apiErr *apierrors.APIError
	if !errors.As(err, &apiErr) {
		logger.Error(err, zap.String("path", c.Request.URL.Path))
		c.JSON(http.StatusInternalServerError, apierrors.NewInternalError("Internal server error"))
		return
	}

	switch apiErr.Code {
	case apierrors.ErrCodeBadRequest, apierrors.ErrCodeValidationFailed:
		c.JSON(http.StatusBadRequest, apiErr)
	case apierrors.ErrCodeNotFound:
		c.JSON(http.StatusNotFound, apiErr)
	case apierrors.ErrCodeUnauthorized:
		c.JSON(http.StatusUnauthorized, apiErr)
	default:
		logger.Error(err, zap.String("path", c.Request.URL.Path))
		c.JSON(http.StatusInternalServerError, apiErr)
	}
}
