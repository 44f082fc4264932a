package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"task-tracker/internal/logger"
	"task-tracker/internal/service"
)

// writeError maps service errors to status codes. Unclassified errors are
// logged and answered with fallback so storage details never leak.
func writeError(c *gin.Context, base *zap.Logger, err error, fallback string) {
	var missing *service.MissingFieldError
	switch {
	case errors.As(err, &missing):
		c.JSON(http.StatusBadRequest, gin.H{"message": missing.Error()})
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, service.ErrInvalidDueDate):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
	case errors.Is(err, service.ErrStatusNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrTaskNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": err.Error()})
	case errors.Is(err, service.ErrStatusExists):
		c.JSON(http.StatusConflict, gin.H{"message": err.Error()})
	default:
		logger.FromContext(c.Request.Context(), base).Error(fallback,
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"message": fallback})
	}
}

// parseID reads a positive numeric path parameter.
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// actorFromHeader returns the caller identity, or nil when the header is
// absent or not a positive integer. The value is trusted as given.
func actorFromHeader(c *gin.Context, header string) *uint {
	raw := strings.TrimSpace(c.GetHeader(header))
	if raw == "" {
		return nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return nil
	}
	actor := uint(id)
	return &actor
}

// queryInt parses an optional integer query parameter, returning 0 when it
// is absent or malformed.
func queryInt(c *gin.Context, name string) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return 0
	}
	return v
}
