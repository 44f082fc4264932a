package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"task-tracker/internal/service"
)

type StatusHandler struct {
	svc    *service.StatusService
	logger *zap.Logger
}

func NewStatusHandler(svc *service.StatusService, logger *zap.Logger) *StatusHandler {
	return &StatusHandler{svc: svc, logger: logger}
}

// ListStatuses handles GET /status.
func (h *StatusHandler) ListStatuses(c *gin.Context) {
	statuses, err := h.svc.List(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err, "error listing statuses")
		return
	}
	c.JSON(http.StatusOK, statuses)
}

// CreateStatus handles POST /status.
func (h *StatusHandler) CreateStatus(c *gin.Context) {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": service.ErrInvalidInput.Error()})
		return
	}

	status, err := h.svc.Create(c.Request.Context(), req.Name)
	if err != nil {
		writeError(c, h.logger, err, "error creating status")
		return
	}
	c.JSON(http.StatusCreated, status)
}
