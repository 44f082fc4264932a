package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"task-tracker/internal/service"
)

type UserHandler struct {
	svc    *service.UserService
	logger *zap.Logger
}

func NewUserHandler(svc *service.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{svc: svc, logger: logger}
}

// CreateUser handles POST /users.
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Active   *bool  `json:"active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": service.ErrInvalidInput.Error()})
		return
	}

	user, err := h.svc.CreateUser(c.Request.Context(), service.CreateUserInput{
		Username: req.Username,
		Password: req.Password,
		Active:   req.Active,
	})
	if err != nil {
		writeError(c, h.logger, err, "error creating user")
		return
	}
	c.JSON(http.StatusCreated, user)
}

// GetUser handles GET /users/:id.
func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": service.ErrUserNotFound.Error()})
		return
	}

	user, err := h.svc.GetUser(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, err, "error fetching user")
		return
	}
	c.JSON(http.StatusOK, user)
}
