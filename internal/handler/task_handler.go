package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"task-tracker/internal/service"
)

const (
	msgTaskNotFound  = "task not found"
	msgCreateFailed  = "error creating task"
	msgListFailed    = "error listing tasks"
	msgGetFailed     = "error fetching task"
	msgUpdateFailed  = "error updating task"
	msgDeleteFailed  = "error deleting task"
	msgInvalidUpdate = "invalid request body"
)

// taskRequest is the JSON body of create, replace and partial update.
// Pointers distinguish an absent field from a zero value.
type taskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	DueDate     *string `json:"dueDate"`
	Comments    *string `json:"comments"`
	IsPublic    *bool   `json:"isPublic"`
	StatusID    *uint   `json:"statusId"`
	UserID      *uint   `json:"userId"`
}

func (r taskRequest) toUpdate() service.TaskUpdate {
	return service.TaskUpdate{
		Title:       r.Title,
		Description: r.Description,
		DueDate:     r.DueDate,
		Comments:    r.Comments,
		IsPublic:    r.IsPublic,
		StatusID:    r.StatusID,
		UserID:      r.UserID,
	}
}

type TaskHandler struct {
	svc         *service.TaskService
	actorHeader string
	logger      *zap.Logger
}

func NewTaskHandler(svc *service.TaskService, actorHeader string, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{svc: svc, actorHeader: actorHeader, logger: logger}
}

// CreateTask handles POST /tasks.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": service.ErrInvalidInput.Error()})
		return
	}

	input := service.CreateTaskInput{
		Title:       deref(req.Title),
		Description: deref(req.Description),
		DueDate:     deref(req.DueDate),
		Comments:    deref(req.Comments),
		IsPublic:    req.IsPublic,
		ActorID:     actorFromHeader(c, h.actorHeader),
	}
	if req.StatusID != nil {
		input.StatusID = *req.StatusID
	}

	task, err := h.svc.CreateTask(c.Request.Context(), input)
	if err != nil {
		writeError(c, h.logger, err, msgCreateFailed)
		return
	}
	c.JSON(http.StatusCreated, task)
}

// ListTasks handles GET /tasks?page=&limit=.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	page, err := h.svc.ListTasks(c.Request.Context(), service.ListTasksInput{
		ActorID: actorFromHeader(c, h.actorHeader),
		Page:    queryInt(c, "page"),
		Limit:   queryInt(c, "limit"),
	})
	if err != nil {
		writeError(c, h.logger, err, msgListFailed)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetTask handles GET /tasks/:id.
func (h *TaskHandler) GetTask(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": msgTaskNotFound})
		return
	}

	task, err := h.svc.GetTask(c.Request.Context(), id, actorFromHeader(c, h.actorHeader))
	if err != nil {
		writeError(c, h.logger, err, msgGetFailed)
		return
	}
	c.JSON(http.StatusOK, task)
}

// ReplaceTask handles PUT /tasks/:id.
func (h *TaskHandler) ReplaceTask(c *gin.Context) {
	id, req, ok := h.bindUpdate(c)
	if !ok {
		return
	}

	task, err := h.svc.ReplaceTask(c.Request.Context(), id, req.toUpdate(), actorFromHeader(c, h.actorHeader))
	if err != nil {
		writeError(c, h.logger, err, msgUpdateFailed)
		return
	}
	c.JSON(http.StatusOK, task)
}

// UpdateTask handles PATCH /tasks/:id.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	id, req, ok := h.bindUpdate(c)
	if !ok {
		return
	}

	task, err := h.svc.UpdateTask(c.Request.Context(), id, req.toUpdate(), actorFromHeader(c, h.actorHeader))
	if err != nil {
		writeError(c, h.logger, err, msgUpdateFailed)
		return
	}
	c.JSON(http.StatusOK, task)
}

// DeleteTask handles DELETE /tasks/:id.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": msgTaskNotFound})
		return
	}

	if err := h.svc.DeleteTask(c.Request.Context(), id, actorFromHeader(c, h.actorHeader)); err != nil {
		writeError(c, h.logger, err, msgDeleteFailed)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *TaskHandler) bindUpdate(c *gin.Context) (uint, taskRequest, bool) {
	var req taskRequest
	id, ok := parseID(c, "id")
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": msgTaskNotFound})
		return 0, req, false
	}
	// An empty body is an update with no fields, not a malformed one.
	if c.Request.Body == nil || c.Request.Body == http.NoBody {
		return id, req, true
	}
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"message": msgInvalidUpdate})
		return 0, req, false
	}
	return id, req, true
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
