package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"task-tracker/internal/model"
	"task-tracker/internal/repository"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// dueDateLayouts are tried in order when parsing a due date.
var dueDateLayouts = []string{"2006-01-02", time.RFC3339, time.RFC3339Nano}

// CreateTaskInput represents data required to create a task. The actor
// becomes the owner and is recorded in the audit log.
type CreateTaskInput struct {
	Title       string
	Description string
	DueDate     string
	Comments    string
	StatusID    uint
	IsPublic    *bool
	ActorID     *uint
}

// TaskUpdate carries optional field changes. A nil field is left untouched.
type TaskUpdate struct {
	Title       *string
	Description *string
	DueDate     *string
	Comments    *string
	IsPublic    *bool
	StatusID    *uint
	UserID      *uint
}

// ListTasksInput selects one page of tasks visible to ActorID.
type ListTasksInput struct {
	ActorID *uint
	Page    int
	Limit   int
}

// TaskPage is the paginated listing envelope.
type TaskPage struct {
	Page       int                 `json:"page"`
	Limit      int                 `json:"limit"`
	Total      int64               `json:"total"`
	TotalPages int                 `json:"totalPages"`
	Data       []model.TaskSummary `json:"data"`
}

// TaskService wraps task-related business logic.
type TaskService struct {
	taskRepo   *repository.TaskRepository
	statusRepo *repository.StatusRepository
	userRepo   *repository.UserRepository
	audit      *AuditService
}

func NewTaskService(taskRepo *repository.TaskRepository, statusRepo *repository.StatusRepository, userRepo *repository.UserRepository, audit *AuditService) *TaskService {
	return &TaskService{taskRepo: taskRepo, statusRepo: statusRepo, userRepo: userRepo, audit: audit}
}

func (s *TaskService) CreateTask(ctx context.Context, input CreateTaskInput) (*model.Task, error) {
	if input.Title == "" || input.Description == "" || input.DueDate == "" || input.StatusID == 0 {
		return nil, ErrInvalidInput
	}
	dueDate, err := parseDueDate(input.DueDate)
	if err != nil {
		return nil, ErrInvalidInput
	}
	if input.ActorID == nil {
		return nil, ErrInvalidInput
	}

	status, err := s.lookupStatus(ctx, input.StatusID)
	if err != nil {
		return nil, err
	}
	owner, err := s.lookupUser(ctx, *input.ActorID)
	if err != nil {
		return nil, err
	}

	isPublic := true
	if input.IsPublic != nil {
		isPublic = *input.IsPublic
	}

	task := model.Task{
		Title:       input.Title,
		Description: input.Description,
		DueDate:     dueDate,
		Comments:    input.Comments,
		IsPublic:    isPublic,
		StatusID:    status.ID,
		Status:      status,
		UserID:      &owner.ID,
		User:        owner,
	}
	if err := s.taskRepo.Create(ctx, &task); err != nil {
		return nil, err
	}

	if err := s.audit.Append(ctx, model.ActionCreate, model.EntityTask, task.ID, input.ActorID, "Task created: "+task.Title); err != nil {
		return nil, err
	}
	return &task, nil
}

// ListTasks returns one page of task summaries. Out of range page or limit
// values fall back to the defaults; limit is capped at MaxLimit.
func (s *TaskService) ListTasks(ctx context.Context, input ListTasksInput) (*TaskPage, error) {
	page := input.Page
	if page < 1 {
		page = DefaultPage
	}
	limit := input.Limit
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	data, total, err := s.taskRepo.ListVisible(ctx, input.ActorID, repository.Page{
		Offset: (page - 1) * limit,
		Limit:  limit,
	})
	if err != nil {
		return nil, err
	}

	return &TaskPage{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages(total, limit),
		Data:       data,
	}, nil
}

func (s *TaskService) GetTask(ctx context.Context, id uint, actorID *uint) (*model.Task, error) {
	task, err := s.taskRepo.FindVisible(ctx, id, actorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("find task: %w", err)
	}
	return task, nil
}

// ReplaceTask overwrites a task. Title, description, due date, status and
// owner must all be supplied; the first missing one is reported.
func (s *TaskService) ReplaceTask(ctx context.Context, id uint, upd TaskUpdate, actorID *uint) (*model.Task, error) {
	if field := upd.firstMissing(); field != "" {
		return nil, &MissingFieldError{Field: field}
	}

	task, err := s.findTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.applyUpdates(ctx, task, upd); err != nil {
		return nil, err
	}
	if err := s.taskRepo.Save(ctx, task); err != nil {
		return nil, err
	}

	if err := s.audit.Append(ctx, model.ActionUpdate, model.EntityTask, task.ID, actorID, "Task updated"); err != nil {
		return nil, err
	}
	return task, nil
}

// UpdateTask applies only the supplied fields and returns the stored task
// with status and owner loaded.
func (s *TaskService) UpdateTask(ctx context.Context, id uint, upd TaskUpdate, actorID *uint) (*model.Task, error) {
	task, err := s.findTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.applyUpdates(ctx, task, upd); err != nil {
		return nil, err
	}
	if err := s.taskRepo.Save(ctx, task); err != nil {
		return nil, err
	}

	task, err = s.taskRepo.FindByIDWithRelations(ctx, task.ID)
	if err != nil {
		return nil, fmt.Errorf("reload task: %w", err)
	}

	if err := s.audit.Append(ctx, model.ActionUpdate, model.EntityTask, task.ID, actorID, "Task updated"); err != nil {
		return nil, err
	}
	return task, nil
}

// DeleteTask flags the task as deleted. Deleting an already deleted task
// succeeds and is logged again.
func (s *TaskService) DeleteTask(ctx context.Context, id uint, actorID *uint) error {
	task, err := s.findTask(ctx, id)
	if err != nil {
		return err
	}

	task.IsDeleted = true
	if err := s.taskRepo.Save(ctx, task); err != nil {
		return err
	}

	return s.audit.Append(ctx, model.ActionDelete, model.EntityTask, task.ID, actorID, "Task deleted")
}

// applyUpdates is shared by replace and partial update.
func (s *TaskService) applyUpdates(ctx context.Context, task *model.Task, upd TaskUpdate) error {
	if upd.Title != nil {
		task.Title = *upd.Title
	}
	if upd.Description != nil {
		task.Description = *upd.Description
	}
	if upd.DueDate != nil {
		dueDate, err := parseDueDate(*upd.DueDate)
		if err != nil {
			return ErrInvalidDueDate
		}
		task.DueDate = dueDate
	}
	if upd.Comments != nil {
		task.Comments = *upd.Comments
	}
	if upd.IsPublic != nil {
		task.IsPublic = *upd.IsPublic
	}

	if upd.StatusID != nil {
		status, err := s.lookupStatus(ctx, *upd.StatusID)
		if err != nil {
			return err
		}
		task.StatusID = status.ID
		task.Status = status
	}

	if upd.UserID != nil {
		user, err := s.lookupUser(ctx, *upd.UserID)
		if err != nil {
			return err
		}
		task.UserID = &user.ID
		task.User = user
	}
	return nil
}

func (u TaskUpdate) firstMissing() string {
	switch {
	case u.Title == nil:
		return "title"
	case u.Description == nil:
		return "description"
	case u.DueDate == nil:
		return "dueDate"
	case u.StatusID == nil:
		return "statusId"
	case u.UserID == nil:
		return "userId"
	}
	return ""
}

func (s *TaskService) findTask(ctx context.Context, id uint) (*model.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("find task: %w", err)
	}
	return task, nil
}

func (s *TaskService) lookupStatus(ctx context.Context, id uint) (*model.Status, error) {
	status, err := s.statusRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStatusNotFound
		}
		return nil, fmt.Errorf("find status: %w", err)
	}
	return status, nil
}

func (s *TaskService) lookupUser(ctx context.Context, id uint) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

func parseDueDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("parse due date %q", raw)
}

func totalPages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
