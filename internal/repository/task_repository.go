package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"task-tracker/internal/model"
)

// TaskRepository handles CRUD for tasks.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Page describes an offset window over a listing.
type Page struct {
	Offset int
	Limit  int
}

// visibleTo restricts a task query to rows the actor may read: not deleted,
// and either public or owned by the actor. A nil actor sees public rows only.
func visibleTo(actorID *uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Where("tasks.is_deleted = ?", false)
		if actorID == nil {
			return db.Where("tasks.is_public = ?", true)
		}
		return db.Where("(tasks.is_public = ? OR tasks.user_id = ?)", true, *actorID)
	}
}

// Create inserts the task row only; referenced rows are never written.
func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (r *TaskRepository) Save(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Save(task).Error; err != nil {
		return fmt.Errorf("save task: %w", err)
	}
	return nil
}

// FindByID loads a task regardless of visibility or deletion.
func (r *TaskRepository) FindByID(ctx context.Context, id uint) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// FindByIDWithRelations is FindByID with status and owner preloaded.
func (r *TaskRepository) FindByIDWithRelations(ctx context.Context, id uint) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).Preload("Status").Preload("User").First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// FindVisible loads a task with relations if actorID may read it.
func (r *TaskRepository) FindVisible(ctx context.Context, id uint, actorID *uint) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).
		Scopes(visibleTo(actorID)).
		Preload("Status").
		Preload("User").
		Where("tasks.id = ?", id).
		First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// ListVisible returns one page of task summaries and the total number of
// rows visible to actorID before pagination.
func (r *TaskRepository) ListVisible(ctx context.Context, actorID *uint, page Page) ([]model.TaskSummary, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Task{}).
		Scopes(visibleTo(actorID)).
		Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
	}

	summaries := []model.TaskSummary{}
	if err := r.db.WithContext(ctx).Model(&model.Task{}).
		Scopes(visibleTo(actorID)).
		Select("tasks.id, tasks.title, tasks.due_date, statuses.name AS status_name, users.username AS owner_username").
		Joins("LEFT JOIN statuses ON statuses.id = tasks.status_id").
		Joins("LEFT JOIN users ON users.id = tasks.user_id").
		Order("tasks.id ASC").
		Offset(page.Offset).
		Limit(page.Limit).
		Scan(&summaries).Error; err != nil {
		return nil, 0, fmt.Errorf("list tasks: %w", err)
	}
	return summaries, total, nil
}
