package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"paranoid/internal/infrastructure/persistence/models"
	"paranoid/internal/shared/logger"
	"paranoid/internal/softdelete"
)

// TaskRepository persists tasks. Tasks are archived in bulk when their
// project goes, so the repository leans on the destroyed-only scope and the
// reverse project accessor more than the project repository does.
type TaskRepository struct {
	db     *gorm.DB
	store  *softdelete.Store[models.TaskModel]
	logger logger.Interface
}

func NewTaskRepository(db *gorm.DB, registry *softdelete.Registry, log logger.Interface) (*TaskRepository, error) {
	store, err := softdelete.NewStore[models.TaskModel](db, registry)
	if err != nil {
		return nil, err
	}
	return &TaskRepository{
		db:     db,
		store:  store,
		logger: log,
	}, nil
}

func (r *TaskRepository) Create(ctx context.Context, task *models.TaskModel) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		r.logger.Errorw("failed to create task", "error", err, "title", task.Title)
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

func (r *TaskRepository) GetByID(ctx context.Context, id uint) (*models.TaskModel, error) {
	task, err := r.store.Find(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Errorw("failed to get task by ID", "error", err, "task_id", id)
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return task, nil
}

func (r *TaskRepository) ListByProject(ctx context.Context, projectID uint) ([]models.TaskModel, error) {
	tasks, err := r.store.All(ctx, "project_id = ?", projectID)
	if err != nil {
		r.logger.Errorw("failed to list tasks by project", "error", err, "project_id", projectID)
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepository) ListArchivedByProject(ctx context.Context, projectID uint) ([]models.TaskModel, error) {
	tasks, err := r.store.DestroyedOnly().All(ctx, "project_id = ?", projectID)
	if err != nil {
		r.logger.Errorw("failed to list archived tasks", "error", err, "project_id", projectID)
		return nil, fmt.Errorf("failed to list archived tasks: %w", err)
	}
	return tasks, nil
}

// HasPending reports whether the project still has unfinished live tasks.
func (r *TaskRepository) HasPending(ctx context.Context, projectID uint) (bool, error) {
	ok, err := r.store.Exists(ctx, "project_id = ? AND done = ?", projectID, false)
	if err != nil {
		r.logger.Errorw("failed to check pending tasks", "error", err, "project_id", projectID)
		return false, fmt.Errorf("failed to check pending tasks: %w", err)
	}
	return ok, nil
}

// Project resolves the owning project of a task through the task's reverse
// accessor, so it works for archived tasks whose project is archived too.
func (r *TaskRepository) Project(ctx context.Context, task *models.TaskModel) (*models.ProjectModel, error) {
	parent, err := r.store.Parent(ctx, task, "project"+softdelete.SuffixWithDestroyed)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Errorw("failed to resolve task project", "error", err, "task_id", task.ID)
		return nil, fmt.Errorf("failed to resolve task project: %w", err)
	}
	return parent.(*models.ProjectModel), nil
}

func (r *TaskRepository) Archive(ctx context.Context, task *models.TaskModel) error {
	if err := r.store.Destroy(ctx, task); err != nil {
		r.logger.Errorw("failed to archive task", "error", err, "task_id", task.ID)
		return fmt.Errorf("failed to archive task: %w", err)
	}
	return nil
}

// ArchiveDone archives every finished task in one update.
func (r *TaskRepository) ArchiveDone(ctx context.Context) (int64, error) {
	n, err := r.store.DestroyAll(ctx, "done = ?", true)
	if err != nil {
		r.logger.Errorw("failed to archive finished tasks", "error", err)
		return 0, fmt.Errorf("failed to archive finished tasks: %w", err)
	}

	r.logger.Infow("finished tasks archived", "count", n)
	return n, nil
}

func (r *TaskRepository) Restore(ctx context.Context, id uint) error {
	err := r.store.Restore(ctx, id, softdelete.RestoreOptions{IncludeDestroyedDependents: true})
	if err != nil {
		r.logger.Errorw("failed to restore task", "error", err, "task_id", id)
		return fmt.Errorf("failed to restore task: %w", err)
	}
	return nil
}
