package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"paranoid/internal/infrastructure/persistence/models"
	"paranoid/internal/shared/constants"
	"paranoid/internal/shared/db"
	"paranoid/internal/shared/logger"
	"paranoid/internal/softdelete"
)

// ProjectRepository persists projects through the soft-delete engine: plain
// reads never see archived projects, Archive marks instead of deleting, and
// Restore brings a project back together with its dependent tasks and
// comments.
type ProjectRepository struct {
	db       *gorm.DB
	registry *softdelete.Registry
	store    *softdelete.Store[models.ProjectModel]
	logger   logger.Interface
}

func NewProjectRepository(db *gorm.DB, registry *softdelete.Registry, log logger.Interface) (*ProjectRepository, error) {
	store, err := softdelete.NewStore[models.ProjectModel](db, registry)
	if err != nil {
		return nil, err
	}
	return &ProjectRepository{
		db:       db,
		registry: registry,
		store:    store,
		logger:   log,
	}, nil
}

func (r *ProjectRepository) Create(ctx context.Context, project *models.ProjectModel) error {
	if err := r.db.WithContext(ctx).Create(project).Error; err != nil {
		r.logger.Errorw("failed to create project", "error", err, "name", project.Name)
		return fmt.Errorf("failed to create project: %w", err)
	}

	r.logger.Infow("project created", "project_id", project.ID, "sid", project.SID)
	return nil
}

func (r *ProjectRepository) GetByID(ctx context.Context, id uint) (*models.ProjectModel, error) {
	project, err := r.store.Find(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Errorw("failed to get project by ID", "error", err, "project_id", id)
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return project, nil
}

func (r *ProjectRepository) GetBySID(ctx context.Context, sid string) (*models.ProjectModel, error) {
	project, err := r.store.First(ctx, "sid = ?", sid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Errorw("failed to get project by SID", "error", err, "sid", sid)
		return nil, fmt.Errorf("failed to get project by SID: %w", err)
	}
	return project, nil
}

func (r *ProjectRepository) List(ctx context.Context, page, pageSize int) ([]models.ProjectModel, error) {
	if page < constants.DefaultPage {
		page = constants.DefaultPage
	}
	if pageSize <= 0 {
		pageSize = constants.DefaultPageSize
	}
	if pageSize > constants.MaxPageSize {
		pageSize = constants.MaxPageSize
	}

	var projects []models.ProjectModel
	err := r.db.WithContext(ctx).
		Model(&models.ProjectModel{}).
		Scopes(r.store.Entity().NotDestroyed()).
		Order("id").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&projects).Error
	if err != nil {
		r.logger.Errorw("failed to list projects", "error", err, "page", page)
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

// ListWithArchived lists every project, archived ones included.
func (r *ProjectRepository) ListWithArchived(ctx context.Context) ([]models.ProjectModel, error) {
	projects, err := r.store.WithDestroyed().All(ctx)
	if err != nil {
		r.logger.Errorw("failed to list projects with archived", "error", err)
		return nil, fmt.Errorf("failed to list projects with archived: %w", err)
	}
	return projects, nil
}

// ListArchived lists strictly the archived projects.
func (r *ProjectRepository) ListArchived(ctx context.Context) ([]models.ProjectModel, error) {
	projects, err := r.store.DestroyedOnly().All(ctx)
	if err != nil {
		r.logger.Errorw("failed to list archived projects", "error", err)
		return nil, fmt.Errorf("failed to list archived projects: %w", err)
	}
	return projects, nil
}

// CountArchived counts archived projects through the derived-operation
// surface.
func (r *ProjectRepository) CountArchived(ctx context.Context) (int64, error) {
	v, err := r.store.Call(ctx, "count_destroyed_only")
	if err != nil {
		r.logger.Errorw("failed to count archived projects", "error", err)
		return 0, fmt.Errorf("failed to count archived projects: %w", err)
	}
	return v.(int64), nil
}

// Archive soft-deletes the project; dependent tasks and comments are marked
// along with it, atomically.
func (r *ProjectRepository) Archive(ctx context.Context, project *models.ProjectModel) error {
	err := db.Transaction(ctx, r.db, func(tx *gorm.DB) error {
		store, err := softdelete.NewStore[models.ProjectModel](tx, r.registry)
		if err != nil {
			return err
		}
		return store.Destroy(ctx, project)
	})
	if err != nil {
		r.logger.Errorw("failed to archive project", "error", err, "project_id", project.ID)
		return fmt.Errorf("failed to archive project: %w", err)
	}

	r.logger.Infow("project archived", "project_id", project.ID)
	return nil
}

// Restore brings an archived project back, optionally without its dependent
// tasks and comments. The cascade runs in a transaction so a mid-walk
// failure restores nothing.
func (r *ProjectRepository) Restore(ctx context.Context, id uint, includeDependents bool) error {
	err := db.Transaction(ctx, r.db, func(tx *gorm.DB) error {
		store, err := softdelete.NewStore[models.ProjectModel](tx, r.registry)
		if err != nil {
			return err
		}
		return store.Restore(ctx, id, softdelete.RestoreOptions{
			IncludeDestroyedDependents: includeDependents,
		})
	})
	if err != nil {
		r.logger.Errorw("failed to restore project", "error", err, "project_id", id)
		return fmt.Errorf("failed to restore project: %w", err)
	}

	r.logger.Infow("project restored", "project_id", id, "with_dependents", includeDependents)
	return nil
}

// Purge physically removes the project row. Dependent rows are left for the
// caller to purge; there is no hard-delete cascade.
func (r *ProjectRepository) Purge(ctx context.Context, id uint) error {
	if err := r.store.Delete(ctx, id); err != nil {
		r.logger.Errorw("failed to purge project", "error", err, "project_id", id)
		return fmt.Errorf("failed to purge project: %w", err)
	}

	r.logger.Infow("project purged", "project_id", id)
	return nil
}
