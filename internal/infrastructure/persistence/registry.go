// Package persistence wires the demo domain into the soft-delete engine:
// model registration, marker policies, relationships and seed data.
package persistence

import (
	"paranoid/internal/infrastructure/persistence/models"
	"paranoid/internal/shared/constants"
	"paranoid/internal/shared/logger"
	"paranoid/internal/softdelete"
)

// BuildRegistry registers every soft-deletable demo model and its
// relationships. Projects cascade into tasks, tasks into comments; notes
// reference a project but are independent of its lifecycle.
func BuildRegistry(log logger.Interface) (*softdelete.Registry, error) {
	reg := softdelete.NewRegistry(softdelete.WithLogger(log))

	projects, err := softdelete.Register[models.ProjectModel](reg,
		softdelete.TimestampPolicy(constants.ColumnDeletedAt))
	if err != nil {
		return nil, err
	}
	tasks, err := softdelete.Register[models.TaskModel](reg,
		softdelete.TimestampPolicy(constants.ColumnDeletedAt))
	if err != nil {
		return nil, err
	}
	if _, err := softdelete.Register[models.CommentModel](reg,
		softdelete.TimestampPolicy(constants.ColumnDeletedAt)); err != nil {
		return nil, err
	}
	if _, err := softdelete.Register[models.NoteModel](reg,
		softdelete.TimestampPolicy(constants.ColumnDeletedAt)); err != nil {
		return nil, err
	}

	if err := projects.RegisterRelationship(softdelete.Relationship{
		Name:             "tasks",
		Target:           &models.TaskModel{},
		Kind:             softdelete.HasMany,
		ForeignKey:       "project_id",
		Reciprocal:       "project",
		CascadeOnDestroy: true,
	}); err != nil {
		return nil, err
	}
	if err := projects.RegisterRelationship(softdelete.Relationship{
		Name:       "notes",
		Target:     &models.NoteModel{},
		Kind:       softdelete.HasMany,
		ForeignKey: "project_id",
		Reciprocal: "project",
	}); err != nil {
		return nil, err
	}
	if err := tasks.RegisterRelationship(softdelete.Relationship{
		Name:             "comments",
		Target:           &models.CommentModel{},
		Kind:             softdelete.HasMany,
		ForeignKey:       "task_id",
		Reciprocal:       "task",
		CascadeOnDestroy: true,
	}); err != nil {
		return nil, err
	}

	return reg, nil
}
