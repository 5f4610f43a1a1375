package migration

import (
	"paranoid/internal/infrastructure/persistence/models"
)

// AutoMigrateModels lists every model the demo schema carries
func AutoMigrateModels() []interface{} {
	return []interface{}{
		&models.ProjectModel{},
		&models.TaskModel{},
		&models.CommentModel{},
		&models.NoteModel{},
	}
}
