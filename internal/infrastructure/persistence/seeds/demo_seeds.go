package seeds

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"paranoid/internal/infrastructure/persistence/models"
)

// SeedDemoData seeds a small project workspace so the trash commands have
// something to operate on. Seeding is idempotent: it does nothing when any
// project already exists.
func SeedDemoData(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.ProjectModel{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	projects := []models.ProjectModel{
		{Name: "Launch checklist", Status: "active", Metadata: datatypes.JSON(`{"owner":"core","priority":1}`)},
		{Name: "Billing revamp", Status: "active", Metadata: datatypes.JSON(`{"owner":"payments","priority":2}`)},
	}
	if err := db.Create(&projects).Error; err != nil {
		return err
	}

	tasks := []models.TaskModel{
		{ProjectID: projects[0].ID, Title: "Write release notes"},
		{ProjectID: projects[0].ID, Title: "Verify rollback plan", Done: true},
		{ProjectID: projects[1].ID, Title: "Migrate invoices"},
	}
	if err := db.Create(&tasks).Error; err != nil {
		return err
	}

	comments := []models.CommentModel{
		{TaskID: tasks[0].ID, AuthorID: 1, Body: "Draft is in the shared doc."},
		{TaskID: tasks[2].ID, AuthorID: 2, Body: "Blocked on the schema change."},
	}
	if err := db.Create(&comments).Error; err != nil {
		return err
	}

	notes := []models.NoteModel{
		{ProjectID: projects[0].ID, Body: "Freeze window starts Friday."},
	}
	return db.Create(&notes).Error
}
