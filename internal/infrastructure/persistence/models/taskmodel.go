package models

import (
	"time"

	"gorm.io/gorm"

	"paranoid/internal/shared/constants"
	"paranoid/internal/shared/id"
)

// TaskModel is the GORM model for the tasks table. Tasks belong to a project
// and are destroyed and restored with it.
type TaskModel struct {
	ID        uint       `gorm:"primaryKey;autoIncrement"`
	SID       string     `gorm:"column:sid;type:varchar(50);not null;uniqueIndex"`
	ProjectID uint       `gorm:"column:project_id;not null;index"`
	Title     string     `gorm:"size:255;not null"`
	Done      bool       `gorm:"column:done;default:false"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt *time.Time `gorm:"column:deleted_at;index"`
}

func (TaskModel) TableName() string {
	return constants.TableTasks
}

func (t *TaskModel) BeforeCreate(tx *gorm.DB) error {
	if t.SID == "" {
		sid, err := id.GenerateWithPrefix(id.PrefixTask, id.DefaultLength)
		if err != nil {
			return err
		}
		t.SID = sid
	}
	return nil
}
