package models

import (
	"time"

	"gorm.io/gorm"

	"paranoid/internal/shared/constants"
	"paranoid/internal/shared/id"
)

// NoteModel is the GORM model for the notes table. Notes reference a project
// but are not dependent on it: destroying or restoring a project leaves its
// notes alone.
type NoteModel struct {
	ID        uint       `gorm:"primaryKey;autoIncrement"`
	SID       string     `gorm:"column:sid;type:varchar(50);not null;uniqueIndex"`
	ProjectID uint       `gorm:"column:project_id;not null;index"`
	Body      string     `gorm:"type:text;not null"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt *time.Time `gorm:"column:deleted_at;index"`
}

func (NoteModel) TableName() string {
	return constants.TableNotes
}

func (n *NoteModel) BeforeCreate(tx *gorm.DB) error {
	if n.SID == "" {
		sid, err := id.GenerateWithPrefix(id.PrefixNote, id.DefaultLength)
		if err != nil {
			return err
		}
		n.SID = sid
	}
	return nil
}
