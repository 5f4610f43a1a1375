package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"paranoid/internal/shared/constants"
	"paranoid/internal/shared/id"
)

// ProjectModel is the GORM model for the projects table. DeletedAt is the
// soft-delete marker owned by the softdelete engine; it is deliberately a
// plain nullable timestamp, not gorm.DeletedAt.
type ProjectModel struct {
	ID        uint           `gorm:"primaryKey;autoIncrement"`
	SID       string         `gorm:"column:sid;type:varchar(50);not null;uniqueIndex"`
	Name      string         `gorm:"size:255;not null"`
	Status    string         `gorm:"size:50;not null;default:'active';index"`
	Metadata  datatypes.JSON `gorm:"type:json"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt *time.Time     `gorm:"column:deleted_at;index"`
}

func (ProjectModel) TableName() string {
	return constants.TableProjects
}

func (p *ProjectModel) BeforeCreate(tx *gorm.DB) error {
	if p.SID == "" {
		sid, err := id.GenerateWithPrefix(id.PrefixProject, id.DefaultLength)
		if err != nil {
			return err
		}
		p.SID = sid
	}
	if p.Status == "" {
		p.Status = "active"
	}
	return nil
}
