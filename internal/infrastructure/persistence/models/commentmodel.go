package models

import (
	"time"

	"gorm.io/gorm"

	"paranoid/internal/shared/constants"
	"paranoid/internal/shared/id"
)

// CommentModel is the GORM model for the comments table. Comments belong to
// a task and follow it through destroy and restore, giving the demo schema a
// three-level cascade chain.
type CommentModel struct {
	ID        uint       `gorm:"primaryKey;autoIncrement"`
	SID       string     `gorm:"column:sid;type:varchar(50);not null;uniqueIndex"`
	TaskID    uint       `gorm:"column:task_id;not null;index"`
	AuthorID  uint       `gorm:"column:author_id;not null;index"`
	Body      string     `gorm:"type:text;not null"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt *time.Time `gorm:"column:deleted_at;index"`
}

func (CommentModel) TableName() string {
	return constants.TableComments
}

func (c *CommentModel) BeforeCreate(tx *gorm.DB) error {
	if c.SID == "" {
		sid, err := id.GenerateWithPrefix(id.PrefixComment, id.DefaultLength)
		if err != nil {
			return err
		}
		c.SID = sid
	}
	return nil
}
