package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Comment struct {
	ID        string         `gorm:"type:varchar(36);primarykey" json:"id"`
	TaskID    string         `gorm:"type:varchar(36);not null;index" json:"task_id"`
	UserID    string         `gorm:"type:varchar(36);not null" json:"user_id"`
	Content   string         `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Author carries display info for rendering.
	Author Profile `gorm:"foreignKey:UserID" json:"author,omitempty"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
