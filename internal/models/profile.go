package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Profile is the user record mirrored from the auth backend.
type Profile struct {
	ID           string         `gorm:"type:varchar(36);primarykey" json:"id"`
	Email        string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	FullName     string         `gorm:"type:varchar(255)" json:"full_name"`
	AvatarURL    string         `gorm:"type:varchar(500)" json:"avatar_url"`
	PasswordHash string         `gorm:"type:varchar(255)" json:"-"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// AuthSession is a backend-issued session for an authenticated profile.
type AuthSession struct {
	Token     string    `gorm:"type:varchar(36);primarykey" json:"token"`
	UserID    string    `gorm:"type:varchar(36);not null;index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`

	User Profile `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
