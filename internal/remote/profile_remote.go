package remote

import (
	"github.com/tasklight/tasklight/internal/models"
	"gorm.io/gorm"
)

// GormProfileRemote is a GORM implementation of ProfileRemote.
type GormProfileRemote struct {
	db *gorm.DB
}

func NewProfileRemote(db *gorm.DB) ProfileRemote {
	return &GormProfileRemote{db: db}
}

func (r *GormProfileRemote) FindByID(id string) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.First(&profile, "id = ?", id).Error; err != nil {
		if notFound(err) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func (r *GormProfileRemote) FindByEmail(email string) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.Where("email = ?", email).First(&profile).Error; err != nil {
		if notFound(err) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}
