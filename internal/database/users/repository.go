// Package users provides database operations for the remote catalog profile.
package users

import (
	"gorm.io/gorm"

	"github.com/anselmoalexandre/tivi/internal/entities"
)

// Repository handles user profile database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// UpsertMe stores the signed-in account's profile, replacing any previous one.
func (r *Repository) UpsertMe(user *entities.TraktUser) error {
	user.Me = true

	var existing entities.TraktUser
	result := r.db.Where("me = ?", true).First(&existing)

	if result.Error == gorm.ErrRecordNotFound {
		return r.db.Create(user).Error
	} else if result.Error != nil {
		return result.Error
	}

	user.ID = existing.ID
	user.CreatedAt = existing.CreatedAt
	return r.db.Save(user).Error
}

// GetMe returns the signed-in account's profile.
func (r *Repository) GetMe() (*entities.TraktUser, error) {
	var user entities.TraktUser
	err := r.db.Where("me = ?", true).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteMe removes the stored profile, e.g. on logout.
func (r *Repository) DeleteMe() error {
	return r.db.Where("me = ?", true).Delete(&entities.TraktUser{}).Error
}
