package repository

import (
	"time"

	"go-credit-inventory/internal/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type ProfileRepository interface {
	Create(profile *model.Profile) error
	FindAll() ([]model.Profile, error)
	FindByUsername(username string) (*model.Profile, error)
	Update(profile *model.Profile) error
	Delete(username string) error
	UpdateLastLogin(username string, at time.Time) error
}

type profileRepo struct {
	db *gorm.DB
}

func NewProfileRepo(db *gorm.DB) ProfileRepository {
	return &profileRepo{db}
}

func (r *profileRepo) Create(profile *model.Profile) error {
	return errors.Wrap(r.db.Create(profile).Error, "create profile")
}

// FindAll lists recently used profiles first; never-used ones come last
func (r *profileRepo) FindAll() ([]model.Profile, error) {
	profiles := []model.Profile{}
	err := r.db.
		Order("last_login IS NULL").
		Order("last_login DESC").
		Order("username ASC").
		Find(&profiles).Error
	if err != nil {
		return nil, errors.Wrap(err, "list profiles")
	}
	return profiles, nil
}

func (r *profileRepo) FindByUsername(username string) (*model.Profile, error) {
	var profile model.Profile
	if err := r.db.Where("username = ?", username).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "find profile")
	}
	return &profile, nil
}

func (r *profileRepo) Update(profile *model.Profile) error {
	return errors.Wrap(r.db.Save(profile).Error, "update profile")
}

func (r *profileRepo) Delete(username string) error {
	result := r.db.Where("username = ?", username).Delete(&model.Profile{})
	if result.Error != nil {
		return errors.Wrap(result.Error, "delete profile")
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *profileRepo) UpdateLastLogin(username string, at time.Time) error {
	result := r.db.Model(&model.Profile{}).Where("username = ?", username).Update("last_login", at)
	if result.Error != nil {
		return errors.Wrap(result.Error, "update last login")
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
