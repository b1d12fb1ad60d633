package database

import (
	"context"
	"errors"

	"github.com/mymedicos/discuss-backend/errs"
	"github.com/mymedicos/discuss-backend/models"
	"gorm.io/gorm"
)

// LegacyProfileRepo reads the legacy user directory. When LEGACY_DATABASE_URL
// is set the resolver routes these queries to that database.
type LegacyProfileRepo struct {
	db *gorm.DB
}

func NewLegacyProfileRepo(db *gorm.DB) *LegacyProfileRepo {
	return &LegacyProfileRepo{db}
}

func (r *LegacyProfileRepo) FindByPhone(ctx context.Context, phone string) (*models.LegacyProfile, error) {
	var profile models.LegacyProfile
	err := r.db.WithContext(ctx).Where("phone_number = ?", phone).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errs.NewDatabaseError("find", "legacy profile", err)
	}
	return &profile, nil
}

// Add is used to seed the directory in development and tests.
func (r *LegacyProfileRepo) Add(ctx context.Context, profile *models.LegacyProfile) error {
	if err := r.db.WithContext(ctx).Create(profile).Error; err != nil {
		return errs.NewDatabaseError("create", "legacy profile", err)
	}
	return nil
}
