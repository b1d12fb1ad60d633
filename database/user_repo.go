package database

import (
	"context"
	"errors"

	"github.com/mymedicos/discuss-backend/errs"
	"github.com/mymedicos/discuss-backend/models"
	"gorm.io/gorm"
)

type UserRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db}
}

// FindByUID returns the user with the given external id, or nil when absent.
func (r *UserRepo) FindByUID(ctx context.Context, uid string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("uid = ?", uid).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errs.NewDatabaseError("find", "user", err)
	}
	return &user, nil
}

func (r *UserRepo) FindByUIDs(ctx context.Context, uids []string) ([]*models.User, error) {
	var users []*models.User
	if len(uids) == 0 {
		return users, nil
	}
	if err := r.db.WithContext(ctx).Where("uid IN ?", uids).Find(&users).Error; err != nil {
		return nil, errs.NewDatabaseError("find", "users", err)
	}
	return users, nil
}

// Add inserts a user. A second user with the same uid is rejected with a conflict.
func (r *UserRepo) Add(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errs.NewAlreadyExists("user")
	}
	if err != nil {
		return errs.NewDatabaseError("create", "user", err)
	}
	return nil
}
