package repository

import (
	"context"
	"errors"

	"shophub/internal/domain/model"
	repo "shophub/internal/repository"

	"gorm.io/gorm"
)

type AdminUserGormRepository struct {
	db *gorm.DB
}

func NewAdminUserGormRepository(db *gorm.DB) *AdminUserGormRepository {
	return &AdminUserGormRepository{db: db}
}

func (r *AdminUserGormRepository) FindByEmail(ctx context.Context, email string) (model.AdminUser, error) {
	var a model.AdminUser
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.AdminUser{}, repo.ErrNotFound
	}
	if err != nil {
		return model.AdminUser{}, err
	}
	return a, nil
}

func (r *AdminUserGormRepository) Create(ctx context.Context, admin model.AdminUser) (model.AdminUser, error) {
	if err := r.db.WithContext(ctx).Create(&admin).Error; err != nil {
		if isUniqueViolation(err) {
			return model.AdminUser{}, repo.ErrConflict
		}
		return model.AdminUser{}, err
	}
	return admin, nil
}

func (r *AdminUserGormRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.AdminUser{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
