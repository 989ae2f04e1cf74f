package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"catalog-service/internal/models"
)

var ErrEmailTaken = errors.New("email already registered")

// UserRepository stores operator accounts
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.AdminUser, error)
	Insert(ctx context.Context, user *models.AdminUser) error
}

type GormUserRepository struct {
	db *gorm.DB
}

var _ UserRepository = (*GormUserRepository)(nil)

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	var user models.AdminUser
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *GormUserRepository) Insert(ctx context.Context, user *models.AdminUser) error {
	var existing int64
	if err := r.db.WithContext(ctx).Model(&models.AdminUser{}).
		Where("email = ?", user.Email).
		Count(&existing).Error; err != nil {
		return err
	}
	if existing > 0 {
		return ErrEmailTaken
	}

	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Create(user).Error
}
