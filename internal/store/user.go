package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/smartstore/backend/internal/apperr"
	"github.com/smartstore/backend/internal/models"
)

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	if err := s.DB.WithContext(ctx).Create(user).Error; err != nil {
		return conflictOr(err, "username or email already exists")
	}
	return nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, apperr.Wrap(apperr.KindInternal, "database error", err)
	}
	return &user, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.DB.WithContext(ctx).Order("id ASC").Find(&users).Error; err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "database error", err)
	}
	return users, nil
}

// DeleteUser removes the user and, through cascade constraints, their cart
// items, orders and conversations.
func (s *Store) DeleteUser(ctx context.Context, username string) error {
	res := s.DB.WithContext(ctx).Where("username = ?", username).Delete(&models.User{})
	if res.Error != nil {
		return apperr.Wrap(apperr.KindInternal, "database error", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("user not found")
	}
	return nil
}
