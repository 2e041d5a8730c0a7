package store

import (
	"context"

	"github.com/smartstore/backend/internal/apperr"
	"github.com/smartstore/backend/internal/models"
)

func (s *Store) CreateCategory(ctx context.Context, name string) (*models.Category, error) {
	if name == "" {
		return nil, apperr.Validation("category name is required")
	}
	cat := models.Category{Name: name}
	if err := s.DB.WithContext(ctx).Create(&cat).Error; err != nil {
		return nil, conflictOr(err, "category already exists")
	}
	return &cat, nil
}

func (s *Store) ListCategories(ctx context.Context) ([]models.Category, error) {
	var cats []models.Category
	if err := s.DB.WithContext(ctx).Order("id ASC").Find(&cats).Error; err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "database error", err)
	}
	return cats, nil
}
