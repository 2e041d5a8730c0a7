package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/smartstore/backend/internal/apperr"
	"github.com/smartstore/backend/internal/models"
)

func (s *Store) CreateProduct(ctx context.Context, prod *models.Product) error {
	if err := s.DB.WithContext(ctx).Create(prod).Error; err != nil {
		return conflictOr(err, "sku already exists")
	}
	return nil
}

func (s *Store) GetProductBySKU(ctx context.Context, sku string) (*models.Product, error) {
	var prod models.Product
	if err := s.DB.WithContext(ctx).Where("sku = ?", sku).First(&prod).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("product not found")
		}
		return nil, apperr.Wrap(apperr.KindInternal, "database error", err)
	}
	return &prod, nil
}

// ProductPatch carries optional field updates; nil pointers leave the stored
// value untouched.
type ProductPatch struct {
	Name        *string `json:"name"`
	PriceCents  *int64  `json:"price_cents"`
	Stock       *int    `json:"stock"`
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url"`
	CategoryID  *uint   `json:"category_id"`
}

func (s *Store) PatchProduct(ctx context.Context, sku string, patch ProductPatch) (*models.Product, error) {
	prod, err := s.GetProductBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		prod.Name = *patch.Name
	}
	if patch.PriceCents != nil {
		if *patch.PriceCents < 0 {
			return nil, apperr.Validation("price_cents cannot be negative")
		}
		prod.PriceCents = *patch.PriceCents
	}
	if patch.Stock != nil {
		if *patch.Stock < 0 {
			return nil, apperr.Validation("stock cannot be negative")
		}
		prod.Stock = *patch.Stock
	}
	if patch.Description != nil {
		prod.Description = *patch.Description
	}
	if patch.ImageURL != nil {
		prod.ImageURL = *patch.ImageURL
	}
	if patch.CategoryID != nil {
		prod.CategoryID = patch.CategoryID
	}

	if err := s.DB.WithContext(ctx).Save(prod).Error; err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "database error", err)
	}
	return prod, nil
}

func (s *Store) DeleteProduct(ctx context.Context, sku string) error {
	res := s.DB.WithContext(ctx).Where("sku = ?", sku).Delete(&models.Product{})
	if res.Error != nil {
		return apperr.Wrap(apperr.KindInternal, "database error", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("product not found")
	}
	return nil
}

// SearchProducts does a case-insensitive substring match over name and
// description. An empty query lists everything up to limit.
func (s *Store) SearchProducts(ctx context.Context, q string, limit int) ([]models.Product, error) {
	if limit <= 0 {
		limit = 20
	} else if limit > 100 {
		limit = 100
	}

	tx := s.DB.WithContext(ctx).Model(&models.Product{}).Order("sku ASC").Limit(limit)
	if q != "" {
		pattern := "%" + q + "%"
		tx = tx.Where("LOWER(name) LIKE LOWER(?) OR LOWER(description) LIKE LOWER(?)", pattern, pattern)
	}

	var items []models.Product
	if err := tx.Find(&items).Error; err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "database error", err)
	}
	return items, nil
}
