package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/smartstore/backend/internal/apperr"
	"github.com/smartstore/backend/internal/models"
)

// AddToCart merges the quantity into an existing (user, sku) row or creates
// one. The merged quantity must never exceed the product's current stock.
func (s *Store) AddToCart(ctx context.Context, userID uint, sku string, quantity int) (*models.CartItem, error) {
	if quantity < 1 {
		return nil, apperr.Validation("quantity must be at least 1")
	}

	prod, err := s.GetProductBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	if prod.Stock < quantity {
		return nil, apperr.InsufficientStock(sku)
	}

	var item models.CartItem
	tx := s.DB.WithContext(ctx).Where("user_id = ? AND sku = ?", userID, sku).First(&item)
	if tx.Error == nil {
		if prod.Stock < item.Quantity+quantity {
			return nil, apperr.InsufficientStock(sku)
		}
		item.Quantity += quantity
		if err := s.DB.WithContext(ctx).Save(&item).Error; err != nil {
			return nil, apperr.Wrap(apperr.KindInternal, "database error", err)
		}
		return &item, nil
	}
	if !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
		return nil, apperr.Wrap(apperr.KindInternal, "database error", tx.Error)
	}

	item = models.CartItem{UserID: userID, SKU: sku, Quantity: quantity}
	if err := s.DB.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, conflictOr(err, "cart item already exists")
	}
	return &item, nil
}

func (s *Store) GetCartItems(ctx context.Context, userID uint) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := s.DB.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&items).Error; err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "database error", err)
	}
	return items, nil
}

// RemoveCartItem deletes one cart row, scoped to the owning user.
func (s *Store) RemoveCartItem(ctx context.Context, userID, itemID uint) error {
	res := s.DB.WithContext(ctx).Where("id = ? AND user_id = ?", itemID, userID).Delete(&models.CartItem{})
	if res.Error != nil {
		return apperr.Wrap(apperr.KindInternal, "database error", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("cart item not found")
	}
	return nil
}

func (s *Store) ClearCart(ctx context.Context, userID uint) error {
	if err := s.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.CartItem{}).Error; err != nil {
		return apperr.Wrap(apperr.KindInternal, "database error", err)
	}
	return nil
}
