package store

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/smartstore/backend/internal/apperr"
	"github.com/smartstore/backend/internal/models"
)

// PlaceOrder converts the user's current cart into an immutable order. Each
// product row is locked for update, the stock check and decrement happen
// under that lock, and order items freeze the unit price at purchase time.
// Either every line commits or nothing does.
//
// The cart is NOT cleared here; callers clear it as a separate step after
// the transaction commits.
func (s *Store) PlaceOrder(ctx context.Context, userID uint) (*models.Order, error) {
	var order models.Order

	txErr := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var items []models.CartItem
		if err := tx.Where("user_id = ?", userID).Order("id ASC").Find(&items).Error; err != nil {
			return apperr.Wrap(apperr.KindInternal, "database error", err)
		}
		if len(items) == 0 {
			return apperr.Validation("cart is empty")
		}

		order = models.Order{UserID: userID, Status: models.OrderStatusPending}
		if err := tx.Create(&order).Error; err != nil {
			return apperr.Wrap(apperr.KindInternal, "database error", err)
		}

		var total int64
		for _, it := range items {
			var prod models.Product
			q := tx.Where("sku = ?", it.SKU)
			// sqlite has no row locks; its writers serialize at the file
			// level, so the clause is only added for postgres.
			if tx.Dialector.Name() == "postgres" {
				q = q.Clauses(clause.Locking{Strength: "UPDATE"})
			}
			err := q.First(&prod).Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperr.Newf(apperr.KindNotFound, "product %s not found", it.SKU)
				}
				return apperr.Wrap(apperr.KindInternal, "database error", err)
			}
			if prod.Stock < it.Quantity {
				return apperr.InsufficientStock(prod.SKU)
			}

			total += prod.PriceCents * int64(it.Quantity)
			oi := models.OrderItem{
				OrderID:   order.ID,
				SKU:       prod.SKU,
				Quantity:  it.Quantity,
				UnitPrice: prod.PriceCents,
			}
			if err := tx.Create(&oi).Error; err != nil {
				return apperr.Wrap(apperr.KindInternal, "database error", err)
			}
			order.Items = append(order.Items, oi)

			prod.Stock -= it.Quantity
			if err := tx.Save(&prod).Error; err != nil {
				return apperr.Wrap(apperr.KindInternal, "database error", err)
			}
		}

		order.TotalCents = total
		if err := tx.Model(&models.Order{}).Where("id = ?", order.ID).
			Update("total_cents", total).Error; err != nil {
			return apperr.Wrap(apperr.KindInternal, "database error", err)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	return &order, nil
}

func (s *Store) GetOrdersByUser(ctx context.Context, userID uint) ([]models.Order, error) {
	var orders []models.Order
	if err := s.DB.WithContext(ctx).Preload("Items").
		Where("user_id = ?", userID).Order("id ASC").Find(&orders).Error; err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "database error", err)
	}
	return orders, nil
}

func (s *Store) ListAllOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	if err := s.DB.WithContext(ctx).Preload("Items").Order("id ASC").Find(&orders).Error; err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "database error", err)
	}
	return orders, nil
}
