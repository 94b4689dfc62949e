package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmarkov/shop_bot/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (r *Repository) CreateOrder(ctx context.Context, order *models.Order, tx *gorm.DB) error {
	return r.conn(tx).WithContext(ctx).Create(order).Error
}

func (r *Repository) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Inventory").
		Preload("Inventory.Product").
		Preload("Inventory.City").
		Preload("Inventory.District").
		First(&order, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order %d: %w", id, err)
	}
	return &order, nil
}

func (r *Repository) GetOrderByReference(ctx context.Context, reference string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Inventory").
		Preload("Inventory.Product").
		Preload("Inventory.City").
		Preload("Inventory.District").
		First(&order, "reference = ?", reference).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order %s: %w", reference, err)
	}
	return &order, nil
}

// GetOrderForUpdate перечитывает заказ внутри транзакции с блокировкой строки,
// чтобы одновременные подтверждение и отклонение не прошли оба.
func (r *Repository) GetOrderForUpdate(ctx context.Context, id int64, tx *gorm.DB) (*models.Order, error) {
	var order models.Order
	err := r.conn(tx).WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&order, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock order %d: %w", id, err)
	}
	return &order, nil
}

func (r *Repository) MarkOrderConfirmed(ctx context.Context, id, adminID int64, tx *gorm.DB) error {
	now := time.Now()
	res := r.conn(tx).WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", id, models.OrderPending).
		Updates(map[string]interface{}{
			"status":       models.OrderConfirmed,
			"confirmed_by": adminID,
			"confirmed_at": now,
		})
	if res.Error != nil {
		return fmt.Errorf("ошибка БД при подтверждении заказа %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("заказ %d не находится в ожидании", id)
	}
	return nil
}

func (r *Repository) MarkOrderCancelled(ctx context.Context, id int64, reason string, tx *gorm.DB) error {
	res := r.conn(tx).WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", id, models.OrderPending).
		Updates(map[string]interface{}{
			"status":           models.OrderCancelled,
			"rejection_reason": reason,
		})
	if res.Error != nil {
		return fmt.Errorf("ошибка БД при отклонении заказа %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("заказ %d не находится в ожидании", id)
	}
	return nil
}

// ListOrders возвращает страницу заказов; status == "" означает все.
func (r *Repository) ListOrders(ctx context.Context, status string, limit, offset int) ([]*models.Order, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Order{})
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []*models.Order
	err := q.Preload("Inventory").Preload("Inventory.Product").
		Order("id DESC").
		Limit(limit).Offset(offset).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *Repository) ListUserOrders(ctx context.Context, userID int64, limit, offset int) ([]*models.Order, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Order{}).Where("user_id = ?", userID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []*models.Order
	err := q.Preload("Inventory").Preload("Inventory.Product").
		Preload("Inventory.City").Preload("Inventory.District").
		Order("id DESC").
		Limit(limit).Offset(offset).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *Repository) CountOrdersByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}

func (r *Repository) CountUserConfirmedOrders(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("user_id = ? AND status = ?", userID, models.OrderConfirmed).
		Count(&count).Error
	return count, err
}

// Revenue суммирует цены позиций подтвержденных заказов.
func (r *Repository) Revenue(ctx context.Context) (int64, error) {
	var sum int64
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Joins("JOIN inventory_items ON inventory_items.id = orders.inventory_id").
		Where("orders.status = ?", models.OrderConfirmed).
		Select("COALESCE(SUM(inventory_items.price_rub), 0)").
		Scan(&sum).Error
	return sum, err
}

// ConfirmedOrdersSince - подтвержденные заказы для выгрузки отчета.
func (r *Repository) ConfirmedOrdersSince(ctx context.Context, since time.Time) ([]*models.Order, error) {
	var orders []*models.Order
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Inventory").Preload("Inventory.Product").
		Preload("Inventory.City").Preload("Inventory.District").
		Where("status = ? AND confirmed_at >= ?", models.OrderConfirmed, since).
		Order("confirmed_at ASC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get confirmed orders: %w", err)
	}
	return orders, nil
}
