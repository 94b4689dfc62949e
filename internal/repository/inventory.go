package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmarkov/shop_bot/internal/models"
	"gorm.io/gorm"
)

func (r *Repository) CreateInventoryItem(ctx context.Context, item *models.InventoryItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *Repository) GetInventoryItem(ctx context.Context, id int64) (*models.InventoryItem, error) {
	var item models.InventoryItem
	err := r.db.WithContext(ctx).
		Preload("Product").Preload("City").Preload("District").
		First(&item, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get inventory item %d: %w", id, err)
	}
	return &item, nil
}

// ReserveInventoryItem переводит позицию available -> reserved.
// RowsAffected == 0 означает, что позицию уже кто-то забрал.
func (r *Repository) ReserveInventoryItem(ctx context.Context, id, buyerID int64, tx *gorm.DB) (bool, error) {
	res := r.conn(tx).WithContext(ctx).
		Model(&models.InventoryItem{}).
		Where("id = ? AND status = ?", id, models.ItemAvailable).
		Updates(map[string]interface{}{
			"status":   models.ItemReserved,
			"buyer_id": buyerID,
		})
	if res.Error != nil {
		return false, fmt.Errorf("ошибка БД при резервировании позиции %d: %w", id, res.Error)
	}
	return res.RowsAffected == 1, nil
}

// MarkInventorySold переводит позицию reserved -> sold.
func (r *Repository) MarkInventorySold(ctx context.Context, id int64, tx *gorm.DB) error {
	res := r.conn(tx).WithContext(ctx).
		Model(&models.InventoryItem{}).
		Where("id = ? AND status = ?", id, models.ItemReserved).
		Updates(map[string]interface{}{
			"status":  models.ItemSold,
			"sold_at": time.Now(),
		})
	if res.Error != nil {
		return fmt.Errorf("ошибка БД при продаже позиции %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("позиция %d не находится в резерве", id)
	}
	return nil
}

// ReleaseInventoryItem возвращает позицию reserved -> available и снимает покупателя.
func (r *Repository) ReleaseInventoryItem(ctx context.Context, id int64, tx *gorm.DB) error {
	res := r.conn(tx).WithContext(ctx).
		Model(&models.InventoryItem{}).
		Where("id = ? AND status = ?", id, models.ItemReserved).
		Updates(map[string]interface{}{
			"status":   models.ItemAvailable,
			"buyer_id": nil,
		})
	if res.Error != nil {
		return fmt.Errorf("ошибка БД при возврате позиции %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("позиция %d не находится в резерве", id)
	}
	return nil
}

// ProductsWithStock возвращает товары, у которых есть доступные позиции,
// с количеством остатков.
func (r *Repository) ProductsWithStock(ctx context.Context) ([]*models.StockCount, error) {
	var rows []*models.StockCount
	err := r.db.WithContext(ctx).
		Model(&models.InventoryItem{}).
		Select("products.id AS id, products.name AS name, COUNT(inventory_items.id) AS count").
		Joins("JOIN products ON products.id = inventory_items.product_id").
		Where("inventory_items.status = ?", models.ItemAvailable).
		Group("products.id, products.name").
		Order("products.name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get products with stock: %w", err)
	}
	return rows, nil
}

func (r *Repository) CitiesWithStock(ctx context.Context, productID int64) ([]*models.StockCount, error) {
	var rows []*models.StockCount
	err := r.db.WithContext(ctx).
		Model(&models.InventoryItem{}).
		Select("cities.id AS id, cities.name AS name, COUNT(inventory_items.id) AS count").
		Joins("JOIN cities ON cities.id = inventory_items.city_id").
		Where("inventory_items.product_id = ? AND inventory_items.status = ?", productID, models.ItemAvailable).
		Group("cities.id, cities.name").
		Order("cities.name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get cities with stock: %w", err)
	}
	return rows, nil
}

func (r *Repository) DistrictsWithStock(ctx context.Context, productID, cityID int64) ([]*models.StockCount, error) {
	var rows []*models.StockCount
	err := r.db.WithContext(ctx).
		Model(&models.InventoryItem{}).
		Select("districts.id AS id, districts.name AS name, COUNT(inventory_items.id) AS count").
		Joins("JOIN districts ON districts.id = inventory_items.district_id").
		Where("inventory_items.product_id = ? AND inventory_items.city_id = ? AND inventory_items.status = ?",
			productID, cityID, models.ItemAvailable).
		Group("districts.id, districts.name").
		Order("districts.name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get districts with stock: %w", err)
	}
	return rows, nil
}

// OfferGroups группирует доступные позиции по (вес, цена): одинаковые
// предложения показываются один раз, покупка забирает представителя с
// минимальным id.
func (r *Repository) OfferGroups(ctx context.Context, productID, cityID, districtID int64) ([]*models.OfferGroup, error) {
	var rows []*models.OfferGroup
	err := r.db.WithContext(ctx).
		Model(&models.InventoryItem{}).
		Select("weight_grams, price_rub, COUNT(id) AS count, MIN(id) AS first_id").
		Where("product_id = ? AND city_id = ? AND district_id = ? AND status = ?",
			productID, cityID, districtID, models.ItemAvailable).
		Group("weight_grams, price_rub").
		Order("price_rub ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get offer groups: %w", err)
	}
	return rows, nil
}

func (r *Repository) CountInventoryByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.InventoryItem{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}
