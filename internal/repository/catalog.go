package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmarkov/shop_bot/internal/models"
	"gorm.io/gorm"
)

func (r *Repository) CreateProduct(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *Repository) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product %d: %w", id, err)
	}
	return &product, nil
}

func (r *Repository) ListProducts(ctx context.Context) ([]*models.Product, error) {
	var products []*models.Product
	err := r.db.WithContext(ctx).Order("name ASC").Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (r *Repository) CreateCity(ctx context.Context, city *models.City) error {
	return r.db.WithContext(ctx).Create(city).Error
}

func (r *Repository) GetCity(ctx context.Context, id int64) (*models.City, error) {
	var city models.City
	err := r.db.WithContext(ctx).First(&city, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get city %d: %w", id, err)
	}
	return &city, nil
}

func (r *Repository) ListCities(ctx context.Context) ([]*models.City, error) {
	var cities []*models.City
	err := r.db.WithContext(ctx).Order("name ASC").Find(&cities).Error
	if err != nil {
		return nil, err
	}
	return cities, nil
}

func (r *Repository) CreateDistrict(ctx context.Context, district *models.District) error {
	return r.db.WithContext(ctx).Create(district).Error
}

func (r *Repository) GetDistrict(ctx context.Context, id int64) (*models.District, error) {
	var district models.District
	err := r.db.WithContext(ctx).Preload("City").First(&district, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get district %d: %w", id, err)
	}
	return &district, nil
}

func (r *Repository) ListDistricts(ctx context.Context, cityID int64) ([]*models.District, error) {
	var districts []*models.District
	err := r.db.WithContext(ctx).
		Where("city_id = ?", cityID).
		Order("name ASC").
		Find(&districts).Error
	if err != nil {
		return nil, err
	}
	return districts, nil
}
