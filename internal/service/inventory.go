package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmarkov/shop_bot/internal/models"
	"github.com/dmarkov/shop_bot/utils"
)

// ParseWeightPrice разбирает ввод вида "100|5000": вес в граммах и цена в рублях.
// Запятая в весе принимается как десятичный разделитель.
func ParseWeightPrice(input string) (float64, int64, error) {
	parts := strings.Split(strings.TrimSpace(input), "|")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("ожидается формат вес|цена, например 100|5000")
	}

	weightStr := strings.ReplaceAll(strings.TrimSpace(parts[0]), ",", ".")
	weight, err := strconv.ParseFloat(weightStr, 64)
	if err != nil || weight <= 0 {
		return 0, 0, fmt.Errorf("вес должен быть положительным числом")
	}

	price, err := strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64)
	if err != nil || price <= 0 {
		return 0, 0, fmt.Errorf("цена должна быть положительным целым числом")
	}

	return weight, price, nil
}

// AddInventoryItem шифрует клад и кладёт позицию на витрину.
func (s *Service) AddInventoryItem(ctx context.Context, productID, cityID, districtID int64, weightGrams float64, priceRub int64, payload string) (*models.InventoryItem, error) {
	sealed, err := utils.SealPayload(s.payloadKey, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to seal payload: %w", err)
	}

	item := &models.InventoryItem{
		ProductID:     productID,
		CityID:        cityID,
		DistrictID:    districtID,
		WeightGrams:   weightGrams,
		PriceRub:      priceRub,
		PayloadSealed: sealed,
		Status:        models.ItemAvailable,
	}
	if err := s.repo.CreateInventoryItem(ctx, item); err != nil {
		return nil, err
	}

	s.logger.Infof("✅ Inventory item %d added: product %d, city %d, district %d", item.ID, productID, cityID, districtID)
	return item, nil
}

func (s *Service) GetInventoryItem(ctx context.Context, id int64) (*models.InventoryItem, error) {
	item, err := s.repo.GetInventoryItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrNotFound
	}
	return item, nil
}

func (s *Service) AddProduct(ctx context.Context, name, description string) (*models.Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("название товара не может быть пустым")
	}
	product := &models.Product{Name: name, Description: strings.TrimSpace(description)}
	if err := s.repo.CreateProduct(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *Service) AddCity(ctx context.Context, name string) (*models.City, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("название города не может быть пустым")
	}
	city := &models.City{Name: name}
	if err := s.repo.CreateCity(ctx, city); err != nil {
		return nil, err
	}
	return city, nil
}

func (s *Service) AddDistrict(ctx context.Context, cityID int64, name string) (*models.District, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("название района не может быть пустым")
	}
	city, err := s.repo.GetCity(ctx, cityID)
	if err != nil {
		return nil, err
	}
	if city == nil {
		return nil, ErrNotFound
	}
	district := &models.District{CityID: cityID, Name: name}
	if err := s.repo.CreateDistrict(ctx, district); err != nil {
		return nil, err
	}
	return district, nil
}

func (s *Service) ListProducts(ctx context.Context) ([]*models.Product, error) {
	return s.repo.ListProducts(ctx)
}

func (s *Service) ListCities(ctx context.Context) ([]*models.City, error) {
	return s.repo.ListCities(ctx)
}

func (s *Service) ListDistricts(ctx context.Context, cityID int64) ([]*models.District, error) {
	return s.repo.ListDistricts(ctx, cityID)
}

func (s *Service) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	return s.repo.GetProduct(ctx, id)
}

func (s *Service) GetCity(ctx context.Context, id int64) (*models.City, error) {
	return s.repo.GetCity(ctx, id)
}

func (s *Service) GetDistrict(ctx context.Context, id int64) (*models.District, error) {
	return s.repo.GetDistrict(ctx, id)
}

// Витринные выборки: только измерения, где есть доступный сток.

func (s *Service) ProductsWithStock(ctx context.Context) ([]*models.StockCount, error) {
	return s.repo.ProductsWithStock(ctx)
}

func (s *Service) CitiesWithStock(ctx context.Context, productID int64) ([]*models.StockCount, error) {
	return s.repo.CitiesWithStock(ctx, productID)
}

func (s *Service) DistrictsWithStock(ctx context.Context, productID, cityID int64) ([]*models.StockCount, error) {
	return s.repo.DistrictsWithStock(ctx, productID, cityID)
}

func (s *Service) OfferGroups(ctx context.Context, productID, cityID, districtID int64) ([]*models.OfferGroup, error) {
	return s.repo.OfferGroups(ctx, productID, cityID, districtID)
}
