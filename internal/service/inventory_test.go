package service

import (
	"context"
	"testing"

	"github.com/dmarkov/shop_bot/internal/models"
	"github.com/dmarkov/shop_bot/utils"
)

func TestParseWeightPrice(t *testing.T) {
	cases := []struct {
		input      string
		wantWeight float64
		wantPrice  int64
		wantErr    bool
	}{
		{"100|5000", 100, 5000, false},
		{" 2.5 | 12000 ", 2.5, 12000, false},
		{"0,5|900", 0.5, 900, false},
		{"100", 0, 0, true},
		{"100|5000|1", 0, 0, true},
		{"-5|1000", 0, 0, true},
		{"100|-1", 0, 0, true},
		{"100|0", 0, 0, true},
		{"abc|100", 0, 0, true},
		{"100|abc", 0, 0, true},
	}
	for _, tc := range cases {
		weight, price, err := ParseWeightPrice(tc.input)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseWeightPrice(%q) err = %v, wantErr %v", tc.input, err, tc.wantErr)
			continue
		}
		if err != nil {
			continue
		}
		if weight != tc.wantWeight || price != tc.wantPrice {
			t.Errorf("ParseWeightPrice(%q) = %v, %v; want %v, %v", tc.input, weight, price, tc.wantWeight, tc.wantPrice)
		}
	}
}

func TestAddInventoryItemSealsPayload(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	product := &models.Product{Name: "Товар"}
	repo.CreateProduct(ctx, product)
	city := &models.City{Name: "Город"}
	repo.CreateCity(ctx, city)
	district := &models.District{CityID: city.ID, Name: "Район"}
	repo.CreateDistrict(ctx, district)

	item, err := svc.AddInventoryItem(ctx, product.ID, city.ID, district.ID, 100, 5000, "координаты 55.0, 37.0")
	if err != nil {
		t.Fatalf("AddInventoryItem: %v", err)
	}
	if item.Status != models.ItemAvailable {
		t.Errorf("item status = %q, want available", item.Status)
	}
	if item.PayloadSealed == "координаты 55.0, 37.0" {
		t.Error("payload stored in the clear")
	}

	opened, err := utils.OpenPayload(testKey(), item.PayloadSealed)
	if err != nil {
		t.Fatalf("OpenPayload: %v", err)
	}
	if opened != "координаты 55.0, 37.0" {
		t.Errorf("opened payload = %q", opened)
	}
}

func TestOfferGroupsCollapseDuplicates(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	product := &models.Product{Name: "Товар"}
	repo.CreateProduct(ctx, product)
	city := &models.City{Name: "Город"}
	repo.CreateCity(ctx, city)
	district := &models.District{CityID: city.ID, Name: "Район"}
	repo.CreateDistrict(ctx, district)

	for i := 0; i < 3; i++ {
		if _, err := svc.AddInventoryItem(ctx, product.ID, city.ID, district.ID, 100, 5000, "клад"); err != nil {
			t.Fatalf("AddInventoryItem: %v", err)
		}
	}
	if _, err := svc.AddInventoryItem(ctx, product.ID, city.ID, district.ID, 250, 9000, "клад"); err != nil {
		t.Fatalf("AddInventoryItem: %v", err)
	}

	groups, err := svc.OfferGroups(ctx, product.ID, city.ID, district.ID)
	if err != nil {
		t.Fatalf("OfferGroups: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}
	if groups[0].PriceRub != 5000 || groups[0].Count != 3 {
		t.Errorf("first group = %+v, want price 5000 count 3", groups[0])
	}
	if groups[1].PriceRub != 9000 || groups[1].Count != 1 {
		t.Errorf("second group = %+v", groups[1])
	}
}
