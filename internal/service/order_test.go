package service

import (
	"context"
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"github.com/dmarkov/shop_bot/internal/models"
	"github.com/dmarkov/shop_bot/utils"
)

func testKey() []byte {
	key, _ := hex.DecodeString(strings.Repeat("ab", 32))
	return key
}

// seedShop наполняет фейковый репозиторий покупателем и одной позицией.
func seedShop(t *testing.T, repo *fakeRepo, payload string) *models.InventoryItem {
	t.Helper()
	ctx := context.Background()

	repo.CreateUser(ctx, &models.User{TelegramID: 100, Username: "buyer"})
	product := &models.Product{Name: "Товар"}
	repo.CreateProduct(ctx, product)
	city := &models.City{Name: "Город"}
	repo.CreateCity(ctx, city)
	district := &models.District{CityID: city.ID, Name: "Район"}
	repo.CreateDistrict(ctx, district)

	sealed, err := utils.SealPayload(testKey(), payload)
	if err != nil {
		t.Fatalf("SealPayload: %v", err)
	}
	item := &models.InventoryItem{
		ProductID:     product.ID,
		CityID:        city.ID,
		DistrictID:    district.ID,
		WeightGrams:   100,
		PriceRub:      5000,
		PayloadSealed: sealed,
	}
	repo.CreateInventoryItem(ctx, item)
	return item
}

func TestPlaceOrderReservesItem(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	item := seedShop(t, repo, "координаты клада")
	ctx := context.Background()

	order, err := svc.PlaceOrder(ctx, 100, item.ID, "photo:proof1")
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}
	if order.Status != models.OrderPending {
		t.Errorf("order status = %q, want pending", order.Status)
	}
	if order.Reference == "" {
		t.Error("order reference is empty")
	}
	// Пруф записывается вместе с заказом, отдельного шага нет.
	if order.PaymentProof != "photo:proof1" {
		t.Errorf("payment proof = %q", order.PaymentProof)
	}
	if item.Status != models.ItemReserved {
		t.Errorf("item status = %q, want reserved", item.Status)
	}
	if item.BuyerID == nil || *item.BuyerID != 100 {
		t.Errorf("item buyer = %v, want 100", item.BuyerID)
	}
}

func TestPlaceOrderTakenItem(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	item := seedShop(t, repo, "координаты клада")
	ctx := context.Background()

	if _, err := svc.PlaceOrder(ctx, 100, item.ID, "photo:proof1"); err != nil {
		t.Fatalf("first PlaceOrder: %v", err)
	}

	repo.CreateUser(ctx, &models.User{TelegramID: 200})
	if _, err := svc.PlaceOrder(ctx, 200, item.ID, "photo:proof2"); !errors.Is(err, ErrItemTaken) {
		t.Errorf("second PlaceOrder err = %v, want ErrItemTaken", err)
	}
}

func TestConfirmOrderDeliversPayload(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	item := seedShop(t, repo, "координаты 55.75, 37.61")
	ctx := context.Background()

	order, err := svc.PlaceOrder(ctx, 100, item.ID, "photo:proof1")
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}

	result, err := svc.ConfirmOrder(ctx, order.ID, 1)
	if err != nil {
		t.Fatalf("ConfirmOrder: %v", err)
	}
	if result.Payload != "координаты 55.75, 37.61" {
		t.Errorf("payload = %q", result.Payload)
	}
	if result.Order.Status != models.OrderConfirmed {
		t.Errorf("order status = %q, want confirmed", result.Order.Status)
	}
	if item.Status != models.ItemSold {
		t.Errorf("item status = %q, want sold", item.Status)
	}

	buyer := repo.users[100]
	if buyer.TotalOrders != 1 || buyer.TotalSpent != 5000 {
		t.Errorf("buyer counters = %d orders, %d spent", buyer.TotalOrders, buyer.TotalSpent)
	}
}

func TestConfirmOrderTwice(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	item := seedShop(t, repo, "координаты клада")
	ctx := context.Background()

	order, _ := svc.PlaceOrder(ctx, 100, item.ID, "photo:proof1")
	if _, err := svc.ConfirmOrder(ctx, order.ID, 1); err != nil {
		t.Fatalf("first ConfirmOrder: %v", err)
	}
	if _, err := svc.ConfirmOrder(ctx, order.ID, 2); !errors.Is(err, ErrAlreadyProcessed) {
		t.Errorf("second ConfirmOrder err = %v, want ErrAlreadyProcessed", err)
	}
}

func TestRejectOrderReleasesItem(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	item := seedShop(t, repo, "координаты клада")
	ctx := context.Background()

	order, _ := svc.PlaceOrder(ctx, 100, item.ID, "photo:proof1")
	rejected, err := svc.RejectOrder(ctx, order.ID, 1, "оплата не найдена")
	if err != nil {
		t.Fatalf("RejectOrder: %v", err)
	}
	if rejected.Status != models.OrderCancelled {
		t.Errorf("order status = %q, want cancelled", rejected.Status)
	}
	if rejected.RejectionReason != "оплата не найдена" {
		t.Errorf("rejection reason = %q", rejected.RejectionReason)
	}
	if item.Status != models.ItemAvailable {
		t.Errorf("item status = %q, want available", item.Status)
	}
	if item.BuyerID != nil {
		t.Error("item buyer not cleared")
	}

	// Подтвердить отклонённый заказ уже нельзя.
	if _, err := svc.ConfirmOrder(ctx, order.ID, 1); !errors.Is(err, ErrAlreadyProcessed) {
		t.Errorf("ConfirmOrder after reject err = %v, want ErrAlreadyProcessed", err)
	}
}

// Заказ и резерв появляются только вместе с пруфом: до него позиция
// остаётся доступной и бросивший оплату покупатель ничего не блокирует.
func TestNoReservationWithoutProof(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	item := seedShop(t, repo, "координаты клада")
	ctx := context.Background()

	if item.Status != models.ItemAvailable {
		t.Fatalf("seeded item status = %q, want available", item.Status)
	}

	// Другой покупатель забирает позицию первым, прислав пруф.
	repo.CreateUser(ctx, &models.User{TelegramID: 200})
	order, err := svc.PlaceOrder(ctx, 200, item.ID, "перевод 5000 в 14:02")
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}
	if order.PaymentProof != "перевод 5000 в 14:02" {
		t.Errorf("payment proof = %q", order.PaymentProof)
	}
	if item.Status != models.ItemReserved {
		t.Errorf("item status = %q, want reserved", item.Status)
	}
}

// Битый конверт обязан завернуть подтверждение целиком: заказ остаётся
// pending, позиция в резерве, счётчики покупателя не трогаются.
func TestConfirmOrderCorruptPayload(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	item := seedShop(t, repo, "координаты клада")
	ctx := context.Background()

	order, _ := svc.PlaceOrder(ctx, 100, item.ID, "photo:proof1")
	item.PayloadSealed = "не base64 вовсе"

	if _, err := svc.ConfirmOrder(ctx, order.ID, 1); err == nil {
		t.Fatal("ConfirmOrder with corrupt payload succeeded")
	}

	stored := repo.orders[order.ID]
	if stored.Status != models.OrderPending {
		t.Errorf("order status = %q, want pending", stored.Status)
	}
	if item.Status != models.ItemReserved {
		t.Errorf("item status = %q, want reserved", item.Status)
	}
	buyer := repo.users[100]
	if buyer.TotalOrders != 0 || buyer.TotalSpent != 0 {
		t.Errorf("buyer counters = %d orders, %d spent", buyer.TotalOrders, buyer.TotalSpent)
	}
}

func TestOrderPayloadReplay(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	item := seedShop(t, repo, "повторный показ")
	ctx := context.Background()

	order, _ := svc.PlaceOrder(ctx, 100, item.ID, "photo:proof1")

	// До подтверждения клад не выдаётся.
	if _, err := svc.OrderPayload(ctx, order.ID); !errors.Is(err, ErrAlreadyProcessed) {
		t.Errorf("OrderPayload on pending err = %v, want ErrAlreadyProcessed", err)
	}

	svc.ConfirmOrder(ctx, order.ID, 1)
	payload, err := svc.OrderPayload(ctx, order.ID)
	if err != nil {
		t.Fatalf("OrderPayload: %v", err)
	}
	if payload != "повторный показ" {
		t.Errorf("payload = %q", payload)
	}
}
