package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dmarkov/shop_bot/internal/models"
)

func TestRegisterOrTouchUser(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	user, err := svc.RegisterOrTouchUser(ctx, 100, "buyer", "Иван", "")
	if err != nil {
		t.Fatalf("RegisterOrTouchUser: %v", err)
	}
	if user.Username != "buyer" || user.FirstName != "Иван" {
		t.Errorf("user = %+v", user)
	}

	// Повторный контакт обновляет имя, а не создаёт дубль.
	user, err = svc.RegisterOrTouchUser(ctx, 100, "buyer_new", "Иван", "")
	if err != nil {
		t.Fatalf("second RegisterOrTouchUser: %v", err)
	}
	if user.Username != "buyer_new" {
		t.Errorf("username = %q, want buyer_new", user.Username)
	}
	if len(repo.users) != 1 {
		t.Errorf("users count = %d, want 1", len(repo.users))
	}
}

func TestFindUser(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	repo.CreateUser(ctx, &models.User{TelegramID: 100, Username: "buyer"})

	byID, err := svc.FindUser(ctx, "100")
	if err != nil || byID.TelegramID != 100 {
		t.Errorf("FindUser by id = %v, %v", byID, err)
	}
	byName, err := svc.FindUser(ctx, "@buyer")
	if err != nil || byName.TelegramID != 100 {
		t.Errorf("FindUser by username = %v, %v", byName, err)
	}
	if _, err := svc.FindUser(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
		t.Errorf("FindUser missing err = %v, want ErrNotFound", err)
	}
}

func TestLeaveReviewRules(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	repo.CreateUser(ctx, &models.User{TelegramID: 100})

	// Без подтверждённого заказа отзыв не принимается.
	if _, err := svc.LeaveReview(ctx, 100, 5, "отличный магазин, рекомендую"); err == nil {
		t.Error("review accepted without confirmed order")
	}

	now := time.Now()
	repo.orders[1] = &models.Order{ID: 1, UserID: 100, Status: models.OrderConfirmed, ConfirmedAt: &now}

	if _, err := svc.LeaveReview(ctx, 100, 0, "отличный магазин, рекомендую"); err == nil {
		t.Error("review accepted with rating 0")
	}
	if _, err := svc.LeaveReview(ctx, 100, 5, "коротко"); err == nil {
		t.Error("review accepted with short text")
	}
	if _, err := svc.LeaveReview(ctx, 100, 5, strings.Repeat("а", 501)); err == nil {
		t.Error("review accepted with long text")
	}

	review, err := svc.LeaveReview(ctx, 100, 5, "отличный магазин, рекомендую")
	if err != nil {
		t.Fatalf("LeaveReview: %v", err)
	}
	if review.IsApproved {
		t.Error("new review is approved before moderation")
	}

	// Второй отзыв в те же сутки не принимается.
	if _, err := svc.LeaveReview(ctx, 100, 4, "ещё один отзыв за сегодня"); err == nil {
		t.Error("second review within a day accepted")
	}
}

func TestUpdateSettings(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	settings, err := svc.UpdateSettings(ctx, 1, "toggle_maintenance", func(st *models.BotSettings) {
		st.MaintenanceMode = true
	})
	if err != nil {
		t.Fatalf("UpdateSettings: %v", err)
	}
	if !settings.MaintenanceMode {
		t.Error("maintenance not enabled")
	}
	if !svc.MaintenanceOn(ctx) {
		t.Error("MaintenanceOn = false after enabling")
	}

	if err := svc.SetSupportUsername(ctx, 1, "@helper"); err != nil {
		t.Fatalf("SetSupportUsername: %v", err)
	}
	if repo.settings.SupportUsername != "helper" {
		t.Errorf("support username = %q, want helper", repo.settings.SupportUsername)
	}

	// Действия с настройками попадают в журнал.
	if len(repo.logs) < 2 {
		t.Errorf("action log entries = %d, want >= 2", len(repo.logs))
	}
}
