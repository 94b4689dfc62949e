package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dmarkov/shop_bot/internal/models"
)

func TestValidateBroadcastText(t *testing.T) {
	cases := []struct {
		name    string
		text    string
		wantErr bool
	}{
		{"too short", "привет", true},
		{"min length", "ровно 10 с", false},
		{"normal", "Сегодня пополнение витрины, заходите!", false},
		{"too long", strings.Repeat("а", 4001), true},
		{"max length", strings.Repeat("а", 4000), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateBroadcastText(tc.text)
			if (err != nil) != tc.wantErr {
				t.Errorf("ValidateBroadcastText(%q) err = %v, wantErr %v", tc.text, err, tc.wantErr)
			}
		})
	}
}

func TestRunBroadcastSkipsBlocked(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	repo.CreateUser(ctx, &models.User{TelegramID: 10})
	repo.CreateUser(ctx, &models.User{TelegramID: 20, IsBlocked: true})
	repo.CreateUser(ctx, &models.User{TelegramID: 30})

	var got []int64
	send := func(userID int64, text string) error {
		got = append(got, userID)
		return nil
	}

	sent, failed, err := svc.RunBroadcast(ctx, 1, "Сегодня пополнение витрины!", send)
	if err != nil {
		t.Fatalf("RunBroadcast: %v", err)
	}
	if sent != 2 || failed != 0 {
		t.Errorf("sent=%d failed=%d, want 2/0", sent, failed)
	}
	for _, id := range got {
		if id == 20 {
			t.Error("broadcast reached blocked user")
		}
	}
}

func TestRunBroadcastMarksBlockers(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	repo.CreateUser(ctx, &models.User{TelegramID: 10})
	repo.CreateUser(ctx, &models.User{TelegramID: 20})

	send := func(userID int64, text string) error {
		if userID == 20 {
			return errors.New("Forbidden: bot was blocked by the user")
		}
		return nil
	}

	sent, failed, err := svc.RunBroadcast(ctx, 1, "Сегодня пополнение витрины!", send)
	if err != nil {
		t.Fatalf("RunBroadcast: %v", err)
	}
	if sent != 1 || failed != 1 {
		t.Errorf("sent=%d failed=%d, want 1/1", sent, failed)
	}
	if !repo.users[20].IsBlocked {
		t.Error("user who blocked the bot was not marked")
	}

	// Итоги записаны в историю.
	var bc *models.Broadcast
	for _, b := range repo.broadcasts {
		bc = b
	}
	if bc == nil {
		t.Fatal("broadcast row not created")
	}
	if bc.Status != models.BroadcastCompleted || bc.SentCount != 1 || bc.FailedCount != 1 {
		t.Errorf("broadcast row = %+v", bc)
	}
}

func TestRunBroadcastRejectsInvalidText(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	_, _, err := svc.RunBroadcast(context.Background(), 1, "короткий", func(int64, string) error { return nil })
	if err == nil {
		t.Error("expected validation error for short text")
	}
	if len(repo.broadcasts) != 0 {
		t.Error("broadcast row created for invalid text")
	}
}
