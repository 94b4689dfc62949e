package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmarkov/shop_bot/internal/models"
)

func (s *Service) Settings(ctx context.Context) (*models.BotSettings, error) {
	return s.repo.GetSettings(ctx)
}

// UpdateSettings читает настройки, применяет мутацию и сохраняет обратно.
func (s *Service) UpdateSettings(ctx context.Context, adminID int64, action string, mutate func(*models.BotSettings)) (*models.BotSettings, error) {
	settings, err := s.repo.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	mutate(settings)
	if err := s.repo.SaveSettings(ctx, settings); err != nil {
		return nil, err
	}
	s.LogAction(ctx, adminID, "settings", action, "")
	return settings, nil
}

// MaintenanceOn сообщает, закрыт ли магазин на техработы.
func (s *Service) MaintenanceOn(ctx context.Context) bool {
	settings, err := s.repo.GetSettings(ctx)
	if err != nil {
		s.logger.Errorf("Failed to read settings: %v", err)
		return false
	}
	return settings.MaintenanceMode
}

func (s *Service) SetWelcomeText(ctx context.Context, adminID int64, text string) error {
	if text == "" {
		return fmt.Errorf("текст приветствия не может быть пустым")
	}
	_, err := s.UpdateSettings(ctx, adminID, "welcome_text", func(st *models.BotSettings) {
		st.WelcomeText = text
	})
	return err
}

func (s *Service) SetPaymentInstructions(ctx context.Context, adminID int64, text string) error {
	if text == "" {
		return fmt.Errorf("платёжные реквизиты не могут быть пустыми")
	}
	_, err := s.UpdateSettings(ctx, adminID, "payment_instructions", func(st *models.BotSettings) {
		st.PaymentInstructions = text
	})
	return err
}

func (s *Service) SetSupportUsername(ctx context.Context, adminID int64, username string) error {
	username = strings.TrimPrefix(strings.TrimSpace(username), "@")
	if username == "" {
		return fmt.Errorf("username поддержки не может быть пустым")
	}
	_, err := s.UpdateSettings(ctx, adminID, "support_username", func(st *models.BotSettings) {
		st.SupportUsername = username
	})
	return err
}
