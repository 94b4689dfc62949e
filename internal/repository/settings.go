package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmarkov/shop_bot/internal/models"
	"gorm.io/gorm"
)

const settingsRowID = 1

func (r *Repository) GetSettings(ctx context.Context) (*models.BotSettings, error) {
	var settings models.BotSettings
	err := r.db.WithContext(ctx).First(&settings, "id = ?", settingsRowID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Строка сеется при миграции; отсутствие - системная ошибка.
		return nil, fmt.Errorf("строка настроек не найдена")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	return &settings, nil
}

func (r *Repository) SaveSettings(ctx context.Context, settings *models.BotSettings) error {
	settings.ID = settingsRowID
	return r.db.WithContext(ctx).Save(settings).Error
}
