package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmarkov/shop_bot/internal/models"
	"gorm.io/gorm"
)

func (r *Repository) CreateBroadcast(ctx context.Context, broadcast *models.Broadcast) error {
	return r.db.WithContext(ctx).Create(broadcast).Error
}

func (r *Repository) GetBroadcast(ctx context.Context, id int64) (*models.Broadcast, error) {
	var broadcast models.Broadcast
	err := r.db.WithContext(ctx).First(&broadcast, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get broadcast %d: %w", id, err)
	}
	return &broadcast, nil
}

// FinishBroadcast записывает итоги рассылки одним обновлением.
func (r *Repository) FinishBroadcast(ctx context.Context, id int64, sent, failed int) error {
	now := time.Now()
	res := r.db.WithContext(ctx).
		Model(&models.Broadcast{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       models.BroadcastCompleted,
			"sent_count":   sent,
			"failed_count": failed,
			"completed_at": now,
		})
	if res.Error != nil {
		return fmt.Errorf("ошибка БД при завершении рассылки %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("рассылка %d не найдена", id)
	}
	return nil
}

func (r *Repository) ListBroadcasts(ctx context.Context, limit, offset int) ([]*models.Broadcast, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Broadcast{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var broadcasts []*models.Broadcast
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&broadcasts).Error
	if err != nil {
		return nil, 0, err
	}
	return broadcasts, total, nil
}

func (r *Repository) CountBroadcastsSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Broadcast{}).
		Where("created_at > ?", since).
		Count(&count).Error
	return count, err
}
