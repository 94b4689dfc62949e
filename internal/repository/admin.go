package repository

import (
	"context"
	"errors"
	"time"

	"github.com/dmarkov/shop_bot/internal/models"
	"gorm.io/gorm"
)

func (r *Repository) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	var admin models.Admin
	err := r.db.WithContext(ctx).First(&admin, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *Repository) CreateActionLog(ctx context.Context, entry *models.ActionLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// ListActionLogs возвращает страницу логов; нулевое since означает все время.
func (r *Repository) ListActionLogs(ctx context.Context, since time.Time, limit, offset int) ([]*models.ActionLog, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.ActionLog{})
	if !since.IsZero() {
		q = q.Where("created_at > ?", since)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var logs []*models.ActionLog
	err := q.Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&logs).Error
	if err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

// PruneActionLogs удаляет логи старше порога; нулевое before чистит все.
func (r *Repository) PruneActionLogs(ctx context.Context, before time.Time) (int64, error) {
	q := r.db.WithContext(ctx)
	var res *gorm.DB
	if before.IsZero() {
		res = q.Where("1 = 1").Delete(&models.ActionLog{})
	} else {
		res = q.Where("created_at < ?", before).Delete(&models.ActionLog{})
	}
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
