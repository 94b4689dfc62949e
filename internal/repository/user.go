package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmarkov/shop_bot/internal/models"
	"gorm.io/gorm"
)

func (r *Repository) GetUser(ctx context.Context, telegramID int64) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, "telegram_id = ?", telegramID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, "username = ?", username).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *Repository) UpdateUser(ctx context.Context, user *models.User, tx *gorm.DB) error {
	return r.conn(tx).WithContext(ctx).Save(user).Error
}

func (r *Repository) TouchUserActivity(ctx context.Context, telegramID int64, tx *gorm.DB) error {
	return r.conn(tx).WithContext(ctx).
		Model(&models.User{}).
		Where("telegram_id = ?", telegramID).
		Update("last_activity", time.Now()).Error
}

func (r *Repository) SetUserBlocked(ctx context.Context, telegramID int64, blocked bool) error {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("telegram_id = ?", telegramID).
		Update("is_blocked", blocked)
	if res.Error != nil {
		return fmt.Errorf("ошибка БД при обновлении блокировки: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("пользователь %d не найден", telegramID)
	}
	return nil
}

// AddUserPurchase увеличивает счетчики покупателя после подтверждения заказа.
func (r *Repository) AddUserPurchase(ctx context.Context, telegramID int64, price int64, tx *gorm.DB) error {
	res := r.conn(tx).WithContext(ctx).
		Model(&models.User{}).
		Where("telegram_id = ?", telegramID).
		Updates(map[string]interface{}{
			"total_orders": gorm.Expr("total_orders + 1"),
			"total_spent":  gorm.Expr("total_spent + ?", price),
		})
	if res.Error != nil {
		return fmt.Errorf("ошибка БД при обновлении статистики покупателя: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("пользователь %d не найден для обновления статистики", telegramID)
	}
	return nil
}

func (r *Repository) GetUnblockedUserIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("is_blocked = ?", false).
		Order("telegram_id ASC").
		Pluck("telegram_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get unblocked users: %w", err)
	}
	return ids, nil
}

func (r *Repository) ListUsers(ctx context.Context, blockedOnly bool, limit, offset int) ([]*models.User, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.User{})
	if blockedOnly {
		q = q.Where("is_blocked = ?", true)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []*models.User
	err := q.Order("registration_date DESC").
		Limit(limit).Offset(offset).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *Repository) CountUsers(ctx context.Context) (total, blocked int64, err error) {
	if err = r.db.WithContext(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return
	}
	err = r.db.WithContext(ctx).Model(&models.User{}).Where("is_blocked = ?", true).Count(&blocked).Error
	return
}
