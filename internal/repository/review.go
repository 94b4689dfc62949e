package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/dmarkov/shop_bot/internal/models"
)

func (r *Repository) CreateReview(ctx context.Context, review *models.Review) error {
	return r.db.WithContext(ctx).Create(review).Error
}

func (r *Repository) ListApprovedReviews(ctx context.Context, limit, offset int) ([]*models.Review, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Review{}).Where("is_approved = ?", true)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reviews []*models.Review
	err := q.Preload("User").
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&reviews).Error
	if err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}

func (r *Repository) ListPendingReviews(ctx context.Context, limit, offset int) ([]*models.Review, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Review{}).Where("is_approved = ?", false)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reviews []*models.Review
	err := q.Preload("User").
		Order("created_at ASC").
		Limit(limit).Offset(offset).
		Find(&reviews).Error
	if err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}

func (r *Repository) ApproveReview(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Where("id = ?", id).
		Update("is_approved", true)
	if res.Error != nil {
		return fmt.Errorf("ошибка БД при одобрении отзыва %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("отзыв %d не найден", id)
	}
	return nil
}

func (r *Repository) DeleteReview(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&models.Review{}, id)
	if res.Error != nil {
		return fmt.Errorf("ошибка БД при удалении отзыва %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("отзыв %d не найден", id)
	}
	return nil
}

// CountRecentUserReviews проверяет лимит "один отзыв в сутки".
func (r *Repository) CountRecentUserReviews(ctx context.Context, userID int64, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Where("user_id = ? AND created_at > ?", userID, since).
		Count(&count).Error
	return count, err
}
