package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dmarkov/shop_bot/internal/models"
)

const (
	reviewMinLen = 10
	reviewMaxLen = 500
)

// LeaveReview принимает отзыв от покупателя с хотя бы одним подтверждённым
// заказом, не чаще одного в сутки.
func (s *Service) LeaveReview(ctx context.Context, userID int64, rating int, text string) (*models.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("оценка должна быть от 1 до 5")
	}
	text = strings.TrimSpace(text)
	n := utf8.RuneCountInString(text)
	if n < reviewMinLen || n > reviewMaxLen {
		return nil, fmt.Errorf("текст отзыва должен быть от %d до %d символов", reviewMinLen, reviewMaxLen)
	}

	confirmed, err := s.repo.CountUserConfirmedOrders(ctx, userID)
	if err != nil {
		return nil, err
	}
	if confirmed == 0 {
		return nil, fmt.Errorf("отзыв можно оставить только после подтверждённого заказа")
	}

	recent, err := s.repo.CountRecentUserReviews(ctx, userID, time.Now().Add(-24*time.Hour))
	if err != nil {
		return nil, err
	}
	if recent > 0 {
		return nil, fmt.Errorf("можно оставлять не больше одного отзыва в сутки")
	}

	review := &models.Review{
		UserID:  userID,
		Rating:  rating,
		Comment: text,
	}
	if err := s.repo.CreateReview(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

func (s *Service) ListApprovedReviews(ctx context.Context, limit, offset int) ([]*models.Review, int64, error) {
	return s.repo.ListApprovedReviews(ctx, limit, offset)
}

func (s *Service) ListPendingReviews(ctx context.Context, limit, offset int) ([]*models.Review, int64, error) {
	return s.repo.ListPendingReviews(ctx, limit, offset)
}

func (s *Service) ApproveReview(ctx context.Context, adminID, reviewID int64) error {
	if err := s.repo.ApproveReview(ctx, reviewID); err != nil {
		return err
	}
	s.LogAction(ctx, adminID, "review", "approve", fmt.Sprintf("review #%d", reviewID))
	return nil
}

func (s *Service) DeleteReview(ctx context.Context, adminID, reviewID int64) error {
	if err := s.repo.DeleteReview(ctx, reviewID); err != nil {
		return err
	}
	s.LogAction(ctx, adminID, "review", "delete", fmt.Sprintf("review #%d", reviewID))
	return nil
}
