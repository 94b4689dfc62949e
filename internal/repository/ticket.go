package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmarkov/shop_bot/internal/models"
	"gorm.io/gorm"
)

func (r *Repository) CreateTicket(ctx context.Context, ticket *models.Ticket) error {
	return r.db.WithContext(ctx).Create(ticket).Error
}

func (r *Repository) GetTicket(ctx context.Context, id int64) (*models.Ticket, error) {
	var ticket models.Ticket
	err := r.db.WithContext(ctx).First(&ticket, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket %d: %w", id, err)
	}
	return &ticket, nil
}

func (r *Repository) ListOpenTickets(ctx context.Context, limit, offset int) ([]*models.Ticket, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Ticket{}).Where("status = ?", models.TicketOpen)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tickets []*models.Ticket
	err := q.Order("created_at ASC").
		Limit(limit).Offset(offset).
		Find(&tickets).Error
	if err != nil {
		return nil, 0, err
	}
	return tickets, total, nil
}

func (r *Repository) AnswerTicket(ctx context.Context, id, adminID int64, response string) error {
	now := time.Now()
	res := r.db.WithContext(ctx).
		Model(&models.Ticket{}).
		Where("id = ? AND status = ?", id, models.TicketOpen).
		Updates(map[string]interface{}{
			"status":         models.TicketAnswered,
			"admin_response": response,
			"responded_by":   adminID,
			"closed_at":      now,
		})
	if res.Error != nil {
		return fmt.Errorf("ошибка БД при ответе на обращение %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("обращение %d не найдено или уже закрыто", id)
	}
	return nil
}
