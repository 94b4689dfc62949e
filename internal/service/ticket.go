package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dmarkov/shop_bot/internal/models"
)

// OpenTicket создаёт обращение в поддержку.
func (s *Service) OpenTicket(ctx context.Context, userID int64, subject, message string) (*models.Ticket, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		subject = "Без темы"
	}
	message = strings.TrimSpace(message)
	if utf8.RuneCountInString(message) < 5 {
		return nil, fmt.Errorf("опишите проблему подробнее (минимум 5 символов)")
	}
	ticket := &models.Ticket{
		UserID:  userID,
		Subject: subject,
		Message: message,
		Status:  models.TicketOpen,
	}
	if err := s.repo.CreateTicket(ctx, ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

func (s *Service) GetTicket(ctx context.Context, id int64) (*models.Ticket, error) {
	ticket, err := s.repo.GetTicket(ctx, id)
	if err != nil {
		return nil, err
	}
	if ticket == nil {
		return nil, ErrNotFound
	}
	return ticket, nil
}

func (s *Service) ListOpenTickets(ctx context.Context, limit, offset int) ([]*models.Ticket, int64, error) {
	return s.repo.ListOpenTickets(ctx, limit, offset)
}

func (s *Service) AnswerTicket(ctx context.Context, ticketID, adminID int64, response string) error {
	response = strings.TrimSpace(response)
	if response == "" {
		return fmt.Errorf("ответ не может быть пустым")
	}
	if err := s.repo.AnswerTicket(ctx, ticketID, adminID, response); err != nil {
		return err
	}
	s.LogAction(ctx, adminID, "ticket", "answer", fmt.Sprintf("ticket #%d", ticketID))
	return nil
}
