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
	broadcastMinLen = 10
	broadcastMaxLen = 4000
)

// ValidateBroadcastText проверяет длину текста рассылки в рунах.
func ValidateBroadcastText(text string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(text))
	if n < broadcastMinLen {
		return fmt.Errorf("текст рассылки слишком короткий: минимум %d символов", broadcastMinLen)
	}
	if n > broadcastMaxLen {
		return fmt.Errorf("текст рассылки слишком длинный: максимум %d символов", broadcastMaxLen)
	}
	return nil
}

// RunBroadcast шлёт текст всем незаблокированным пользователям с троттлингом.
// Пользователи, заблокировавшие бота, помечаются is_blocked и выпадают из
// последующих рассылок. Возвращает счётчики отправлено/не доставлено.
func (s *Service) RunBroadcast(ctx context.Context, adminID int64, text string, send models.SendFunc) (sent, failed int, err error) {
	if err := ValidateBroadcastText(text); err != nil {
		return 0, 0, err
	}

	ids, err := s.repo.GetUnblockedUserIDs(ctx)
	if err != nil {
		return 0, 0, err
	}

	broadcast := &models.Broadcast{
		AdminID:     adminID,
		MessageText: text,
		Status:      models.BroadcastSending,
		TotalCount:  len(ids),
	}
	if err := s.repo.CreateBroadcast(ctx, broadcast); err != nil {
		return 0, 0, err
	}

	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		if sendErr := send(id, text); sendErr != nil {
			failed++
			if strings.Contains(strings.ToLower(sendErr.Error()), "bot was blocked") {
				if blockErr := s.repo.SetUserBlocked(ctx, id, true); blockErr != nil {
					s.logger.Errorf("Failed to mark user %d blocked: %v", id, blockErr)
				}
			} else {
				s.logger.Errorf("Failed to deliver broadcast to %d: %v", id, sendErr)
			}
		} else {
			sent++
		}
		time.Sleep(s.broadcastDelay)
	}

	if err := s.repo.FinishBroadcast(ctx, broadcast.ID, sent, failed); err != nil {
		s.logger.Errorf("Failed to finalize broadcast %d: %v", broadcast.ID, err)
	}

	s.LogAction(ctx, adminID, "broadcast", "run", fmt.Sprintf("broadcast #%d: sent %d, failed %d", broadcast.ID, sent, failed))
	s.logger.Infof("✅ Broadcast %d done: %d sent, %d failed", broadcast.ID, sent, failed)
	return sent, failed, nil
}

func (s *Service) ListBroadcasts(ctx context.Context, limit, offset int) ([]*models.Broadcast, int64, error) {
	return s.repo.ListBroadcasts(ctx, limit, offset)
}

func (s *Service) GetBroadcast(ctx context.Context, id int64) (*models.Broadcast, error) {
	broadcast, err := s.repo.GetBroadcast(ctx, id)
	if err != nil {
		return nil, err
	}
	if broadcast == nil {
		return nil, ErrNotFound
	}
	return broadcast, nil
}
