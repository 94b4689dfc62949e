package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/dmarkov/shop_bot/internal/models"
)

// RegisterOrTouchUser создаёт пользователя при первом контакте или обновляет
// его имя и время активности.
func (s *Service) RegisterOrTouchUser(ctx context.Context, telegramID int64, username, firstName, lastName string) (*models.User, error) {
	user, err := s.repo.GetUser(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		user = &models.User{
			TelegramID:       telegramID,
			Username:         username,
			FirstName:        firstName,
			LastName:         lastName,
			RegistrationDate: time.Now(),
			LastActivity:     time.Now(),
		}
		if err := s.repo.CreateUser(ctx, user); err != nil {
			return nil, err
		}
		s.logger.Infof("✅ New user registered: %d (@%s)", telegramID, username)
		return user, nil
	}

	user.Username = username
	user.FirstName = firstName
	user.LastName = lastName
	user.LastActivity = time.Now()
	if err := s.repo.UpdateUser(ctx, user, nil); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) GetUser(ctx context.Context, telegramID int64) (*models.User, error) {
	user, err := s.repo.GetUser(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

// FindUser ищет по числовому ID или @username.
func (s *Service) FindUser(ctx context.Context, query string) (*models.User, error) {
	query = strings.TrimSpace(strings.TrimPrefix(query, "@"))
	if id, err := strconv.ParseInt(query, 10, 64); err == nil {
		return s.GetUser(ctx, id)
	}
	user, err := s.repo.GetUserByUsername(ctx, query)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

func (s *Service) SetUserBlocked(ctx context.Context, adminID, telegramID int64, blocked bool) error {
	if err := s.repo.SetUserBlocked(ctx, telegramID, blocked); err != nil {
		return err
	}
	action := "unblock"
	if blocked {
		action = "block"
	}
	s.LogAction(ctx, adminID, "user", action, strconv.FormatInt(telegramID, 10))
	return nil
}

func (s *Service) ListUsers(ctx context.Context, blockedOnly bool, limit, offset int) ([]*models.User, int64, error) {
	return s.repo.ListUsers(ctx, blockedOnly, limit, offset)
}

func (s *Service) CountAllUsers(ctx context.Context) (total, blocked int64, err error) {
	return s.repo.CountUsers(ctx)
}

func (s *Service) PassCaptcha(ctx context.Context, telegramID int64) error {
	user, err := s.repo.GetUser(ctx, telegramID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrNotFound
	}
	user.CaptchaPassed = true
	return s.repo.UpdateUser(ctx, user, nil)
}
