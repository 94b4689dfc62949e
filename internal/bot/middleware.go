package bot

import (
	"context"

	"github.com/dmarkov/shop_bot/internal/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// withUserCheck регистрирует пользователя при первом контакте и обновляет
// его данные при каждом сообщении.
func (b *Bot) withUserCheck(handler func(context.Context, tgbotapi.Update, *models.User)) func(tgbotapi.Update) {
	return func(update tgbotapi.Update) {
		ctx := context.Background()
		from := update.Message.From

		user, err := b.service.RegisterOrTouchUser(ctx, from.ID, from.UserName, from.FirstName, from.LastName)
		if err != nil {
			b.logger.Errorf("Failed to register user %d: %v", from.ID, err)
			b.sendMessage(update.Message.Chat.ID, "Произошла ошибка. Попробуйте позже.", nil)
			return
		}

		if user.IsBlocked {
			b.sendMessage(update.Message.Chat.ID, "🚫 Доступ к боту ограничен.", nil)
			return
		}

		handler(ctx, update, user)
	}
}
