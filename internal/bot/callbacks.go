package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// handleCallbackQuery разбирает токен вида <ns>_<action>[_<id>][_<page>]
// и ведёт в обработчик пространства. Непонятный токен не роняет бота:
// пишем в лог и отвечаем пользователю алертом.
func (b *Bot) handleCallbackQuery(callback *tgbotapi.CallbackQuery) {
	ctx := context.Background()
	data := callback.Data
	userID := callback.From.ID

	b.logger.Debugf("Callback from %d: %s", userID, data)

	if strings.HasPrefix(data, "adm_") {
		if !b.isAdmin(ctx, userID) {
			b.answerCallback(callback.ID, "Это действие доступно только администратору.")
			return
		}
		b.handleAdminCallback(ctx, callback)
		return
	}

	switch {
	case data == "catalog":
		b.answerCallback(callback.ID, "")
		b.showCatalog(ctx, callback.Message.Chat.ID, 0)
	case strings.HasPrefix(data, "buy_"):
		b.handleBuyCallback(ctx, callback)
	case strings.HasPrefix(data, "order_"):
		b.handleOrderCallback(ctx, callback)
	case strings.HasPrefix(data, "review"):
		b.handleReviewCallback(ctx, callback)
	case strings.HasPrefix(data, "ticket_"):
		b.handleTicketCallback(ctx, callback)
	case data == "noop":
		b.answerCallback(callback.ID, "")
	default:
		b.logger.Warnf("Unknown callback token from %d: %s", userID, data)
		b.answerCallback(callback.ID, "Кнопка устарела, откройте меню заново.")
	}
}
