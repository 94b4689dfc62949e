package bot

import (
	"context"
	"fmt"

	"github.com/dmarkov/shop_bot/internal/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) showSupportMenu(ctx context.Context, chatID, userID int64) {
	settings, err := b.service.Settings(ctx)
	if err != nil {
		b.logger.Errorf("Failed to load settings: %v", err)
		b.sendMessage(chatID, "Произошла ошибка. Попробуйте позже.", nil)
		return
	}

	text := fmt.Sprintf(
		"🆘 Поддержка\n\nОператор: @%s\n\nИли опишите проблему прямо здесь, мы ответим в этом чате.",
		settings.SupportUsername,
	)
	markup := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✍️ Написать обращение", "ticket_new"),
		),
	)
	b.sendMessage(chatID, text, markup)
}

func (b *Bot) handleTicketCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	if callback.Data != "ticket_new" {
		b.logger.Warnf("Unknown ticket callback: %s", callback.Data)
		b.answerCallback(callback.ID, "Кнопка устарела.")
		return
	}
	b.answerCallback(callback.ID, "")
	b.tracker.Begin(callback.From.ID, stateAwaitingTicketText)
	b.sendMessage(callback.Message.Chat.ID, "Опишите проблему одним сообщением:", nil)
}

func (b *Bot) handleTicketTextInput(ctx context.Context, chatID int64, user *models.User, text string) {
	ticket, err := b.service.OpenTicket(ctx, user.TelegramID, "Обращение из бота", text)
	if err != nil {
		b.sendMessage(chatID, "❌ "+err.Error(), nil)
		return
	}

	b.tracker.Clear(user.TelegramID)
	b.sendMessage(chatID, fmt.Sprintf("✅ Обращение #%d создано. Мы ответим в этом чате.", ticket.ID), nil)

	markup := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✍️ Ответить", fmt.Sprintf("adm_tick_reply_%d", ticket.ID)),
		),
	)
	b.notifyAdmin(fmt.Sprintf("🆘 Обращение #%d от %s:\n\n%s", ticket.ID, userLabel(user), ticket.Message), markup)
}
