package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmarkov/shop_bot/internal/service"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) handleAdminTicketCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	data := callback.Data
	chatID := callback.Message.Chat.ID
	adminID := callback.From.ID

	switch {
	case data == "adm_tick_menu":
		b.answerCallback(callback.ID, "")
		b.showOpenTickets(ctx, chatID, 0)

	case strings.HasPrefix(data, "adm_tick_list_"):
		page, ok := parseSuffixID(data, "adm_tick_list_")
		if !ok {
			b.answerCallback(callback.ID, "Кнопка устарела.")
			return
		}
		b.answerCallback(callback.ID, "")
		b.showOpenTickets(ctx, chatID, int(page))

	case strings.HasPrefix(data, "adm_tick_reply_"):
		id, ok := parseSuffixID(data, "adm_tick_reply_")
		if !ok {
			b.answerCallback(callback.ID, "Кнопка устарела.")
			return
		}
		b.answerCallback(callback.ID, "")
		b.tracker.Begin(adminID, stateAwaitingTicketReply)
		b.tracker.SetField(adminID, "ticket_id", fmt.Sprintf("%d", id))
		b.sendMessage(chatID, "Введите ответ пользователю:", nil)

	default:
		b.logger.Warnf("Unknown admin ticket callback: %s", data)
		b.answerCallback(callback.ID, "Кнопка устарела.")
	}
}

func (b *Bot) showOpenTickets(ctx context.Context, chatID int64, page int) {
	tickets, total, err := b.service.ListOpenTickets(ctx, pageSize, page*pageSize)
	if err != nil {
		b.logger.Errorf("Failed to list tickets: %v", err)
		b.sendMessage(chatID, "Произошла ошибка. Попробуйте позже.", nil)
		return
	}
	if total == 0 {
		b.sendMessage(chatID, "Открытых обращений нет.", nil)
		return
	}

	b.sendMessage(chatID, fmt.Sprintf("🆘 Открытых обращений: %d", total), nil)
	for _, t := range tickets {
		text := fmt.Sprintf("Обращение #%d от id %d (%s):\n\n%s",
			t.ID, t.UserID, t.CreatedAt.Format("02.01.2006 15:04"), t.Message)
		markup := tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("✍️ Ответить", fmt.Sprintf("adm_tick_reply_%d", t.ID)),
			),
		)
		b.sendMessage(chatID, text, markup)
	}

	if nav := pageNav("adm_tick_list_", page, total); nav != nil {
		b.sendMessage(chatID, "Ещё обращения:", tgbotapi.NewInlineKeyboardMarkup(nav))
	}
}

func (b *Bot) handleTicketReplyInput(ctx context.Context, chatID, adminID int64, text string) {
	ticketID := b.tracker.FieldInt64(adminID, "ticket_id")

	ticket, err := b.service.GetTicket(ctx, ticketID)
	if err != nil {
		b.tracker.Clear(adminID)
		if errors.Is(err, service.ErrNotFound) {
			b.sendMessage(chatID, "Обращение не найдено.", nil)
			return
		}
		b.logger.Errorf("Failed to get ticket %d: %v", ticketID, err)
		b.sendMessage(chatID, "Произошла ошибка. Попробуйте позже.", nil)
		return
	}

	if err := b.service.AnswerTicket(ctx, ticketID, adminID, text); err != nil {
		b.sendMessage(chatID, "❌ "+err.Error(), nil)
		return
	}

	b.tracker.Clear(adminID)
	b.sendMessage(chatID, fmt.Sprintf("✅ Ответ на обращение #%d отправлен.", ticketID), nil)
	b.sendMessage(ticket.UserID, fmt.Sprintf("💬 Ответ поддержки на обращение #%d:\n\n%s", ticketID, text), nil)
}
