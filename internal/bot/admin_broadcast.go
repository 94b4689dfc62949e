package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmarkov/shop_bot/internal/models"
	"github.com/dmarkov/shop_bot/internal/service"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) handleAdminBroadcastCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	data := callback.Data
	chatID := callback.Message.Chat.ID
	adminID := callback.From.ID

	switch {
	case data == "adm_bc_menu":
		b.answerCallback(callback.ID, "")
		markup := tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("✍️ Новая рассылка", "adm_bc_new"),
				tgbotapi.NewInlineKeyboardButtonData("🗂 История", "adm_bc_hist_0"),
			),
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("⬅️ Назад", "adm_panel"),
			),
		)
		b.sendMessage(chatID, "📣 Рассылки", markup)

	case data == "adm_bc_new":
		b.answerCallback(callback.ID, "")
		b.tracker.Begin(adminID, stateAwaitingBroadcastText)
		b.sendMessage(chatID, "Введите текст рассылки (от 10 до 4000 символов):", nil)

	case data == "adm_bc_send":
		text := b.tracker.Field(adminID, "bc_text")
		b.tracker.Clear(adminID)
		if text == "" {
			b.answerCallback(callback.ID, "Текст потерялся, начните заново.")
			return
		}
		b.answerCallback(callback.ID, "Рассылка запущена")
		b.runBroadcast(ctx, chatID, adminID, text)

	case data == "adm_bc_cancel":
		b.tracker.Clear(adminID)
		b.answerCallback(callback.ID, "Отменено")
		b.sendMessage(chatID, "Рассылка отменена.", nil)

	case strings.HasPrefix(data, "adm_bc_hist_"):
		page, ok := parseSuffixID(data, "adm_bc_hist_")
		if !ok {
			b.answerCallback(callback.ID, "Кнопка устарела.")
			return
		}
		b.answerCallback(callback.ID, "")
		b.showBroadcastHistory(ctx, chatID, int(page))

	default:
		b.logger.Warnf("Unknown admin broadcast callback: %s", data)
		b.answerCallback(callback.ID, "Кнопка устарела.")
	}
}

func (b *Bot) handleBroadcastTextInput(ctx context.Context, chatID, adminID int64, text string) {
	if err := service.ValidateBroadcastText(text); err != nil {
		b.sendMessage(chatID, "❌ "+err.Error(), nil)
		return
	}

	b.tracker.SetField(adminID, "bc_text", text)
	b.tracker.SetState(adminID, stateDefault)

	markup := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🚀 Отправить", "adm_bc_send"),
			tgbotapi.NewInlineKeyboardButtonData("❌ Отмена", "adm_bc_cancel"),
		),
	)
	b.sendMessage(chatID, "Предпросмотр рассылки:\n\n"+text+"\n\nОтправить всем пользователям?", markup)
}

func (b *Bot) runBroadcast(ctx context.Context, chatID, adminID int64, text string) {
	sent, failed, err := b.service.RunBroadcast(ctx, adminID, text, b.sendTo)
	if err != nil {
		b.logger.Errorf("Broadcast failed: %v", err)
		b.sendMessage(chatID, "Не удалось запустить рассылку, подробности в логах.", nil)
		return
	}
	b.sendMessage(chatID, fmt.Sprintf("📣 Рассылка завершена.\n\nДоставлено: %d\nНе доставлено: %d", sent, failed), nil)
}

func (b *Bot) showBroadcastHistory(ctx context.Context, chatID int64, page int) {
	broadcasts, total, err := b.service.ListBroadcasts(ctx, pageSize, page*pageSize)
	if err != nil {
		b.logger.Errorf("Failed to list broadcasts: %v", err)
		b.sendMessage(chatID, "Произошла ошибка. Попробуйте позже.", nil)
		return
	}
	if total == 0 {
		b.sendMessage(chatID, "Рассылок ещё не было.", nil)
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🗂 История рассылок (всего %d):\n\n", total))
	for _, bc := range broadcasts {
		preview := bc.MessageText
		if runes := []rune(preview); len(runes) > 60 {
			preview = string(runes[:60]) + "…"
		}
		status := "✅"
		if bc.Status == models.BroadcastSending {
			status = "⏳"
		}
		sb.WriteString(fmt.Sprintf(
			"%s #%d от %s\n%s\nДоставлено %d из %d\n\n",
			status, bc.ID, bc.CreatedAt.Format("02.01.2006 15:04"),
			preview, bc.SentCount, bc.TotalCount,
		))
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	if nav := pageNav("adm_bc_hist_", page, total); nav != nil {
		rows = append(rows, nav)
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⬅️ Назад", "adm_bc_menu"),
	))
	b.sendMessage(chatID, sb.String(), tgbotapi.NewInlineKeyboardMarkup(rows...))
}
