package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmarkov/shop_bot/utils"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) handleAdminLogCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	data := callback.Data
	chatID := callback.Message.Chat.ID
	adminID := callback.From.ID

	switch {
	case data == "adm_log_menu":
		b.answerCallback(callback.ID, "")
		markup := tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("📅 За сегодня", "adm_log_today"),
				tgbotapi.NewInlineKeyboardButtonData("🗓 За неделю", "adm_log_week"),
			),
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("📜 Все", "adm_log_all_0"),
				tgbotapi.NewInlineKeyboardButtonData("🧹 Очистить старше 30 дней", "adm_log_prune"),
			),
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("⬅️ Назад", "adm_panel"),
			),
		)
		b.sendMessage(chatID, "📜 Журнал действий", markup)

	case data == "adm_log_today":
		b.answerCallback(callback.ID, "")
		b.showActionLogs(ctx, chatID, utils.StartOfDay(time.Now()), 0, "")

	case data == "adm_log_week":
		b.answerCallback(callback.ID, "")
		b.showActionLogs(ctx, chatID, time.Now().AddDate(0, 0, -7), 0, "")

	case strings.HasPrefix(data, "adm_log_all_"):
		page, ok := parseSuffixID(data, "adm_log_all_")
		if !ok {
			b.answerCallback(callback.ID, "Кнопка устарела.")
			return
		}
		b.answerCallback(callback.ID, "")
		b.showActionLogs(ctx, chatID, time.Time{}, int(page), "adm_log_all_")

	case data == "adm_log_prune":
		removed, err := b.service.PruneActionLogs(ctx, adminID, time.Now().AddDate(0, 0, -30))
		if err != nil {
			b.logger.Errorf("Failed to prune action logs: %v", err)
			b.answerCallback(callback.ID, "Ошибка, подробности в логах.")
			return
		}
		b.answerCallback(callback.ID, "Готово")
		b.sendMessage(chatID, fmt.Sprintf("🧹 Удалено %d записей журнала.", removed), nil)

	default:
		b.logger.Warnf("Unknown admin log callback: %s", data)
		b.answerCallback(callback.ID, "Кнопка устарела.")
	}
}

func (b *Bot) showActionLogs(ctx context.Context, chatID int64, since time.Time, page int, navPrefix string) {
	logs, total, err := b.service.ListActionLogs(ctx, since, pageSize*2, page*pageSize*2)
	if err != nil {
		b.logger.Errorf("Failed to list action logs: %v", err)
		b.sendMessage(chatID, "Произошла ошибка. Попробуйте позже.", nil)
		return
	}
	if total == 0 {
		b.sendMessage(chatID, "Записей нет.", nil)
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📜 Журнал (всего %d):\n\n", total))
	for _, l := range logs {
		sb.WriteString(fmt.Sprintf(
			"%s — админ %d: %s/%s",
			l.CreatedAt.Format("02.01 15:04"), l.AdminID, l.ActionType, l.ActionName,
		))
		if l.Details != "" {
			sb.WriteString(" (" + l.Details + ")")
		}
		sb.WriteString("\n")
	}

	var markup interface{}
	if navPrefix != "" {
		var rows [][]tgbotapi.InlineKeyboardButton
		var nav []tgbotapi.InlineKeyboardButton
		if page > 0 {
			nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("⬅️", fmt.Sprintf("%s%d", navPrefix, page-1)))
		}
		if int64((page+1)*pageSize*2) < total {
			nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("➡️", fmt.Sprintf("%s%d", navPrefix, page+1)))
		}
		if len(nav) > 0 {
			rows = append(rows, nav)
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬅️ Назад", "adm_log_menu"),
		))
		markup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	}
	b.sendMessage(chatID, sb.String(), markup)
}
