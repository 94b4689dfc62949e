package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) handleAdminReviewCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	data := callback.Data
	chatID := callback.Message.Chat.ID
	adminID := callback.From.ID

	switch {
	case data == "adm_rev_menu":
		b.answerCallback(callback.ID, "")
		b.showPendingReviews(ctx, chatID, 0)

	case strings.HasPrefix(data, "adm_rev_list_"):
		page, ok := parseSuffixID(data, "adm_rev_list_")
		if !ok {
			b.answerCallback(callback.ID, "Кнопка устарела.")
			return
		}
		b.answerCallback(callback.ID, "")
		b.showPendingReviews(ctx, chatID, int(page))

	case strings.HasPrefix(data, "adm_rev_ok_"):
		id, ok := parseSuffixID(data, "adm_rev_ok_")
		if !ok {
			b.answerCallback(callback.ID, "Кнопка устарела.")
			return
		}
		if err := b.service.ApproveReview(ctx, adminID, id); err != nil {
			b.logger.Errorf("Failed to approve review %d: %v", id, err)
			b.answerCallback(callback.ID, "Ошибка, подробности в логах.")
			return
		}
		b.answerCallback(callback.ID, "Отзыв опубликован")
		b.showPendingReviews(ctx, chatID, 0)

	case strings.HasPrefix(data, "adm_rev_del_"):
		id, ok := parseSuffixID(data, "adm_rev_del_")
		if !ok {
			b.answerCallback(callback.ID, "Кнопка устарела.")
			return
		}
		if err := b.service.DeleteReview(ctx, adminID, id); err != nil {
			b.logger.Errorf("Failed to delete review %d: %v", id, err)
			b.answerCallback(callback.ID, "Ошибка, подробности в логах.")
			return
		}
		b.answerCallback(callback.ID, "Отзыв удалён")
		b.showPendingReviews(ctx, chatID, 0)

	default:
		b.logger.Warnf("Unknown admin review callback: %s", data)
		b.answerCallback(callback.ID, "Кнопка устарела.")
	}
}

func (b *Bot) showPendingReviews(ctx context.Context, chatID int64, page int) {
	reviews, total, err := b.service.ListPendingReviews(ctx, pageSize, page*pageSize)
	if err != nil {
		b.logger.Errorf("Failed to list pending reviews: %v", err)
		b.sendMessage(chatID, "Произошла ошибка. Попробуйте позже.", nil)
		return
	}
	if total == 0 {
		b.sendMessage(chatID, "Отзывов на модерации нет.", nil)
		return
	}

	b.sendMessage(chatID, fmt.Sprintf("⭐️ На модерации %d отзыв(ов):", total), nil)
	for _, r := range reviews {
		author := fmt.Sprintf("id %d", r.UserID)
		if r.User != nil {
			author = userLabel(r.User)
		}
		text := fmt.Sprintf("%s от %s:\n\n%s", stars(r.Rating), author, r.Comment)
		markup := tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("✅ Опубликовать", fmt.Sprintf("adm_rev_ok_%d", r.ID)),
				tgbotapi.NewInlineKeyboardButtonData("🗑 Удалить", fmt.Sprintf("adm_rev_del_%d", r.ID)),
			),
		)
		b.sendMessage(chatID, text, markup)
	}

	if nav := pageNav("adm_rev_list_", page, total); nav != nil {
		b.sendMessage(chatID, "Ещё отзывы:", tgbotapi.NewInlineKeyboardMarkup(nav))
	}
}
