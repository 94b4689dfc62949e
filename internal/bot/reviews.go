package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmarkov/shop_bot/internal/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func stars(rating int) string {
	return strings.Repeat("⭐️", rating)
}

func (b *Bot) showReviewsMenu(ctx context.Context, chatID int64, page int) {
	reviews, total, err := b.service.ListApprovedReviews(ctx, pageSize, page*pageSize)
	if err != nil {
		b.logger.Errorf("Failed to list reviews: %v", err)
		b.sendMessage(chatID, "Произошла ошибка. Попробуйте позже.", nil)
		return
	}

	var sb strings.Builder
	if total == 0 {
		sb.WriteString("Отзывов пока нет. Станьте первым!\n")
	} else {
		sb.WriteString(fmt.Sprintf("⭐️ Отзывы покупателей (всего %d):\n\n", total))
		for _, r := range reviews {
			name := "Покупатель"
			if r.User != nil && r.User.FirstName != "" {
				name = r.User.FirstName
			}
			sb.WriteString(fmt.Sprintf("%s %s\n%s\n\n", stars(r.Rating), name, r.Comment))
		}
	}

	rows := [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✍️ Оставить отзыв", "review_new"),
		),
	}
	if nav := pageNav("reviews_list_", page, total); nav != nil {
		rows = append(rows, nav)
	}
	b.sendMessage(chatID, sb.String(), tgbotapi.NewInlineKeyboardMarkup(rows...))
}

func (b *Bot) handleReviewCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	data := callback.Data
	userID := callback.From.ID
	chatID := callback.Message.Chat.ID

	switch {
	case data == "review_new":
		b.answerCallback(callback.ID, "")
		var rows []tgbotapi.InlineKeyboardButton
		for i := 1; i <= 5; i++ {
			rows = append(rows, tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("%d⭐️", i), fmt.Sprintf("review_rate_%d", i),
			))
		}
		b.sendMessage(chatID, "Оцените магазин:", tgbotapi.NewInlineKeyboardMarkup(rows))

	case strings.HasPrefix(data, "review_rate_"):
		rating, ok := parseSuffixID(data, "review_rate_")
		if !ok || rating < 1 || rating > 5 {
			b.answerCallback(callback.ID, "Кнопка устарела.")
			return
		}
		b.answerCallback(callback.ID, "")
		b.tracker.Begin(userID, stateAwaitingReviewText)
		b.tracker.SetField(userID, "rating", fmt.Sprintf("%d", rating))
		b.sendMessage(chatID, "Напишите текст отзыва (от 10 до 500 символов):", nil)

	case strings.HasPrefix(data, "reviews_list_"):
		page, ok := parseSuffixID(data, "reviews_list_")
		if !ok {
			b.answerCallback(callback.ID, "Кнопка устарела.")
			return
		}
		b.answerCallback(callback.ID, "")
		b.showReviewsMenu(ctx, chatID, int(page))

	default:
		b.logger.Warnf("Unknown review callback: %s", data)
		b.answerCallback(callback.ID, "Кнопка устарела.")
	}
}

func (b *Bot) handleReviewTextInput(ctx context.Context, chatID int64, user *models.User, text string) {
	rating := int(b.tracker.FieldInt64(user.TelegramID, "rating"))

	review, err := b.service.LeaveReview(ctx, user.TelegramID, rating, text)
	if err != nil {
		// Ошибки валидации показываем как есть, пользователь остаётся в мастере.
		b.sendMessage(chatID, "❌ "+err.Error(), nil)
		return
	}

	b.tracker.Clear(user.TelegramID)
	b.sendMessage(chatID, "✅ Спасибо! Отзыв отправлен на модерацию.", nil)
	b.notifyAdmin(fmt.Sprintf("Новый отзыв #%d от %s: %s %s", review.ID, userLabel(user), stars(review.Rating), review.Comment), nil)
}
