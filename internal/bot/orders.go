package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmarkov/shop_bot/internal/models"
	"github.com/dmarkov/shop_bot/internal/service"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func orderStatusLabel(status string) string {
	switch status {
	case models.OrderPending:
		return "⏳ Ожидает подтверждения"
	case models.OrderConfirmed:
		return "✅ Подтверждён"
	case models.OrderCancelled:
		return "❌ Отменён"
	}
	return status
}

func (b *Bot) handleOrderCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	data := callback.Data
	userID := callback.From.ID
	chatID := callback.Message.Chat.ID

	switch {
	case strings.HasPrefix(data, "order_list_"):
		page, ok := parseSuffixID(data, "order_list_")
		if !ok {
			b.answerCallback(callback.ID, "Кнопка устарела.")
			return
		}
		b.answerCallback(callback.ID, "")
		user, err := b.service.GetUser(ctx, userID)
		if err != nil {
			b.logger.Errorf("Failed to get user %d: %v", userID, err)
			return
		}
		b.showMyOrders(ctx, chatID, user, int(page))

	case strings.HasPrefix(data, "order_payload_"):
		id, ok := parseSuffixID(data, "order_payload_")
		if !ok {
			b.answerCallback(callback.ID, "Кнопка устарела.")
			return
		}
		b.showOrderPayload(ctx, callback, userID, id)

	default:
		b.logger.Warnf("Unknown order callback: %s", data)
		b.answerCallback(callback.ID, "Кнопка устарела.")
	}
}

func (b *Bot) showMyOrders(ctx context.Context, chatID int64, user *models.User, page int) {
	orders, total, err := b.service.ListUserOrders(ctx, user.TelegramID, pageSize, page*pageSize)
	if err != nil {
		b.logger.Errorf("Failed to list orders for %d: %v", user.TelegramID, err)
		b.sendMessage(chatID, "Произошла ошибка. Попробуйте позже.", nil)
		return
	}
	if total == 0 {
		b.sendMessage(chatID, "У вас пока нет заказов. Загляните в каталог!", nil)
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📦 Ваши заказы (всего %d):\n\n", total))
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, o := range orders {
		sb.WriteString(fmt.Sprintf("• %s — %s\n", o.Reference, orderStatusLabel(o.Status)))
		if inv := o.Inventory; inv != nil && inv.Product != nil {
			sb.WriteString(fmt.Sprintf("  %s, %s, %s\n", inv.Product.Name, fmtWeight(inv.WeightGrams), fmtPrice(inv.PriceRub)))
		}
		if o.Status == models.OrderConfirmed {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(
					fmt.Sprintf("📍 Показать клад по %s", o.Reference),
					fmt.Sprintf("order_payload_%d", o.ID),
				),
			))
		}
		sb.WriteString("\n")
	}

	if nav := pageNav("order_list_", page, total); nav != nil {
		rows = append(rows, nav)
	}
	var markup interface{}
	if len(rows) > 0 {
		markup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	}
	b.sendMessage(chatID, sb.String(), markup)
}

// pageNav собирает строку пагинации для списка из total записей.
func pageNav(prefix string, page int, total int64) []tgbotapi.InlineKeyboardButton {
	var nav []tgbotapi.InlineKeyboardButton
	if page > 0 {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("⬅️", fmt.Sprintf("%s%d", prefix, page-1)))
	}
	if int64(page+1)*pageSize < total {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("➡️", fmt.Sprintf("%s%d", prefix, page+1)))
	}
	if len(nav) == 0 {
		return nil
	}
	return nav
}

// showOrderPayload повторно показывает клад подтверждённого заказа владельцу.
func (b *Bot) showOrderPayload(ctx context.Context, callback *tgbotapi.CallbackQuery, userID, orderID int64) {
	order, err := b.service.GetOrder(ctx, orderID)
	if err != nil {
		b.answerCallback(callback.ID, "Заказ не найден.")
		return
	}
	if order.UserID != userID {
		b.answerCallback(callback.ID, "Это не ваш заказ.")
		return
	}

	payload, err := b.service.OrderPayload(ctx, orderID)
	if err != nil {
		b.logger.Errorf("Failed to open payload for order %d: %v", orderID, err)
		b.answerCallback(callback.ID, "Не удалось получить данные, обратитесь в поддержку.")
		return
	}
	b.answerCallback(callback.ID, "")
	b.sendMessage(callback.Message.Chat.ID, fmt.Sprintf("📍 Ваш клад по заказу %s:\n\n%s", order.Reference, payload), nil)
}

// handlePaymentProofInput принимает фото или текст как подтверждение оплаты,
// в этот момент создаёт заказ с резервом позиции и пересылает пруф админам.
func (b *Bot) handlePaymentProofInput(ctx context.Context, update tgbotapi.Update, user *models.User) {
	chatID := update.Message.Chat.ID
	userID := user.TelegramID
	itemID := b.tracker.FieldInt64(userID, "item_id")

	var proof string
	var photoID string
	if len(update.Message.Photo) > 0 {
		// Берём самый крупный вариант фото.
		photoID = update.Message.Photo[len(update.Message.Photo)-1].FileID
		proof = "photo:" + photoID
	} else if strings.TrimSpace(update.Message.Text) != "" {
		proof = strings.TrimSpace(update.Message.Text)
	} else {
		b.sendMessage(chatID, "Пришлите скриншот оплаты или текстовое описание платежа.", nil)
		return
	}

	order, err := b.service.PlaceOrder(ctx, userID, itemID, proof)
	if err != nil {
		b.tracker.Clear(userID)
		if errors.Is(err, service.ErrItemTaken) {
			b.sendMessage(chatID, "😔 Эту позицию только что забрали. Выберите другую, с оплатой разберётся поддержка.", nil)
			return
		}
		b.logger.Errorf("Failed to place order for item %d: %v", itemID, err)
		b.sendMessage(chatID, "Произошла ошибка. Попробуйте позже.", nil)
		return
	}

	b.tracker.Clear(userID)
	markup := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❌ Отменить заказ", fmt.Sprintf("buy_cancel_%d", order.ID)),
		),
	)
	b.sendMessage(chatID, fmt.Sprintf(
		"✅ Заказ %s создан, подтверждение получено! Ожидайте проверки оплаты, обычно это занимает до 30 минут.",
		order.Reference,
	), markup)

	adminText := fmt.Sprintf(
		"💰 Оплата по заказу %s\n\nПокупатель: %s\nСумма: %s\n\nПодтвердить?",
		order.Reference, userLabel(user), fmtPrice(order.Inventory.PriceRub),
	)
	markup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Подтвердить", fmt.Sprintf("adm_ord_ok_%d", order.ID)),
			tgbotapi.NewInlineKeyboardButtonData("❌ Отклонить", fmt.Sprintf("adm_ord_no_%d", order.ID)),
		),
	)
	if photoID != "" {
		b.forwardPhotoByID(b.config.AdminChatID, photoID, adminText)
		b.notifyAdmin("Выберите действие:", markup)
	} else {
		b.notifyAdmin(adminText+"\n\nКомментарий покупателя: "+proof, markup)
	}
}

func userLabel(user *models.User) string {
	if user.Username != "" {
		return "@" + user.Username
	}
	return fmt.Sprintf("id %d", user.TelegramID)
}
