package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmarkov/shop_bot/internal/models"
	"github.com/dmarkov/shop_bot/internal/service"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) handleAdminOrderCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	data := callback.Data
	chatID := callback.Message.Chat.ID
	adminID := callback.From.ID

	switch {
	case data == "adm_ord_menu":
		b.answerCallback(callback.ID, "")
		b.showOrdersMenu(ctx, chatID)

	case strings.HasPrefix(data, "adm_ord_list_"):
		status, page, ok := parseListToken(data, "adm_ord_list_")
		if !ok {
			b.answerCallback(callback.ID, "Кнопка устарела.")
			return
		}
		b.answerCallback(callback.ID, "")
		b.showOrdersList(ctx, chatID, status, page)

	case strings.HasPrefix(data, "adm_ord_view_"):
		id, ok := parseSuffixID(data, "adm_ord_view_")
		if !ok {
			b.answerCallback(callback.ID, "Кнопка устарела.")
			return
		}
		b.answerCallback(callback.ID, "")
		b.showOrderDetails(ctx, chatID, id)

	case strings.HasPrefix(data, "adm_ord_proof_"):
		id, ok := parseSuffixID(data, "adm_ord_proof_")
		if !ok {
			b.answerCallback(callback.ID, "Кнопка устарела.")
			return
		}
		b.showOrderProof(ctx, callback, id)

	case strings.HasPrefix(data, "adm_ord_data_"):
		id, ok := parseSuffixID(data, "adm_ord_data_")
		if !ok {
			b.answerCallback(callback.ID, "Кнопка устарела.")
			return
		}
		payload, err := b.service.OrderPayload(ctx, id)
		if err != nil {
			b.logger.Errorf("Failed to open payload for order %d: %v", id, err)
			b.answerCallback(callback.ID, "Не удалось расшифровать данные.")
			return
		}
		b.answerCallback(callback.ID, "")
		b.sendMessage(chatID, fmt.Sprintf("📍 Данные по заказу #%d:\n\n%s", id, payload), nil)

	case strings.HasPrefix(data, "adm_ord_ok_"):
		id, ok := parseSuffixID(data, "adm_ord_ok_")
		if !ok {
			b.answerCallback(callback.ID, "Кнопка устарела.")
			return
		}
		b.confirmOrderByAdmin(ctx, callback, adminID, id)

	case strings.HasPrefix(data, "adm_ord_no_"):
		id, ok := parseSuffixID(data, "adm_ord_no_")
		if !ok {
			b.answerCallback(callback.ID, "Кнопка устарела.")
			return
		}
		b.answerCallback(callback.ID, "")
		b.tracker.Begin(adminID, stateAwaitingRejectReason)
		b.tracker.SetField(adminID, "order_id", fmt.Sprintf("%d", id))
		b.sendMessage(chatID, "Укажите причину отклонения:", nil)

	case data == "adm_ord_search":
		b.answerCallback(callback.ID, "")
		b.tracker.Begin(adminID, stateAwaitingOrderSearch)
		b.sendMessage(chatID, "Введите номер заказа (например A1B2C3D4) или его ID:", nil)

	default:
		b.logger.Warnf("Unknown admin order callback: %s", data)
		b.answerCallback(callback.ID, "Кнопка устарела.")
	}
}

// parseListToken разбирает "<prefix><status>_<page>".
func parseListToken(data, prefix string) (string, int, bool) {
	rest := strings.TrimPrefix(data, prefix)
	idx := strings.LastIndex(rest, "_")
	if idx <= 0 {
		return "", 0, false
	}
	page, err := strconv.Atoi(rest[idx+1:])
	if err != nil || page < 0 {
		return "", 0, false
	}
	return rest[:idx], page, true
}

func (b *Bot) showOrdersMenu(ctx context.Context, chatID int64) {
	pending, _ := b.service.CountOrders(ctx, models.OrderPending)
	confirmed, _ := b.service.CountOrders(ctx, models.OrderConfirmed)
	cancelled, _ := b.service.CountOrders(ctx, models.OrderCancelled)

	markup := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("⏳ Ожидают (%d)", pending), "adm_ord_list_pending_0"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("✅ Подтверждённые (%d)", confirmed), "adm_ord_list_confirmed_0"),
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("❌ Отменённые (%d)", cancelled), "adm_ord_list_cancelled_0"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔎 Найти заказ", "adm_ord_search"),
			tgbotapi.NewInlineKeyboardButtonData("⬅️ Назад", "adm_panel"),
		),
	)
	b.sendMessage(chatID, "📦 Заказы", markup)
}

func (b *Bot) showOrdersList(ctx context.Context, chatID int64, status string, page int) {
	orders, total, err := b.service.ListOrders(ctx, status, pageSize, page*pageSize)
	if err != nil {
		b.logger.Errorf("Failed to list orders: %v", err)
		b.sendMessage(chatID, "Произошла ошибка. Попробуйте позже.", nil)
		return
	}
	if total == 0 {
		b.sendMessage(chatID, "В этом разделе пусто.", nil)
		return
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, o := range orders {
		label := fmt.Sprintf("%s — %s", o.Reference, orderStatusLabel(o.Status))
		if o.User != nil {
			label = fmt.Sprintf("%s — %s", o.Reference, userLabel(o.User))
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("adm_ord_view_%d", o.ID)),
		))
	}
	if nav := pageNav(fmt.Sprintf("adm_ord_list_%s_", status), page, total); nav != nil {
		rows = append(rows, nav)
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⬅️ Назад", "adm_ord_menu"),
	))
	b.sendMessage(chatID, fmt.Sprintf("Заказы (всего %d):", total), tgbotapi.NewInlineKeyboardMarkup(rows...))
}

func (b *Bot) showOrderDetails(ctx context.Context, chatID, orderID int64) {
	order, err := b.service.GetOrder(ctx, orderID)
	if err != nil {
		b.sendMessage(chatID, "Заказ не найден.", nil)
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Заказ %s\nСтатус: %s\n", order.Reference, orderStatusLabel(order.Status)))
	if order.User != nil {
		sb.WriteString(fmt.Sprintf("Покупатель: %s (id %d)\n", userLabel(order.User), order.UserID))
	}
	if inv := order.Inventory; inv != nil {
		if inv.Product != nil && inv.City != nil && inv.District != nil {
			sb.WriteString(fmt.Sprintf("Позиция: %s, %s, %s\n", inv.Product.Name, inv.City.Name, inv.District.Name))
		}
		sb.WriteString(fmt.Sprintf("Вес: %s, цена: %s\n", fmtWeight(inv.WeightGrams), fmtPrice(inv.PriceRub)))
	}
	sb.WriteString(fmt.Sprintf("Создан: %s\n", order.CreatedAt.Format("02.01.2006 15:04")))
	if order.ConfirmedAt != nil {
		sb.WriteString(fmt.Sprintf("Подтверждён: %s\n", order.ConfirmedAt.Format("02.01.2006 15:04")))
	}
	if order.RejectionReason != "" {
		sb.WriteString(fmt.Sprintf("Причина отмены: %s\n", order.RejectionReason))
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	if order.PaymentProof != "" {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💳 Показать пруф", fmt.Sprintf("adm_ord_proof_%d", order.ID)),
		))
	}
	if order.Status == models.OrderPending {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Подтвердить", fmt.Sprintf("adm_ord_ok_%d", order.ID)),
			tgbotapi.NewInlineKeyboardButtonData("❌ Отклонить", fmt.Sprintf("adm_ord_no_%d", order.ID)),
		))
	}
	if order.Status == models.OrderConfirmed {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📍 Показать клад", fmt.Sprintf("adm_ord_data_%d", order.ID)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⬅️ Назад", "adm_ord_menu"),
	))
	b.sendMessage(chatID, sb.String(), tgbotapi.NewInlineKeyboardMarkup(rows...))
}

func (b *Bot) showOrderProof(ctx context.Context, callback *tgbotapi.CallbackQuery, orderID int64) {
	order, err := b.service.GetOrder(ctx, orderID)
	if err != nil {
		b.answerCallback(callback.ID, "Заказ не найден.")
		return
	}
	if order.PaymentProof == "" {
		b.answerCallback(callback.ID, "Пруф ещё не прислан.")
		return
	}
	b.answerCallback(callback.ID, "")
	chatID := callback.Message.Chat.ID
	if fileID, found := strings.CutPrefix(order.PaymentProof, "photo:"); found {
		b.forwardPhotoByID(chatID, fileID, fmt.Sprintf("Пруф по заказу %s", order.Reference))
		return
	}
	b.sendMessage(chatID, fmt.Sprintf("Пруф по заказу %s:\n\n%s", order.Reference, order.PaymentProof), nil)
}

// confirmOrderByAdmin подтверждает оплату и выдаёт клад покупателю.
func (b *Bot) confirmOrderByAdmin(ctx context.Context, callback *tgbotapi.CallbackQuery, adminID, orderID int64) {
	result, err := b.service.ConfirmOrder(ctx, orderID, adminID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAlreadyProcessed):
			b.answerCallback(callback.ID, "Заказ уже обработан другим администратором.")
		case errors.Is(err, service.ErrNotFound):
			b.answerCallback(callback.ID, "Заказ не найден.")
		default:
			b.logger.Errorf("Failed to confirm order %d: %v", orderID, err)
			b.answerCallback(callback.ID, "Ошибка подтверждения, подробности в логах.")
		}
		return
	}

	order := result.Order
	b.answerCallback(callback.ID, "Заказ подтверждён")
	b.sendMessage(callback.Message.Chat.ID, fmt.Sprintf("✅ Заказ %s подтверждён, клад отправлен покупателю.", order.Reference), nil)

	b.sendMessage(order.UserID,
		fmt.Sprintf("🎉 Оплата по заказу %s подтверждена!\n\n📍 Ваш клад:\n\n%s", order.Reference, result.Payload),
		nil)
}

func (b *Bot) handleRejectReasonInput(ctx context.Context, chatID, adminID int64, reason string) {
	orderID := b.tracker.FieldInt64(adminID, "order_id")
	reason = strings.TrimSpace(reason)
	if reason == "" {
		b.sendMessage(chatID, "❌ Причина не может быть пустой.", nil)
		return
	}

	order, err := b.service.RejectOrder(ctx, orderID, adminID, reason)
	if err != nil {
		b.tracker.Clear(adminID)
		if errors.Is(err, service.ErrAlreadyProcessed) {
			b.sendMessage(chatID, "Заказ уже обработан другим администратором.", nil)
			return
		}
		b.logger.Errorf("Failed to reject order %d: %v", orderID, err)
		b.sendMessage(chatID, "Не удалось отклонить заказ, подробности в логах.", nil)
		return
	}

	b.tracker.Clear(adminID)
	b.sendMessage(chatID, fmt.Sprintf("❌ Заказ %s отклонён, позиция вернулась на витрину.", order.Reference), nil)
	b.sendMessage(order.UserID,
		fmt.Sprintf("❌ Оплата по заказу %s не подтверждена.\nПричина: %s\n\nЕсли это ошибка, напишите в поддержку.", order.Reference, reason),
		nil)
}

func (b *Bot) handleOrderSearchInput(ctx context.Context, chatID, adminID int64, query string) {
	b.tracker.Clear(adminID)
	query = strings.TrimSpace(query)

	if id, err := strconv.ParseInt(query, 10, 64); err == nil {
		b.showOrderDetails(ctx, chatID, id)
		return
	}

	order, err := b.service.FindOrderByReference(ctx, strings.ToUpper(query))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			b.sendMessage(chatID, "Заказ с таким номером не найден.", nil)
			return
		}
		b.logger.Errorf("Failed to search order %q: %v", query, err)
		b.sendMessage(chatID, "Произошла ошибка. Попробуйте позже.", nil)
		return
	}
	b.showOrderDetails(ctx, chatID, order.ID)
}
