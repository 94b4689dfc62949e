package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmarkov/shop_bot/internal/models"
	"github.com/dmarkov/shop_bot/internal/service"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	qrcode "github.com/skip2/go-qrcode"
)

func fmtWeight(grams float64) string {
	if grams >= 1000 {
		return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", grams/1000), "0"), ".") + " кг"
	}
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", grams), "0"), ".") + " г"
}

func fmtPrice(rub int64) string {
	return fmt.Sprintf("%d ₽", rub)
}

// showCatalog - первый шаг витрины: товары с доступным стоком.
func (b *Bot) showCatalog(ctx context.Context, chatID int64, _ int) {
	products, err := b.service.ProductsWithStock(ctx)
	if err != nil {
		b.logger.Errorf("Failed to load catalog: %v", err)
		b.sendMessage(chatID, "Произошла ошибка. Попробуйте позже.", nil)
		return
	}
	if len(products) == 0 {
		b.sendMessage(chatID, "😔 Сейчас на витрине пусто. Загляните позже.", nil)
		return
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, p := range products {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("%s (%d шт.)", p.Name, p.Count),
				fmt.Sprintf("buy_product_%d", p.ID),
			),
		))
	}
	b.sendMessage(chatID, "🛍 Выберите товар:", tgbotapi.NewInlineKeyboardMarkup(rows...))
}

func (b *Bot) handleBuyCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	chatID := callback.Message.Chat.ID
	userID := callback.From.ID
	data := callback.Data

	if b.service.MaintenanceOn(ctx) && !b.isAdmin(ctx, userID) {
		b.answerCallback(callback.ID, "Магазин временно закрыт.")
		return
	}

	switch {
	case strings.HasPrefix(data, "buy_product_"):
		id, ok := parseSuffixID(data, "buy_product_")
		if !ok {
			b.answerCallback(callback.ID, "Кнопка устарела.")
			return
		}
		b.answerCallback(callback.ID, "")
		b.tracker.SetField(userID, "product_id", fmt.Sprintf("%d", id))
		b.showCities(ctx, chatID, id)

	case strings.HasPrefix(data, "buy_city_"):
		id, ok := parseSuffixID(data, "buy_city_")
		if !ok {
			b.answerCallback(callback.ID, "Кнопка устарела.")
			return
		}
		b.answerCallback(callback.ID, "")
		b.tracker.SetField(userID, "city_id", fmt.Sprintf("%d", id))
		b.showDistricts(ctx, chatID, b.tracker.FieldInt64(userID, "product_id"), id)

	case strings.HasPrefix(data, "buy_district_"):
		id, ok := parseSuffixID(data, "buy_district_")
		if !ok {
			b.answerCallback(callback.ID, "Кнопка устарела.")
			return
		}
		b.answerCallback(callback.ID, "")
		b.tracker.SetField(userID, "district_id", fmt.Sprintf("%d", id))
		b.showOffers(ctx, chatID,
			b.tracker.FieldInt64(userID, "product_id"),
			b.tracker.FieldInt64(userID, "city_id"),
			id)

	case strings.HasPrefix(data, "buy_item_"):
		id, ok := parseSuffixID(data, "buy_item_")
		if !ok {
			b.answerCallback(callback.ID, "Кнопка устарела.")
			return
		}
		b.answerCallback(callback.ID, "")
		b.showPurchaseConfirm(ctx, chatID, id)

	case strings.HasPrefix(data, "buy_confirm_"):
		id, ok := parseSuffixID(data, "buy_confirm_")
		if !ok {
			b.answerCallback(callback.ID, "Кнопка устарела.")
			return
		}
		b.handlePurchase(ctx, callback, userID, id)

	case strings.HasPrefix(data, "buy_cancel_"):
		id, ok := parseSuffixID(data, "buy_cancel_")
		if !ok {
			b.answerCallback(callback.ID, "Кнопка устарела.")
			return
		}
		b.handleUserCancel(ctx, callback, userID, id)

	case data == "buy_abort":
		// Покупатель передумал до отправки пруфа: заказа ещё нет,
		// достаточно сбросить мастер.
		b.tracker.Clear(userID)
		b.answerCallback(callback.ID, "Покупка отменена")
		b.sendMessage(chatID, "Покупка отменена. Позиция осталась на витрине.", nil)

	default:
		b.logger.Warnf("Unknown buy callback: %s", data)
		b.answerCallback(callback.ID, "Кнопка устарела, откройте каталог заново.")
	}
}

func (b *Bot) showCities(ctx context.Context, chatID, productID int64) {
	cities, err := b.service.CitiesWithStock(ctx, productID)
	if err != nil {
		b.logger.Errorf("Failed to load cities: %v", err)
		b.sendMessage(chatID, "Произошла ошибка. Попробуйте позже.", nil)
		return
	}
	if len(cities) == 0 {
		b.sendMessage(chatID, "😔 Этот товар закончился.", nil)
		return
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, c := range cities {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("%s (%d шт.)", c.Name, c.Count),
				fmt.Sprintf("buy_city_%d", c.ID),
			),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⬅️ Назад", "catalog"),
	))
	b.sendMessage(chatID, "🏙 Выберите город:", tgbotapi.NewInlineKeyboardMarkup(rows...))
}

func (b *Bot) showDistricts(ctx context.Context, chatID, productID, cityID int64) {
	districts, err := b.service.DistrictsWithStock(ctx, productID, cityID)
	if err != nil {
		b.logger.Errorf("Failed to load districts: %v", err)
		b.sendMessage(chatID, "Произошла ошибка. Попробуйте позже.", nil)
		return
	}
	if len(districts) == 0 {
		b.sendMessage(chatID, "😔 В этом городе товар закончился.", nil)
		return
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, d := range districts {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("%s (%d шт.)", d.Name, d.Count),
				fmt.Sprintf("buy_district_%d", d.ID),
			),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⬅️ Назад", fmt.Sprintf("buy_product_%d", productID)),
	))
	b.sendMessage(chatID, "📍 Выберите район:", tgbotapi.NewInlineKeyboardMarkup(rows...))
}

func (b *Bot) showOffers(ctx context.Context, chatID, productID, cityID, districtID int64) {
	offers, err := b.service.OfferGroups(ctx, productID, cityID, districtID)
	if err != nil {
		b.logger.Errorf("Failed to load offers: %v", err)
		b.sendMessage(chatID, "Произошла ошибка. Попробуйте позже.", nil)
		return
	}
	if len(offers) == 0 {
		b.sendMessage(chatID, "😔 В этом районе товар закончился.", nil)
		return
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, o := range offers {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("%s — %s (%d шт.)", fmtWeight(o.WeightGrams), fmtPrice(o.PriceRub), o.Count),
				fmt.Sprintf("buy_item_%d", o.FirstID),
			),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⬅️ Назад", fmt.Sprintf("buy_city_%d", cityID)),
	))
	b.sendMessage(chatID, "⚖️ Выберите фасовку:", tgbotapi.NewInlineKeyboardMarkup(rows...))
}

func (b *Bot) showPurchaseConfirm(ctx context.Context, chatID, itemID int64) {
	item, err := b.service.GetInventoryItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			b.sendMessage(chatID, "😔 Эта позиция уже недоступна.", nil)
			return
		}
		b.logger.Errorf("Failed to load item %d: %v", itemID, err)
		b.sendMessage(chatID, "Произошла ошибка. Попробуйте позже.", nil)
		return
	}
	if item.Status != models.ItemAvailable {
		b.sendMessage(chatID, "😔 Эту позицию только что забрали. Выберите другую.", nil)
		return
	}

	text := fmt.Sprintf(
		"🧾 Ваш выбор:\n\n"+
			"Товар: %s\nГород: %s\nРайон: %s\nВес: %s\nЦена: %s\n\n"+
			"Подтвердить покупку?",
		item.Product.Name, item.City.Name, item.District.Name,
		fmtWeight(item.WeightGrams), fmtPrice(item.PriceRub),
	)
	markup := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Подтвердить", fmt.Sprintf("buy_confirm_%d", itemID)),
			tgbotapi.NewInlineKeyboardButtonData("❌ Отмена", "catalog"),
		),
	)
	b.sendMessage(chatID, text, markup)
}

// handlePurchase выдаёт реквизиты с QR и ждёт пруф оплаты. Позиция не
// резервируется: заказ появится только вместе с подтверждением, а до
// этого момента позиция остаётся на витрине.
func (b *Bot) handlePurchase(ctx context.Context, callback *tgbotapi.CallbackQuery, userID, itemID int64) {
	chatID := callback.Message.Chat.ID

	item, err := b.service.GetInventoryItem(ctx, itemID)
	if err != nil {
		if !errors.Is(err, service.ErrNotFound) {
			b.logger.Errorf("Failed to load item %d: %v", itemID, err)
		}
		b.answerCallback(callback.ID, "Эту позицию только что забрали.")
		b.sendMessage(chatID, "😔 Эту позицию только что забрали. Выберите другую.", nil)
		return
	}
	if item.Status != models.ItemAvailable {
		b.answerCallback(callback.ID, "Эту позицию только что забрали.")
		b.sendMessage(chatID, "😔 Эту позицию только что забрали. Выберите другую.", nil)
		return
	}
	b.answerCallback(callback.ID, "")

	settings, err := b.service.Settings(ctx)
	if err != nil {
		b.logger.Errorf("Failed to load settings: %v", err)
		b.sendMessage(chatID, "Произошла ошибка. Попробуйте позже.", nil)
		return
	}

	b.tracker.Begin(userID, stateAwaitingPaymentProof)
	b.tracker.SetField(userID, "item_id", fmt.Sprintf("%d", itemID))

	text := fmt.Sprintf(
		"💳 Сумма к оплате: %s\n\n%s\n\n"+
			"После оплаты пришлите подтверждение (скриншот или текст) — "+
			"заказ будет создан в этот момент.",
		fmtPrice(item.PriceRub), settings.PaymentInstructions,
	)
	markup := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❌ Передумал", "buy_abort"),
		),
	)

	// QR с реквизитами, чтобы не перенабирать их руками.
	png, qrErr := qrcode.Encode(settings.PaymentInstructions, qrcode.Medium, 256)
	if qrErr != nil {
		b.logger.Errorf("Failed to build payment QR: %v", qrErr)
		b.sendMessage(chatID, text, markup)
		return
	}
	b.sendPhoto(chatID, png, "")
	b.sendMessage(chatID, text, markup)
}

func (b *Bot) handleUserCancel(ctx context.Context, callback *tgbotapi.CallbackQuery, userID, orderID int64) {
	order, err := b.service.GetOrder(ctx, orderID)
	if err != nil {
		b.answerCallback(callback.ID, "Заказ не найден.")
		return
	}
	if order.UserID != userID {
		b.answerCallback(callback.ID, "Это не ваш заказ.")
		return
	}

	if _, err := b.service.RejectOrder(ctx, orderID, userID, "отменён покупателем"); err != nil {
		if errors.Is(err, service.ErrAlreadyProcessed) {
			b.answerCallback(callback.ID, "Заказ уже обработан.")
			return
		}
		b.logger.Errorf("Failed to cancel order %d: %v", orderID, err)
		b.answerCallback(callback.ID, "Ошибка, попробуйте позже.")
		return
	}

	b.tracker.Clear(userID)
	b.answerCallback(callback.ID, "Заказ отменён")
	b.sendMessage(callback.Message.Chat.ID, fmt.Sprintf("❌ Заказ %s отменён. Позиция вернулась на витрину.", order.Reference), nil)
}
