package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmarkov/shop_bot/internal/service"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) handleAdminCatalogCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	data := callback.Data
	chatID := callback.Message.Chat.ID
	userID := callback.From.ID

	switch {
	case data == "adm_cat_menu":
		b.answerCallback(callback.ID, "")
		markup := tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("➕ Товар", "adm_cat_addprod"),
				tgbotapi.NewInlineKeyboardButtonData("➕ Город", "adm_cat_addcity"),
				tgbotapi.NewInlineKeyboardButtonData("➕ Район", "adm_cat_adddist"),
			),
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("📦 Пополнить витрину", "adm_cat_restock"),
			),
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("⬅️ Назад", "adm_panel"),
			),
		)
		b.sendMessage(chatID, "🗂 Управление каталогом", markup)

	case data == "adm_cat_addprod":
		b.answerCallback(callback.ID, "")
		b.tracker.Begin(userID, stateAwaitingProductName)
		b.sendMessage(chatID, "Введите название товара:", nil)

	case data == "adm_cat_addcity":
		b.answerCallback(callback.ID, "")
		b.tracker.Begin(userID, stateAwaitingCityName)
		b.sendMessage(chatID, "Введите название города:", nil)

	case data == "adm_cat_adddist":
		b.answerCallback(callback.ID, "")
		b.pickCity(ctx, chatID, "adm_cat_dist_", "В каком городе добавить район?")

	case strings.HasPrefix(data, "adm_cat_dist_"):
		cityID, ok := parseSuffixID(data, "adm_cat_dist_")
		if !ok {
			b.answerCallback(callback.ID, "Кнопка устарела.")
			return
		}
		b.answerCallback(callback.ID, "")
		b.tracker.Begin(userID, stateAwaitingDistrictName)
		b.tracker.SetField(userID, "city_id", fmt.Sprintf("%d", cityID))
		b.sendMessage(chatID, "Введите название района:", nil)

	case data == "adm_cat_restock":
		b.answerCallback(callback.ID, "")
		b.pickProduct(ctx, chatID, "adm_cat_rsp_", "Какой товар пополняем?")

	case strings.HasPrefix(data, "adm_cat_rsp_"):
		id, ok := parseSuffixID(data, "adm_cat_rsp_")
		if !ok {
			b.answerCallback(callback.ID, "Кнопка устарела.")
			return
		}
		b.answerCallback(callback.ID, "")
		b.tracker.SetField(userID, "rs_product", fmt.Sprintf("%d", id))
		b.pickCity(ctx, chatID, "adm_cat_rsc_", "В каком городе?")

	case strings.HasPrefix(data, "adm_cat_rsc_"):
		id, ok := parseSuffixID(data, "adm_cat_rsc_")
		if !ok {
			b.answerCallback(callback.ID, "Кнопка устарела.")
			return
		}
		b.answerCallback(callback.ID, "")
		b.tracker.SetField(userID, "rs_city", fmt.Sprintf("%d", id))
		b.pickDistrict(ctx, chatID, id, "adm_cat_rsd_", "В каком районе?")

	case strings.HasPrefix(data, "adm_cat_rsd_"):
		id, ok := parseSuffixID(data, "adm_cat_rsd_")
		if !ok {
			b.answerCallback(callback.ID, "Кнопка устарела.")
			return
		}
		b.answerCallback(callback.ID, "")
		b.tracker.SetField(userID, "rs_district", fmt.Sprintf("%d", id))
		b.tracker.SetState(userID, stateAwaitingWeightPrice)
		b.sendMessage(chatID, "Введите вес и цену в формате вес|цена, например 100|5000:", nil)

	case data == "adm_cat_more":
		// Ещё одна позиция с теми же товаром, городом и районом.
		b.answerCallback(callback.ID, "")
		b.tracker.SetState(userID, stateAwaitingWeightPrice)
		b.sendMessage(chatID, "Введите вес и цену в формате вес|цена:", nil)

	default:
		b.logger.Warnf("Unknown admin catalog callback: %s", data)
		b.answerCallback(callback.ID, "Кнопка устарела.")
	}
}

func (b *Bot) pickProduct(ctx context.Context, chatID int64, prefix, title string) {
	products, err := b.service.ListProducts(ctx)
	if err != nil {
		b.logger.Errorf("Failed to list products: %v", err)
		b.sendMessage(chatID, "Произошла ошибка. Попробуйте позже.", nil)
		return
	}
	if len(products) == 0 {
		b.sendMessage(chatID, "Сначала добавьте хотя бы один товар.", nil)
		return
	}
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, p := range products {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(p.Name, fmt.Sprintf("%s%d", prefix, p.ID)),
		))
	}
	b.sendMessage(chatID, title, tgbotapi.NewInlineKeyboardMarkup(rows...))
}

func (b *Bot) pickCity(ctx context.Context, chatID int64, prefix, title string) {
	cities, err := b.service.ListCities(ctx)
	if err != nil {
		b.logger.Errorf("Failed to list cities: %v", err)
		b.sendMessage(chatID, "Произошла ошибка. Попробуйте позже.", nil)
		return
	}
	if len(cities) == 0 {
		b.sendMessage(chatID, "Сначала добавьте хотя бы один город.", nil)
		return
	}
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, c := range cities {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(c.Name, fmt.Sprintf("%s%d", prefix, c.ID)),
		))
	}
	b.sendMessage(chatID, title, tgbotapi.NewInlineKeyboardMarkup(rows...))
}

func (b *Bot) pickDistrict(ctx context.Context, chatID, cityID int64, prefix, title string) {
	districts, err := b.service.ListDistricts(ctx, cityID)
	if err != nil {
		b.logger.Errorf("Failed to list districts: %v", err)
		b.sendMessage(chatID, "Произошла ошибка. Попробуйте позже.", nil)
		return
	}
	if len(districts) == 0 {
		b.sendMessage(chatID, "В этом городе нет районов, добавьте сначала район.", nil)
		return
	}
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, d := range districts {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(d.Name, fmt.Sprintf("%s%d", prefix, d.ID)),
		))
	}
	b.sendMessage(chatID, title, tgbotapi.NewInlineKeyboardMarkup(rows...))
}

// handleCatalogWizardInput - текстовые шаги мастеров каталога.
func (b *Bot) handleCatalogWizardInput(ctx context.Context, chatID, userID int64, state, text string) {
	switch state {
	case stateAwaitingProductName:
		b.tracker.SetField(userID, "product_name", strings.TrimSpace(text))
		b.tracker.SetState(userID, stateAwaitingProductDesc)
		b.sendMessage(chatID, "Введите описание товара (или «-», чтобы пропустить):", nil)

	case stateAwaitingProductDesc:
		desc := strings.TrimSpace(text)
		if desc == "-" {
			desc = ""
		}
		product, err := b.service.AddProduct(ctx, b.tracker.Field(userID, "product_name"), desc)
		if err != nil {
			b.sendMessage(chatID, "❌ "+err.Error(), nil)
			return
		}
		b.tracker.Clear(userID)
		b.service.LogAction(ctx, userID, "catalog", "add_product", product.Name)
		b.sendMessage(chatID, fmt.Sprintf("✅ Товар «%s» добавлен.", product.Name), nil)

	case stateAwaitingCityName:
		city, err := b.service.AddCity(ctx, text)
		if err != nil {
			b.sendMessage(chatID, "❌ "+err.Error(), nil)
			return
		}
		b.tracker.Clear(userID)
		b.service.LogAction(ctx, userID, "catalog", "add_city", city.Name)
		b.sendMessage(chatID, fmt.Sprintf("✅ Город «%s» добавлен.", city.Name), nil)

	case stateAwaitingDistrictName:
		cityID := b.tracker.FieldInt64(userID, "city_id")
		district, err := b.service.AddDistrict(ctx, cityID, text)
		if err != nil {
			b.sendMessage(chatID, "❌ "+err.Error(), nil)
			return
		}
		b.tracker.Clear(userID)
		b.service.LogAction(ctx, userID, "catalog", "add_district", district.Name)
		b.sendMessage(chatID, fmt.Sprintf("✅ Район «%s» добавлен.", district.Name), nil)

	case stateAwaitingWeightPrice:
		weight, price, err := service.ParseWeightPrice(text)
		if err != nil {
			b.sendMessage(chatID, "❌ "+err.Error(), nil)
			return
		}
		b.tracker.SetField(userID, "rs_weight", fmt.Sprintf("%g", weight))
		b.tracker.SetField(userID, "rs_price", fmt.Sprintf("%d", price))
		b.tracker.SetState(userID, stateAwaitingPayload)
		b.sendMessage(chatID, "Пришлите описание клада (координаты и примечания) одним сообщением:", nil)

	case stateAwaitingPayload:
		if strings.TrimSpace(text) == "" {
			b.sendMessage(chatID, "❌ Описание клада не может быть пустым.", nil)
			return
		}
		weight, _ := strconv.ParseFloat(b.tracker.Field(userID, "rs_weight"), 64)
		item, err := b.service.AddInventoryItem(ctx,
			b.tracker.FieldInt64(userID, "rs_product"),
			b.tracker.FieldInt64(userID, "rs_city"),
			b.tracker.FieldInt64(userID, "rs_district"),
			weight,
			b.tracker.FieldInt64(userID, "rs_price"),
			text,
		)
		if err != nil {
			b.logger.Errorf("Failed to add inventory item: %v", err)
			b.sendMessage(chatID, "❌ Не удалось сохранить позицию, попробуйте ещё раз.", nil)
			return
		}
		b.tracker.SetState(userID, stateDefault)
		b.service.LogAction(ctx, userID, "catalog", "restock", fmt.Sprintf("item #%d", item.ID))
		markup := tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("➕ Ещё позиция сюда же", "adm_cat_more"),
				tgbotapi.NewInlineKeyboardButtonData("✅ Готово", "adm_cat_menu"),
			),
		)
		b.sendMessage(chatID, fmt.Sprintf("✅ Позиция #%d добавлена на витрину.", item.ID), markup)
	}
}
