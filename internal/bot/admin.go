package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmarkov/shop_bot/internal/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) showAdminPanel(ctx context.Context, chatID int64) {
	markup := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📦 Заказы", "adm_ord_menu"),
			tgbotapi.NewInlineKeyboardButtonData("🗂 Каталог", "adm_cat_menu"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("👥 Пользователи", "adm_usr_menu"),
			tgbotapi.NewInlineKeyboardButtonData("📣 Рассылки", "adm_bc_menu"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⭐️ Отзывы", "adm_rev_menu"),
			tgbotapi.NewInlineKeyboardButtonData("🆘 Обращения", "adm_tick_menu"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📊 Статистика", "adm_stats"),
			tgbotapi.NewInlineKeyboardButtonData("⚙️ Настройки", "adm_set_menu"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📜 Журнал действий", "adm_log_menu"),
		),
	)
	b.sendMessage(chatID, "⚙️ Админ-панель", markup)
}

// handleAdminCallback ведёт админские токены по пространствам.
func (b *Bot) handleAdminCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	data := callback.Data

	switch {
	case data == "adm_panel":
		b.answerCallback(callback.ID, "")
		b.showAdminPanel(ctx, callback.Message.Chat.ID)
	case data == "adm_stats":
		b.answerCallback(callback.ID, "")
		b.showStats(ctx, callback.Message.Chat.ID)
	case data == "adm_export":
		b.answerCallback(callback.ID, "Готовлю отчёт...")
		b.exportSales(ctx, callback.Message.Chat.ID)
	case strings.HasPrefix(data, "adm_ord_"):
		b.handleAdminOrderCallback(ctx, callback)
	case strings.HasPrefix(data, "adm_cat_"):
		b.handleAdminCatalogCallback(ctx, callback)
	case strings.HasPrefix(data, "adm_usr_"):
		b.handleAdminUserCallback(ctx, callback)
	case strings.HasPrefix(data, "adm_bc_"):
		b.handleAdminBroadcastCallback(ctx, callback)
	case strings.HasPrefix(data, "adm_rev_"):
		b.handleAdminReviewCallback(ctx, callback)
	case strings.HasPrefix(data, "adm_tick_"):
		b.handleAdminTicketCallback(ctx, callback)
	case strings.HasPrefix(data, "adm_set_"):
		b.handleAdminSettingsCallback(ctx, callback)
	case strings.HasPrefix(data, "adm_log_"):
		b.handleAdminLogCallback(ctx, callback)
	default:
		b.logger.Warnf("Unknown admin callback: %s", data)
		b.answerCallback(callback.ID, "Кнопка устарела.")
	}
}

// handleAdminState обрабатывает текстовые шаги админских мастеров.
// Возвращает true, если сообщение было шагом мастера.
func (b *Bot) handleAdminState(ctx context.Context, update tgbotapi.Update, user *models.User, state string) bool {
	chatID := update.Message.Chat.ID
	text := update.Message.Text

	switch state {
	case stateAwaitingProductName, stateAwaitingProductDesc,
		stateAwaitingCityName, stateAwaitingDistrictName,
		stateAwaitingWeightPrice, stateAwaitingPayload:
		b.handleCatalogWizardInput(ctx, chatID, user.TelegramID, state, text)
	case stateAwaitingRejectReason:
		b.handleRejectReasonInput(ctx, chatID, user.TelegramID, text)
	case stateAwaitingOrderSearch:
		b.handleOrderSearchInput(ctx, chatID, user.TelegramID, text)
	case stateAwaitingUserSearch:
		b.handleUserSearchInput(ctx, chatID, user.TelegramID, text)
	case stateAwaitingDirectMessage:
		b.handleDirectMessageInput(ctx, chatID, user.TelegramID, text)
	case stateAwaitingBroadcastText:
		b.handleBroadcastTextInput(ctx, chatID, user.TelegramID, text)
	case stateAwaitingTicketReply:
		b.handleTicketReplyInput(ctx, chatID, user.TelegramID, text)
	case stateAwaitingWelcomeText, stateAwaitingPaymentDetails, stateAwaitingSupportUsername:
		b.handleSettingsTextInput(ctx, chatID, user.TelegramID, state, text)
	default:
		return false
	}
	return true
}

func (b *Bot) showStats(ctx context.Context, chatID int64) {
	stats, err := b.service.GatherStats(ctx)
	if err != nil {
		b.logger.Errorf("Failed to gather stats: %v", err)
		b.sendMessage(chatID, "Не удалось собрать статистику.", nil)
		return
	}

	text := fmt.Sprintf(
		"📊 Статистика\n\n"+
			"👥 Пользователи: %d (заблокировано %d)\n"+
			"⏳ Заказы в ожидании: %d\n"+
			"✅ Подтверждено: %d\n"+
			"❌ Отменено: %d\n"+
			"🗂 На витрине: %d\n"+
			"💰 Продано позиций: %d\n"+
			"💵 Выручка: %s\n"+
			"📣 Рассылок сегодня: %d",
		stats.TotalUsers, stats.BlockedUsers,
		stats.PendingOrders, stats.ConfirmedOrders, stats.CancelledOrders,
		stats.AvailableItems, stats.SoldItems,
		fmtPrice(stats.Revenue), stats.BroadcastsToday,
	)
	markup := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📥 Выгрузить продажи (xlsx)", "adm_export"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬅️ Назад", "adm_panel"),
		),
	)
	b.sendMessage(chatID, text, markup)
}

func (b *Bot) exportSales(ctx context.Context, chatID int64) {
	since := time.Now().AddDate(0, -1, 0)
	data, err := b.service.ExportSalesReport(ctx, since)
	if err != nil {
		b.logger.Errorf("Failed to export sales: %v", err)
		b.sendMessage(chatID, "Не удалось собрать отчёт.", nil)
		return
	}
	name := fmt.Sprintf("sales_%s.xlsx", time.Now().Format("2006-01-02"))
	b.sendDocument(chatID, name, data, "Продажи за последний месяц")
}
