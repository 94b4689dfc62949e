package bot

import (
	"context"

	"github.com/dmarkov/shop_bot/internal/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func onOff(v bool) string {
	if v {
		return "вкл"
	}
	return "выкл"
}

func (b *Bot) showSettingsMenu(ctx context.Context, chatID int64) {
	settings, err := b.service.Settings(ctx)
	if err != nil {
		b.logger.Errorf("Failed to load settings: %v", err)
		b.sendMessage(chatID, "Произошла ошибка. Попробуйте позже.", nil)
		return
	}

	markup := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				"🤖 Капча: "+onOff(settings.CaptchaEnabled), "adm_set_captcha"),
			tgbotapi.NewInlineKeyboardButtonData(
				"🛠 Техработы: "+onOff(settings.MaintenanceMode), "adm_set_maint"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("👋 Приветствие", "adm_set_welcome"),
			tgbotapi.NewInlineKeyboardButtonData("💳 Реквизиты", "adm_set_payment"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🆘 Контакт поддержки", "adm_set_support"),
			tgbotapi.NewInlineKeyboardButtonData("⬅️ Назад", "adm_panel"),
		),
	)
	b.sendMessage(chatID, "⚙️ Настройки магазина", markup)
}

func (b *Bot) handleAdminSettingsCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	data := callback.Data
	chatID := callback.Message.Chat.ID
	adminID := callback.From.ID

	switch data {
	case "adm_set_menu":
		b.answerCallback(callback.ID, "")
		b.showSettingsMenu(ctx, chatID)

	case "adm_set_captcha":
		settings, err := b.service.UpdateSettings(ctx, adminID, "toggle_captcha", func(st *models.BotSettings) {
			st.CaptchaEnabled = !st.CaptchaEnabled
		})
		if err != nil {
			b.logger.Errorf("Failed to toggle captcha: %v", err)
			b.answerCallback(callback.ID, "Ошибка, подробности в логах.")
			return
		}
		b.answerCallback(callback.ID, "Капча: "+onOff(settings.CaptchaEnabled))
		b.showSettingsMenu(ctx, chatID)

	case "adm_set_maint":
		settings, err := b.service.UpdateSettings(ctx, adminID, "toggle_maintenance", func(st *models.BotSettings) {
			st.MaintenanceMode = !st.MaintenanceMode
		})
		if err != nil {
			b.logger.Errorf("Failed to toggle maintenance: %v", err)
			b.answerCallback(callback.ID, "Ошибка, подробности в логах.")
			return
		}
		b.answerCallback(callback.ID, "Техработы: "+onOff(settings.MaintenanceMode))
		b.showSettingsMenu(ctx, chatID)

	case "adm_set_welcome":
		b.answerCallback(callback.ID, "")
		b.tracker.Begin(adminID, stateAwaitingWelcomeText)
		b.sendMessage(chatID, "Введите новый текст приветствия:", nil)

	case "adm_set_payment":
		b.answerCallback(callback.ID, "")
		b.tracker.Begin(adminID, stateAwaitingPaymentDetails)
		b.sendMessage(chatID, "Введите новые платёжные реквизиты:", nil)

	case "adm_set_support":
		b.answerCallback(callback.ID, "")
		b.tracker.Begin(adminID, stateAwaitingSupportUsername)
		b.sendMessage(chatID, "Введите username поддержки (без @):", nil)

	default:
		b.logger.Warnf("Unknown admin settings callback: %s", data)
		b.answerCallback(callback.ID, "Кнопка устарела.")
	}
}

func (b *Bot) handleSettingsTextInput(ctx context.Context, chatID, adminID int64, state, text string) {
	var err error
	switch state {
	case stateAwaitingWelcomeText:
		err = b.service.SetWelcomeText(ctx, adminID, text)
	case stateAwaitingPaymentDetails:
		err = b.service.SetPaymentInstructions(ctx, adminID, text)
	case stateAwaitingSupportUsername:
		err = b.service.SetSupportUsername(ctx, adminID, text)
	}
	if err != nil {
		b.sendMessage(chatID, "❌ "+err.Error(), nil)
		return
	}

	b.tracker.Clear(adminID)
	b.sendMessage(chatID, "✅ Настройка сохранена.", nil)
	b.showSettingsMenu(ctx, chatID)
}
