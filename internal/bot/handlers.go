package bot

import (
	"context"
	"fmt"

	"github.com/dmarkov/shop_bot/internal/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// GetMainMenu - постоянная клавиатура покупателя.
func GetMainMenu(isAdmin bool) tgbotapi.ReplyKeyboardMarkup {
	rows := [][]tgbotapi.KeyboardButton{
		{
			tgbotapi.NewKeyboardButton("🛍 Каталог"),
			tgbotapi.NewKeyboardButton("📦 Мои заказы"),
		},
		{
			tgbotapi.NewKeyboardButton("⭐️ Отзывы"),
			tgbotapi.NewKeyboardButton("🆘 Поддержка"),
		},
	}

	if isAdmin {
		rows = append(rows, []tgbotapi.KeyboardButton{
			tgbotapi.NewKeyboardButton("⚙️ Админ-панель"),
		})
	}

	return tgbotapi.NewReplyKeyboard(rows...)
}

func (b *Bot) HandleUpdate(update tgbotapi.Update) {
	b.withUserCheck(func(ctx context.Context, update tgbotapi.Update, user *models.User) {
		text := update.Message.Text
		chatID := update.Message.Chat.ID
		userID := user.TelegramID

		b.logger.Infof("Processing message from user %d: %s", userID, text)

		state := b.tracker.State(userID)

		// Состояния мастеров обрабатываются раньше команд.
		switch state {
		case stateAwaitingCaptcha:
			b.handleCaptchaAnswer(ctx, chatID, user, text)
			return
		case stateAwaitingPaymentProof:
			b.handlePaymentProofInput(ctx, update, user)
			return
		case stateAwaitingReviewText:
			b.handleReviewTextInput(ctx, chatID, user, text)
			return
		case stateAwaitingTicketText:
			b.handleTicketTextInput(ctx, chatID, user, text)
			return
		}

		if b.isAdmin(ctx, userID) {
			if b.handleAdminState(ctx, update, user, state) {
				return
			}
		}

		settings, err := b.service.Settings(ctx)
		if err != nil {
			b.logger.Errorf("Failed to load settings: %v", err)
			b.sendMessage(chatID, "Произошла ошибка. Попробуйте позже.", nil)
			return
		}

		// Техработы закрывают магазин для всех, кроме админов.
		if settings.MaintenanceMode && !b.isAdmin(ctx, userID) {
			b.sendMessage(chatID, "🛠 Магазин временно закрыт на технические работы. Загляните позже.", nil)
			return
		}

		if settings.CaptchaEnabled && !user.CaptchaPassed {
			b.askCaptcha(chatID, userID)
			return
		}

		switch text {
		case "/start":
			b.handleStart(ctx, chatID, user)
		case "🛍 Каталог":
			b.showCatalog(ctx, chatID, 0)
		case "📦 Мои заказы":
			b.showMyOrders(ctx, chatID, user, 0)
		case "⭐️ Отзывы":
			b.showReviewsMenu(ctx, chatID, 0)
		case "🆘 Поддержка":
			b.showSupportMenu(ctx, chatID, userID)
		case "⚙️ Админ-панель":
			if b.isAdmin(ctx, userID) {
				b.showAdminPanel(ctx, chatID)
			}
		}
		// Остальной текст вне мастеров молча игнорируется.
	})(update)
}

func (b *Bot) handleStart(ctx context.Context, chatID int64, user *models.User) {
	settings, err := b.service.Settings(ctx)
	if err != nil {
		b.logger.Errorf("Failed to load settings: %v", err)
		b.sendMessage(chatID, "Произошла ошибка. Попробуйте позже.", nil)
		return
	}

	if settings.CaptchaEnabled && !user.CaptchaPassed {
		b.askCaptcha(chatID, user.TelegramID)
		return
	}

	b.sendMessage(chatID, settings.WelcomeText, GetMainMenu(b.isAdmin(ctx, user.TelegramID)))
}

// Капча - простой арифметический вопрос, ответ лежит в полях трекера.
func (b *Bot) askCaptcha(chatID, userID int64) {
	ctx := context.Background()
	settings, err := b.service.Settings(ctx)
	if err != nil || !settings.CaptchaEnabled {
		// Капча выключена: пропускаем молча.
		if err := b.service.PassCaptcha(ctx, userID); err != nil {
			b.logger.Errorf("Failed to pass captcha for %d: %v", userID, err)
		}
		return
	}

	a, c := captchaPair(userID)
	b.tracker.Begin(userID, stateAwaitingCaptcha)
	b.tracker.SetField(userID, "captcha_answer", fmt.Sprintf("%d", a+c))
	b.sendMessage(chatID, fmt.Sprintf("🤖 Проверка: сколько будет %d + %d?", a, c), tgbotapi.NewRemoveKeyboard(true))
}

// captchaPair даёт детерминированную пару слагаемых на пользователя.
func captchaPair(userID int64) (int, int) {
	return int(userID%7) + 2, int(userID%5) + 3
}

func (b *Bot) handleCaptchaAnswer(ctx context.Context, chatID int64, user *models.User, text string) {
	expected := b.tracker.Field(user.TelegramID, "captcha_answer")
	if text != expected {
		b.sendMessage(chatID, "❌ Неверно, попробуйте ещё раз.", nil)
		b.askCaptcha(chatID, user.TelegramID)
		return
	}

	b.tracker.Clear(user.TelegramID)
	if err := b.service.PassCaptcha(ctx, user.TelegramID); err != nil {
		b.logger.Errorf("Failed to pass captcha for %d: %v", user.TelegramID, err)
		b.sendMessage(chatID, "Произошла ошибка. Попробуйте позже.", nil)
		return
	}
	user.CaptchaPassed = true
	b.handleStart(ctx, chatID, user)
}
