package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmarkov/shop_bot/internal/service"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) handleAdminUserCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	data := callback.Data
	chatID := callback.Message.Chat.ID
	adminID := callback.From.ID

	switch {
	case data == "adm_usr_menu":
		b.answerCallback(callback.ID, "")
		b.showUsersMenu(ctx, chatID)

	case strings.HasPrefix(data, "adm_usr_list_"):
		kind, page, ok := parseListToken(data, "adm_usr_list_")
		if !ok {
			b.answerCallback(callback.ID, "Кнопка устарела.")
			return
		}
		b.answerCallback(callback.ID, "")
		b.showUsersList(ctx, chatID, kind == "blocked", page)

	case strings.HasPrefix(data, "adm_usr_view_"):
		id, ok := parseSuffixID(data, "adm_usr_view_")
		if !ok {
			b.answerCallback(callback.ID, "Кнопка устарела.")
			return
		}
		b.answerCallback(callback.ID, "")
		b.showUserProfile(ctx, chatID, id)

	case strings.HasPrefix(data, "adm_usr_block_"):
		id, ok := parseSuffixID(data, "adm_usr_block_")
		if !ok {
			b.answerCallback(callback.ID, "Кнопка устарела.")
			return
		}
		b.setUserBlockedByAdmin(ctx, callback, adminID, id, true)

	case strings.HasPrefix(data, "adm_usr_unblock_"):
		id, ok := parseSuffixID(data, "adm_usr_unblock_")
		if !ok {
			b.answerCallback(callback.ID, "Кнопка устарела.")
			return
		}
		b.setUserBlockedByAdmin(ctx, callback, adminID, id, false)

	case strings.HasPrefix(data, "adm_usr_msg_"):
		id, ok := parseSuffixID(data, "adm_usr_msg_")
		if !ok {
			b.answerCallback(callback.ID, "Кнопка устарела.")
			return
		}
		b.answerCallback(callback.ID, "")
		b.tracker.Begin(adminID, stateAwaitingDirectMessage)
		b.tracker.SetField(adminID, "target_id", fmt.Sprintf("%d", id))
		b.sendMessage(chatID, "Введите текст сообщения пользователю:", nil)

	case data == "adm_usr_search":
		b.answerCallback(callback.ID, "")
		b.tracker.Begin(adminID, stateAwaitingUserSearch)
		b.sendMessage(chatID, "Введите ID пользователя или @username:", nil)

	default:
		b.logger.Warnf("Unknown admin user callback: %s", data)
		b.answerCallback(callback.ID, "Кнопка устарела.")
	}
}

func (b *Bot) showUsersMenu(ctx context.Context, chatID int64) {
	total, blocked, err := b.service.CountAllUsers(ctx)
	if err != nil {
		b.logger.Errorf("Failed to count users: %v", err)
	}

	markup := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("👥 Все (%d)", total), "adm_usr_list_all_0"),
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("🚫 Заблокированные (%d)", blocked), "adm_usr_list_blocked_0"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔎 Найти пользователя", "adm_usr_search"),
			tgbotapi.NewInlineKeyboardButtonData("⬅️ Назад", "adm_panel"),
		),
	)
	b.sendMessage(chatID, "👥 Пользователи", markup)
}

func (b *Bot) showUsersList(ctx context.Context, chatID int64, blockedOnly bool, page int) {
	users, total, err := b.service.ListUsers(ctx, blockedOnly, pageSize, page*pageSize)
	if err != nil {
		b.logger.Errorf("Failed to list users: %v", err)
		b.sendMessage(chatID, "Произошла ошибка. Попробуйте позже.", nil)
		return
	}
	if total == 0 {
		b.sendMessage(chatID, "В этом разделе пусто.", nil)
		return
	}

	kind := "all"
	if blockedOnly {
		kind = "blocked"
	}
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, u := range users {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("%s — %d заказ(ов)", userLabel(u), u.TotalOrders),
				fmt.Sprintf("adm_usr_view_%d", u.TelegramID),
			),
		))
	}
	if nav := pageNav(fmt.Sprintf("adm_usr_list_%s_", kind), page, total); nav != nil {
		rows = append(rows, nav)
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⬅️ Назад", "adm_usr_menu"),
	))
	b.sendMessage(chatID, fmt.Sprintf("Пользователи (всего %d):", total), tgbotapi.NewInlineKeyboardMarkup(rows...))
}

func (b *Bot) showUserProfile(ctx context.Context, chatID, userID int64) {
	user, err := b.service.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			b.sendMessage(chatID, "Пользователь не найден.", nil)
			return
		}
		b.logger.Errorf("Failed to get user %d: %v", userID, err)
		b.sendMessage(chatID, "Произошла ошибка. Попробуйте позже.", nil)
		return
	}

	status := "активен"
	if user.IsBlocked {
		status = "🚫 заблокирован"
	}
	text := fmt.Sprintf(
		"Пользователь %s\n\nID: %d\nИмя: %s %s\nСтатус: %s\n"+
			"Заказов: %d\nПотрачено: %s\nРегистрация: %s\nАктивность: %s",
		userLabel(user), user.TelegramID, user.FirstName, user.LastName, status,
		user.TotalOrders, fmtPrice(user.TotalSpent),
		user.RegistrationDate.Format("02.01.2006"),
		user.LastActivity.Format("02.01.2006 15:04"),
	)

	toggle := tgbotapi.NewInlineKeyboardButtonData("🚫 Заблокировать", fmt.Sprintf("adm_usr_block_%d", user.TelegramID))
	if user.IsBlocked {
		toggle = tgbotapi.NewInlineKeyboardButtonData("✅ Разблокировать", fmt.Sprintf("adm_usr_unblock_%d", user.TelegramID))
	}
	markup := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			toggle,
			tgbotapi.NewInlineKeyboardButtonData("✉️ Написать", fmt.Sprintf("adm_usr_msg_%d", user.TelegramID)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬅️ Назад", "adm_usr_menu"),
		),
	)
	b.sendMessage(chatID, text, markup)
}

func (b *Bot) setUserBlockedByAdmin(ctx context.Context, callback *tgbotapi.CallbackQuery, adminID, userID int64, blocked bool) {
	if err := b.service.SetUserBlocked(ctx, adminID, userID, blocked); err != nil {
		b.logger.Errorf("Failed to set blocked=%v for user %d: %v", blocked, userID, err)
		b.answerCallback(callback.ID, "Ошибка, подробности в логах.")
		return
	}
	if blocked {
		b.answerCallback(callback.ID, "Пользователь заблокирован")
	} else {
		b.answerCallback(callback.ID, "Пользователь разблокирован")
	}
	b.showUserProfile(ctx, callback.Message.Chat.ID, userID)
}

func (b *Bot) handleUserSearchInput(ctx context.Context, chatID, adminID int64, query string) {
	b.tracker.Clear(adminID)

	user, err := b.service.FindUser(ctx, query)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			b.sendMessage(chatID, "Пользователь не найден.", nil)
			return
		}
		b.logger.Errorf("Failed to find user %q: %v", query, err)
		b.sendMessage(chatID, "Произошла ошибка. Попробуйте позже.", nil)
		return
	}
	b.showUserProfile(ctx, chatID, user.TelegramID)
}

func (b *Bot) handleDirectMessageInput(ctx context.Context, chatID, adminID int64, text string) {
	targetID := b.tracker.FieldInt64(adminID, "target_id")
	b.tracker.Clear(adminID)

	if strings.TrimSpace(text) == "" {
		b.sendMessage(chatID, "❌ Сообщение не может быть пустым.", nil)
		return
	}

	if err := b.sendTo(targetID, "✉️ Сообщение от магазина:\n\n"+text); err != nil {
		b.logger.Errorf("Failed to send direct message to %d: %v", targetID, err)
		b.sendMessage(chatID, "Не удалось доставить сообщение.", nil)
		return
	}
	b.service.LogAction(ctx, adminID, "user", "direct_message", fmt.Sprintf("to %d", targetID))
	b.sendMessage(chatID, "✅ Сообщение отправлено.", nil)
}
