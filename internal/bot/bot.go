package bot

import (
	"context"

	"github.com/dmarkov/shop_bot/config"
	"github.com/dmarkov/shop_bot/internal/service"
	"github.com/dmarkov/shop_bot/utils"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const pageSize = 5

type Bot struct {
	API     *tgbotapi.BotAPI
	service *service.Service
	tracker *Tracker
	logger  *utils.Logger
	config  *config.Config
}

func NewBot(
	api *tgbotapi.BotAPI,
	svc *service.Service,
	tracker *Tracker,
	logger *utils.Logger,
	config *config.Config,
) *Bot {
	return &Bot{
		API:     api,
		service: svc,
		tracker: tracker,
		logger:  logger,
		config:  config,
	}
}

func (b *Bot) Start() {
	b.logger.Info("Starting bot...")
	updates := b.API.GetUpdatesChan(tgbotapi.NewUpdate(0))
	for update := range updates {
		b.logger.Debugf("Received update: %+v", update)
		if update.CallbackQuery != nil {
			b.handleCallbackQuery(update.CallbackQuery)
			continue
		}
		if update.Message != nil {
			b.HandleUpdate(update)
		}
	}
}

func (b *Bot) isAdmin(ctx context.Context, userID int64) bool {
	return b.service.IsAdmin(ctx, userID)
}

// sendMessage - унифицированная отправка сообщений.
func (b *Bot) sendMessage(chatID int64, text string, replyMarkup interface{}) {
	msg := tgbotapi.NewMessage(chatID, text)
	if replyMarkup != nil {
		msg.ReplyMarkup = replyMarkup
	}
	if _, err := b.API.Send(msg); err != nil {
		b.logger.Errorf("Failed to send message: %v", err)
	}
}

// sendTo используется сервисом рассылки: возвращает ошибку наружу,
// чтобы по ней распознать заблокировавших бота.
func (b *Bot) sendTo(userID int64, text string) error {
	_, err := b.API.Send(tgbotapi.NewMessage(userID, text))
	return err
}

func (b *Bot) editMessage(chatID int64, messageID int, text string, markup *tgbotapi.InlineKeyboardMarkup) {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ReplyMarkup = markup
	if _, err := b.API.Send(edit); err != nil {
		b.logger.Errorf("Failed to edit message: %v", err)
	}
}

func (b *Bot) answerCallback(callbackID, text string) {
	callback := tgbotapi.NewCallback(callbackID, text)
	if _, err := b.API.Request(callback); err != nil {
		b.logger.Errorf("Failed to answer callback: %v", err)
	}
}

func (b *Bot) sendPhoto(chatID int64, photo []byte, caption string) {
	msg := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: "photo.png", Bytes: photo})
	msg.Caption = caption
	if _, err := b.API.Send(msg); err != nil {
		b.logger.Errorf("Failed to send photo: %v", err)
	}
}

func (b *Bot) forwardPhotoByID(chatID int64, fileID, caption string) {
	msg := tgbotapi.NewPhoto(chatID, tgbotapi.FileID(fileID))
	msg.Caption = caption
	if _, err := b.API.Send(msg); err != nil {
		b.logger.Errorf("Failed to send photo by file id: %v", err)
	}
}

func (b *Bot) sendDocument(chatID int64, name string, data []byte, caption string) {
	msg := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: name, Bytes: data})
	msg.Caption = caption
	if _, err := b.API.Send(msg); err != nil {
		b.logger.Errorf("Failed to send document: %v", err)
	}
}

// notifyAdmin шлёт служебное сообщение в админский чат.
func (b *Bot) notifyAdmin(text string, markup interface{}) {
	b.sendMessage(b.config.AdminChatID, text, markup)
}
