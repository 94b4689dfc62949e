package main

import (
	"github.com/dmarkov/shop_bot/config"
	"github.com/dmarkov/shop_bot/db"
	"github.com/dmarkov/shop_bot/internal/bot"
	"github.com/dmarkov/shop_bot/internal/repository"
	"github.com/dmarkov/shop_bot/internal/service"
	"github.com/dmarkov/shop_bot/utils"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func main() {
	cfg, err := config.LoadConfig(".env")
	if err != nil {
		utils.InitLogger("debug").Fatal("Failed to load config: ", err)
	}
	logger := utils.InitLogger(cfg.LogLevel)

	database, err := db.ConnectDb(cfg.DB_URL, logger)
	if err != nil {
		logger.Fatal(err)
	}

	if err := db.Migrate(database, cfg.AdminChatID, logger); err != nil {
		logger.Fatal(err)
	}

	repo := repository.NewRepository(database, logger)
	svc := service.NewService(repo, &cfg, logger)

	telegramBot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		logger.Fatal("Failed to create bot API: ", err)
	}
	logger.Infof("✅ Authorized as @%s", telegramBot.Self.UserName)

	shopBot := bot.NewBot(telegramBot, svc, bot.NewTracker(), logger, &cfg)
	shopBot.Start()
}
