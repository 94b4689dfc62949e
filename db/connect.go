package db

import (
	"time"

	"github.com/dmarkov/shop_bot/internal/models"
	"github.com/dmarkov/shop_bot/utils"
	"gorm.io/driver/postgres"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormLogger "gorm.io/gorm/logger"
)

func ConnectDb(url string, log *utils.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  url,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Error),
	})

	if err != nil {
		return nil, err
	}

	log.Info("✅ Database connection successfully")

	log.Info("📦 Setting database connection pool...")
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(20)
	sqlDB.SetMaxOpenConns(200)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

func Migrate(db *gorm.DB, adminChatID int64, log *utils.Logger) error {
	log.Info("📦 Migrating database...")
	tables := []interface{}{
		&models.User{},
		&models.Product{},
		&models.City{},
		&models.District{},
		&models.InventoryItem{},
		&models.Order{},
		&models.Review{},
		&models.Ticket{},
		&models.Broadcast{},
		&models.BotSettings{},
		&models.Admin{},
		&models.ActionLog{},
	}

	if err := db.AutoMigrate(tables...); err != nil {
		log.Errorf("✖ Failed to migrate database: %v", err)
		return err
	}

	if err := seedDefaults(db, adminChatID); err != nil {
		log.Errorf("✖ Failed to seed defaults: %v", err)
		return err
	}

	log.Info("✅ Database migrated successfully")
	return nil
}

// seedDefaults идемпотентно создает строку настроек и стартового админа.
func seedDefaults(db *gorm.DB, adminChatID int64) error {
	settings := models.BotSettings{
		ID:          1,
		WelcomeText: "Добро пожаловать в магазин! Выберите нужный товар из каталога.",
		PaymentInstructions: "Реквизиты для оплаты:\n\nКарта: 1234 5678 9012 3456\n\n" +
			"После оплаты отправьте скриншот квитанции.",
		SupportUsername: "support",
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&settings).Error; err != nil {
		return err
	}

	admin := models.Admin{
		UserID: adminChatID,
		Role:   "owner",
	}
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&admin).Error
}
