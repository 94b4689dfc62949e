package config

import (
	"encoding/hex"
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"
)

type Config struct {
	TelegramBotToken string `mapstructure:"BOT_TOKEN"`
	AdminChatID      int64  `mapstructure:"ADMIN_CHAT_ID"`
	DB_URL           string `mapstructure:"DB_URL"`
	PayloadKey       string `mapstructure:"PAYLOAD_KEY"`
	BroadcastDelayMS int    `mapstructure:"BROADCAST_DELAY_MS"`
	LogLevel         string `mapstructure:"LOG_LEVEL"`
}

func LoadConfig(path string) (config Config, err error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return config, fmt.Errorf("ошибка получения абсолютного пути: %w", err)
	}

	viper.AddConfigPath(filepath.Dir(absPath))
	viper.SetConfigName(filepath.Base(absPath))
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	viper.SetDefault("BROADCAST_DELAY_MS", 50)
	viper.SetDefault("LOG_LEVEL", "debug")

	if err := viper.ReadInConfig(); err != nil {
		return config, fmt.Errorf("ошибка чтения конфигурации: %w", err)
	}

	if err := viper.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("ошибка преобразования конфига: %w", err)
	}

	if err := config.validate(); err != nil {
		return config, err
	}

	return config, nil
}

func (c Config) validate() error {
	if c.TelegramBotToken == "" {
		return fmt.Errorf("BOT_TOKEN не задан")
	}
	if c.AdminChatID == 0 {
		return fmt.Errorf("ADMIN_CHAT_ID не задан")
	}
	key, err := hex.DecodeString(c.PayloadKey)
	if err != nil || len(key) != 32 {
		return fmt.Errorf("PAYLOAD_KEY должен быть 64 hex-символа (32 байта)")
	}
	return nil
}

// PayloadKeyBytes возвращает ключ шифрования данных товара.
// Валидность проверяется в validate, здесь ошибка невозможна.
func (c Config) PayloadKeyBytes() []byte {
	key, _ := hex.DecodeString(c.PayloadKey)
	return key
}
